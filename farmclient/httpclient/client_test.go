// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/api/farms"
	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

var (
	farmID  = gem.BytesToAddress([]byte("farm"))
	manager = gem.BytesToAddress([]byte("manager"))
	alice   = gem.BytesToAddress([]byte("alice"))
)

func TestClient_Farm(t *testing.T) {
	expected := farm.FarmView{ID: farmID, Manager: manager, FarmerCount: 2}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/farms/"+farmID.String(), r.URL.Path)
		assert.Empty(t, r.Header.Get(utils.CallerHeader))
		json.NewEncoder(w).Encode(&expected)
	}))
	defer ts.Close()

	view, err := New(ts.URL).Farm(farmID)
	require.NoError(t, err)
	assert.Equal(t, expected.ID, view.ID)
	assert.Equal(t, expected.Manager, view.Manager)
	assert.Equal(t, expected.FarmerCount, view.FarmerCount)
}

func TestClient_CallerHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/farms/"+farmID.String()+"/farmers/"+alice.String()+"/rewards/rewardB/claim", r.URL.Path)
		assert.Equal(t, alice.String(), r.Header.Get(utils.CallerHeader))
		json.NewEncoder(w).Encode(&farms.AmountResponse{Amount: 42})
	}))
	defer ts.Close()

	amount, err := New(ts.URL).ClaimReward(alice, farmID, "rewardB")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), amount)
}

func TestClient_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/farms/" + farmID.String():
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(&utils.ErrorBody{Error: "unauthorized: not the manager", Code: "Unauthorized"})
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := New(ts.URL)

	_, err := client.Farm(farmID)
	var httpErr *Error
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.Status)
	assert.Equal(t, "unauthorized: not the manager", httpErr.Message)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	assert.NotErrorIs(t, err, reverts.ErrNotFound)

	_, err = client.Farms()
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "boom", httpErr.Message)
	assert.Empty(t, httpErr.Code)
	assert.NotErrorIs(t, err, reverts.ErrUnauthorized)

	_, err = New("http://127.0.0.1:0").Farms()
	assert.Error(t, err)
}
