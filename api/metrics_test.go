// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/api/vaults"
	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/metrics"
	"github.com/vechain/gemfarm/state"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newTestController(t *testing.T) *farm.Controller {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, 0)
	return farm.New(st, custody.NewBook(st))
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

func TestMetricsMiddleware(t *testing.T) {
	router := mux.NewRouter()
	vaults.New(newTestController(t)).Mount(router, "/vaults")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	defer ts.Close()

	_, code := httpGet(t, ts.URL+"/vaults/0x")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/vaults/"+gem.Address{}.String())
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/vaults/"+gem.Address{}.String())
	assert.Equal(t, http.StatusNotFound, code)

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	m := families["gemfarm_api_request_count"].GetMetric()
	require.Equal(t, 2, len(m), "should be 2 metric entries")

	// series are sorted by label values, "400" before "404"
	assert.Equal(t, float64(1), m[0].GetCounter().GetValue())
	assert.Equal(t, float64(2), m[1].GetCounter().GetValue())

	labels := m[0].GetLabel()
	require.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "400", labels[0].GetValue())
	assert.Equal(t, "method", labels[1].GetName())
	assert.Equal(t, "GET", labels[1].GetValue())
	assert.Equal(t, "name", labels[2].GetName())
	assert.Equal(t, "GET /vaults/{id}", labels[2].GetValue())

	labels = m[1].GetLabel()
	assert.Equal(t, "404", labels[0].GetValue())

	assert.NotNil(t, families["gemfarm_api_duration_ms"])
}
