// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/metrics"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newTestState(t *testing.T, cacheSize int) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, cacheSize), db
}

func TestStorage(t *testing.T) {
	st, _ := newTestState(t, 0)
	addr := gem.BytesToAddress([]byte("account"))
	key := gem.BytesToBytes32([]byte("key"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	value := gem.BytesToBytes32([]byte("value"))
	st.SetStorage(addr, key, value)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	st.SetStorage(addr, key, gem.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestEncodeDecodeStorage(t *testing.T) {
	st, _ := newTestState(t, 0)
	addr := gem.BytesToAddress([]byte("account"))
	key := gem.BytesToBytes32([]byte("list"))

	type record struct {
		A uint64
		B []byte
	}
	want := record{A: 42, B: []byte("gems")}
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&want)
	}))

	var got record
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, want, got)

	hash, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	raw, _ := rlp.EncodeToBytes(&want)
	assert.Equal(t, gem.Blake2b(raw), hash)

	err = st.DecodeStorage(addr, key, func([]byte) error { return assert.AnError })
	var stateErr *Error
	assert.ErrorAs(t, err, &stateErr)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCheckpoint(t *testing.T) {
	st, _ := newTestState(t, 0)
	addr := gem.BytesToAddress([]byte("account"))
	key := gem.BytesToBytes32([]byte("key"))
	one := gem.BytesToBytes32([]byte{1})
	two := gem.BytesToBytes32([]byte{2})

	st.SetStorage(addr, key, one)
	cp := st.NewCheckpoint()
	st.SetStorage(addr, key, two)
	st.SetStorage(addr, key, two)

	v, _ := st.GetStorage(addr, key)
	assert.Equal(t, two, v)

	st.RevertTo(cp)
	v, _ = st.GetStorage(addr, key)
	assert.Equal(t, one, v)
}

func TestCommit(t *testing.T) {
	for _, cacheSize := range []int{0, 16} {
		st, db := newTestState(t, cacheSize)
		addr := gem.BytesToAddress([]byte("account"))
		k1 := gem.BytesToBytes32([]byte("k1"))
		k2 := gem.BytesToBytes32([]byte("k2"))

		st.SetStorage(addr, k1, gem.BytesToBytes32([]byte{1}))
		st.SetStorage(addr, k2, gem.BytesToBytes32([]byte{2}))
		require.NoError(t, st.Commit())

		// a fresh state over the same store sees committed values
		reloaded := New(db, cacheSize)
		v, err := reloaded.GetStorage(addr, k1)
		require.NoError(t, err)
		assert.Equal(t, gem.BytesToBytes32([]byte{1}), v)

		// clearing a slot deletes it from the store
		st.SetStorage(addr, k2, gem.Bytes32{})
		require.NoError(t, st.Commit())
		has, err := db.Has(slotKey{addr, k2}.bytes())
		require.NoError(t, err)
		assert.False(t, has)

		v, err = st.GetStorage(addr, k2)
		require.NoError(t, err)
		assert.True(t, v.IsZero())

		// nothing to commit
		require.NoError(t, st.Commit())
	}
}

func TestCommitCacheHitRate(t *testing.T) {
	st, _ := newTestState(t, 16)
	addr := gem.BytesToAddress([]byte("account"))
	k1 := gem.BytesToBytes32([]byte("k1"))
	k2 := gem.BytesToBytes32([]byte("k2"))
	k3 := gem.BytesToBytes32([]byte("k3"))

	st.SetStorage(addr, k1, gem.BytesToBytes32([]byte{1}))
	require.NoError(t, st.Commit())

	// k1 was cached by the commit, k2 was never seen
	_, err := st.GetStorage(addr, k1)
	require.NoError(t, err)
	_, err = st.GetStorage(addr, k2)
	require.NoError(t, err)

	st.SetStorage(addr, k3, gem.BytesToBytes32([]byte{3}))
	require.NoError(t, st.Commit())

	rec := httptest.NewRecorder()
	metrics.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(rec.Body)
	require.NoError(t, err)

	m := families["gemfarm_state_cache_hit_permille"].GetMetric()
	require.Len(t, m, 1)
	assert.Equal(t, float64(500), m[0].GetGauge().GetValue())
}
