// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetOrLoad(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)

	c, err := NewLRU(2)
	require.NoError(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(string) + "-v", nil
	}

	v, err := c.GetOrLoad("a", loader)
	require.NoError(t, err)
	assert.Equal(t, "a-v", v)

	v, err = c.GetOrLoad("a", loader)
	require.NoError(t, err)
	assert.Equal(t, "a-v", v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("b", func(any) (any, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.False(t, c.Contains("b"))

	changed, hit, miss := c.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(2), miss)
}

func TestCacheStats(t *testing.T) {
	cs := &Stats{}
	cs.Hit()
	cs.Miss()
	_, hit, miss := cs.Stats()

	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ := cs.Stats()
	assert.False(t, changed)

	cs.Hit()
	assert.Equal(t, int64(3), cs.Hit())

	changed, hit, miss = cs.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)
}
