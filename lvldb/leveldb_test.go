// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	persistent, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer persistent.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for name, db := range map[string]*LevelDB{"persistent": persistent, "mem": mem} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Put(key, value))

			got, err := db.Get(key)
			require.NoError(t, err)
			assert.Equal(t, value, got)

			has, err := db.Has(key)
			require.NoError(t, err)
			assert.True(t, has)

			has, err = db.Has(inValidKey)
			require.NoError(t, err)
			assert.False(t, has)

			require.NoError(t, db.Delete(key))
			_, err = db.Get(key)
			assert.True(t, db.IsNotFound(err))
		})
	}
}

func TestLevelDBBulk(t *testing.T) {
	var (
		key   = []byte("123")
		value = []byte("456")
	)
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	require.NoError(t, bulk.Write())

	require.NoError(t, bulk.Put(key, value))
	assert.Equal(t, 1, bulk.Len())

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err), "bulk is not visible before write")

	require.NoError(t, bulk.Write())
	got, err := db.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	bulk = db.Bulk()
	require.NoError(t, bulk.Delete(key))
	require.NoError(t, bulk.Write())
	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lvldb")
	db, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = New(path, Options{})
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
