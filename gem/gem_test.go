// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gem

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/reverts"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	_, err = ParseAddress("7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.NoError(t, err)

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	_, err = ParseAddress("0x7567")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("0xzz67d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("farm"))
	data, err := json.Marshal(struct {
		Addr Address `json:"addr"`
	}{addr})
	require.NoError(t, err)
	assert.Equal(t, `{"addr":"`+addr.String()+`"}`, string(data))

	var decoded struct {
		Addr Address `json:"addr"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded.Addr)

	assert.Error(t, json.Unmarshal([]byte(`{"addr":"0x01"}`), &decoded))
}

func TestDeriveAddress(t *testing.T) {
	farm := BytesToAddress([]byte("farm"))
	owner := BytesToAddress([]byte("owner"))

	a := DeriveAddress(farm.Bytes(), owner.Bytes())
	b := DeriveAddress(farm.Bytes(), owner.Bytes())
	c := DeriveAddress(owner.Bytes(), farm.Bytes())

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsZero())
}

func TestBytes32(t *testing.T) {
	b := Blake2b([]byte("gem"))
	parsed, err := ParseBytes32(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)
	assert.Len(t, b.AbbrevString(), 2+8+len("…")+8)

	var decoded Bytes32
	data, err := json.Marshal(b)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)

	assert.True(t, Bytes32{}.IsZero())
	assert.Equal(t, Bytes32{31: 1}, BytesToBytes32([]byte{1}))
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("a")), Blake2b([]byte("b")))
}

func TestSafeMath(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() (uint64, error)
		want    uint64
		wantErr bool
	}{
		{"add", func() (uint64, error) { return SafeAdd(1, 2) }, 3, false},
		{"add overflow", func() (uint64, error) { return SafeAdd(math.MaxUint64, 1) }, 0, true},
		{"sub", func() (uint64, error) { return SafeSub(5, 2) }, 3, false},
		{"sub underflow", func() (uint64, error) { return SafeSub(2, 5) }, 0, true},
		{"mul", func() (uint64, error) { return SafeMul(45, 1000) }, 45000, false},
		{"mul overflow", func() (uint64, error) { return SafeMul(math.MaxUint64, 2) }, 0, true},
		{"muldiv wide intermediate", func() (uint64, error) { return MulDiv(math.MaxUint64, 4, 8) }, math.MaxUint64 / 2, false},
		{"muldiv by zero", func() (uint64, error) { return MulDiv(1, 1, 0) }, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if tt.wantErr {
				assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, uint64(0), SaturatingSub(1, 2))
	assert.Equal(t, uint64(1), SaturatingSub(2, 1))
}
