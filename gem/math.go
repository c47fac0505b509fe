// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gem

import (
	"github.com/holiman/uint256"

	"github.com/vechain/gemfarm/reverts"
)

// Amounts are unsigned 64-bit in the smallest unit of the asset. Intermediates are
// evaluated in 256 bits and narrowed back, failing with ErrArithmeticOverflow.

func narrow(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, reverts.ErrArithmeticOverflow
	}
	return v.Uint64(), nil
}

// SafeAdd returns a + b.
func SafeAdd(a, b uint64) (uint64, error) {
	return narrow(new(uint256.Int).Add(uint256.NewInt(a), uint256.NewInt(b)))
}

// SafeSub returns a - b, failing when b > a.
func SafeSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, reverts.ErrArithmeticOverflow
	}
	return a - b, nil
}

// SaturatingSub returns a - b, or zero when b > a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// SafeMul returns a * b.
func SafeMul(a, b uint64) (uint64, error) {
	return narrow(new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b)))
}

// MulDiv returns a * b / c, multiplying before dividing.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, reverts.ErrArithmeticOverflow
	}
	v := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	return narrow(v.Div(v, uint256.NewInt(c)))
}
