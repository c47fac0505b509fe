// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"encoding/binary"

	"github.com/vechain/gemfarm/gem"
)

// Uint64 is a counter stored in a single slot.
type Uint64 struct {
	context *Context
	pos     gem.Bytes32
}

func NewUint64(context *Context, pos gem.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(storage[24:]), nil
}

func (u *Uint64) Set(value uint64) {
	var storage gem.Bytes32
	binary.BigEndian.PutUint64(storage[24:], value)
	u.context.state.SetStorage(u.context.address, u.pos, storage)
}

// Add increases the counter, failing on overflow.
func (u *Uint64) Add(delta uint64) (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	if v, err = gem.SafeAdd(v, delta); err != nil {
		return 0, err
	}
	u.Set(v)
	return v, nil
}

// Sub decreases the counter, failing on underflow.
func (u *Uint64) Sub(delta uint64) (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	if v, err = gem.SafeSub(v, delta); err != nil {
		return 0, err
	}
	u.Set(v)
	return v, nil
}
