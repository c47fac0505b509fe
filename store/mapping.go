// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/gemfarm/gem"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction over the slots of one account.
// Each value is rlp encoded into the slot Blake2b(key, basePos).
type Mapping[K Key, V any] struct {
	context *Context
	basePos gem.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos gem.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) gem.Bytes32 {
	return gem.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of key, or the zero value when absent.
// Pointer values are always allocated.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Exists reports whether a value was ever set for key and not deleted.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
