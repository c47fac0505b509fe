// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store lays typed records out over the storage slots of one account.
package store

import (
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/state"
)

// Context binds the account whose slots a component owns.
type Context struct {
	address gem.Address
	state   *state.State
}

func NewContext(address gem.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() gem.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot names a storage position.
func Slot(name string) gem.Bytes32 {
	return gem.BytesToBytes32([]byte(name))
}
