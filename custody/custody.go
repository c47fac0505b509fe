// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package custody moves assets between accounts.
package custody

import (
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/state"
	"github.com/vechain/gemfarm/store"
)

var logger = log.WithContext("pkg", "custody")

// NativeMint is the mint of the native currency, used for unstaking fees.
var NativeMint = gem.DeriveAddress([]byte("native-mint"))

// Service is the asset-transfer collaborator. Each transfer either fully applies or fails.
type Service interface {
	// TransferIn moves amount of mint from source into account.
	TransferIn(account, mint gem.Address, amount uint64, source gem.Address) error
	// TransferOut moves amount of mint from account to destination.
	TransferOut(account, mint gem.Address, amount uint64, destination gem.Address) error
}

// Ledger is a Service that can also issue and report balances.
type Ledger interface {
	Service
	Mint(owner, mint gem.Address, amount uint64) error
	BalanceOf(owner, mint gem.Address) (uint64, error)
}

var (
	bookAddress  = gem.DeriveAddress([]byte("custody-book"))
	slotBalances = store.Slot("balances")
)

type balanceKey struct {
	owner, mint gem.Address
}

func (k balanceKey) Bytes() []byte {
	return append(append(make([]byte, 0, 2*gem.AddressLength), k.owner[:]...), k.mint[:]...)
}

// Book is a Service keeping balances in state, so transfers revert along with the
// operation that issued them.
type Book struct {
	balances *store.Mapping[balanceKey, uint64]
}

var _ Ledger = (*Book)(nil)

func NewBook(st *state.State) *Book {
	sctx := store.NewContext(bookAddress, st)
	return &Book{
		balances: store.NewMapping[balanceKey, uint64](sctx, slotBalances),
	}
}

// BalanceOf returns the amount of mint held by owner.
func (b *Book) BalanceOf(owner, mint gem.Address) (uint64, error) {
	return b.balances.Get(balanceKey{owner, mint})
}

// Mint credits newly issued tokens to owner.
func (b *Book) Mint(owner, mint gem.Address, amount uint64) error {
	key := balanceKey{owner, mint}
	balance, err := b.balances.Get(key)
	if err != nil {
		return err
	}
	if balance, err = gem.SafeAdd(balance, amount); err != nil {
		return err
	}
	logger.Debug("minted", "owner", owner, "mint", mint, "amount", amount)
	return b.balances.Set(key, balance)
}

// Transfer moves amount of mint from one owner to another.
func (b *Book) Transfer(from, to, mint gem.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	fromKey, toKey := balanceKey{from, mint}, balanceKey{to, mint}

	fromBalance, err := b.balances.Get(fromKey)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return reverts.Wrapf(reverts.ErrInsufficientBalance, "%s holds %d of %s, needs %d", from, fromBalance, mint, amount)
	}
	toBalance, err := b.balances.Get(toKey)
	if err != nil {
		return err
	}
	if toBalance, err = gem.SafeAdd(toBalance, amount); err != nil {
		return err
	}

	if err := b.balances.Set(fromKey, fromBalance-amount); err != nil {
		return err
	}
	return b.balances.Set(toKey, toBalance)
}

func (b *Book) TransferIn(account, mint gem.Address, amount uint64, source gem.Address) error {
	return b.Transfer(source, account, mint, amount)
}

func (b *Book) TransferOut(account, mint gem.Address, amount uint64, destination gem.Address) error {
	return b.Transfer(account, destination, mint, amount)
}
