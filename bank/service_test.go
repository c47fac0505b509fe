// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/state"
	"github.com/vechain/gemfarm/store"
)

var (
	bankID  = gem.BytesToAddress([]byte("bank"))
	manager = gem.BytesToAddress([]byte("manager"))
	owner   = gem.BytesToAddress([]byte("owner"))
	mint    = gem.BytesToAddress([]byte("gem-mint"))
)

func newTestService(t *testing.T) (*Service, *custody.Book) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, 0)
	book := custody.NewBook(st)
	svc := New(store.NewContext(gem.BytesToAddress([]byte("bank-registry")), st), book)
	require.NoError(t, svc.InitBank(bankID, manager))
	require.NoError(t, book.Mint(owner, mint, 1000))
	return svc, book
}

func TestInitBank(t *testing.T) {
	svc, _ := newTestService(t)

	assert.ErrorIs(t, svc.InitBank(bankID, manager), reverts.ErrAlreadyExists)

	bank, err := svc.GetBank(bankID)
	require.NoError(t, err)
	assert.Equal(t, manager, bank.Manager)

	_, err = svc.GetBank(gem.Address{1})
	assert.ErrorIs(t, err, reverts.ErrNotFound)
}

func TestCreateVault(t *testing.T) {
	svc, _ := newTestService(t)

	id, err := svc.CreateVault(bankID, owner, manager)
	require.NoError(t, err)
	assert.Equal(t, VaultID(bankID, owner), id)

	vault, err := svc.GetVault(id)
	require.NoError(t, err)
	assert.Equal(t, owner, vault.Owner)
	assert.Equal(t, manager, vault.Creator)
	assert.False(t, vault.Locked)

	_, err = svc.CreateVault(bankID, owner, manager)
	assert.ErrorIs(t, err, reverts.ErrAlreadyExists)

	_, err = svc.CreateVault(gem.Address{1}, owner, manager)
	assert.ErrorIs(t, err, reverts.ErrNotFound)

	_, err = svc.CreateVault(bankID, gem.Address{}, manager)
	assert.ErrorIs(t, err, reverts.ErrInvalidParameter)

	bank, err := svc.GetBank(bankID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), bank.VaultCount)
}

func TestLockIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	id, err := svc.CreateVault(bankID, owner, owner)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Lock(id))
		vault, err := svc.GetVault(id)
		require.NoError(t, err)
		assert.True(t, vault.Locked)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Unlock(id))
		vault, err := svc.GetVault(id)
		require.NoError(t, err)
		assert.False(t, vault.Locked)
	}

	assert.ErrorIs(t, svc.Lock(gem.Address{1}), reverts.ErrNotFound)
}

func TestSetVaultLock(t *testing.T) {
	svc, _ := newTestService(t)
	id, err := svc.CreateVault(bankID, owner, owner)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SetVaultLock(bankID, id, owner, true), reverts.ErrUnauthorized)
	require.NoError(t, svc.SetVaultLock(bankID, id, manager, true))

	vault, err := svc.GetVault(id)
	require.NoError(t, err)
	assert.True(t, vault.Locked)
}

func TestDepositWithdraw(t *testing.T) {
	svc, book := newTestService(t)
	id, err := svc.CreateVault(bankID, owner, owner)
	require.NoError(t, err)

	require.NoError(t, svc.Deposit(id, owner, mint, 600, owner))
	require.NoError(t, svc.Deposit(id, owner, mint, 100, owner))

	vault, err := svc.GetVault(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), vault.GemCount)
	assert.Equal(t, uint64(700), vault.Balance(mint))
	assert.Len(t, vault.GemBoxes, 1)

	held, err := book.BalanceOf(id, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), held)

	// wrong identity
	assert.ErrorIs(t, svc.Deposit(id, manager, mint, 1, owner), reverts.ErrUnauthorized)
	assert.ErrorIs(t, svc.Withdraw(id, manager, mint, 1, owner), reverts.ErrUnauthorized)

	// contents do not move while locked
	require.NoError(t, svc.Lock(id))
	assert.ErrorIs(t, svc.Deposit(id, owner, mint, 1, owner), reverts.ErrVaultLocked)
	assert.ErrorIs(t, svc.Withdraw(id, owner, mint, 1, owner), reverts.ErrVaultLocked)
	require.NoError(t, svc.Unlock(id))

	assert.ErrorIs(t, svc.Withdraw(id, owner, mint, 701, owner), reverts.ErrInsufficientBalance)
	assert.ErrorIs(t, svc.Withdraw(id, owner, gem.Address{7}, 1, owner), reverts.ErrInsufficientBalance)
	assert.ErrorIs(t, svc.Deposit(id, owner, mint, 0, owner), reverts.ErrInvalidParameter)

	require.NoError(t, svc.Withdraw(id, owner, mint, 700, owner))
	vault, err = svc.GetVault(id)
	require.NoError(t, err)
	assert.Zero(t, vault.GemCount)
	assert.Empty(t, vault.GemBoxes)

	balance, err := book.BalanceOf(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)
}
