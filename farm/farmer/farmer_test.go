// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/state"
	"github.com/vechain/gemfarm/store"
)

var (
	farmID   = gem.BytesToAddress([]byte("farm"))
	identity = gem.BytesToAddress([]byte("identity"))
	vaultID  = gem.BytesToAddress([]byte("vault"))
)

func TestID(t *testing.T) {
	assert.Equal(t, ID(farmID, identity), ID(farmID, identity))
	assert.NotEqual(t, ID(farmID, identity), ID(identity, farmID))
}

func TestStateMachine(t *testing.T) {
	f := &Farmer{Farm: farmID, Identity: identity, Vault: vaultID}
	assert.False(t, f.Participating())

	_, err := f.EndCooldown(0)
	assert.ErrorIs(t, err, reverts.ErrInvalidState)
	assert.ErrorIs(t, f.BeginCooldown(0, 0), reverts.ErrInvalidState)
	assert.ErrorIs(t, f.BeginStaking(0, 10), reverts.ErrVaultEmpty)

	require.NoError(t, f.BeginStaking(100, 10))
	assert.Equal(t, StateStaked, f.State)
	assert.True(t, f.Participating())
	assert.ErrorIs(t, f.BeginStaking(100, 10), reverts.ErrInvalidState)

	assert.ErrorIs(t, f.BeginCooldown(9, 5), reverts.ErrMinStakingNotPassed)
	require.NoError(t, f.BeginCooldown(10, 5))
	assert.Equal(t, StatePendingCooldown, f.State)
	assert.Equal(t, uint64(15), f.CooldownEndsTs)
	assert.Equal(t, uint64(100), f.GemsStaked)
	assert.ErrorIs(t, f.BeginStaking(100, 10), reverts.ErrInvalidState)

	_, err = f.EndCooldown(14)
	assert.ErrorIs(t, err, reverts.ErrCooldownNotElapsed)
	gems, err := f.EndCooldown(15)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), gems)
	assert.Equal(t, StateUnstaked, f.State)
	assert.Zero(t, f.GemsStaked)
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	svc := New(store.NewContext(gem.BytesToAddress([]byte("ledger")), state.New(db, 0)))

	_, err = svc.Get(ID(farmID, identity))
	assert.ErrorIs(t, err, reverts.ErrNotFound)

	id, err := svc.Add(farmID, identity, vaultID)
	require.NoError(t, err)
	assert.Equal(t, ID(farmID, identity), id)

	_, err = svc.Add(farmID, identity, vaultID)
	assert.ErrorIs(t, err, reverts.ErrAlreadyExists)

	f, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, vaultID, f.Vault)
	assert.Equal(t, StateUnstaked, f.State)

	f.Reward(schedule.RewardB).AccruedReward = 42
	require.NoError(t, f.BeginStaking(7, 0))
	require.NoError(t, svc.Set(id, f))

	f, err = svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), f.Rewards[schedule.RewardB].AccruedReward)
	assert.Equal(t, uint64(7), f.GemsStaked)
	assert.Equal(t, StateStaked, f.State)
}
