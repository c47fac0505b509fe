// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmclient

import (
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/api"
	"github.com/vechain/gemfarm/api/farms"
	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farmclient/httpclient"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/lvldb"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/state"
)

var (
	farmID  = gem.BytesToAddress([]byte("farm"))
	manager = gem.BytesToAddress([]byte("manager"))
	funder  = gem.BytesToAddress([]byte("funder"))
	alice   = gem.BytesToAddress([]byte("alice"))
	bob     = gem.BytesToAddress([]byte("bob"))

	gemMint = gem.BytesToAddress([]byte("gem-mint"))
	mintA   = gem.BytesToAddress([]byte("reward-a"))
	mintB   = gem.BytesToAddress([]byte("reward-b"))
)

func fundRequest(amount uint64) *farms.FundRequest {
	return &farms.FundRequest{
		Amount: amount,
		Periods: []farm.PeriodView{
			{Rate: 5, DurationSec: 3},
			{Rate: 10, DurationSec: 3},
			{Rate: 0, DurationSec: 6},
		},
		GemsFunded: 1000,
	}
}

// newTestNode serves a fresh farm with the faucet enabled and returns its
// client together with the clock driving it.
func newTestNode(t *testing.T) (*httpclient.Client, *atomic.Uint64) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, 256)
	var now atomic.Uint64
	handler := api.New(farm.New(st, custody.NewBook(st)), now.Load, api.Options{Faucet: true})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	conn := httpclient.New(ts.URL)
	_, err = conn.InitFarm(manager, &farms.InitFarmRequest{
		ID:      farmID,
		Config:  farm.Config{MinStakingPeriodSec: 5, CooldownPeriodSec: 10},
		RewardA: farms.RewardParams{Mint: mintA},
		RewardB: farms.RewardParams{Mint: mintB},
	})
	require.NoError(t, err)
	_, err = conn.AuthorizeFunder(manager, farmID, funder)
	require.NoError(t, err)

	for _, mint := range []gem.Address{mintA, mintB} {
		_, err = conn.Mint(funder, mint, 1_000_000)
		require.NoError(t, err)
	}
	return conn, &now
}

func TestClientStakingRound(t *testing.T) {
	conn, now := newTestNode(t)

	_, err := conn.FundReward(funder, farmID, "rewardA", fundRequest(45000))
	require.NoError(t, err)
	_, err = conn.FundReward(funder, farmID, mintB.String(), fundRequest(45000))
	require.NoError(t, err)

	clients := map[gem.Address]*Client{}
	for identity, gems := range map[gem.Address]uint64{alice: 400, bob: 600} {
		c := NewWithHTTP(conn, identity, farmID)
		clients[identity] = c

		_, err := conn.Mint(identity, gemMint, gems)
		require.NoError(t, err)
		vault, err := c.Join()
		require.NoError(t, err)
		_, err = c.Deposit(gemMint, gems)
		require.NoError(t, err)
		fv, err := c.Stake()
		require.NoError(t, err)
		assert.Equal(t, "staked", fv.State)

		v, err := c.Vault()
		require.NoError(t, err)
		assert.Equal(t, vault, v.ID)
		assert.True(t, v.Locked)
	}

	view, err := conn.Farm(farmID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), view.GemsStaked)
	assert.Equal(t, uint64(2), view.StakedFarmerCount)

	now.Store(20)
	a, b, err := clients[alice].ClaimAll()
	require.NoError(t, err)
	assert.Equal(t, uint64(18000), a)
	assert.Equal(t, uint64(18000), b)

	a, b, err = clients[bob].ClaimAll()
	require.NoError(t, err)
	assert.Equal(t, uint64(27000), a)
	assert.Equal(t, uint64(27000), b)

	balance, err := clients[bob].Balance(mintA)
	require.NoError(t, err)
	assert.Equal(t, uint64(27000), balance)

	// locked vaults refuse withdrawals
	_, err = clients[alice].Withdraw(gemMint, 1)
	assert.ErrorIs(t, err, reverts.ErrVaultLocked)

	state, err := clients[alice].Unstake()
	require.NoError(t, err)
	assert.Equal(t, "pendingCooldown", state)

	_, err = clients[alice].Unstake()
	assert.ErrorIs(t, err, reverts.ErrCooldownNotElapsed)

	now.Store(30)
	state, err = clients[alice].Unstake()
	require.NoError(t, err)
	assert.Equal(t, "unstaked", state)

	fv, err := clients[alice].Withdraw(gemMint, 400)
	require.NoError(t, err)
	assert.Zero(t, fv.GemsStaked)

	view, err = conn.Farm(farmID)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), view.GemsStaked)
	assert.Equal(t, uint64(1), view.StakedFarmerCount)

	identities, err := conn.Farmers(farmID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []gem.Address{alice, bob}, identities)
}

func TestClientErrors(t *testing.T) {
	conn, _ := newTestNode(t)

	c := NewWithHTTP(conn, alice, farmID)
	assert.Equal(t, alice, c.Identity())
	assert.Same(t, conn, c.RawHTTPClient())

	_, err := c.Farmer()
	assert.ErrorIs(t, err, reverts.ErrNotFound)

	_, err = c.Join()
	require.NoError(t, err)
	_, err = c.Join()
	assert.ErrorIs(t, err, reverts.ErrAlreadyExists)

	_, err = c.Stake()
	assert.ErrorIs(t, err, reverts.ErrVaultEmpty)

	_, err = conn.AuthorizeFunder(alice, farmID, alice)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	_, err = conn.LockReward(manager, farmID, "rewardA")
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunding)

	refund, err := conn.CancelReward(manager, farmID, "rewardA")
	require.NoError(t, err)
	assert.Zero(t, refund)

	_, err = conn.DeauthorizeFunder(manager, farmID, funder)
	require.NoError(t, err)
	_, err = conn.FundReward(funder, farmID, "rewardA", fundRequest(10))
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
}
