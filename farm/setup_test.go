// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/lvldb"
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

	funderBalance = uint64(1_000_000)
)

func testRewardConfig() schedule.FixedRateConfig {
	return schedule.FixedRateConfig{
		Periods: [3]schedule.PeriodConfig{
			{Rate: 5, DurationSec: 3},
			{Rate: 10, DurationSec: 3},
			{Rate: 0, DurationSec: 6},
		},
		GemsFunded: 1000,
	}
}

func testInitParams(cfg Config) InitParams {
	return InitParams{
		Config:  cfg,
		RewardA: RewardParams{Mint: mintA, Type: schedule.Fixed},
		RewardB: RewardParams{Mint: mintB, Type: schedule.Fixed},
	}
}

type ControllerTest struct {
	*Controller
	t *testing.T
}

// newTestController returns a fresh controller holding one farm with an
// authorized and funded funder.
func newTestController(t *testing.T, cfg Config) *ControllerTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newTestControllerOn(t, db, cfg)
}

func newTestControllerOn(t *testing.T, db kv.Store, cfg Config) *ControllerTest {
	st := state.New(db, 256)
	c := New(st, custody.NewBook(st))

	require.NoError(t, c.InitFarm(farmID, manager, testInitParams(cfg)))
	require.NoError(t, c.AuthorizeFunder(farmID, manager, funder))
	require.NoError(t, c.Mint(funder, mintA, funderBalance))
	require.NoError(t, c.Mint(funder, mintB, funderBalance))

	return &ControllerTest{Controller: c, t: t}
}

// AddFarmer registers identity and deposits gems into its vault.
func (ts *ControllerTest) AddFarmer(identity gem.Address, gems uint64) *ControllerTest {
	require.NoError(ts.t, ts.Mint(identity, gemMint, gems))
	_, _, err := ts.InitFarmer(farmID, identity, identity)
	require.NoError(ts.t, err, "failed to init farmer %s", identity)
	if gems > 0 {
		require.NoError(ts.t, ts.Deposit(farmID, identity, gemMint, gems))
	}
	return ts
}

func (ts *ControllerTest) Fund(track schedule.Track, amount, now uint64) *ControllerTest {
	require.NoError(ts.t, ts.FundReward(farmID, funder, track, amount, testRewardConfig(), now))
	return ts
}

func (ts *ControllerTest) StakeAt(identity gem.Address, now uint64) *ControllerTest {
	require.NoError(ts.t, ts.Stake(farmID, identity, now), "failed to stake %s", identity)
	return ts
}

func (ts *ControllerTest) UnstakeAt(identity gem.Address, now uint64) *ControllerTest {
	_, err := ts.Unstake(farmID, identity, now)
	require.NoError(ts.t, err, "failed to unstake %s", identity)
	return ts
}

func (ts *ControllerTest) RefreshAt(identity gem.Address, now uint64) *ControllerTest {
	require.NoError(ts.t, ts.RefreshFarmer(farmID, identity, now), "failed to refresh %s", identity)
	return ts
}

func (ts *ControllerTest) FarmSnapshot() FarmView {
	view, err := ts.Farm(farmID)
	require.NoError(ts.t, err)
	return view
}

func (ts *ControllerTest) FarmerSnapshot(identity gem.Address) FarmerView {
	view, err := ts.Farmer(farmID, identity)
	require.NoError(ts.t, err)
	return view
}

func (ts *ControllerTest) Balance(owner, mint gem.Address) uint64 {
	balance, err := ts.BalanceOf(owner, mint)
	require.NoError(ts.t, err)
	return balance
}

func (ts *ControllerTest) AssertAccrued(identity gem.Address, rewardA, rewardB uint64) *ControllerTest {
	view := ts.FarmerSnapshot(identity)
	assert.Equal(ts.t, rewardA, view.RewardA.AccruedReward, "rewardA accrued mismatch for %s", identity)
	assert.Equal(ts.t, rewardB, view.RewardB.AccruedReward, "rewardB accrued mismatch for %s", identity)
	return ts
}

// AssertGemsStaked checks the farm total against the farmers and both schedules.
func (ts *ControllerTest) AssertGemsStaked(expected uint64, identities ...gem.Address) *ControllerTest {
	view := ts.FarmSnapshot()

	var sum uint64
	for _, identity := range identities {
		sum += ts.FarmerSnapshot(identity).GemsStaked
	}
	assert.Equal(ts.t, expected, view.GemsStaked, "farm gems staked mismatch")
	assert.Equal(ts.t, view.GemsStaked, sum, "farm total differs from farmers")
	assert.Equal(ts.t, view.GemsStaked, view.RewardA.GemsParticipating, "rewardA participation mismatch")
	assert.Equal(ts.t, view.GemsStaked, view.RewardB.GemsParticipating, "rewardB participation mismatch")
	return ts
}

type TestFunc func(t *testing.T)

// TestSequence runs named steps in order against one controller.
type TestSequence struct {
	ts    *ControllerTest
	names []string
	funcs []TestFunc
}

func NewSequence(ts *ControllerTest) *TestSequence {
	return &TestSequence{ts: ts}
}

func (s *TestSequence) AddFunc(name string, f TestFunc) *TestSequence {
	s.names = append(s.names, name)
	s.funcs = append(s.funcs, f)
	return s
}

func (s *TestSequence) Stake(identity gem.Address, now uint64) *TestSequence {
	return s.AddFunc(fmt.Sprintf("stake %s at %d", identity, now), func(t *testing.T) {
		require.NoError(t, s.ts.Stake(farmID, identity, now))
	})
}

func (s *TestSequence) Unstake(identity gem.Address, now uint64) *TestSequence {
	return s.AddFunc(fmt.Sprintf("unstake %s at %d", identity, now), func(t *testing.T) {
		_, err := s.ts.Unstake(farmID, identity, now)
		require.NoError(t, err)
	})
}

func (s *TestSequence) Refresh(identity gem.Address, now uint64) *TestSequence {
	return s.AddFunc(fmt.Sprintf("refresh %s at %d", identity, now), func(t *testing.T) {
		require.NoError(t, s.ts.RefreshFarmer(farmID, identity, now))
	})
}

func (s *TestSequence) Deposit(identity gem.Address, amount uint64) *TestSequence {
	return s.AddFunc(fmt.Sprintf("deposit %d for %s", amount, identity), func(t *testing.T) {
		require.NoError(t, s.ts.Mint(identity, gemMint, amount))
		require.NoError(t, s.ts.Controller.Deposit(farmID, identity, gemMint, amount))
	})
}

func (s *TestSequence) Withdraw(identity gem.Address, amount uint64) *TestSequence {
	return s.AddFunc(fmt.Sprintf("withdraw %d for %s", amount, identity), func(t *testing.T) {
		require.NoError(t, s.ts.Controller.Withdraw(farmID, identity, gemMint, amount))
	})
}

// Run executes every step, checking the staking totals after each one.
func (s *TestSequence) Run(t *testing.T, identities ...gem.Address) {
	parent := s.ts.t
	defer func() { s.ts.t = parent }()

	for i, f := range s.funcs {
		t.Run(s.names[i], func(t *testing.T) {
			f(t)
			s.ts.t = t
			view := s.ts.FarmSnapshot()
			s.ts.AssertGemsStaked(view.GemsStaked, identities...)
		})
	}
}
