// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmer

import (
	"fmt"

	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

type State uint8

const (
	StateUnstaked State = iota
	StateStaked
	StatePendingCooldown
)

func (s State) String() string {
	switch s {
	case StateUnstaked:
		return "unstaked"
	case StateStaked:
		return "staked"
	case StatePendingCooldown:
		return "pendingCooldown"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ID derives the farmer id of identity within farm.
func ID(farm, identity gem.Address) gem.Address {
	return gem.DeriveAddress([]byte("farmer"), farm.Bytes(), identity.Bytes())
}

type Farmer struct {
	Farm             gem.Address
	Identity         gem.Address
	Vault            gem.Address
	State            State
	GemsStaked       uint64
	MinStakingEndsTs uint64
	CooldownEndsTs   uint64
	Rewards          [2]schedule.FarmerReward
}

// IsEmpty returns whether the farmer has been initialized.
func (f *Farmer) IsEmpty() bool {
	return f == nil || f.Identity.IsZero()
}

// Participating returns whether the farmer's gems count in the schedules.
func (f *Farmer) Participating() bool {
	return f.State == StateStaked || f.State == StatePendingCooldown
}

// Reward returns the reward record of track.
func (f *Farmer) Reward(track schedule.Track) *schedule.FarmerReward {
	return &f.Rewards[track]
}

// BeginStaking moves an unstaked farmer to Staked with gems.
func (f *Farmer) BeginStaking(gems, minStakingEndsTs uint64) error {
	if f.State != StateUnstaked {
		return reverts.Wrapf(reverts.ErrInvalidState, "farmer is %s", f.State)
	}
	if gems == 0 {
		return reverts.Wrapf(reverts.ErrVaultEmpty, "vault %s", f.Vault)
	}
	f.State = StateStaked
	f.GemsStaked = gems
	f.MinStakingEndsTs = minStakingEndsTs
	f.CooldownEndsTs = 0
	return nil
}

// BeginCooldown moves a staked farmer into cooldown once the minimum staking period passed.
func (f *Farmer) BeginCooldown(now, cooldownPeriodSec uint64) error {
	if f.State != StateStaked {
		return reverts.Wrapf(reverts.ErrInvalidState, "farmer is %s", f.State)
	}
	if now < f.MinStakingEndsTs {
		return reverts.Wrapf(reverts.ErrMinStakingNotPassed, "staked until %d", f.MinStakingEndsTs)
	}
	end, err := gem.SafeAdd(now, cooldownPeriodSec)
	if err != nil {
		return err
	}
	f.State = StatePendingCooldown
	f.CooldownEndsTs = end
	return nil
}

// EndCooldown releases a farmer whose cooldown elapsed and returns the released gems.
func (f *Farmer) EndCooldown(now uint64) (uint64, error) {
	if f.State != StatePendingCooldown {
		return 0, reverts.Wrapf(reverts.ErrInvalidState, "farmer is %s", f.State)
	}
	if now < f.CooldownEndsTs {
		return 0, reverts.Wrapf(reverts.ErrCooldownNotElapsed, "cooling down until %d", f.CooldownEndsTs)
	}
	gems := f.GemsStaked
	f.State = StateUnstaked
	f.GemsStaked = 0
	return gems, nil
}
