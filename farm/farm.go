// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"slices"
	"time"

	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

// Clock returns the current unix time in seconds.
type Clock func() uint64

// WallClock reads the system time.
func WallClock() uint64 {
	return uint64(time.Now().Unix())
}

// Config holds the staking rules of a farm.
type Config struct {
	MinStakingPeriodSec uint64 `json:"minStakingPeriodSec" yaml:"min-staking-period-sec"`
	CooldownPeriodSec   uint64 `json:"cooldownPeriodSec" yaml:"cooldown-period-sec"`
	UnstakingFeeLamp    uint64 `json:"unstakingFeeLamp" yaml:"unstaking-fee-lamp"`
}

// RewardParams selects the mint and type of one reward track.
type RewardParams struct {
	Mint gem.Address
	Type schedule.RewardType
}

// InitParams are the parameters of InitFarm.
type InitParams struct {
	Config  Config
	RewardA RewardParams
	RewardB RewardParams
}

// Farm is the stored farm record. Staking totals live in globalstats.
type Farm struct {
	Manager     gem.Address
	Bank        gem.Address
	Treasury    gem.Address
	Funders     []gem.Address
	Config      Config
	Rewards     [2]schedule.Schedule
	FarmerCount uint64
}

func (f *Farm) IsEmpty() bool {
	return f == nil || f.Manager.IsZero()
}

// IsFunder returns whether addr may fund the farm's rewards.
func (f *Farm) IsFunder(addr gem.Address) bool {
	return slices.Contains(f.Funders, addr)
}

// Schedule returns the schedule of track.
func (f *Farm) Schedule(track schedule.Track) (*schedule.Schedule, error) {
	if !track.Valid() {
		return nil, reverts.Wrapf(reverts.ErrInvalidParameter, "unknown reward track %d", track)
	}
	return &f.Rewards[track], nil
}

// Track returns the track paying mint.
func (f *Farm) Track(mint gem.Address) (schedule.Track, error) {
	for _, track := range schedule.Tracks {
		if f.Rewards[track].RewardMint == mint {
			return track, nil
		}
	}
	return 0, reverts.Wrapf(reverts.ErrNotFound, "no reward track pays %s", mint)
}

// BankID derives the bank owned by farm.
func BankID(farm gem.Address) gem.Address {
	return gem.DeriveAddress([]byte("bank"), farm.Bytes())
}

// TreasuryID derives the account collecting the unstaking fees of farm.
func TreasuryID(farm gem.Address) gem.Address {
	return gem.DeriveAddress([]byte("treasury"), farm.Bytes())
}

// PotID derives the account holding the rewards of mint in farm.
func PotID(farm, mint gem.Address) gem.Address {
	return gem.DeriveAddress([]byte("reward-pot"), farm.Bytes(), mint.Bytes())
}
