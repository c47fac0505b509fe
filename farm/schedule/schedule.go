// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"fmt"
	"strings"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

// Track selects one of the two reward schedules of a farm.
type Track uint8

const (
	RewardA Track = iota
	RewardB
)

// Tracks lists every track in order.
var Tracks = [...]Track{RewardA, RewardB}

func (t Track) String() string {
	switch t {
	case RewardA:
		return "rewardA"
	case RewardB:
		return "rewardB"
	default:
		return fmt.Sprintf("Track(%d)", uint8(t))
	}
}

// ParseTrack parses "rewardA" / "rewardB", case insensitive, also accepting "a" and "b".
func ParseTrack(s string) (Track, error) {
	switch strings.ToLower(s) {
	case "rewarda", "a":
		return RewardA, nil
	case "rewardb", "b":
		return RewardB, nil
	}
	return 0, reverts.Wrapf(reverts.ErrInvalidParameter, "unknown reward track %q", s)
}

// Valid reports whether t names an existing track.
func (t Track) Valid() bool {
	return t <= RewardB
}

type RewardType uint8

const (
	Fixed RewardType = iota
	Variable
)

func (r RewardType) String() string {
	switch r {
	case Fixed:
		return "fixed"
	case Variable:
		return "variable"
	default:
		return fmt.Sprintf("RewardType(%d)", uint8(r))
	}
}

type Status uint8

const (
	StatusUnfunded Status = iota
	StatusFunded
	StatusCancelled
	StatusLocked
)

func (s Status) String() string {
	switch s {
	case StatusUnfunded:
		return "unfunded"
	case StatusFunded:
		return "funded"
	case StatusCancelled:
		return "cancelled"
	case StatusLocked:
		return "locked"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// PeriodConfig is a constant rate, per gem per second, held for DurationSec.
type PeriodConfig struct {
	Rate        uint64
	DurationSec uint64
}

// FixedRateConfig is the curve of one funding round.
type FixedRateConfig struct {
	Periods    [3]PeriodConfig
	GemsFunded uint64
}

// Duration returns the sum of the period durations.
func (c *FixedRateConfig) Duration() (uint64, error) {
	var total uint64
	for _, p := range c.Periods {
		var err error
		if total, err = gem.SafeAdd(total, p.DurationSec); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// RewardPerGem returns sum(rate * duration) over the periods.
func (c *FixedRateConfig) RewardPerGem() (uint64, error) {
	var total uint64
	for _, p := range c.Periods {
		amount, err := gem.SafeMul(p.Rate, p.DurationSec)
		if err != nil {
			return 0, err
		}
		if total, err = gem.SafeAdd(total, amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Tracker holds the participation totals of a schedule.
type Tracker struct {
	GemsParticipating     uint64
	GemsMadeWhole         uint64
	TotalAccruedToStakers uint64
}

// FarmerReward is the per track reward record of one farmer.
type FarmerReward struct {
	AccruedReward            uint64
	PaidOutReward            uint64
	LastRecordedRewardPerGem uint64
	MadeWholeRound           uint64
}

// Outstanding returns the accrued reward not yet paid out.
func (r *FarmerReward) Outstanding() uint64 {
	return gem.SaturatingSub(r.AccruedReward, r.PaidOutReward)
}

// Schedule is one fixed-rate reward track of a farm.
type Schedule struct {
	RewardMint          gem.Address
	RewardType          RewardType
	Funder              gem.Address
	NetRewardFunding    uint64
	RewardPot           uint64
	PaidOutReward       uint64
	Periods             [3]PeriodConfig
	GemsFunded          uint64
	RewardDurationSec   uint64
	RewardBeginTs       uint64
	RewardEndTs         uint64
	LockEndTs           uint64
	LastUpdatedTs       uint64
	AccruedRewardPerGem uint64
	Round               uint64
	Status              Status
	Tracker             Tracker
}

// New returns an unfunded schedule.
func New(mint gem.Address, rewardType RewardType) (*Schedule, error) {
	if rewardType != Fixed {
		return nil, reverts.Wrapf(reverts.ErrInvalidParameter, "%s reward is not supported", rewardType)
	}
	return &Schedule{RewardMint: mint, RewardType: rewardType}, nil
}

func (s *Schedule) config() *FixedRateConfig {
	return &FixedRateConfig{Periods: s.Periods, GemsFunded: s.GemsFunded}
}

// TotalRewardPerGem returns the reward a gem earns over the whole current window.
func (s *Schedule) TotalRewardPerGem() (uint64, error) {
	return s.config().RewardPerGem()
}

// RewardPerGem integrates the rate curve over [from, to), clipped to the current window.
func (s *Schedule) RewardPerGem(from, to uint64) (uint64, error) {
	from = max(from, s.RewardBeginTs)
	to = min(to, s.RewardEndTs)
	if to <= from {
		return 0, nil
	}

	var (
		total uint64
		start = s.RewardBeginTs
	)
	for _, p := range s.Periods {
		end, err := gem.SafeAdd(start, p.DurationSec)
		if err != nil {
			return 0, err
		}
		if lo, hi := max(from, start), min(to, end); hi > lo {
			amount, err := gem.SafeMul(p.Rate, hi-lo)
			if err != nil {
				return 0, err
			}
			if total, err = gem.SafeAdd(total, amount); err != nil {
				return 0, err
			}
		}
		start = end
	}
	return total, nil
}

// RewardAmount returns the reward gems earn over [from, to).
func (s *Schedule) RewardAmount(from, to, gems uint64) (uint64, error) {
	perGem, err := s.RewardPerGem(from, to)
	if err != nil {
		return 0, err
	}
	return gem.SafeMul(perGem, gems)
}

// RequiredFunding returns the funding needed to pay the whole window to the
// currently participating gems. GemsFunded is informational only.
func (s *Schedule) RequiredFunding() (uint64, error) {
	perGem, err := s.TotalRewardPerGem()
	if err != nil {
		return 0, err
	}
	return gem.SafeMul(perGem, s.Tracker.GemsParticipating)
}

// IsLocked returns whether the schedule is immutable.
func (s *Schedule) IsLocked() bool {
	return s.LockEndTs > 0 || s.Status == StatusLocked
}

// Refresh advances the cumulative per gem accrual up to min(now, rewardEndTs).
func (s *Schedule) Refresh(now uint64) error {
	upper := min(now, s.RewardEndTs)
	if upper <= s.LastUpdatedTs {
		return nil
	}

	delta, err := s.RewardPerGem(s.LastUpdatedTs, upper)
	if err != nil {
		return err
	}
	accrued, err := gem.SafeAdd(s.AccruedRewardPerGem, delta)
	if err != nil {
		return err
	}
	newly, err := gem.SafeMul(delta, s.Tracker.GemsParticipating)
	if err != nil {
		return err
	}
	total, err := gem.SafeAdd(s.Tracker.TotalAccruedToStakers, newly)
	if err != nil {
		return err
	}

	s.AccruedRewardPerGem = accrued
	s.Tracker.TotalAccruedToStakers = total
	s.LastUpdatedTs = upper
	return nil
}

func (s *Schedule) windowClosed(now uint64) bool {
	return s.Round > 0 && now >= s.RewardEndTs
}

// RefreshFarmer refreshes the schedule and credits gems with their share of
// everything accrued since the farmer was last recorded. It returns the newly
// credited amount.
func (s *Schedule) RefreshFarmer(reward *FarmerReward, gems, now uint64) (uint64, error) {
	if err := s.Refresh(now); err != nil {
		return 0, err
	}

	perGem, err := gem.SafeSub(s.AccruedRewardPerGem, reward.LastRecordedRewardPerGem)
	if err != nil {
		return 0, err
	}
	newly, err := gem.SafeMul(perGem, gems)
	if err != nil {
		return 0, err
	}
	accrued, err := gem.SafeAdd(reward.AccruedReward, newly)
	if err != nil {
		return 0, err
	}

	madeWhole := s.Tracker.GemsMadeWhole
	if gems > 0 && s.windowClosed(now) && reward.MadeWholeRound != s.Round {
		if madeWhole, err = gem.SafeAdd(madeWhole, gems); err != nil {
			return 0, err
		}
		reward.MadeWholeRound = s.Round
	}

	s.Tracker.GemsMadeWhole = madeWhole
	reward.AccruedReward = accrued
	reward.LastRecordedRewardPerGem = s.AccruedRewardPerGem
	return newly, nil
}

// AddGems registers newly participating gems.
func (s *Schedule) AddGems(gems uint64) error {
	participating, err := gem.SafeAdd(s.Tracker.GemsParticipating, gems)
	if err != nil {
		return err
	}
	s.Tracker.GemsParticipating = participating
	return nil
}

// RemoveGems deregisters gems; madeWhole tells whether they were counted as whole this round.
func (s *Schedule) RemoveGems(gems uint64, madeWhole bool) error {
	participating, err := gem.SafeSub(s.Tracker.GemsParticipating, gems)
	if err != nil {
		return err
	}
	whole := s.Tracker.GemsMadeWhole
	if madeWhole {
		if whole, err = gem.SafeSub(whole, gems); err != nil {
			return err
		}
	}
	s.Tracker.GemsParticipating = participating
	s.Tracker.GemsMadeWhole = whole
	return nil
}

// Join registers a farmer's gems at now. The farmer starts from the current
// cumulative value, so it earns nothing for time before it joined.
func (s *Schedule) Join(reward *FarmerReward, gems, now uint64) error {
	if err := s.Refresh(now); err != nil {
		return err
	}
	if err := s.AddGems(gems); err != nil {
		return err
	}
	reward.LastRecordedRewardPerGem = s.AccruedRewardPerGem
	reward.MadeWholeRound = 0
	if s.windowClosed(now) {
		// nothing left to accrue in this round
		whole, err := gem.SafeAdd(s.Tracker.GemsMadeWhole, gems)
		if err != nil {
			return err
		}
		s.Tracker.GemsMadeWhole = whole
		reward.MadeWholeRound = s.Round
	}
	return nil
}

// Leave deregisters a farmer's gems. The farmer must be refreshed at now first.
func (s *Schedule) Leave(reward *FarmerReward, gems uint64) error {
	return s.RemoveGems(gems, s.Round > 0 && reward.MadeWholeRound == s.Round)
}

// Fund adds amount to the schedule and opens a new window starting at now.
func (s *Schedule) Fund(funder gem.Address, amount uint64, cfg FixedRateConfig, now uint64) error {
	if s.IsLocked() {
		return reverts.Wrapf(reverts.ErrAlreadyLocked, "%s is locked until %d", s.RewardMint, s.LockEndTs)
	}
	duration, err := cfg.Duration()
	if err != nil {
		return err
	}
	if duration == 0 {
		return reverts.Wrapf(reverts.ErrInvalidParameter, "empty reward window")
	}
	if _, err := cfg.RewardPerGem(); err != nil {
		return err
	}
	end, err := gem.SafeAdd(now, duration)
	if err != nil {
		return err
	}

	// close the accrual of the previous window first
	if err := s.Refresh(now); err != nil {
		return err
	}
	funding, err := gem.SafeAdd(s.NetRewardFunding, amount)
	if err != nil {
		return err
	}
	pot, err := gem.SafeAdd(s.RewardPot, amount)
	if err != nil {
		return err
	}
	round, err := gem.SafeAdd(s.Round, 1)
	if err != nil {
		return err
	}

	s.Funder = funder
	s.NetRewardFunding = funding
	s.RewardPot = pot
	s.Periods = cfg.Periods
	s.GemsFunded = cfg.GemsFunded
	s.RewardDurationSec = duration
	s.RewardBeginTs = now
	s.RewardEndTs = end
	s.LastUpdatedTs = now
	s.Round = round
	s.Tracker.GemsMadeWhole = 0
	s.Status = StatusFunded
	return nil
}

// Cancel ends the window at now and returns the part of the pot not owed to
// stakers, which goes back to the funder. Accrued history stays untouched.
func (s *Schedule) Cancel(now uint64) (uint64, error) {
	if s.IsLocked() {
		return 0, reverts.Wrapf(reverts.ErrAlreadyLocked, "%s is locked until %d", s.RewardMint, s.LockEndTs)
	}
	if err := s.Refresh(now); err != nil {
		return 0, err
	}

	owed := gem.SaturatingSub(s.Tracker.TotalAccruedToStakers, s.PaidOutReward)
	refund := gem.SaturatingSub(s.RewardPot, owed)

	s.RewardPot -= refund
	s.NetRewardFunding = 0
	if s.RewardEndTs > now {
		s.RewardEndTs = max(now, s.RewardBeginTs)
	}
	s.Status = StatusCancelled
	return refund, nil
}

// Lock makes the schedule immutable until the end of the window. It requires
// enough funding for the whole window.
func (s *Schedule) Lock() error {
	if s.IsLocked() {
		return reverts.Wrapf(reverts.ErrAlreadyLocked, "%s is locked until %d", s.RewardMint, s.LockEndTs)
	}
	if s.Status != StatusFunded {
		return reverts.Wrapf(reverts.ErrInsufficientFunding, "%s has no funded window", s.Status)
	}
	required, err := s.RequiredFunding()
	if err != nil {
		return err
	}
	if s.NetRewardFunding < required {
		return reverts.Wrapf(reverts.ErrInsufficientFunding, "required %d, funded %d", required, s.NetRewardFunding)
	}

	s.LockEndTs = s.RewardEndTs
	s.Status = StatusLocked
	return nil
}

// Claim pays out the farmer's outstanding reward, bounded by the pot.
func (s *Schedule) Claim(reward *FarmerReward) uint64 {
	amount := min(reward.Outstanding(), s.RewardPot)

	reward.PaidOutReward += amount
	s.PaidOutReward += amount
	s.RewardPot -= amount
	return amount
}
