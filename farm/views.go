// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/vechain/gemfarm/bank"
	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm/farmer"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

type PeriodView struct {
	Rate        uint64 `json:"rate"`
	DurationSec uint64 `json:"durationSec"`
}

type ScheduleView struct {
	Track                 string       `json:"track"`
	RewardMint            gem.Address  `json:"rewardMint"`
	RewardType            string       `json:"rewardType"`
	Status                string       `json:"status"`
	Funder                gem.Address  `json:"funder"`
	Pot                   gem.Address  `json:"pot"`
	NetRewardFunding      uint64       `json:"netRewardFunding"`
	RewardPot             uint64       `json:"rewardPot"`
	PaidOutReward         uint64       `json:"paidOutReward"`
	Periods               []PeriodView `json:"periods"`
	GemsFunded            uint64       `json:"gemsFunded"`
	RewardDurationSec     uint64       `json:"rewardDurationSec"`
	RewardBeginTs         uint64       `json:"rewardBeginTs"`
	RewardEndTs           uint64       `json:"rewardEndTs"`
	LockEndTs             uint64       `json:"lockEndTs"`
	LastUpdatedTs         uint64       `json:"lastUpdatedTs"`
	AccruedRewardPerGem   uint64       `json:"accruedRewardPerGem"`
	Round                 uint64       `json:"round"`
	GemsParticipating     uint64       `json:"gemsParticipating"`
	GemsMadeWhole         uint64       `json:"gemsMadeWhole"`
	TotalAccruedToStakers uint64       `json:"totalAccruedToStakers"`
}

type FarmView struct {
	ID                gem.Address   `json:"id"`
	Manager           gem.Address   `json:"manager"`
	Bank              gem.Address   `json:"bank"`
	Treasury          gem.Address   `json:"treasury"`
	AuthorizedFunders []gem.Address `json:"authorizedFunders"`
	Config            Config        `json:"config"`
	RewardA           ScheduleView  `json:"rewardA"`
	RewardB           ScheduleView  `json:"rewardB"`
	GemsStaked        uint64        `json:"gemsStaked"`
	StakedFarmerCount uint64        `json:"stakedFarmerCount"`
	FarmerCount       uint64        `json:"farmerCount"`
}

type RewardView struct {
	AccruedReward            uint64 `json:"accruedReward"`
	PaidOutReward            uint64 `json:"paidOutReward"`
	Outstanding              uint64 `json:"outstanding"`
	LastRecordedRewardPerGem uint64 `json:"lastRecordedRewardPerGem"`
}

type FarmerView struct {
	ID               gem.Address `json:"id"`
	Farm             gem.Address `json:"farm"`
	Identity         gem.Address `json:"identity"`
	Vault            gem.Address `json:"vault"`
	State            string      `json:"state"`
	GemsStaked       uint64      `json:"gemsStaked"`
	MinStakingEndsTs uint64      `json:"minStakingEndsTs"`
	CooldownEndsTs   uint64      `json:"cooldownEndsTs"`
	RewardA          RewardView  `json:"rewardA"`
	RewardB          RewardView  `json:"rewardB"`
}

type GemBoxView struct {
	Mint   gem.Address `json:"mint"`
	Amount uint64      `json:"amount"`
}

type VaultView struct {
	ID       gem.Address  `json:"id"`
	Bank     gem.Address  `json:"bank"`
	Owner    gem.Address  `json:"owner"`
	Creator  gem.Address  `json:"creator"`
	Locked   bool         `json:"locked"`
	GemCount uint64       `json:"gemCount"`
	GemBoxes []GemBoxView `json:"gemBoxes"`
}

func newScheduleView(farmID gem.Address, track schedule.Track, s *schedule.Schedule) ScheduleView {
	periods := make([]PeriodView, 0, len(s.Periods))
	for _, p := range s.Periods {
		periods = append(periods, PeriodView{Rate: p.Rate, DurationSec: p.DurationSec})
	}
	return ScheduleView{
		Track:                 track.String(),
		RewardMint:            s.RewardMint,
		RewardType:            s.RewardType.String(),
		Status:                s.Status.String(),
		Funder:                s.Funder,
		Pot:                   PotID(farmID, s.RewardMint),
		NetRewardFunding:      s.NetRewardFunding,
		RewardPot:             s.RewardPot,
		PaidOutReward:         s.PaidOutReward,
		Periods:               periods,
		GemsFunded:            s.GemsFunded,
		RewardDurationSec:     s.RewardDurationSec,
		RewardBeginTs:         s.RewardBeginTs,
		RewardEndTs:           s.RewardEndTs,
		LockEndTs:             s.LockEndTs,
		LastUpdatedTs:         s.LastUpdatedTs,
		AccruedRewardPerGem:   s.AccruedRewardPerGem,
		Round:                 s.Round,
		GemsParticipating:     s.Tracker.GemsParticipating,
		GemsMadeWhole:         s.Tracker.GemsMadeWhole,
		TotalAccruedToStakers: s.Tracker.TotalAccruedToStakers,
	}
}

func newRewardView(r *schedule.FarmerReward) RewardView {
	return RewardView{
		AccruedReward:            r.AccruedReward,
		PaidOutReward:            r.PaidOutReward,
		Outstanding:              r.Outstanding(),
		LastRecordedRewardPerGem: r.LastRecordedRewardPerGem,
	}
}

func newVaultView(id gem.Address, v *bank.Vault) VaultView {
	boxes := make([]GemBoxView, 0, len(v.GemBoxes))
	for _, box := range v.GemBoxes {
		boxes = append(boxes, GemBoxView{Mint: box.Mint, Amount: box.Amount})
	}
	return VaultView{
		ID:       id,
		Bank:     v.Bank,
		Owner:    v.Owner,
		Creator:  v.Creator,
		Locked:   v.Locked,
		GemCount: v.GemCount,
		GemBoxes: boxes,
	}
}

// Farm returns a snapshot of the farm.
func (c *Controller) Farm(id gem.Address) (view FarmView, err error) {
	err = c.view(func() error {
		f, err := c.getFarm(id)
		if err != nil {
			return err
		}
		stats := c.stats(id)
		gemsStaked, err := stats.GemsStaked()
		if err != nil {
			return err
		}
		stakedFarmers, err := stats.StakedFarmerCount()
		if err != nil {
			return err
		}
		view = FarmView{
			ID:                id,
			Manager:           f.Manager,
			Bank:              f.Bank,
			Treasury:          f.Treasury,
			AuthorizedFunders: append([]gem.Address{}, f.Funders...),
			Config:            f.Config,
			RewardA:           newScheduleView(id, schedule.RewardA, &f.Rewards[schedule.RewardA]),
			RewardB:           newScheduleView(id, schedule.RewardB, &f.Rewards[schedule.RewardB]),
			GemsStaked:        gemsStaked,
			StakedFarmerCount: stakedFarmers,
			FarmerCount:       f.FarmerCount,
		}
		return nil
	})
	return
}

// Farmer returns a snapshot of the farmer of identity in farm.
func (c *Controller) Farmer(farmID, identity gem.Address) (view FarmerView, err error) {
	err = c.view(func() error {
		_, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}
		view = FarmerView{
			ID:               farmer.ID(farmID, identity),
			Farm:             fr.Farm,
			Identity:         fr.Identity,
			Vault:            fr.Vault,
			State:            fr.State.String(),
			GemsStaked:       fr.GemsStaked,
			MinStakingEndsTs: fr.MinStakingEndsTs,
			CooldownEndsTs:   fr.CooldownEndsTs,
			RewardA:          newRewardView(fr.Reward(schedule.RewardA)),
			RewardB:          newRewardView(fr.Reward(schedule.RewardB)),
		}
		return nil
	})
	return
}

// Vault returns a snapshot of the vault.
func (c *Controller) Vault(id gem.Address) (view VaultView, err error) {
	err = c.view(func() error {
		v, err := c.bankService.GetVault(id)
		if err != nil {
			return err
		}
		view = newVaultView(id, v)
		return nil
	})
	return
}

// Farms lists the ids of all farms in creation order.
func (c *Controller) Farms() (ids []gem.Address, err error) {
	err = c.view(func() error {
		count, err := c.farmCount.Get()
		if err != nil {
			return err
		}
		ids = make([]gem.Address, 0, count)
		for i := uint64(0); i < count; i++ {
			id, err := c.farmIndex.Get(indexKey(i))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	return
}

// Farmers lists the identities registered in farm in registration order.
func (c *Controller) Farmers(farmID gem.Address) (identities []gem.Address, err error) {
	err = c.view(func() error {
		f, err := c.getFarm(farmID)
		if err != nil {
			return err
		}
		identities = make([]gem.Address, 0, f.FarmerCount)
		for i := uint64(0); i < f.FarmerCount; i++ {
			identity, err := c.farmerIndex.Get(farmerIndexKey{farmID, i})
			if err != nil {
				return err
			}
			identities = append(identities, identity)
		}
		return nil
	})
	return
}

// BalanceOf returns the custody balance of owner. It requires a custody ledger.
func (c *Controller) BalanceOf(owner, mint gem.Address) (balance uint64, err error) {
	ledger, ok := c.custody.(custody.Ledger)
	if !ok {
		return 0, reverts.Wrapf(reverts.ErrInvalidState, "custody cannot report balances")
	}
	err = c.view(func() error {
		balance, err = ledger.BalanceOf(owner, mint)
		return err
	})
	return
}

// TrackOf returns the track of farm paying mint.
func (c *Controller) TrackOf(farmID, mint gem.Address) (track schedule.Track, err error) {
	err = c.view(func() error {
		f, err := c.getFarm(farmID)
		if err != nil {
			return err
		}
		track, err = f.Track(mint)
		return err
	})
	return
}
