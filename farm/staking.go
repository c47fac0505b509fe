// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm/farmer"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

// InitFarmer registers identity in the farm and creates its vault.
func (c *Controller) InitFarmer(farmID, identity, payer gem.Address) (farmerID, vaultID gem.Address, err error) {
	logger.Debug("initializing farmer", "farm", farmID, "identity", identity)

	err = c.transact("init_farmer", func() error {
		f, err := c.getFarm(farmID)
		if err != nil {
			return err
		}
		if vaultID, err = c.bankService.CreateVault(f.Bank, identity, payer); err != nil {
			return err
		}
		if farmerID, err = c.farmerService.Add(farmID, identity, vaultID); err != nil {
			return err
		}
		if err := c.farmerIndex.Set(farmerIndexKey{farmID, f.FarmerCount}, identity); err != nil {
			return err
		}
		if f.FarmerCount, err = gem.SafeAdd(f.FarmerCount, 1); err != nil {
			return err
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("init farmer failed", "farm", farmID, "identity", identity, "error", err)
		return gem.Address{}, gem.Address{}, err
	}

	logger.Info("initialized farmer", "farm", farmID, "farmer", farmerID, "vault", vaultID)
	return farmerID, vaultID, nil
}

// Deposit moves amount of mint from identity into its vault.
func (c *Controller) Deposit(farmID, identity, mint gem.Address, amount uint64) error {
	logger.Debug("depositing gems", "farm", farmID, "identity", identity, "mint", mint, "amount", amount)

	err := c.transact("deposit", func() error {
		_, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}
		return c.bankService.Deposit(fr.Vault, identity, mint, amount, identity)
	})
	if err != nil {
		logger.Info("deposit failed", "farm", farmID, "identity", identity, "error", err)
		return err
	}

	logger.Info("deposited gems", "farm", farmID, "identity", identity, "amount", amount)
	return nil
}

// Withdraw moves amount of mint from the vault of identity back to identity.
func (c *Controller) Withdraw(farmID, identity, mint gem.Address, amount uint64) error {
	logger.Debug("withdrawing gems", "farm", farmID, "identity", identity, "mint", mint, "amount", amount)

	err := c.transact("withdraw", func() error {
		_, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}
		return c.bankService.Withdraw(fr.Vault, identity, mint, amount, identity)
	})
	if err != nil {
		logger.Info("withdraw failed", "farm", farmID, "identity", identity, "error", err)
		return err
	}

	logger.Info("withdrew gems", "farm", farmID, "identity", identity, "amount", amount)
	return nil
}

// refresh brings both schedules and the farmer's rewards up to now.
func refresh(f *Farm, fr *farmer.Farmer, now uint64) error {
	for _, track := range schedule.Tracks {
		if _, err := f.Rewards[track].RefreshFarmer(fr.Reward(track), fr.GemsStaked, now); err != nil {
			return err
		}
	}
	return nil
}

// Stake locks the vault of identity and registers its gems with both schedules.
func (c *Controller) Stake(farmID, identity gem.Address, now uint64) error {
	logger.Debug("staking", "farm", farmID, "identity", identity)

	var gems uint64
	err := c.transact("stake", func() error {
		f, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}
		if fr.State != farmer.StateUnstaked {
			return reverts.Wrapf(reverts.ErrInvalidState, "farmer is %s", fr.State)
		}
		vault, err := c.bankService.GetVault(fr.Vault)
		if err != nil {
			return err
		}
		gems = vault.GemCount

		minStakingEnds, err := gem.SafeAdd(now, f.Config.MinStakingPeriodSec)
		if err != nil {
			return err
		}
		if err := fr.BeginStaking(gems, minStakingEnds); err != nil {
			return err
		}
		if err := c.bankService.Lock(fr.Vault); err != nil {
			return err
		}
		for _, track := range schedule.Tracks {
			if err := f.Rewards[track].Join(fr.Reward(track), gems, now); err != nil {
				return err
			}
		}
		if err := c.stats(farmID).AddStake(gems); err != nil {
			return err
		}
		if err := c.setFarmer(fr); err != nil {
			return err
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("stake failed", "farm", farmID, "identity", identity, "error", err)
		return err
	}

	_ = c.view(func() error {
		c.publishGemsStaked(farmID)
		return nil
	})
	logger.Info("staked", "farm", farmID, "identity", identity, "gems", gems)
	return nil
}

// Unstake is a two call protocol. The first call starts the cooldown and
// charges the unstaking fee, the second one, once the cooldown elapsed,
// releases the gems and unlocks the vault. It returns the resulting state.
func (c *Controller) Unstake(farmID, identity gem.Address, now uint64) (farmer.State, error) {
	logger.Debug("unstaking", "farm", farmID, "identity", identity)

	var next farmer.State
	err := c.transact("unstake", func() error {
		f, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}

		switch fr.State {
		case farmer.StateStaked:
			if err := fr.BeginCooldown(now, f.Config.CooldownPeriodSec); err != nil {
				return err
			}
			if fee := f.Config.UnstakingFeeLamp; fee > 0 {
				if err := c.custody.TransferIn(f.Treasury, custody.NativeMint, fee, identity); err != nil {
					return err
				}
			}
		case farmer.StatePendingCooldown:
			if now < fr.CooldownEndsTs {
				return reverts.Wrapf(reverts.ErrCooldownNotElapsed, "cooling down until %d", fr.CooldownEndsTs)
			}
			if err := refresh(f, fr, now); err != nil {
				return err
			}
			for _, track := range schedule.Tracks {
				if err := f.Rewards[track].Leave(fr.Reward(track), fr.GemsStaked); err != nil {
					return err
				}
			}
			gems, err := fr.EndCooldown(now)
			if err != nil {
				return err
			}
			if err := c.stats(farmID).RemoveStake(gems); err != nil {
				return err
			}
			if err := c.bankService.Unlock(fr.Vault); err != nil {
				return err
			}
			if err := c.setFarm(farmID, f); err != nil {
				return err
			}
		default:
			return reverts.Wrapf(reverts.ErrNotParticipating, "farmer is %s", fr.State)
		}

		next = fr.State
		return c.setFarmer(fr)
	})
	if err != nil {
		logger.Info("unstake failed", "farm", farmID, "identity", identity, "error", err)
		return 0, err
	}

	if next == farmer.StateUnstaked {
		_ = c.view(func() error {
			c.publishGemsStaked(farmID)
			return nil
		})
	}
	logger.Info("unstaked", "farm", farmID, "identity", identity, "state", next)
	return next, nil
}

// RefreshFarmer credits the farmer with everything accrued up to now.
func (c *Controller) RefreshFarmer(farmID, identity gem.Address, now uint64) error {
	logger.Debug("refreshing farmer", "farm", farmID, "identity", identity)

	err := c.transact("refresh_farmer", func() error {
		f, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}
		if !fr.Participating() {
			return reverts.Wrapf(reverts.ErrNotParticipating, "farmer is %s", fr.State)
		}
		if err := refresh(f, fr, now); err != nil {
			return err
		}
		if err := c.setFarmer(fr); err != nil {
			return err
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("refresh farmer failed", "farm", farmID, "identity", identity, "error", err)
		return err
	}

	logger.Info("refreshed farmer", "farm", farmID, "identity", identity)
	return nil
}

// ClaimReward pays identity its outstanding reward of track, bounded by the
// pot. Participating farmers are refreshed first.
func (c *Controller) ClaimReward(farmID, identity gem.Address, track schedule.Track, now uint64) (uint64, error) {
	logger.Debug("claiming reward", "farm", farmID, "identity", identity, "track", track)

	var amount uint64
	err := c.transact("claim_reward", func() error {
		f, fr, err := c.getFarmer(farmID, identity)
		if err != nil {
			return err
		}
		sched, err := f.Schedule(track)
		if err != nil {
			return err
		}
		if fr.Participating() {
			if err := refresh(f, fr, now); err != nil {
				return err
			}
		}
		amount = sched.Claim(fr.Reward(track))
		if amount > 0 {
			if err := c.custody.TransferOut(PotID(farmID, sched.RewardMint), sched.RewardMint, amount, identity); err != nil {
				return err
			}
		}
		if err := c.setFarmer(fr); err != nil {
			return err
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("claim reward failed", "farm", farmID, "identity", identity, "error", err)
		return 0, err
	}

	logger.Info("claimed reward", "farm", farmID, "identity", identity, "track", track, "amount", amount)
	return amount, nil
}

// Mint credits amount of mint to owner. It requires a custody ledger.
func (c *Controller) Mint(owner, mint gem.Address, amount uint64) error {
	ledger, ok := c.custody.(custody.Ledger)
	if !ok {
		return reverts.Wrapf(reverts.ErrInvalidState, "custody cannot mint")
	}
	err := c.transact("mint", func() error {
		return ledger.Mint(owner, mint, amount)
	})
	if err != nil {
		logger.Info("mint failed", "owner", owner, "mint", mint, "error", err)
		return err
	}
	logger.Debug("minted", "owner", owner, "mint", mint, "amount", amount)
	return nil
}
