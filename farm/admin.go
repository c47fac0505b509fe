// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"slices"

	"github.com/vechain/gemfarm/farm/farmer"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

// InitFarm creates farm id managed by manager, together with its bank.
func (c *Controller) InitFarm(id, manager gem.Address, params InitParams) error {
	logger.Debug("initializing farm", "farm", id, "manager", manager)

	err := c.transact("init_farm", func() error {
		if id.IsZero() || manager.IsZero() {
			return reverts.Wrapf(reverts.ErrInvalidParameter, "zero farm or manager")
		}
		if params.RewardA.Mint == params.RewardB.Mint {
			return reverts.Wrapf(reverts.ErrInvalidParameter, "reward tracks share mint %s", params.RewardA.Mint)
		}
		existing, err := c.farms.Get(id)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return reverts.Wrapf(reverts.ErrAlreadyExists, "farm %s", id)
		}

		f := &Farm{
			Manager:  manager,
			Bank:     BankID(id),
			Treasury: TreasuryID(id),
			Config:   params.Config,
		}
		for track, p := range [...]RewardParams{params.RewardA, params.RewardB} {
			sched, err := schedule.New(p.Mint, p.Type)
			if err != nil {
				return err
			}
			f.Rewards[track] = *sched
		}
		// the farm itself manages its bank
		if err := c.bankService.InitBank(f.Bank, id); err != nil {
			return err
		}

		count, err := c.farmCount.Get()
		if err != nil {
			return err
		}
		if err := c.farmIndex.Set(indexKey(count), id); err != nil {
			return err
		}
		if _, err := c.farmCount.Add(1); err != nil {
			return err
		}
		return c.setFarm(id, f)
	})
	if err != nil {
		logger.Info("init farm failed", "farm", id, "error", err)
		return err
	}

	logger.Info("initialized farm", "farm", id, "bank", BankID(id))
	return nil
}

// AuthorizeFunder allows funder to fund the rewards of the farm.
func (c *Controller) AuthorizeFunder(farmID, caller, funder gem.Address) error {
	logger.Debug("authorizing funder", "farm", farmID, "funder", funder)

	err := c.transact("authorize_funder", func() error {
		f, err := c.getManagedFarm(farmID, caller)
		if err != nil {
			return err
		}
		if funder.IsZero() {
			return reverts.Wrapf(reverts.ErrInvalidParameter, "zero funder")
		}
		if f.IsFunder(funder) {
			return reverts.Wrapf(reverts.ErrAlreadyExists, "funder %s", funder)
		}
		f.Funders = append(f.Funders, funder)
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("authorize funder failed", "farm", farmID, "funder", funder, "error", err)
		return err
	}

	logger.Info("authorized funder", "farm", farmID, "funder", funder)
	return nil
}

// DeauthorizeFunder revokes a funder. Funds already deposited stay in the pot.
func (c *Controller) DeauthorizeFunder(farmID, caller, funder gem.Address) error {
	logger.Debug("deauthorizing funder", "farm", farmID, "funder", funder)

	err := c.transact("deauthorize_funder", func() error {
		f, err := c.getManagedFarm(farmID, caller)
		if err != nil {
			return err
		}
		i := slices.Index(f.Funders, funder)
		if i < 0 {
			return reverts.Wrapf(reverts.ErrNotFound, "funder %s", funder)
		}
		f.Funders = slices.Delete(f.Funders, i, i+1)
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("deauthorize funder failed", "farm", farmID, "funder", funder, "error", err)
		return err
	}

	logger.Info("deauthorized funder", "farm", farmID, "funder", funder)
	return nil
}

// FundReward moves amount from the funder into the reward pot of track and
// opens a new reward window starting at now.
func (c *Controller) FundReward(
	farmID, funder gem.Address,
	track schedule.Track,
	amount uint64,
	cfg schedule.FixedRateConfig,
	now uint64,
) error {
	logger.Debug("funding reward", "farm", farmID, "funder", funder, "track", track, "amount", amount)

	err := c.transact("fund_reward", func() error {
		f, err := c.getFarm(farmID)
		if err != nil {
			return err
		}
		if !f.IsFunder(funder) {
			return reverts.Wrapf(reverts.ErrUnauthorized, "%s is not an authorized funder", funder)
		}
		if amount == 0 {
			return reverts.Wrapf(reverts.ErrInvalidParameter, "zero amount")
		}
		sched, err := f.Schedule(track)
		if err != nil {
			return err
		}
		if err := sched.Fund(funder, amount, cfg, now); err != nil {
			return err
		}
		if err := c.custody.TransferIn(PotID(farmID, sched.RewardMint), sched.RewardMint, amount, funder); err != nil {
			return err
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("fund reward failed", "farm", farmID, "track", track, "error", err)
		return err
	}

	logger.Info("funded reward", "farm", farmID, "track", track, "amount", amount)
	return nil
}

// CancelReward ends the window of track at now and refunds the part of the
// pot not owed to farmers to the last funder.
func (c *Controller) CancelReward(farmID, caller gem.Address, track schedule.Track, now uint64) (uint64, error) {
	logger.Debug("cancelling reward", "farm", farmID, "track", track)

	var refund uint64
	err := c.transact("cancel_reward", func() error {
		f, err := c.getManagedFarm(farmID, caller)
		if err != nil {
			return err
		}
		sched, err := f.Schedule(track)
		if err != nil {
			return err
		}
		if refund, err = sched.Cancel(now); err != nil {
			return err
		}
		if refund > 0 {
			if err := c.custody.TransferOut(PotID(farmID, sched.RewardMint), sched.RewardMint, refund, sched.Funder); err != nil {
				return err
			}
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("cancel reward failed", "farm", farmID, "track", track, "error", err)
		return 0, err
	}

	logger.Info("cancelled reward", "farm", farmID, "track", track, "refund", refund)
	return refund, nil
}

// LockReward makes the schedule of track immutable until its window ends.
func (c *Controller) LockReward(farmID, caller gem.Address, track schedule.Track) error {
	logger.Debug("locking reward", "farm", farmID, "track", track)

	err := c.transact("lock_reward", func() error {
		f, err := c.getManagedFarm(farmID, caller)
		if err != nil {
			return err
		}
		sched, err := f.Schedule(track)
		if err != nil {
			return err
		}
		if err := sched.Lock(); err != nil {
			return err
		}
		return c.setFarm(farmID, f)
	})
	if err != nil {
		logger.Info("lock reward failed", "farm", farmID, "track", track, "error", err)
		return err
	}

	logger.Info("locked reward", "farm", farmID, "track", track)
	return nil
}

// SetVaultLock lets the manager lock or unlock any vault of the farm's bank.
// Vaults of participating farmers cannot be unlocked.
func (c *Controller) SetVaultLock(farmID, caller, vaultID gem.Address, locked bool) error {
	logger.Debug("setting vault lock", "farm", farmID, "vault", vaultID, "locked", locked)

	err := c.transact("set_vault_lock", func() error {
		f, err := c.getManagedFarm(farmID, caller)
		if err != nil {
			return err
		}
		if !locked {
			vault, err := c.bankService.GetVault(vaultID)
			if err != nil {
				return err
			}
			fr, err := c.farmerService.Get(farmer.ID(farmID, vault.Owner))
			if err == nil && fr.Participating() {
				return reverts.Wrapf(reverts.ErrInvalidState, "vault %s backs a %s farmer", vaultID, fr.State)
			}
			if err != nil && !reverts.IsRevertErr(err) {
				return err
			}
		}
		return c.bankService.SetVaultLock(f.Bank, vaultID, farmID, locked)
	})
	if err != nil {
		logger.Info("set vault lock failed", "farm", farmID, "vault", vaultID, "error", err)
		return err
	}

	logger.Info("set vault lock", "farm", farmID, "vault", vaultID, "locked", locked)
	return nil
}
