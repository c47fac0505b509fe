// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/store"
)

var (
	logger = log.WithContext("pkg", "bank")

	slotBanks  = store.Slot("banks")
	slotVaults = store.Slot("vaults")
)

// Service is the vault registry.
type Service struct {
	banks   *store.Mapping[gem.Address, *Bank]
	vaults  *store.Mapping[gem.Address, *Vault]
	custody custody.Service
}

func New(sctx *store.Context, custody custody.Service) *Service {
	return &Service{
		banks:   store.NewMapping[gem.Address, *Bank](sctx, slotBanks),
		vaults:  store.NewMapping[gem.Address, *Vault](sctx, slotVaults),
		custody: custody,
	}
}

// InitBank registers a bank managed by manager.
func (s *Service) InitBank(id, manager gem.Address) error {
	exists, err := s.banks.Exists(id)
	if err != nil {
		return errors.Wrap(err, "failed to get bank")
	}
	if exists {
		return reverts.Wrapf(reverts.ErrAlreadyExists, "bank %s", id)
	}
	if err := s.banks.Set(id, &Bank{Manager: manager}); err != nil {
		return errors.Wrap(err, "failed to set bank")
	}
	logger.Debug("bank initialized", "bank", id, "manager", manager)
	return nil
}

// GetBank returns the bank, failing with ErrNotFound if absent.
func (s *Service) GetBank(id gem.Address) (*Bank, error) {
	exists, err := s.banks.Exists(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bank")
	}
	if !exists {
		return nil, reverts.Wrapf(reverts.ErrNotFound, "bank %s", id)
	}
	bank, err := s.banks.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bank")
	}
	return bank, nil
}

// GetVault returns the vault, failing with ErrNotFound if absent.
func (s *Service) GetVault(id gem.Address) (*Vault, error) {
	vault, err := s.vaults.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vault")
	}
	if vault.IsEmpty() {
		return nil, reverts.Wrapf(reverts.ErrNotFound, "vault %s", id)
	}
	return vault, nil
}

func (s *Service) setVault(id gem.Address, vault *Vault) error {
	if err := s.vaults.Set(id, vault); err != nil {
		return errors.Wrap(err, "failed to set vault")
	}
	return nil
}

// CreateVault creates the vault of owner within bank.
func (s *Service) CreateVault(bankID, owner, creator gem.Address) (gem.Address, error) {
	if owner.IsZero() {
		return gem.Address{}, reverts.Wrapf(reverts.ErrInvalidParameter, "zero vault owner")
	}
	bank, err := s.GetBank(bankID)
	if err != nil {
		return gem.Address{}, err
	}

	id := VaultID(bankID, owner)
	vault, err := s.vaults.Get(id)
	if err != nil {
		return gem.Address{}, errors.Wrap(err, "failed to get vault")
	}
	if !vault.IsEmpty() {
		return gem.Address{}, reverts.Wrapf(reverts.ErrAlreadyExists, "vault %s", id)
	}

	count, err := gem.SafeAdd(bank.VaultCount, 1)
	if err != nil {
		return gem.Address{}, err
	}
	bank.VaultCount = count
	if err := s.banks.Set(bankID, bank); err != nil {
		return gem.Address{}, errors.Wrap(err, "failed to set bank")
	}

	if err := s.setVault(id, &Vault{Bank: bankID, Owner: owner, Creator: creator}); err != nil {
		return gem.Address{}, err
	}
	logger.Debug("vault created", "bank", bankID, "vault", id, "owner", owner)
	return id, nil
}

func (s *Service) setLocked(id gem.Address, locked bool) error {
	vault, err := s.GetVault(id)
	if err != nil {
		return err
	}
	if vault.Locked == locked {
		return nil
	}
	vault.Locked = locked
	return s.setVault(id, vault)
}

// Lock locks the vault. Locking a locked vault is a no-op.
func (s *Service) Lock(id gem.Address) error {
	return s.setLocked(id, true)
}

// Unlock unlocks the vault. Unlocking an unlocked vault is a no-op.
func (s *Service) Unlock(id gem.Address) error {
	return s.setLocked(id, false)
}

// SetVaultLock lets the bank manager switch the lock of a vault.
func (s *Service) SetVaultLock(bankID, vaultID, caller gem.Address, locked bool) error {
	bank, err := s.GetBank(bankID)
	if err != nil {
		return err
	}
	if bank.Manager != caller {
		return reverts.Wrapf(reverts.ErrUnauthorized, "%s is not the bank manager", caller)
	}
	vault, err := s.GetVault(vaultID)
	if err != nil {
		return err
	}
	if vault.Bank != bankID {
		return reverts.Wrapf(reverts.ErrNotFound, "vault %s not in bank %s", vaultID, bankID)
	}
	return s.setLocked(vaultID, locked)
}

func (s *Service) movable(id, caller gem.Address, amount uint64) (*Vault, error) {
	vault, err := s.GetVault(id)
	if err != nil {
		return nil, err
	}
	if vault.Owner != caller {
		return nil, reverts.Wrapf(reverts.ErrUnauthorized, "%s is not the vault owner", caller)
	}
	if vault.Locked {
		return nil, reverts.Wrapf(reverts.ErrVaultLocked, "vault %s", id)
	}
	if amount == 0 {
		return nil, reverts.Wrapf(reverts.ErrInvalidParameter, "zero amount")
	}
	return vault, nil
}

// Deposit moves amount of mint from source into the vault.
func (s *Service) Deposit(id, caller, mint gem.Address, amount uint64, source gem.Address) error {
	vault, err := s.movable(id, caller, amount)
	if err != nil {
		return err
	}

	gemCount, err := gem.SafeAdd(vault.GemCount, amount)
	if err != nil {
		return err
	}
	if i := vault.box(mint); i >= 0 {
		if vault.GemBoxes[i].Amount, err = gem.SafeAdd(vault.GemBoxes[i].Amount, amount); err != nil {
			return err
		}
	} else {
		vault.GemBoxes = append(vault.GemBoxes, GemBox{Mint: mint, Amount: amount})
	}
	vault.GemCount = gemCount

	if err := s.setVault(id, vault); err != nil {
		return err
	}
	return s.custody.TransferIn(id, mint, amount, source)
}

// Withdraw moves amount of mint out of the vault to destination.
func (s *Service) Withdraw(id, caller, mint gem.Address, amount uint64, destination gem.Address) error {
	vault, err := s.movable(id, caller, amount)
	if err != nil {
		return err
	}

	i := vault.box(mint)
	if i < 0 || vault.GemBoxes[i].Amount < amount {
		return reverts.Wrapf(reverts.ErrInsufficientBalance, "vault %s holds %d of %s", id, vault.Balance(mint), mint)
	}
	vault.GemBoxes[i].Amount -= amount
	if vault.GemBoxes[i].Amount == 0 {
		vault.GemBoxes = append(vault.GemBoxes[:i], vault.GemBoxes[i+1:]...)
	}
	// gem count always equals the sum of the boxes
	vault.GemCount -= amount

	if err := s.setVault(id, vault); err != nil {
		return err
	}
	return s.custody.TransferOut(id, mint, amount, destination)
}
