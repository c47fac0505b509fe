// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"github.com/vechain/gemfarm/gem"
)

// Bank groups the vaults of one manager.
type Bank struct {
	Manager    gem.Address
	VaultCount uint64
}

// GemBox is the balance of one mint inside a vault.
type GemBox struct {
	Mint   gem.Address
	Amount uint64
}

// Vault is a custody account bound to an owner. Its contents move only while unlocked.
type Vault struct {
	Bank     gem.Address
	Owner    gem.Address
	Creator  gem.Address
	Locked   bool
	GemCount uint64
	GemBoxes []GemBox
}

// IsEmpty returns whether the vault record was never created.
func (v *Vault) IsEmpty() bool {
	return v == nil || v.Owner.IsZero()
}

func (v *Vault) box(mint gem.Address) int {
	for i, box := range v.GemBoxes {
		if box.Mint == mint {
			return i
		}
	}
	return -1
}

// Balance returns the amount of mint held in the vault.
func (v *Vault) Balance(mint gem.Address) uint64 {
	if i := v.box(mint); i >= 0 {
		return v.GemBoxes[i].Amount
	}
	return 0
}

// VaultID derives the vault address of owner within bank.
func VaultID(bank, owner gem.Address) gem.Address {
	return gem.DeriveAddress([]byte("vault"), bank.Bytes(), owner.Bytes())
}
