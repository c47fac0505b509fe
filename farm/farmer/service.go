// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmer

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/store"
)

var slotFarmers = store.Slot("farmers")

// Service is the farmer ledger.
type Service struct {
	farmers *store.Mapping[gem.Address, *Farmer]
}

func New(sctx *store.Context) *Service {
	return &Service{
		farmers: store.NewMapping[gem.Address, *Farmer](sctx, slotFarmers),
	}
}

// Add creates the farmer record of identity in farm.
func (s *Service) Add(farm, identity, vault gem.Address) (gem.Address, error) {
	id := ID(farm, identity)
	existing, err := s.farmers.Get(id)
	if err != nil {
		return gem.Address{}, errors.Wrap(err, "failed to get farmer")
	}
	if !existing.IsEmpty() {
		return gem.Address{}, reverts.Wrapf(reverts.ErrAlreadyExists, "farmer %s", id)
	}
	if err := s.Set(id, &Farmer{Farm: farm, Identity: identity, Vault: vault}); err != nil {
		return gem.Address{}, err
	}
	return id, nil
}

// Get returns the farmer, failing with ErrNotFound if absent.
func (s *Service) Get(id gem.Address) (*Farmer, error) {
	f, err := s.farmers.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get farmer")
	}
	if f.IsEmpty() {
		return nil, reverts.Wrapf(reverts.ErrNotFound, "farmer %s", id)
	}
	return f, nil
}

func (s *Service) Set(id gem.Address, f *Farmer) error {
	if err := s.farmers.Set(id, f); err != nil {
		return errors.Wrap(err, "failed to set farmer")
	}
	return nil
}
