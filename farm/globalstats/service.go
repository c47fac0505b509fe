// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/store"
)

var (
	slotGemsStaked        = store.Slot("gems-staked")
	slotStakedFarmerCount = store.Slot("staked-farmer-count")
)

// Service manages the farm-wide staking totals.
type Service struct {
	gemsStaked        *store.Uint64
	stakedFarmerCount *store.Uint64
}

func New(sctx *store.Context) *Service {
	return &Service{
		gemsStaked:        store.NewUint64(sctx, slotGemsStaked),
		stakedFarmerCount: store.NewUint64(sctx, slotStakedFarmerCount),
	}
}

// AddStake registers a farmer that starts staking gems.
func (s *Service) AddStake(gems uint64) error {
	if _, err := s.gemsStaked.Add(gems); err != nil {
		return err
	}
	_, err := s.stakedFarmerCount.Add(1)
	return err
}

// RemoveStake deregisters a farmer that stops staking gems.
func (s *Service) RemoveStake(gems uint64) error {
	if _, err := s.gemsStaked.Sub(gems); err != nil {
		return err
	}
	_, err := s.stakedFarmerCount.Sub(1)
	return err
}

// GemsStaked returns the total gems staked in the farm.
func (s *Service) GemsStaked() (uint64, error) {
	gems, err := s.gemsStaked.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get gems staked")
	}
	return gems, nil
}

// StakedFarmerCount returns the number of farmers currently staked or cooling down.
func (s *Service) StakedFarmerCount() (uint64, error) {
	count, err := s.stakedFarmerCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get staked farmer count")
	}
	return count, nil
}
