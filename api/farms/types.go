// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farms

import (
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
)

type RewardParams struct {
	Mint gem.Address `json:"mint"`
	Type string      `json:"type"`
}

func (p *RewardParams) toParams() (farm.RewardParams, error) {
	switch p.Type {
	case "", "fixed":
		return farm.RewardParams{Mint: p.Mint, Type: schedule.Fixed}, nil
	case "variable":
		return farm.RewardParams{Mint: p.Mint, Type: schedule.Variable}, nil
	}
	return farm.RewardParams{}, errors.Errorf("unknown reward type %q", p.Type)
}

type InitFarmRequest struct {
	ID      gem.Address  `json:"id"`
	Config  farm.Config  `json:"config"`
	RewardA RewardParams `json:"rewardA"`
	RewardB RewardParams `json:"rewardB"`
}

type FunderRequest struct {
	Funder gem.Address `json:"funder"`
}

type FundRequest struct {
	Amount     uint64            `json:"amount"`
	Periods    []farm.PeriodView `json:"periods"`
	GemsFunded uint64            `json:"gemsFunded"`
}

func (r *FundRequest) config() (schedule.FixedRateConfig, error) {
	var cfg schedule.FixedRateConfig
	if len(r.Periods) > len(cfg.Periods) {
		return cfg, errors.Errorf("at most %d periods", len(cfg.Periods))
	}
	for i, p := range r.Periods {
		cfg.Periods[i] = schedule.PeriodConfig{Rate: p.Rate, DurationSec: p.DurationSec}
	}
	cfg.GemsFunded = r.GemsFunded
	return cfg, nil
}

type InitFarmerResponse struct {
	Farmer gem.Address `json:"farmer"`
	Vault  gem.Address `json:"vault"`
}

type TransferRequest struct {
	Mint   gem.Address `json:"mint"`
	Amount uint64      `json:"amount"`
}

type UnstakeResponse struct {
	State string `json:"state"`
}

type AmountResponse struct {
	Amount uint64 `json:"amount"`
}

type VaultLockRequest struct {
	Locked bool `json:"locked"`
}
