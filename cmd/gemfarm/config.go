// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
)

// Config seeds a fresh state with farms and balances.
type Config struct {
	Farms    []FarmConfig    `yaml:"farms"`
	Balances []BalanceConfig `yaml:"balances"`
	Funding  []FundConfig    `yaml:"funding"`
}

type RewardConfig struct {
	Mint string `yaml:"mint"`
	Type string `yaml:"type,omitempty"`
}

type FarmConfig struct {
	ID      string       `yaml:"id"`
	Manager string       `yaml:"manager"`
	Config  farm.Config  `yaml:"config"`
	RewardA RewardConfig `yaml:"reward-a"`
	RewardB RewardConfig `yaml:"reward-b"`
	Funders []string     `yaml:"funders,omitempty"`
}

type BalanceConfig struct {
	Owner  string `yaml:"owner"`
	Mint   string `yaml:"mint"`
	Amount uint64 `yaml:"amount"`
}

type PeriodConfig struct {
	Rate        uint64 `yaml:"rate"`
	DurationSec uint64 `yaml:"duration-sec"`
}

// FundConfig funds a reward track once the farms and balances are in place.
type FundConfig struct {
	Farm       string         `yaml:"farm"`
	Funder     string         `yaml:"funder"`
	Track      string         `yaml:"track"`
	Amount     uint64         `yaml:"amount"`
	Periods    []PeriodConfig `yaml:"periods"`
	GemsFunded uint64         `yaml:"gems-funded"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

func parseAddress(field, value string) (gem.Address, error) {
	addr, err := gem.ParseAddress(value)
	if err != nil {
		return gem.Address{}, errors.Wrapf(err, "%s %q", field, value)
	}
	return addr, nil
}

func (r RewardConfig) params(field string) (farm.RewardParams, error) {
	mint, err := parseAddress(field+".mint", r.Mint)
	if err != nil {
		return farm.RewardParams{}, err
	}
	switch r.Type {
	case "", "fixed":
		return farm.RewardParams{Mint: mint, Type: schedule.Fixed}, nil
	case "variable":
		return farm.RewardParams{Mint: mint, Type: schedule.Variable}, nil
	}
	return farm.RewardParams{}, errors.Errorf("%s.type: unknown reward type %q", field, r.Type)
}

func (f *FundConfig) rateConfig() (schedule.FixedRateConfig, error) {
	var cfg schedule.FixedRateConfig
	if len(f.Periods) > len(cfg.Periods) {
		return cfg, errors.Errorf("at most %d periods", len(cfg.Periods))
	}
	for i, p := range f.Periods {
		cfg.Periods[i] = schedule.PeriodConfig{Rate: p.Rate, DurationSec: p.DurationSec}
	}
	cfg.GemsFunded = f.GemsFunded
	return cfg, nil
}

// Apply seeds controller. It is skipped when any farm already exists, so
// reopening a persisted state does not replay it.
func (c *Config) Apply(controller *farm.Controller, now uint64) (bool, error) {
	existing, err := controller.Farms()
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	for i, b := range c.Balances {
		owner, err := parseAddress("balances.owner", b.Owner)
		if err != nil {
			return false, err
		}
		mint, err := parseAddress("balances.mint", b.Mint)
		if err != nil {
			return false, err
		}
		if err := controller.Mint(owner, mint, b.Amount); err != nil {
			return false, errors.Wrapf(err, "balances[%d]", i)
		}
	}

	for i, f := range c.Farms {
		id, err := parseAddress("farms.id", f.ID)
		if err != nil {
			return false, err
		}
		manager, err := parseAddress("farms.manager", f.Manager)
		if err != nil {
			return false, err
		}
		rewardA, err := f.RewardA.params("reward-a")
		if err != nil {
			return false, err
		}
		rewardB, err := f.RewardB.params("reward-b")
		if err != nil {
			return false, err
		}
		params := farm.InitParams{Config: f.Config, RewardA: rewardA, RewardB: rewardB}
		if err := controller.InitFarm(id, manager, params); err != nil {
			return false, errors.Wrapf(err, "farms[%d]", i)
		}
		for _, value := range f.Funders {
			funder, err := parseAddress("farms.funders", value)
			if err != nil {
				return false, err
			}
			if err := controller.AuthorizeFunder(id, manager, funder); err != nil {
				return false, errors.Wrapf(err, "farms[%d]", i)
			}
		}
	}

	for i, f := range c.Funding {
		id, err := parseAddress("funding.farm", f.Farm)
		if err != nil {
			return false, err
		}
		funder, err := parseAddress("funding.funder", f.Funder)
		if err != nil {
			return false, err
		}
		track, err := schedule.ParseTrack(f.Track)
		if err != nil {
			return false, errors.Wrapf(err, "funding[%d]", i)
		}
		cfg, err := f.rateConfig()
		if err != nil {
			return false, errors.Wrapf(err, "funding[%d]", i)
		}
		if err := controller.FundReward(id, funder, track, f.Amount, cfg, now); err != nil {
			return false, errors.Wrapf(err, "funding[%d]", i)
		}
	}
	return true, nil
}

// exampleConfig is printed by the example-config command.
func exampleConfig() *Config {
	var (
		farmID  = gem.DeriveAddress([]byte("example-farm"))
		manager = gem.DeriveAddress([]byte("example-manager"))
		funder  = gem.DeriveAddress([]byte("example-funder"))
		gemMint = gem.DeriveAddress([]byte("example-gem"))
		mintA   = gem.DeriveAddress([]byte("example-reward-a"))
		mintB   = gem.DeriveAddress([]byte("example-reward-b"))
	)
	return &Config{
		Farms: []FarmConfig{{
			ID:      farmID.String(),
			Manager: manager.String(),
			Config: farm.Config{
				MinStakingPeriodSec: 60,
				CooldownPeriodSec:   300,
			},
			RewardA: RewardConfig{Mint: mintA.String(), Type: "fixed"},
			RewardB: RewardConfig{Mint: mintB.String(), Type: "fixed"},
			Funders: []string{funder.String()},
		}},
		Balances: []BalanceConfig{
			{Owner: funder.String(), Mint: mintA.String(), Amount: 1_000_000},
			{Owner: funder.String(), Mint: mintB.String(), Amount: 1_000_000},
			{Owner: manager.String(), Mint: gemMint.String(), Amount: 100},
		},
		Funding: []FundConfig{{
			Farm:   farmID.String(),
			Funder: funder.String(),
			Track:  "rewardA",
			Amount: 360_000,
			Periods: []PeriodConfig{
				{Rate: 1, DurationSec: 3600},
			},
			GemsFunded: 100,
		}},
	}
}
