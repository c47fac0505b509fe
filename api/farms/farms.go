// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farms

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farm/schedule"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

type Farms struct {
	controller *farm.Controller
	clock      farm.Clock
}

func New(controller *farm.Controller, clock farm.Clock) *Farms {
	return &Farms{controller, clock}
}

func (f *Farms) farmID(req *http.Request) (gem.Address, error) {
	return utils.ParseAddress("farm", mux.Vars(req)["farm"])
}

// track resolves the {track} path element, either a track name or a reward mint.
func (f *Farms) track(req *http.Request, farmID gem.Address) (schedule.Track, error) {
	value := mux.Vars(req)["track"]
	if strings.HasPrefix(value, "0x") {
		mint, err := utils.ParseAddress("track", value)
		if err != nil {
			return 0, err
		}
		return f.controller.TrackOf(farmID, mint)
	}
	track, err := schedule.ParseTrack(value)
	if err != nil {
		return 0, utils.BadRequest(err)
	}
	return track, nil
}

// farmer resolves the {identity} path element and, when self is set, checks
// the caller acts for itself.
func (f *Farms) farmer(req *http.Request, self bool) (farmID, identity gem.Address, err error) {
	if farmID, err = f.farmID(req); err != nil {
		return
	}
	if identity, err = utils.ParseAddress("identity", mux.Vars(req)["identity"]); err != nil {
		return
	}
	if self {
		caller, err := utils.Caller(req)
		if err != nil {
			return gem.Address{}, gem.Address{}, err
		}
		if caller != identity {
			return gem.Address{}, gem.Address{}, reverts.Wrapf(reverts.ErrUnauthorized, "%s cannot act for %s", caller, identity)
		}
	}
	return
}

func (f *Farms) writeFarm(w http.ResponseWriter, id gem.Address) error {
	view, err := f.controller.Farm(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, view)
}

func (f *Farms) writeFarmer(w http.ResponseWriter, farmID, identity gem.Address) error {
	view, err := f.controller.Farmer(farmID, identity)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, view)
}

func (f *Farms) handleListFarms(w http.ResponseWriter, _ *http.Request) error {
	ids, err := f.controller.Farms()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ids)
}

func (f *Farms) handleInitFarm(w http.ResponseWriter, req *http.Request) error {
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	var body InitFarmRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	rewardA, err := body.RewardA.toParams()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "rewardA"))
	}
	rewardB, err := body.RewardB.toParams()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "rewardB"))
	}
	params := farm.InitParams{Config: body.Config, RewardA: rewardA, RewardB: rewardB}
	if err := f.controller.InitFarm(body.ID, caller, params); err != nil {
		return err
	}
	return f.writeFarm(w, body.ID)
}

func (f *Farms) handleGetFarm(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	return f.writeFarm(w, id)
}

func (f *Farms) handleAuthorizeFunder(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	var body FunderRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := f.controller.AuthorizeFunder(id, caller, body.Funder); err != nil {
		return err
	}
	return f.writeFarm(w, id)
}

func (f *Farms) handleDeauthorizeFunder(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	funder, err := utils.ParseAddress("funder", mux.Vars(req)["funder"])
	if err != nil {
		return err
	}
	if err := f.controller.DeauthorizeFunder(id, caller, funder); err != nil {
		return err
	}
	return f.writeFarm(w, id)
}

func (f *Farms) handleFundReward(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	track, err := f.track(req, id)
	if err != nil {
		return err
	}
	var body FundRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	cfg, err := body.config()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "periods"))
	}
	if err := f.controller.FundReward(id, caller, track, body.Amount, cfg, f.clock()); err != nil {
		return err
	}
	return f.writeFarm(w, id)
}

func (f *Farms) handleCancelReward(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	track, err := f.track(req, id)
	if err != nil {
		return err
	}
	refund, err := f.controller.CancelReward(id, caller, track, f.clock())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, AmountResponse{Amount: refund})
}

func (f *Farms) handleLockReward(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	track, err := f.track(req, id)
	if err != nil {
		return err
	}
	if err := f.controller.LockReward(id, caller, track); err != nil {
		return err
	}
	return f.writeFarm(w, id)
}

func (f *Farms) handleSetVaultLock(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	vault, err := utils.ParseAddress("vault", mux.Vars(req)["vault"])
	if err != nil {
		return err
	}
	var body VaultLockRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := f.controller.SetVaultLock(id, caller, vault, body.Locked); err != nil {
		return err
	}
	view, err := f.controller.Vault(vault)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, view)
}

func (f *Farms) handleListFarmers(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	identities, err := f.controller.Farmers(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, identities)
}

func (f *Farms) handleInitFarmer(w http.ResponseWriter, req *http.Request) error {
	id, err := f.farmID(req)
	if err != nil {
		return err
	}
	caller, err := utils.Caller(req)
	if err != nil {
		return err
	}
	farmerID, vaultID, err := f.controller.InitFarmer(id, caller, caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, InitFarmerResponse{Farmer: farmerID, Vault: vaultID})
}

func (f *Farms) handleGetFarmer(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, false)
	if err != nil {
		return err
	}
	return f.writeFarmer(w, id, identity)
}

func (f *Farms) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, true)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := f.controller.Deposit(id, identity, body.Mint, body.Amount); err != nil {
		return err
	}
	return f.writeFarmer(w, id, identity)
}

func (f *Farms) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, true)
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := f.controller.Withdraw(id, identity, body.Mint, body.Amount); err != nil {
		return err
	}
	return f.writeFarmer(w, id, identity)
}

func (f *Farms) handleStake(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, true)
	if err != nil {
		return err
	}
	if err := f.controller.Stake(id, identity, f.clock()); err != nil {
		return err
	}
	return f.writeFarmer(w, id, identity)
}

func (f *Farms) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, true)
	if err != nil {
		return err
	}
	state, err := f.controller.Unstake(id, identity, f.clock())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, UnstakeResponse{State: state.String()})
}

// refresh is permissionless, anyone may bring a farmer up to date.
func (f *Farms) handleRefreshFarmer(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, false)
	if err != nil {
		return err
	}
	if err := f.controller.RefreshFarmer(id, identity, f.clock()); err != nil {
		return err
	}
	return f.writeFarmer(w, id, identity)
}

func (f *Farms) handleClaimReward(w http.ResponseWriter, req *http.Request) error {
	id, identity, err := f.farmer(req, true)
	if err != nil {
		return err
	}
	track, err := f.track(req, id)
	if err != nil {
		return err
	}
	amount, err := f.controller.ClaimReward(id, identity, track, f.clock())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, AmountResponse{Amount: amount})
}

func (f *Farms) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /farms").HandlerFunc(utils.WrapHandlerFunc(f.handleListFarms))
	sub.Path("").Methods(http.MethodPost).Name("POST /farms").HandlerFunc(utils.WrapHandlerFunc(f.handleInitFarm))
	sub.Path("/{farm}").Methods(http.MethodGet).Name("GET /farms/{farm}").HandlerFunc(utils.WrapHandlerFunc(f.handleGetFarm))

	sub.Path("/{farm}/funders").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/funders").
		HandlerFunc(utils.WrapHandlerFunc(f.handleAuthorizeFunder))
	sub.Path("/{farm}/funders/{funder}").
		Methods(http.MethodDelete).
		Name("DELETE /farms/{farm}/funders/{funder}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleDeauthorizeFunder))

	sub.Path("/{farm}/rewards/{track}/fund").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/rewards/{track}/fund").
		HandlerFunc(utils.WrapHandlerFunc(f.handleFundReward))
	sub.Path("/{farm}/rewards/{track}/cancel").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/rewards/{track}/cancel").
		HandlerFunc(utils.WrapHandlerFunc(f.handleCancelReward))
	sub.Path("/{farm}/rewards/{track}/lock").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/rewards/{track}/lock").
		HandlerFunc(utils.WrapHandlerFunc(f.handleLockReward))

	sub.Path("/{farm}/vaults/{vault}/lock").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/vaults/{vault}/lock").
		HandlerFunc(utils.WrapHandlerFunc(f.handleSetVaultLock))

	sub.Path("/{farm}/farmers").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/farmers").
		HandlerFunc(utils.WrapHandlerFunc(f.handleListFarmers))
	sub.Path("/{farm}/farmers").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers").
		HandlerFunc(utils.WrapHandlerFunc(f.handleInitFarmer))
	sub.Path("/{farm}/farmers/{identity}").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/farmers/{identity}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFarmer))
	sub.Path("/{farm}/farmers/{identity}/deposit").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers/{identity}/deposit").
		HandlerFunc(utils.WrapHandlerFunc(f.handleDeposit))
	sub.Path("/{farm}/farmers/{identity}/withdraw").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers/{identity}/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(f.handleWithdraw))
	sub.Path("/{farm}/farmers/{identity}/stake").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers/{identity}/stake").
		HandlerFunc(utils.WrapHandlerFunc(f.handleStake))
	sub.Path("/{farm}/farmers/{identity}/unstake").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers/{identity}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(f.handleUnstake))
	sub.Path("/{farm}/farmers/{identity}/refresh").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers/{identity}/refresh").
		HandlerFunc(utils.WrapHandlerFunc(f.handleRefreshFarmer))
	sub.Path("/{farm}/farmers/{identity}/rewards/{track}/claim").
		Methods(http.MethodPost).
		Name("POST /farms/{farm}/farmers/{identity}/rewards/{track}/claim").
		HandlerFunc(utils.WrapHandlerFunc(f.handleClaimReward))
}
