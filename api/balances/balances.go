// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package balances exposes the custody ledger.
package balances

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/gem"
)

type Balance struct {
	Owner   gem.Address `json:"owner"`
	Mint    gem.Address `json:"mint"`
	Balance uint64      `json:"balance"`
}

type MintRequest struct {
	Amount uint64 `json:"amount"`
}

type Balances struct {
	controller *farm.Controller
	faucet     bool
}

// New creates the balances resource. With faucet enabled anyone may mint.
func New(controller *farm.Controller, faucet bool) *Balances {
	return &Balances{controller, faucet}
}

func parseOwnerMint(req *http.Request) (owner, mint gem.Address, err error) {
	if owner, err = utils.ParseAddress("owner", mux.Vars(req)["owner"]); err != nil {
		return
	}
	mint, err = utils.ParseAddress("mint", mux.Vars(req)["mint"])
	return
}

func (b *Balances) writeBalance(w http.ResponseWriter, owner, mint gem.Address) error {
	balance, err := b.controller.BalanceOf(owner, mint)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Owner: owner, Mint: mint, Balance: balance})
}

func (b *Balances) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	owner, mint, err := parseOwnerMint(req)
	if err != nil {
		return err
	}
	return b.writeBalance(w, owner, mint)
}

func (b *Balances) handleMint(w http.ResponseWriter, req *http.Request) error {
	owner, mint, err := parseOwnerMint(req)
	if err != nil {
		return err
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := b.controller.Mint(owner, mint, body.Amount); err != nil {
		return err
	}
	return b.writeBalance(w, owner, mint)
}

func (b *Balances) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{owner}/{mint}").
		Methods(http.MethodGet).
		Name("GET /balances/{owner}/{mint}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBalance))
	if b.faucet {
		sub.Path("/{owner}/{mint}").
			Methods(http.MethodPost).
			Name("POST /balances/{owner}/{mint}").
			HandlerFunc(utils.WrapHandlerFunc(b.handleMint))
	}
}
