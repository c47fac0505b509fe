// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vaults

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/farm"
)

type Vaults struct {
	controller *farm.Controller
}

func New(controller *farm.Controller) *Vaults {
	return &Vaults{controller}
}

func (v *Vaults) handleGetVault(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseAddress("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	view, err := v.controller.Vault(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, view)
}

func (v *Vaults) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /vaults/{id}").
		HandlerFunc(utils.WrapHandlerFunc(v.handleGetVault))
}
