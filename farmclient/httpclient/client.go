// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client for the gem farm api.
// Every mutating call names the caller it acts for.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vechain/gemfarm/api/balances"
	"github.com/vechain/gemfarm/api/farms"
	"github.com/vechain/gemfarm/api/utils"
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

// Error is a non 200 response. It matches the revert carrying the same code,
// so errors.Is(err, reverts.ErrUnauthorized) holds across the wire.
type Error struct {
	Status  int
	Message string
	Code    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http error - Status Code %d - %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("http error - Status Code %d - %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*reverts.ErrRevert)
	return ok && e.Code != "" && e.Code == t.Code().String()
}

type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{url: url, c: c}
}

func (c *Client) do(method, path string, caller *gem.Address, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("unable to marshal payload - %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.url+path, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req.Header.Set(utils.CallerHeader, caller.String())
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		httpErr := &Error{Status: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
		var errBody utils.ErrorBody
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			httpErr.Message = errBody.Error
			httpErr.Code = errBody.Code
		}
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unable to unmarshal response - %w", err)
	}
	return nil
}

func farmPath(id gem.Address) string {
	return "/farms/" + id.String()
}

func farmerPath(farmID, identity gem.Address) string {
	return farmPath(farmID) + "/farmers/" + identity.String()
}

// Farms lists the ids of all farms.
func (c *Client) Farms() ([]gem.Address, error) {
	var ids []gem.Address
	if err := c.do(http.MethodGet, "/farms", nil, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) Farm(id gem.Address) (*farm.FarmView, error) {
	var view farm.FarmView
	if err := c.do(http.MethodGet, farmPath(id), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// InitFarm creates a farm managed by caller.
func (c *Client) InitFarm(caller gem.Address, req *farms.InitFarmRequest) (*farm.FarmView, error) {
	var view farm.FarmView
	if err := c.do(http.MethodPost, "/farms", &caller, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) AuthorizeFunder(caller, farmID, funder gem.Address) (*farm.FarmView, error) {
	var view farm.FarmView
	req := &farms.FunderRequest{Funder: funder}
	if err := c.do(http.MethodPost, farmPath(farmID)+"/funders", &caller, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) DeauthorizeFunder(caller, farmID, funder gem.Address) (*farm.FarmView, error) {
	var view farm.FarmView
	if err := c.do(http.MethodDelete, farmPath(farmID)+"/funders/"+funder.String(), &caller, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// FundReward funds a track, named either "rewardA"/"rewardB" or by its reward mint.
func (c *Client) FundReward(caller, farmID gem.Address, track string, req *farms.FundRequest) (*farm.FarmView, error) {
	var view farm.FarmView
	if err := c.do(http.MethodPost, farmPath(farmID)+"/rewards/"+track+"/fund", &caller, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// CancelReward cancels a track and returns the amount refunded to its funder.
func (c *Client) CancelReward(caller, farmID gem.Address, track string) (uint64, error) {
	var res farms.AmountResponse
	if err := c.do(http.MethodPost, farmPath(farmID)+"/rewards/"+track+"/cancel", &caller, nil, &res); err != nil {
		return 0, err
	}
	return res.Amount, nil
}

func (c *Client) LockReward(caller, farmID gem.Address, track string) (*farm.FarmView, error) {
	var view farm.FarmView
	if err := c.do(http.MethodPost, farmPath(farmID)+"/rewards/"+track+"/lock", &caller, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) SetVaultLock(caller, farmID, vault gem.Address, locked bool) (*farm.VaultView, error) {
	var view farm.VaultView
	req := &farms.VaultLockRequest{Locked: locked}
	if err := c.do(http.MethodPost, farmPath(farmID)+"/vaults/"+vault.String()+"/lock", &caller, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Farmers lists the identities registered in the farm.
func (c *Client) Farmers(farmID gem.Address) ([]gem.Address, error) {
	var identities []gem.Address
	if err := c.do(http.MethodGet, farmPath(farmID)+"/farmers", nil, nil, &identities); err != nil {
		return nil, err
	}
	return identities, nil
}

// InitFarmer registers caller in the farm.
func (c *Client) InitFarmer(caller, farmID gem.Address) (*farms.InitFarmerResponse, error) {
	var res farms.InitFarmerResponse
	if err := c.do(http.MethodPost, farmPath(farmID)+"/farmers", &caller, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Farmer(farmID, identity gem.Address) (*farm.FarmerView, error) {
	var view farm.FarmerView
	if err := c.do(http.MethodGet, farmerPath(farmID, identity), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) farmerOp(caller, farmID gem.Address, op string, payload any) (*farm.FarmerView, error) {
	var view farm.FarmerView
	if err := c.do(http.MethodPost, farmerPath(farmID, caller)+"/"+op, &caller, payload, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Deposit(caller, farmID, mint gem.Address, amount uint64) (*farm.FarmerView, error) {
	return c.farmerOp(caller, farmID, "deposit", &farms.TransferRequest{Mint: mint, Amount: amount})
}

func (c *Client) Withdraw(caller, farmID, mint gem.Address, amount uint64) (*farm.FarmerView, error) {
	return c.farmerOp(caller, farmID, "withdraw", &farms.TransferRequest{Mint: mint, Amount: amount})
}

func (c *Client) Stake(caller, farmID gem.Address) (*farm.FarmerView, error) {
	return c.farmerOp(caller, farmID, "stake", nil)
}

// Unstake returns the farmer state after the call, "pendingCooldown" or "unstaked".
func (c *Client) Unstake(caller, farmID gem.Address) (string, error) {
	var res farms.UnstakeResponse
	if err := c.do(http.MethodPost, farmerPath(farmID, caller)+"/unstake", &caller, nil, &res); err != nil {
		return "", err
	}
	return res.State, nil
}

// RefreshFarmer refreshes any farmer on behalf of caller.
func (c *Client) RefreshFarmer(caller, farmID, identity gem.Address) (*farm.FarmerView, error) {
	var view farm.FarmerView
	if err := c.do(http.MethodPost, farmerPath(farmID, identity)+"/refresh", &caller, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ClaimReward pays out the outstanding reward of a track and returns the amount paid.
func (c *Client) ClaimReward(caller, farmID gem.Address, track string) (uint64, error) {
	var res farms.AmountResponse
	if err := c.do(http.MethodPost, farmerPath(farmID, caller)+"/rewards/"+track+"/claim", &caller, nil, &res); err != nil {
		return 0, err
	}
	return res.Amount, nil
}

func (c *Client) Vault(id gem.Address) (*farm.VaultView, error) {
	var view farm.VaultView
	if err := c.do(http.MethodGet, "/vaults/"+id.String(), nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Balance(owner, mint gem.Address) (uint64, error) {
	var res balances.Balance
	if err := c.do(http.MethodGet, "/balances/"+owner.String()+"/"+mint.String(), nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Balance, nil
}

// Mint credits owner through the faucet, when the node enables it.
func (c *Client) Mint(owner, mint gem.Address, amount uint64) (uint64, error) {
	var res balances.Balance
	req := &balances.MintRequest{Amount: amount}
	if err := c.do(http.MethodPost, "/balances/"+owner.String()+"/"+mint.String(), nil, req, &res); err != nil {
		return 0, err
	}
	return res.Balance, nil
}
