// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farmclient is a farmer's view of a gem farm node: a client bound
// to one identity and one farm.
package farmclient

import (
	"github.com/vechain/gemfarm/farm"
	"github.com/vechain/gemfarm/farmclient/httpclient"
	"github.com/vechain/gemfarm/gem"
)

type Client struct {
	httpConn *httpclient.Client
	identity gem.Address
	farm     gem.Address
}

func New(url string, identity, farmID gem.Address) *Client {
	return NewWithHTTP(httpclient.New(url), identity, farmID)
}

func NewWithHTTP(conn *httpclient.Client, identity, farmID gem.Address) *Client {
	return &Client{
		httpConn: conn,
		identity: identity,
		farm:     farmID,
	}
}

func (c *Client) Identity() gem.Address {
	return c.identity
}

func (c *Client) RawHTTPClient() *httpclient.Client {
	return c.httpConn
}

// Join registers the identity in the farm and returns its vault.
func (c *Client) Join() (gem.Address, error) {
	res, err := c.httpConn.InitFarmer(c.identity, c.farm)
	if err != nil {
		return gem.Address{}, err
	}
	return res.Vault, nil
}

func (c *Client) Farm() (*farm.FarmView, error) {
	return c.httpConn.Farm(c.farm)
}

func (c *Client) Farmer() (*farm.FarmerView, error) {
	return c.httpConn.Farmer(c.farm, c.identity)
}

func (c *Client) Deposit(mint gem.Address, amount uint64) (*farm.FarmerView, error) {
	return c.httpConn.Deposit(c.identity, c.farm, mint, amount)
}

func (c *Client) Withdraw(mint gem.Address, amount uint64) (*farm.FarmerView, error) {
	return c.httpConn.Withdraw(c.identity, c.farm, mint, amount)
}

func (c *Client) Stake() (*farm.FarmerView, error) {
	return c.httpConn.Stake(c.identity, c.farm)
}

func (c *Client) Unstake() (string, error) {
	return c.httpConn.Unstake(c.identity, c.farm)
}

func (c *Client) Refresh() (*farm.FarmerView, error) {
	return c.httpConn.RefreshFarmer(c.identity, c.farm, c.identity)
}

func (c *Client) Claim(track string) (uint64, error) {
	return c.httpConn.ClaimReward(c.identity, c.farm, track)
}

// ClaimAll claims both tracks and returns the amounts paid.
func (c *Client) ClaimAll() (rewardA, rewardB uint64, err error) {
	if rewardA, err = c.Claim("rewardA"); err != nil {
		return
	}
	rewardB, err = c.Claim("rewardB")
	return
}

func (c *Client) Balance(mint gem.Address) (uint64, error) {
	return c.httpConn.Balance(c.identity, mint)
}

// Vault returns the vault backing the identity.
func (c *Client) Vault() (*farm.VaultView, error) {
	fv, err := c.Farmer()
	if err != nil {
		return nil, err
	}
	return c.httpConn.Vault(fv.Vault)
}
