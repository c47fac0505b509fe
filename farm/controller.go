// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/bank"
	"github.com/vechain/gemfarm/custody"
	"github.com/vechain/gemfarm/farm/farmer"
	"github.com/vechain/gemfarm/farm/globalstats"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/reverts"
	"github.com/vechain/gemfarm/state"
	"github.com/vechain/gemfarm/store"
)

var (
	logger = log.WithContext("pkg", "farm")

	farmsAddress = gem.DeriveAddress([]byte("gem-farm"))
	bankAddress  = gem.DeriveAddress([]byte("gem-bank"))

	slotFarms       = store.Slot("farms")
	slotFarmIndex   = store.Slot("farm-index")
	slotFarmCount   = store.Slot("farm-count")
	slotFarmerIndex = store.Slot("farmer-index")
)

func SetLogger(l log.Logger) {
	logger = l
}

type indexKey uint64

func (k indexKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

type farmerIndexKey struct {
	farm  gem.Address
	index uint64
}

func (k farmerIndexKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.farm.Bytes(), k.index)
}

// Controller is the public surface of the gem farms. Operations are
// serialized, and each one either applies fully or leaves no trace.
type Controller struct {
	mu      sync.Mutex
	state   *state.State
	custody custody.Service

	bankService   *bank.Service
	farmerService *farmer.Service

	farms       *store.Mapping[gem.Address, *Farm]
	farmIndex   *store.Mapping[indexKey, gem.Address]
	farmCount   *store.Uint64
	farmerIndex *store.Mapping[farmerIndexKey, gem.Address]
}

// New creates a controller on st. Custody should keep its balances in st too,
// otherwise transfers of a failed operation are not rolled back.
func New(st *state.State, custody custody.Service) *Controller {
	sctx := store.NewContext(farmsAddress, st)
	return &Controller{
		state:         st,
		custody:       custody,
		bankService:   bank.New(store.NewContext(bankAddress, st), custody),
		farmerService: farmer.New(sctx),
		farms:         store.NewMapping[gem.Address, *Farm](sctx, slotFarms),
		farmIndex:     store.NewMapping[indexKey, gem.Address](sctx, slotFarmIndex),
		farmCount:     store.NewUint64(sctx, slotFarmCount),
		farmerIndex:   store.NewMapping[farmerIndexKey, gem.Address](sctx, slotFarmerIndex),
	}
}

// transact runs fn against a checkpoint. Errors revert everything fn did,
// success commits it to the store.
func (c *Controller) transact(op string, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := c.state.NewCheckpoint()
	err := fn()
	if err == nil {
		err = c.state.Commit()
	}
	if err != nil {
		c.state.RevertTo(cp)
		result := "revert"
		if !reverts.IsRevertErr(err) {
			result = "error"
			logger.Warn("operation failed", "op", op, "error", err)
		}
		metricOperationCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
		return err
	}
	metricOperationCount().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	return nil
}

// view runs a read-only fn.
func (c *Controller) view(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}

func (c *Controller) stats(farmID gem.Address) *globalstats.Service {
	return globalstats.New(store.NewContext(farmID, c.state))
}

func (c *Controller) getFarm(id gem.Address) (*Farm, error) {
	f, err := c.farms.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get farm")
	}
	if f.IsEmpty() {
		return nil, reverts.Wrapf(reverts.ErrNotFound, "farm %s", id)
	}
	return f, nil
}

func (c *Controller) setFarm(id gem.Address, f *Farm) error {
	if err := c.farms.Set(id, f); err != nil {
		return errors.Wrap(err, "failed to set farm")
	}
	return nil
}

// getManagedFarm loads the farm and checks caller is its manager.
func (c *Controller) getManagedFarm(id, caller gem.Address) (*Farm, error) {
	f, err := c.getFarm(id)
	if err != nil {
		return nil, err
	}
	if f.Manager != caller {
		return nil, reverts.Wrapf(reverts.ErrUnauthorized, "%s is not the farm manager", caller)
	}
	return f, nil
}

func (c *Controller) getFarmer(farmID, identity gem.Address) (*Farm, *farmer.Farmer, error) {
	f, err := c.getFarm(farmID)
	if err != nil {
		return nil, nil, err
	}
	fr, err := c.farmerService.Get(farmer.ID(farmID, identity))
	if err != nil {
		return nil, nil, err
	}
	return f, fr, nil
}

func (c *Controller) setFarmer(fr *farmer.Farmer) error {
	return c.farmerService.Set(farmer.ID(fr.Farm, fr.Identity), fr)
}

func (c *Controller) publishGemsStaked(farmID gem.Address) {
	gems, err := c.stats(farmID).GemsStaked()
	if err != nil {
		logger.Warn("failed to read gems staked", "farm", farmID, "error", err)
		return
	}
	metricGemsStaked().SetWithLabel(int64(gems), map[string]string{"farm": farmID.String()})
}
