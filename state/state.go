// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/gemfarm/cache"
	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/kv"
	"github.com/vechain/gemfarm/log"
	"github.com/vechain/gemfarm/stackedmap"
)

var logger = log.WithContext("pkg", "state")

const slotKeyLength = gem.AddressLength + 32

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type slotKey struct {
	addr gem.Address
	key  gem.Bytes32
}

func (k slotKey) bytes() []byte {
	b := make([]byte, 0, slotKeyLength)
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State holds the storage of every account, journaled in a stacked map.
type State struct {
	store kv.Store
	cache *cache.LRU // committed slots
	sm    *stackedmap.StackedMap[slotKey, rlp.RawValue]
}

// New create state object on top of the given store.
// cacheSize <= 0 disables the read cache.
func New(store kv.Store, cacheSize int) *State {
	s := &State{store: store}
	if cacheSize > 0 {
		s.cache, _ = cache.NewLRU(cacheSize)
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.slotGetter)
}

// slotGetter implements stackedmap.MapGetter. Missing slots read as empty.
func (s *State) slotGetter(k slotKey) (rlp.RawValue, bool, error) {
	load := func(any) (any, error) {
		metricSlotCounter().AddWithLabel(1, map[string]string{"type": "read", "source": "store"})
		v, err := s.store.Get(k.bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(v), nil
	}

	var (
		v   any
		err error
	)
	if s.cache != nil {
		v, err = s.cache.GetOrLoad(k, load)
	} else {
		v, err = load(k)
	}
	if err != nil {
		return nil, false, err
	}
	return v.(rlp.RawValue), true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr gem.Address, key gem.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(slotKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr gem.Address, key gem.Bytes32, raw rlp.RawValue) {
	s.sm.Put(slotKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr gem.Address, key gem.Bytes32) (gem.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return gem.Bytes32{}, err
	}
	if len(raw) == 0 {
		return gem.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return gem.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return gem.Blake2b(raw), nil
	}
	return gem.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr gem.Address, key, value gem.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr gem.Address, key gem.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr gem.Address, key gem.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// stage collects the latest value of every slot touched since the last commit.
func (s *State) stage() map[slotKey]rlp.RawValue {
	changes := make(map[slotKey]rlp.RawValue)
	s.sm.Journal(func(k slotKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return changes
}

// Commit writes all journaled changes into the store in one bulk, then starts a fresh journal.
func (s *State) Commit() error {
	changes := s.stage()
	if len(changes) == 0 {
		s.reset()
		return nil
	}

	bulk := s.store.Bulk()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.bytes())
		} else {
			err = bulk.Put(k.bytes(), v)
		}
		if err != nil {
			return errors.Wrap(err, "stage slot")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}

	if s.cache != nil {
		for k, v := range changes {
			s.cache.Add(k, v)
		}
		if changed, hit, miss := s.cache.Stats(); changed {
			if rate, err := gem.MulDiv(uint64(hit), 1000, uint64(hit+miss)); err == nil {
				metricCacheHitRate().Set(int64(rate))
				logger.Debug("state cache", "hit", hit, "miss", miss, "permille", rate)
			}
		}
	}
	metricSlotCounter().AddWithLabel(int64(len(changes)), map[string]string{"type": "write", "source": "journal"})
	metricCommitCounter().Add(1)

	s.reset()
	return nil
}
