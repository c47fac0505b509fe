// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru.
type LRU struct {
	*lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{Cache: cache}, nil
}

// Loader defines loader to load value.
type Loader func(key any) (any, error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key any, loader Loader) (any, error) {
	if v, ok := l.Get(key); ok {
		l.stats.Hit()
		return v, nil
	}
	l.stats.Miss()
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}

// Stats returns hit and miss counts, and whether the hit rate moved since the last call.
func (l *LRU) Stats() (bool, int64, int64) {
	return l.stats.Stats()
}

// Stats is a utility for collecting cache hit/miss.
type Stats struct {
	hit, miss atomic.Int64
	flag      atomic.Int32
}

// Hit records a hit.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Stats returns the number of hits and misses and whether
// the hit rate, in permille, changed since the last call.
func (cs *Stats) Stats() (bool, int64, int64) {
	hit := cs.hit.Load()
	miss := cs.miss.Load()

	var flag int32
	if lookups := hit + miss; lookups > 0 {
		flag = int32(hit * 1000 / lookups)
	}
	return cs.flag.Swap(flag) != flag, hit, miss
}
