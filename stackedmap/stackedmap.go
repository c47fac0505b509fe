// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

// StackedMap maintains maps in a stack.
// Each map inherits key/value of map that is at lower level.
// It acts as a map with save-restore/snapshot-revert manner.
type StackedMap[K comparable, V any] struct {
	src            MapGetter[K, V]
	mapStack       []*level[K, V]
	keyRevisionMap map[K]*stack
}

type level[K comparable, V any] struct {
	kvs     map[K]V
	journal []*journalEntry[K, V]
}

func newLevel[K comparable, V any]() *level[K, V] {
	return &level[K, V]{kvs: make(map[K]V)}
}

type journalEntry[K comparable, V any] struct {
	key   K
	value V
}

// MapGetter defines getter method of map.
type MapGetter[K comparable, V any] func(key K) (value V, exist bool, err error)

// New create an instance of StackedMap.
// src acts as source of data.
func New[K comparable, V any](src MapGetter[K, V]) *StackedMap[K, V] {
	sm := &StackedMap[K, V]{
		src:            src,
		keyRevisionMap: make(map[K]*stack),
	}
	sm.Push()
	return sm
}

// Depth returns depth of stack.
func (sm *StackedMap[K, V]) Depth() int {
	return len(sm.mapStack)
}

// Push pushes a new map on stack.
// It returns stack depth before push.
func (sm *StackedMap[K, V]) Push() int {
	sm.mapStack = append(sm.mapStack, newLevel[K, V]())
	return len(sm.mapStack) - 1
}

// Pop pop the map at top of stack.
// It will revert all Put operations since last Push.
func (sm *StackedMap[K, V]) Pop() {
	// pop key revision
	top := sm.mapStack[len(sm.mapStack)-1]
	for key := range top.kvs {
		revs := sm.keyRevisionMap[key]
		revs.pop()
		if len(*revs) == 0 {
			delete(sm.keyRevisionMap, key)
		}
	}
	sm.mapStack = sm.mapStack[:len(sm.mapStack)-1]
}

// PopTo pop maps until stack depth reaches depth.
func (sm *StackedMap[K, V]) PopTo(depth int) {
	for len(sm.mapStack) > depth {
		sm.Pop()
	}
}

// Get gets value for given key.
// The second return value indicates whether the given key is found.
func (sm *StackedMap[K, V]) Get(key K) (V, bool, error) {
	if revs, ok := sm.keyRevisionMap[key]; ok {
		lvl := sm.mapStack[revs.top()]
		if v, ok := lvl.kvs[key]; ok {
			return v, true, nil
		}
	}
	return sm.src(key)
}

// Put puts key value into map at stack top.
// It will panic if stack is empty.
func (sm *StackedMap[K, V]) Put(key K, value V) {
	top := sm.mapStack[len(sm.mapStack)-1]
	_, seen := top.kvs[key]
	top.kvs[key] = value
	top.journal = append(top.journal, &journalEntry[K, V]{key: key, value: value})

	// a key is revisioned once per level, so Pop removes exactly one revision
	if seen {
		return
	}
	rev := len(sm.mapStack) - 1
	if revs, ok := sm.keyRevisionMap[key]; ok {
		revs.push(rev)
	} else {
		sm.keyRevisionMap[key] = &stack{rev}
	}
}

// Journal traverses journal entries of all Put operations.
// The traversal will be aborted if cb returns false.
func (sm *StackedMap[K, V]) Journal(cb func(key K, value V) bool) {
	for _, lvl := range sm.mapStack {
		for _, entry := range lvl.journal {
			if !cb(entry.key, entry.value) {
				return
			}
		}
	}
}

// stack ops
type stack []int

func (s *stack) pop() {
	*s = (*s)[:len(*s)-1]
}

func (s *stack) push(v int) {
	*s = append(*s, v)
}

func (s stack) top() int {
	return s[len(s)-1]
}
