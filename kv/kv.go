// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	// Get value for given key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk collects puts and applies them atomically on Write.
type Bulk interface {
	Putter
	Len() int
	Write() error
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Bulk() Bulk
}

// StoreCloser is a store owning its resources.
type StoreCloser interface {
	Store
	Close() error
}
