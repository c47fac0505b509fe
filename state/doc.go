// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the farm storage slots.
// It follows the flow as bellow:
//
//	           o
//	           |
//	  [ revertable state ]
//	           |
//	    [ stacked map ] -> [ journal ] -> [ bulk write ] -> [ kv store ]
//	           |
//	     [ lru cache ]
//	           |
//	     [ kv store ]
//
// Every slot is addressed by an account address and a 32 bytes key, and holds an
// rlp encoded value. Changes stay in the stacked map until Commit.
package state
