// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Code classifies a business failure. A revert always leaves state untouched.
type Code uint32

const (
	CodeUnknown Code = iota
	CodeVaultLocked
	CodeAlreadyExists
	CodeCooldownNotElapsed
	CodeAlreadyLocked
	CodeInsufficientFunding
	CodeArithmeticOverflow
	CodeUnauthorized
	CodeNotParticipating
	CodeNotFound
	CodeVaultEmpty
	CodeMinStakingNotPassed
	CodeInvalidState
	CodeInsufficientBalance
	CodeInvalidParameter
)

var codeNames = map[Code]string{
	CodeUnknown:             "Unknown",
	CodeVaultLocked:         "VaultLocked",
	CodeAlreadyExists:       "AlreadyExists",
	CodeCooldownNotElapsed:  "CooldownNotElapsed",
	CodeAlreadyLocked:       "AlreadyLocked",
	CodeInsufficientFunding: "InsufficientFunding",
	CodeArithmeticOverflow:  "ArithmeticOverflow",
	CodeUnauthorized:        "Unauthorized",
	CodeNotParticipating:    "NotParticipating",
	CodeNotFound:            "NotFound",
	CodeVaultEmpty:          "VaultEmpty",
	CodeMinStakingNotPassed: "MinStakingNotPassed",
	CodeInvalidState:        "InvalidState",
	CodeInsufficientBalance: "InsufficientBalance",
	CodeInvalidParameter:    "InvalidParameter",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

var (
	ErrVaultLocked         = New(CodeVaultLocked, "vault is locked")
	ErrAlreadyExists       = New(CodeAlreadyExists, "already exists")
	ErrCooldownNotElapsed  = New(CodeCooldownNotElapsed, "cooldown period has not elapsed")
	ErrAlreadyLocked       = New(CodeAlreadyLocked, "reward is locked")
	ErrInsufficientFunding = New(CodeInsufficientFunding, "insufficient funding")
	ErrArithmeticOverflow  = New(CodeArithmeticOverflow, "arithmetic overflow")
	ErrUnauthorized        = New(CodeUnauthorized, "unauthorized")
	ErrNotParticipating    = New(CodeNotParticipating, "farmer is not participating")
	ErrNotFound            = New(CodeNotFound, "not found")
	ErrVaultEmpty          = New(CodeVaultEmpty, "vault is empty")
	ErrMinStakingNotPassed = New(CodeMinStakingNotPassed, "minimum staking period has not passed")
	ErrInvalidState        = New(CodeInvalidState, "invalid state")
	ErrInsufficientBalance = New(CodeInsufficientBalance, "insufficient balance")
	ErrInvalidParameter    = New(CodeInvalidParameter, "invalid parameter")
)

type ErrRevert struct {
	code    Code
	message string
}

func New(code Code, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: message,
	}
}

// Wrapf returns a revert carrying the code of base and a more specific message.
func Wrapf(base *ErrRevert, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		code:    base.code,
		message: base.message + ": " + fmt.Sprintf(format, args...),
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Code() Code {
	return e.code
}

// Is reports whether target is a revert of the same code, so sentinels match wrapped reverts.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	return t.code == e.code
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// CodeOf extracts the revert code from err.
func CodeOf(err error) (Code, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code, true
	}
	return CodeUnknown, false
}
