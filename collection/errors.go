// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"errors"

	"github.com/offchainlabs/mintengine/collection/collectionState"
	"github.com/offchainlabs/mintengine/collection/ownership"
	"github.com/offchainlabs/mintengine/collection/policy"
	"github.com/offchainlabs/mintengine/collection/reentrancy"
	"github.com/offchainlabs/mintengine/collection/supply"
	"github.com/offchainlabs/mintengine/collection/tokenledger"
)

// Every entry point failure is one of these, possibly wrapped. Test with errors.Is.
var (
	ErrMaxSupplyExceeded           = supply.ErrMaxSupplyExceeded
	ErrMaxSupplyPerAddressExceeded = supply.ErrMaxSupplyPerAddressExceeded
	ErrTransactionMustBeDirect     = policy.ErrTransactionMustBeDirect
	ErrInsufficientFunds           = policy.ErrInsufficientFunds
	ErrNoFundsAvailable            = errors.New("no funds available")
	ErrUnauthorizedAccess          = ownership.ErrUnauthorizedAccess
	ErrWithdrawFailed              = errors.New("withdraw failed")
	ErrPaused                      = errors.New("collection is paused")

	ErrReentrantCall      = reentrancy.ErrReentrantCall
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNonPayable         = errors.New("method does not accept value")
	ErrAlreadyInitialized = collectionState.ErrAlreadyInitialized
	ErrUninitialized      = collectionState.ErrUninitialized
	ErrUnsupportedSchema  = collectionState.ErrUnsupportedSchema
	ErrInvalidConfig      = collectionState.ErrInvalidConfig
	ErrInvalidOwner       = ownership.ErrInvalidOwner
	ErrInvalidReceiver    = tokenledger.ErrInvalidReceiver
	ErrNonexistentToken   = tokenledger.ErrNonexistentToken
	ErrNotTokenOwner      = tokenledger.ErrNotTokenOwner
	ErrReceiverRejected   = tokenledger.ErrReceiverRejected
)
