// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CallContext is what an entry point knows about its invocation. By the time an entry point runs, the host
// has already credited Value to the collection's balance; if the entry point fails the host takes it back.
type CallContext struct {
	Caller common.Address
	Value  *uint256.Int
}

func (c CallContext) payment() *uint256.Int {
	if c.Value == nil {
		return new(uint256.Int)
	}
	return c.Value
}

func (c CallContext) requireNonPayable() error {
	if !c.payment().IsZero() {
		return ErrNonPayable
	}
	return nil
}
