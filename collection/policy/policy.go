// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

// Package policy decides who may mint and on what terms. Validators only read state; they never change it.
package policy

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/ownership"
	"github.com/offchainlabs/mintengine/collection/supply"
	"github.com/offchainlabs/mintengine/util/arbmath"
)

var (
	ErrTransactionMustBeDirect = errors.New("transaction must be direct")
	ErrInsufficientFunds       = errors.New("insufficient funds")
)

type Role uint8

const (
	DirectBuyer Role = iota
	Privileged
)

func (r Role) String() string {
	switch r {
	case Privileged:
		return "privileged"
	case DirectBuyer:
		return "direct-buyer"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// State is the view of a collection the validators need.
type State interface {
	Owner() common.Address
	Cost() *uint256.Int
	LimitedPerAddress() bool
	MaxSupplyPerAddress() *uint256.Int
	MintedBalance(account common.Address) *uint256.Int
	OwnedCount(account common.Address) *uint256.Int
}

// Request is a mint attempt: Caller wants Amount units issued to Recipient and attached Payment.
type Request struct {
	Caller    common.Address
	Recipient common.Address
	Amount    uint64
	Payment   *uint256.Int
}

type Validator func(State, *Request) error

// DirectBuyerValidators run, in this order, for every caller that is not the owner.
var DirectBuyerValidators = []Validator{
	RequireDirect,
	RequirePayment,
	RequireAccountCap,
}

func Classify(state State, req *Request) Role {
	if req.Caller == state.Owner() {
		return Privileged
	}
	return DirectBuyer
}

// Evaluate classifies the caller and runs every validator its role requires.
// The owner is exempt from payment and per-address caps.
func Evaluate(state State, req *Request) (Role, error) {
	role := Classify(state, req)
	if role == Privileged {
		return role, nil
	}
	for _, validate := range DirectBuyerValidators {
		if err := validate(state, req); err != nil {
			return role, err
		}
	}
	return role, nil
}

// RequireDirect blocks relayed purchases: the buyer must be the one receiving the units.
func RequireDirect(_ State, req *Request) error {
	if req.Caller != req.Recipient {
		return ErrTransactionMustBeDirect
	}
	return nil
}

// RequirePayment checks that the attached payment covers cost × amount. A price too large to represent
// can never be covered.
func RequirePayment(state State, req *Request) error {
	cost := state.Cost()
	price, ok := arbmath.U256MulByUint(cost, req.Amount)
	if !ok {
		return fmt.Errorf("%w: price of %d units at %v overflows", ErrInsufficientFunds, req.Amount, cost)
	}
	payment := req.Payment
	if payment == nil {
		payment = new(uint256.Int)
	}
	if payment.Lt(price) {
		return fmt.Errorf("%w: sent %v need %v", ErrInsufficientFunds, payment, price)
	}
	return nil
}

// RequireAccountCap enforces the per-address cap against both the ledger's ownership count and the
// collection's own minted counter. Either one alone reaching the cap is enough to refuse.
func RequireAccountCap(state State, req *Request) error {
	if !state.LimitedPerAddress() {
		return nil
	}
	limit := state.MaxSupplyPerAddress()
	counts := []struct {
		name  string
		value *uint256.Int
	}{
		{"owned", state.OwnedCount(req.Recipient)},
		{"minted", state.MintedBalance(req.Recipient)},
	}
	for _, count := range counts {
		after, ok := arbmath.U256AddByUint(count.value, req.Amount)
		if !ok || after.Gt(limit) {
			return fmt.Errorf("%w: %v %v + %d > %v", supply.ErrMaxSupplyPerAddressExceeded, count.name, count.value, req.Amount, limit)
		}
	}
	return nil
}

// RequireOwner gates administrative entry points.
func RequireOwner(state State, caller common.Address) error {
	if caller != state.Owner() {
		return ownership.ErrUnauthorizedAccess
	}
	return nil
}
