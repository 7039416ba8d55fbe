// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

// Package hooks models code deployed at an address: accounts may register callbacks that run when they
// receive a unit or native value, and that may refuse the delivery by returning an error.
package hooks

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TokenReceiver is notified after a unit has been recorded as owned by the account.
type TokenReceiver interface {
	OnTokenReceived(operator, from common.Address, tokenId *uint256.Int) error
}

// ValueReceiver is notified after native value has been credited to the account.
type ValueReceiver interface {
	OnValueReceived(from common.Address, amount *uint256.Int) error
}

type Resolver interface {
	TokenReceiver(account common.Address) (TokenReceiver, bool)
	ValueReceiver(account common.Address) (ValueReceiver, bool)
}

// TokenReceiverFunc adapts a function to TokenReceiver.
type TokenReceiverFunc func(operator, from common.Address, tokenId *uint256.Int) error

func (f TokenReceiverFunc) OnTokenReceived(operator, from common.Address, tokenId *uint256.Int) error {
	return f(operator, from, tokenId)
}

// ValueReceiverFunc adapts a function to ValueReceiver.
type ValueReceiverFunc func(from common.Address, amount *uint256.Int) error

func (f ValueReceiverFunc) OnValueReceived(from common.Address, amount *uint256.Int) error {
	return f(from, amount)
}

// Registry is a concurrency-safe Resolver.
type Registry struct {
	mutex  sync.RWMutex
	tokens map[common.Address]TokenReceiver
	values map[common.Address]ValueReceiver
}

func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[common.Address]TokenReceiver),
		values: make(map[common.Address]ValueReceiver),
	}
}

func (r *Registry) RegisterTokenReceiver(account common.Address, receiver TokenReceiver) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.tokens[account] = receiver
}

func (r *Registry) RegisterValueReceiver(account common.Address, receiver ValueReceiver) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.values[account] = receiver
}

func (r *Registry) Unregister(account common.Address) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.tokens, account)
	delete(r.values, account)
}

func (r *Registry) TokenReceiver(account common.Address) (TokenReceiver, bool) {
	if r == nil {
		return nil, false
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	receiver, ok := r.tokens[account]
	return receiver, ok
}

func (r *Registry) ValueReceiver(account common.Address) (ValueReceiver, bool) {
	if r == nil {
		return nil, false
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	receiver, ok := r.values[account]
	return receiver, ok
}

// None resolves no hooks; every account behaves like a plain externally owned account.
var None Resolver = (*Registry)(nil)
