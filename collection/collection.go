// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

// Package collection is the minting engine of a single tokenized collection: who may issue units, at what
// price, under which caps, and how issued units are burned and collected funds withdrawn.
//
// Every entry point either succeeds completely or fails with an error; on failure the caller is expected to
// revert the stateDB to the snapshot taken before the call, as the txprocessor host does.
package collection

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/collectionState"
	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/supply"
	"github.com/offchainlabs/mintengine/collection/treasury"
)

// TokenLedger holds the ownership of issued units.
type TokenLedger interface {
	SafeMint(operator, to common.Address, tokenId *uint256.Int) error
	Burn(tokenId *uint256.Int) (common.Address, error)
	TransferFrom(caller, from, to common.Address, tokenId *uint256.Int) error
	OwnerOf(tokenId *uint256.Int) (common.Address, error)
	BalanceOf(account common.Address) *uint256.Int
}

// OwnerRegistry holds the single privileged account.
type OwnerRegistry interface {
	Owner() common.Address
	TransferOwnership(caller, next common.Address) error
}

// ReentrancyLock runs fn with nested entry into the collection refused.
type ReentrancyLock interface {
	Do(fn func() error) error
}

// Treasury holds the funds paid for units.
type Treasury interface {
	Balance() *uint256.Int
	Transfer(to common.Address, amount *uint256.Int) error
}

// DefaultMaxBatchSize bounds the units a single Mint or Drop may issue.
const DefaultMaxBatchSize uint64 = 1000

type Collection struct {
	state        *collectionState.CollectionState
	supply       *supply.Ledger
	tokens       TokenLedger
	owners       OwnerRegistry
	lock         ReentrancyLock
	treasury     Treasury
	emitter      *eventlog.Emitter
	maxBatchSize uint64
}

// Option replaces one of the storage-backed capabilities a collection is opened with.
type Option func(*Collection)

func WithTokenLedger(tokens TokenLedger) Option {
	return func(c *Collection) { c.tokens = tokens }
}

func WithOwnerRegistry(owners OwnerRegistry) Option {
	return func(c *Collection) { c.owners = owners }
}

func WithReentrancyLock(lock ReentrancyLock) Option {
	return func(c *Collection) { c.lock = lock }
}

func WithTreasury(funds Treasury) Option {
	return func(c *Collection) { c.treasury = funds }
}

// WithMaxBatchSize changes how many units one call may issue. Zero keeps the default.
func WithMaxBatchSize(limit uint64) Option {
	return func(c *Collection) {
		if limit != 0 {
			c.maxBatchSize = limit
		}
	}
}

// Initialize sets up a new collection at address. It succeeds at most once per address, and only when the
// caller is the initializer's deployer.
func Initialize(
	stateDB vm.StateDB,
	address common.Address,
	ctx CallContext,
	initializer collectionState.Initializer,
	config *collectionState.InitConfig,
	receivers hooks.Resolver,
	opts ...Option,
) (*Collection, error) {
	if err := ctx.requireNonPayable(); err != nil {
		return nil, err
	}
	state, err := initializer.Initialize(stateDB, address, ctx.Caller, config, receivers)
	if err != nil {
		return nil, err
	}
	return wrap(stateDB, address, state, receivers, opts), nil
}

func Open(stateDB vm.StateDB, address common.Address, receivers hooks.Resolver, opts ...Option) (*Collection, error) {
	return open(stateDB, address, receivers, false, opts)
}

// OpenReadOnly opens a collection whose storage rejects every write.
func OpenReadOnly(stateDB vm.StateDB, address common.Address, opts ...Option) (*Collection, error) {
	return open(stateDB, address, hooks.None, true, opts)
}

func open(stateDB vm.StateDB, address common.Address, receivers hooks.Resolver, readOnly bool, opts []Option) (*Collection, error) {
	state, err := collectionState.OpenCollectionState(stateDB, address, receivers, readOnly)
	if err != nil {
		return nil, err
	}
	return wrap(stateDB, address, state, receivers, opts), nil
}

func wrap(stateDB vm.StateDB, address common.Address, state *collectionState.CollectionState, receivers hooks.Resolver, opts []Option) *Collection {
	c := &Collection{
		state:        state,
		supply:       state.Supply(),
		tokens:       state.Tokens(),
		owners:       state.Owners(),
		lock:         state.Lock(),
		treasury:     treasury.New(stateDB, address, receivers),
		emitter:      state.Emitter(),
		maxBatchSize: DefaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection) State() *collectionState.CollectionState {
	return c.state
}

func (c *Collection) Address() common.Address {
	return c.state.Address()
}

func (c *Collection) MaxBatchSize() uint64 {
	return c.maxBatchSize
}

// checkBatch rejects empty batches and batches above the configured size.
func (c *Collection) checkBatch(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > c.maxBatchSize {
		return fmt.Errorf("%w: batch of %d exceeds the limit of %d", ErrInvalidAmount, amount, c.maxBatchSize)
	}
	return nil
}

// nonReentrant runs fn while holding the collection's lock.
func (c *Collection) nonReentrant(fn func() error) error {
	return c.lock.Do(fn)
}
