// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collectionState

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/ownership"
	"github.com/offchainlabs/mintengine/collection/reentrancy"
	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/collection/supply"
	"github.com/offchainlabs/mintengine/collection/tokenledger"
	"github.com/offchainlabs/mintengine/collection/util"
)

// CollectionState is the persisted record of one collection. It is backed by the account storage of the
// collection's address, and every modification is written straight through to the underlying StateDB.
type CollectionState struct {
	schemaVersion  uint64
	cost           storage.StorageBackedUint256
	paused         storage.StorageBackedBool
	deployer       storage.StorageBackedAddress
	tokenURI       storage.StorageBackedString
	supply         *supply.Ledger
	tokens         *tokenledger.Ledger
	owners         *ownership.Registry
	lock           *reentrancy.Lock
	emitter        *eventlog.Emitter
	backingStorage *storage.Storage
}

var (
	ErrUninitialized      = errors.New("collection uninitialized")
	ErrUnsupportedSchema  = errors.New("unsupported collection schema version")
	ErrAlreadyInitialized = errors.New("collection is already initialized")
	ErrInvalidConfig      = errors.New("invalid collection config")
)

// CurrentSchemaVersion is the storage format written by Initialize.
const CurrentSchemaVersion uint64 = 1

// latestSchemaVersion is what a writable open upgrades storage to.
var latestSchemaVersion = CurrentSchemaVersion

type CollectionStateOffset uint64

const (
	versionOffset CollectionStateOffset = iota
	costOffset
	pausedOffset
	deployerOffset
	firstReservedOffset
)

// ReservedSlotCount slots directly after the root fields stay zero. New root fields of later schema versions
// are placed there, so the slots of existing fields never move. Subspaces are keyed by hash and can grow freely.
const ReservedSlotCount = 50

type CollectionStateSubspaceID []byte

var (
	tokenURISubspace   CollectionStateSubspaceID = []byte{0}
	supplySubspace     CollectionStateSubspaceID = []byte{1}
	tokensSubspace     CollectionStateSubspaceID = []byte{2}
	ownersSubspace     CollectionStateSubspaceID = []byte{3}
	reentrancySubspace CollectionStateSubspaceID = []byte{4}
)

func OpenCollectionState(stateDB vm.StateDB, account common.Address, receivers hooks.Resolver, readOnly bool) (*CollectionState, error) {
	backingStorage := storage.NewGeth(stateDB, account)
	if readOnly {
		backingStorage = backingStorage.WithReadOnly()
	}
	schemaVersion, err := backingStorage.GetUint64ByUint64(uint64(versionOffset))
	if err != nil {
		return nil, err
	}
	if schemaVersion == 0 {
		return nil, ErrUninitialized
	}
	if schemaVersion > latestSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, schemaVersion)
	}
	emitter := eventlog.NewEmitter(stateDB, account, eventlog.CollectionABI)
	state := &CollectionState{
		schemaVersion,
		backingStorage.OpenStorageBackedUint256(uint64(costOffset)),
		backingStorage.OpenStorageBackedBool(uint64(pausedOffset)),
		backingStorage.OpenStorageBackedAddress(uint64(deployerOffset)),
		backingStorage.OpenStorageBackedString(tokenURISubspace),
		supply.Open(backingStorage.OpenSubStorage(supplySubspace)),
		tokenledger.Open(backingStorage.OpenSubStorage(tokensSubspace), emitter, receivers),
		ownership.Open(backingStorage.OpenSubStorage(ownersSubspace), emitter),
		reentrancy.Open(backingStorage.OpenSubStorage(reentrancySubspace)),
		emitter,
		backingStorage,
	}
	if !readOnly {
		if err := state.UpgradeSchemaIfNecessary(latestSchemaVersion); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// SchemaVersion reads the storage format version of the collection at account, 0 if there is none.
func SchemaVersion(stateDB vm.StateDB, account common.Address) (uint64, error) {
	return storage.NewGeth(stateDB, account).GetUint64ByUint64(uint64(versionOffset))
}

// InitConfig holds the parameters a collection is created with.
type InitConfig struct {
	Owner               common.Address
	Name                string
	Symbol              string
	TokenURI            string
	Cost                *uint256.Int
	MaxSupply           *uint256.Int
	MaxSupplyPerAddress *uint256.Int
	Limited             bool
	LimitedPerAddress   bool
}

func (c *InitConfig) Validate() error {
	if c.Owner == (common.Address{}) {
		return fmt.Errorf("%w: owner must be set", ErrInvalidConfig)
	}
	if c.Name == "" || c.Symbol == "" {
		return fmt.Errorf("%w: name and symbol must be set", ErrInvalidConfig)
	}
	if _, err := c.Caps(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *InitConfig) Caps() (supply.Caps, error) {
	return supply.EffectiveCaps(c.MaxSupply, c.MaxSupplyPerAddress, c.Limited, c.LimitedPerAddress)
}

// Initializer performs the setup of a collection, exactly once per address. Only Deployer may run it.
type Initializer struct {
	Deployer common.Address
}

func (i Initializer) Initialize(stateDB vm.StateDB, account, caller common.Address, config *InitConfig, receivers hooks.Resolver) (*CollectionState, error) {
	sto := storage.NewGeth(stateDB, account)
	schemaVersion, err := sto.GetUint64ByUint64(uint64(versionOffset))
	if err != nil {
		return nil, err
	}
	if schemaVersion != 0 {
		return nil, ErrAlreadyInitialized
	}
	if caller != i.Deployer {
		return nil, ownership.ErrUnauthorizedAccess
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	caps, err := config.Caps()
	if err != nil {
		return nil, err
	}
	cost := config.Cost
	if cost == nil {
		cost = new(uint256.Int)
	}

	emitter := eventlog.NewEmitter(stateDB, account, eventlog.CollectionABI)
	steps := []func() error{
		func() error { return sto.SetUint64ByUint64(uint64(versionOffset), CurrentSchemaVersion) },
		func() error { return sto.SetByUint64(uint64(costOffset), util.U256ToHash(cost)) },
		func() error { return sto.SetUint64ByUint64(uint64(pausedOffset), 0) },
		func() error { return sto.SetByUint64(uint64(deployerOffset), util.AddressToHash(i.Deployer)) },
		func() error {
			uri := sto.OpenStorageBackedString(tokenURISubspace)
			return uri.Set(config.TokenURI)
		},
		func() error { return supply.Initialize(sto.OpenSubStorage(supplySubspace), caps) },
		func() error {
			return tokenledger.Initialize(sto.OpenSubStorage(tokensSubspace), config.Name, config.Symbol)
		},
		func() error { return ownership.Initialize(sto.OpenSubStorage(ownersSubspace), config.Owner, emitter) },
		func() error { return reentrancy.Initialize(sto.OpenSubStorage(reentrancySubspace)) },
		func() error { return emitter.Emit("Initialized", CurrentSchemaVersion) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	log.Info("initialized collection", "account", account, "name", config.Name, "owner", config.Owner, "maxSupply", caps.MaxSupply, "limited", caps.Limited)
	return OpenCollectionState(stateDB, account, receivers, false)
}

// schemaMigrations[v] rewrites storage in format v-1 into format v.
var schemaMigrations = map[uint64]func(*CollectionState) error{}

// UpgradeSchemaIfNecessary migrates storage written by an older schema up to target, one version at a time.
func (state *CollectionState) UpgradeSchemaIfNecessary(target uint64) error {
	if target > latestSchemaVersion {
		return fmt.Errorf("cannot upgrade to unsupported collection schema version %v", target)
	}
	if target <= state.schemaVersion {
		return nil
	}
	for state.schemaVersion < target {
		next := state.schemaVersion + 1
		migrate, ok := schemaMigrations[next]
		if !ok {
			return fmt.Errorf("unable to upgrade collection schema from version %v", state.schemaVersion)
		}
		if err := migrate(state); err != nil {
			return fmt.Errorf("collection schema upgrade to version %v failed: %w", next, err)
		}
		state.schemaVersion = next
	}
	log.Info("upgraded collection schema", "account", state.Address(), "version", state.schemaVersion)
	return state.backingStorage.SetUint64ByUint64(uint64(versionOffset), state.schemaVersion)
}

// ReservedSlotsAreClear reports whether the padding block is still untouched.
func (state *CollectionState) ReservedSlotsAreClear() bool {
	for i := uint64(0); i < ReservedSlotCount; i++ {
		if state.backingStorage.GetByUint64(uint64(firstReservedOffset)+i) != (common.Hash{}) {
			return false
		}
	}
	return true
}

func (state *CollectionState) BackingStorage() *storage.Storage {
	return state.backingStorage
}

func (state *CollectionState) FormatVersion() uint64 {
	return state.schemaVersion
}

func (state *CollectionState) Address() common.Address {
	return state.backingStorage.Account()
}

func (state *CollectionState) Cost() *uint256.Int {
	return state.cost.Get()
}

func (state *CollectionState) SetCost(cost *uint256.Int) error {
	return state.cost.Set(cost)
}

func (state *CollectionState) Paused() bool {
	return state.paused.Get()
}

func (state *CollectionState) SetPaused(paused bool) error {
	return state.paused.Set(paused)
}

func (state *CollectionState) Deployer() common.Address {
	return state.deployer.Get()
}

func (state *CollectionState) TokenURI() (string, error) {
	return state.tokenURI.Get()
}

func (state *CollectionState) SetTokenURI(uri string) error {
	return state.tokenURI.Set(uri)
}

func (state *CollectionState) Supply() *supply.Ledger {
	return state.supply
}

func (state *CollectionState) Tokens() *tokenledger.Ledger {
	return state.tokens
}

func (state *CollectionState) Owners() *ownership.Registry {
	return state.owners
}

func (state *CollectionState) Lock() *reentrancy.Lock {
	return state.lock
}

func (state *CollectionState) Emitter() *eventlog.Emitter {
	return state.emitter
}
