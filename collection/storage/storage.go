// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/util"
)

// Storage allows a collection to keep its state persistently in an Ethereum-compatible stateDB. The state lives
// in the account storage of the collection's own address.
//
// The storage is logically a tree of storage spaces which can be nested hierarchically, with each storage space
// containing a key-value store with 256-bit keys and values. Uninitialized storage spaces and uninitialized keys
// within initialized storage spaces are deemed to be filled with zeroes (consistent with the behavior of Ethereum
// account storage).
//
// A storage space (represented by a Storage object) has a byte-slice storageKey which distinguishes it from other
// storage spaces. The root Storage has its storageKey as the empty string. A parent storage space can contain children,
// each with a distinct name. The storageKey of a child is keccak256(parent.storageKey, name). Note that two spaces
// cannot have the same storageKey because that would imply a collision in keccak256.
//
// The contents of key, within a storage space with storageKey, are stored at location keccak256(storageKey, key)
// in the account's flat key-value store, paged so that the low byte of the key stays contiguous.
type Storage struct {
	account    common.Address
	db         vm.StateDB
	storageKey []byte
	readOnly   bool
}

// NewGeth opens the root storage space of account inside statedb.
func NewGeth(statedb vm.StateDB, account common.Address) *Storage {
	if statedb.GetNonce(account) == 0 {
		statedb.SetNonce(account, 1) // setting the nonce ensures Geth won't treat the collection as empty
	}
	return &Storage{
		account:    account,
		db:         statedb,
		storageKey: []byte{},
	}
}

// NewMemoryBacked uses Geth's memory-backed database to create an evm key-value store
func NewMemoryBacked(account common.Address) *Storage {
	return NewGeth(NewMemoryBackedStateDB(), account)
}

// NewMemoryBackedStateDB uses Geth's memory-backed database to create a statedb
func NewMemoryBackedStateDB() *state.StateDB {
	raw := rawdb.NewMemoryDatabase()
	db := state.NewDatabase(raw)
	statedb, err := state.New(types.EmptyRootHash, db, nil)
	if err != nil {
		log.Crit("failed to init empty statedb", "error", err)
	}
	return statedb
}

// We map addresses using "pages" of 256 storage slots. We hash over the page number but not the offset within
// a page, to preserve contiguity within a page.
func mapAddress(storageKey []byte, key common.Hash) common.Hash {
	keyBytes := key.Bytes()
	boundary := common.HashLength - 1
	mapped := make([]byte, 0, common.HashLength)
	mapped = append(mapped, crypto.Keccak256(storageKey, keyBytes[:boundary])[:boundary]...)
	mapped = append(mapped, keyBytes[boundary])
	return common.BytesToHash(mapped)
}

// WithReadOnly returns a view of the same storage space that rejects writes.
func (s *Storage) WithReadOnly() *Storage {
	return &Storage{
		account:    s.account,
		db:         s.db,
		storageKey: s.storageKey,
		readOnly:   true,
	}
}

func (s *Storage) ReadOnly() bool {
	return s.readOnly
}

func (s *Storage) Account() common.Address {
	return s.account
}

func (s *Storage) StateDB() vm.StateDB {
	return s.db
}

func (s *Storage) Get(key common.Hash) common.Hash {
	return s.db.GetState(s.account, mapAddress(s.storageKey, key))
}

func (s *Storage) GetStorageSlot(key common.Hash) common.Hash {
	return mapAddress(s.storageKey, key)
}

func (s *Storage) GetByUint64(key uint64) common.Hash {
	return s.Get(util.UintToHash(key))
}

func (s *Storage) GetUint64ByUint64(key uint64) (uint64, error) {
	word := util.HashToU256(s.GetByUint64(key))
	if !word.IsUint64() {
		return 0, fmt.Errorf("%w: slot %d holds %v", ErrNotUint64, key, word)
	}
	return word.Uint64(), nil
}

func (s *Storage) Set(key common.Hash, value common.Hash) error {
	if s.readOnly {
		log.Debug("write to read-only storage", "account", s.account, "key", key)
		return vm.ErrWriteProtection
	}
	s.db.SetState(s.account, mapAddress(s.storageKey, key), value)
	return nil
}

func (s *Storage) SetByUint64(key uint64, value common.Hash) error {
	return s.Set(util.UintToHash(key), value)
}

func (s *Storage) SetUint64ByUint64(key uint64, value uint64) error {
	return s.Set(util.UintToHash(key), util.UintToHash(value))
}

func (s *Storage) Clear(key common.Hash) error {
	return s.Set(key, common.Hash{})
}

func (s *Storage) OpenSubStorage(id []byte) *Storage {
	return &Storage{
		account:    s.account,
		db:         s.db,
		storageKey: crypto.Keccak256(s.storageKey, id),
		readOnly:   s.readOnly,
	}
}

// SetBytes writes the length at position 0 followed by the content packed into 32-byte words.
func (s *Storage) SetBytes(b []byte) error {
	if err := s.ClearBytes(); err != nil {
		return err
	}
	if err := s.SetUint64ByUint64(0, uint64(len(b))); err != nil {
		return err
	}
	offset := uint64(1)
	for len(b) >= 32 {
		if err := s.SetByUint64(offset, common.BytesToHash(b[:32])); err != nil {
			return err
		}
		b = b[32:]
		offset++
	}
	if len(b) == 0 {
		return nil
	}
	return s.SetByUint64(offset, common.BytesToHash(b))
}

func (s *Storage) GetBytes() ([]byte, error) {
	bytesLeft, err := s.GetUint64ByUint64(0)
	if err != nil {
		return nil, err
	}
	ret := []byte{}
	offset := uint64(1)
	for bytesLeft >= 32 {
		ret = append(ret, s.GetByUint64(offset).Bytes()...)
		bytesLeft -= 32
		offset++
	}
	if bytesLeft > 0 {
		ret = append(ret, s.GetByUint64(offset).Bytes()[32-bytesLeft:]...)
	}
	return ret, nil
}

func (s *Storage) GetBytesSize() (uint64, error) {
	return s.GetUint64ByUint64(0)
}

func (s *Storage) ClearBytes() error {
	bytesLeft, err := s.GetUint64ByUint64(0)
	if err != nil {
		return err
	}
	offset := uint64(1)
	for bytesLeft > 0 {
		if err := s.SetByUint64(offset, common.Hash{}); err != nil {
			return err
		}
		offset++
		if bytesLeft < 32 {
			bytesLeft = 0
		} else {
			bytesLeft -= 32
		}
	}
	return s.SetByUint64(0, common.Hash{})
}

type StorageSlot struct {
	account  common.Address
	db       vm.StateDB
	slot     common.Hash
	readOnly bool
}

func (s *Storage) NewSlot(offset uint64) StorageSlot {
	return StorageSlot{s.account, s.db, mapAddress(s.storageKey, util.UintToHash(offset)), s.readOnly}
}

func (ss *StorageSlot) Get() common.Hash {
	return ss.db.GetState(ss.account, ss.slot)
}

func (ss *StorageSlot) Set(value common.Hash) error {
	if ss.readOnly {
		return vm.ErrWriteProtection
	}
	ss.db.SetState(ss.account, ss.slot, value)
	return nil
}

func (ss *StorageSlot) Location() common.Hash {
	return ss.slot
}

type StorageBackedUint64 struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedUint64(offset uint64) StorageBackedUint64 {
	return StorageBackedUint64{s.NewSlot(offset)}
}

func (sbu *StorageBackedUint64) Get() (uint64, error) {
	raw := util.HashToU256(sbu.StorageSlot.Get())
	if !raw.IsUint64() {
		return 0, fmt.Errorf("%w: %v", ErrNotUint64, raw)
	}
	return raw.Uint64(), nil
}

func (sbu *StorageBackedUint64) Set(value uint64) error {
	return sbu.StorageSlot.Set(util.UintToHash(value))
}

func (sbu *StorageBackedUint64) Increment() (uint64, error) {
	old, err := sbu.Get()
	if err != nil {
		return 0, err
	}
	if old+1 < old {
		panic("Overflow in StorageBackedUint64::Increment")
	}
	return old + 1, sbu.Set(old + 1)
}

// StorageBackedUint256 holds a full 256-bit word interpreted as an unsigned integer.
type StorageBackedUint256 struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedUint256(offset uint64) StorageBackedUint256 {
	return StorageBackedUint256{s.NewSlot(offset)}
}

func (sbu *StorageBackedUint256) Get() *uint256.Int {
	return util.HashToU256(sbu.StorageSlot.Get())
}

func (sbu *StorageBackedUint256) Set(value *uint256.Int) error {
	return sbu.StorageSlot.Set(util.U256ToHash(value))
}

type StorageBackedBool struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedBool(offset uint64) StorageBackedBool {
	return StorageBackedBool{s.NewSlot(offset)}
}

func (sbb *StorageBackedBool) Get() bool {
	return util.HashToBool(sbb.StorageSlot.Get())
}

func (sbb *StorageBackedBool) Set(value bool) error {
	return sbb.StorageSlot.Set(util.BoolToHash(value))
}

type StorageBackedAddress struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedAddress(offset uint64) StorageBackedAddress {
	return StorageBackedAddress{s.NewSlot(offset)}
}

func (sba *StorageBackedAddress) Get() common.Address {
	return util.HashToAddress(sba.StorageSlot.Get())
}

func (sba *StorageBackedAddress) Set(value common.Address) error {
	return sba.StorageSlot.Set(util.AddressToHash(value))
}

type StorageBackedBytes struct {
	Storage
}

func (s *Storage) OpenStorageBackedBytes(id []byte) StorageBackedBytes {
	return StorageBackedBytes{
		*s.OpenSubStorage(id),
	}
}

func (sbb *StorageBackedBytes) Get() ([]byte, error) {
	return sbb.Storage.GetBytes()
}

func (sbb *StorageBackedBytes) Set(value []byte) error {
	return sbb.Storage.SetBytes(value)
}

func (sbb *StorageBackedBytes) Clear() error {
	return sbb.Storage.ClearBytes()
}

func (sbb *StorageBackedBytes) Size() (uint64, error) {
	return sbb.Storage.GetBytesSize()
}

// StorageBackedString is a StorageBackedBytes holding UTF-8 text.
type StorageBackedString struct {
	StorageBackedBytes
}

func (s *Storage) OpenStorageBackedString(id []byte) StorageBackedString {
	return StorageBackedString{s.OpenStorageBackedBytes(id)}
}

func (sbs *StorageBackedString) Get() (string, error) {
	raw, err := sbs.StorageBackedBytes.Get()
	return string(raw), err
}

func (sbs *StorageBackedString) Set(value string) error {
	return sbs.StorageBackedBytes.Set([]byte(value))
}
