// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package supply

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/collection/util"
	"github.com/offchainlabs/mintengine/util/arbmath"
)

var (
	ErrMaxSupplyExceeded           = errors.New("max supply exceeded")
	ErrMaxSupplyPerAddressExceeded = errors.New("max supply per address exceeded")
	ErrInvalidCaps                 = errors.New("per-address cap exceeds max supply")
)

// Ledger tracks how many units have been issued and by whom, and enforces the global cap.
//
// supply is a high-water mark: units are numbered 1..supply and a number is never handed out twice,
// even after the unit it named was burned. Counters are 256-bit words, so they cannot wrap in practice;
// each issued unit costs at least one storage write.
type Ledger struct {
	backingStorage      *storage.Storage
	supply              storage.StorageBackedUint256
	burned              storage.StorageBackedUint256
	maxSupply           storage.StorageBackedUint256
	maxSupplyPerAddress storage.StorageBackedUint256
	limited             storage.StorageBackedBool
	limitedPerAddress   storage.StorageBackedBool
	minted              *storage.Storage
}

const (
	supplyOffset uint64 = iota
	burnedOffset
	maxSupplyOffset
	maxSupplyPerAddressOffset
	limitedOffset
	limitedPerAddressOffset
)

var mintedKey = []byte{0}

// Caps is the cap configuration as it is stored: when a limit is off its bound is the largest value the
// counters can take, so checks never need to special-case the unlimited flags.
type Caps struct {
	MaxSupply           *uint256.Int
	MaxSupplyPerAddress *uint256.Int
	Limited             bool
	LimitedPerAddress   bool
}

// EffectiveCaps derives stored caps from the configured ones.
func EffectiveCaps(maxSupply, maxSupplyPerAddress *uint256.Int, limited, limitedPerAddress bool) (Caps, error) {
	caps := Caps{
		MaxSupply:         arbmath.MaxU256(),
		Limited:           limited,
		LimitedPerAddress: limitedPerAddress,
	}
	if limited {
		if maxSupply == nil {
			return Caps{}, fmt.Errorf("%w: limited collection without max supply", ErrInvalidCaps)
		}
		caps.MaxSupply = arbmath.U256Clone(maxSupply)
	}
	caps.MaxSupplyPerAddress = arbmath.U256Clone(caps.MaxSupply)
	if limitedPerAddress {
		if maxSupplyPerAddress == nil {
			return Caps{}, fmt.Errorf("%w: per-address limit without a cap", ErrInvalidCaps)
		}
		if maxSupplyPerAddress.Gt(caps.MaxSupply) {
			return Caps{}, fmt.Errorf("%w: %v > %v", ErrInvalidCaps, maxSupplyPerAddress, caps.MaxSupply)
		}
		caps.MaxSupplyPerAddress = arbmath.U256Clone(maxSupplyPerAddress)
	}
	return caps, nil
}

func Initialize(sto *storage.Storage, caps Caps) error {
	ledger := Open(sto)
	if err := ledger.maxSupply.Set(caps.MaxSupply); err != nil {
		return err
	}
	if err := ledger.maxSupplyPerAddress.Set(caps.MaxSupplyPerAddress); err != nil {
		return err
	}
	if err := ledger.limited.Set(caps.Limited); err != nil {
		return err
	}
	return ledger.limitedPerAddress.Set(caps.LimitedPerAddress)
}

func Open(sto *storage.Storage) *Ledger {
	return &Ledger{
		backingStorage:      sto,
		supply:              sto.OpenStorageBackedUint256(supplyOffset),
		burned:              sto.OpenStorageBackedUint256(burnedOffset),
		maxSupply:           sto.OpenStorageBackedUint256(maxSupplyOffset),
		maxSupplyPerAddress: sto.OpenStorageBackedUint256(maxSupplyPerAddressOffset),
		limited:             sto.OpenStorageBackedBool(limitedOffset),
		limitedPerAddress:   sto.OpenStorageBackedBool(limitedPerAddressOffset),
		minted:              sto.OpenSubStorage(mintedKey),
	}
}

func (l *Ledger) Supply() *uint256.Int {
	return l.supply.Get()
}

func (l *Ledger) Burned() *uint256.Int {
	return l.burned.Get()
}

// Circulating is the number of issued units not yet burned.
func (l *Ledger) Circulating() *uint256.Int {
	return new(uint256.Int).Sub(l.supply.Get(), l.burned.Get())
}

func (l *Ledger) Caps() Caps {
	return Caps{
		MaxSupply:           l.maxSupply.Get(),
		MaxSupplyPerAddress: l.maxSupplyPerAddress.Get(),
		Limited:             l.limited.Get(),
		LimitedPerAddress:   l.limitedPerAddress.Get(),
	}
}

func (l *Ledger) MaxSupply() *uint256.Int {
	return l.maxSupply.Get()
}

func (l *Ledger) MaxSupplyPerAddress() *uint256.Int {
	return l.maxSupplyPerAddress.Get()
}

func (l *Ledger) Limited() bool {
	return l.limited.Get()
}

func (l *Ledger) LimitedPerAddress() bool {
	return l.limitedPerAddress.Get()
}

// Reserve checks that amount more units fit under the global cap. It changes nothing.
func (l *Ledger) Reserve(amount uint64) error {
	if !l.limited.Get() {
		return nil
	}
	supply := l.supply.Get()
	after, ok := arbmath.U256AddByUint(supply, amount)
	maxSupply := l.maxSupply.Get()
	if !ok || after.Gt(maxSupply) {
		return fmt.Errorf("%w: supply %v + %d > %v", ErrMaxSupplyExceeded, supply, amount, maxSupply)
	}
	return nil
}

// Commit adds amount to supply and returns the new supply, which is the number of the last unit issued.
func (l *Ledger) Commit(amount uint64) (*uint256.Int, error) {
	after, ok := arbmath.U256AddByUint(l.supply.Get(), amount)
	if !ok {
		panic("overflow in collection supply")
	}
	return after, l.supply.Set(after)
}

func (l *Ledger) MintedBalance(account common.Address) *uint256.Int {
	return util.HashToU256(l.minted.Get(util.AddressToHash(account)))
}

func (l *Ledger) AddMinted(account common.Address, amount uint64) error {
	after, ok := arbmath.U256AddByUint(l.MintedBalance(account), amount)
	if !ok {
		panic("overflow in minted balance")
	}
	return l.minted.Set(util.AddressToHash(account), util.U256ToHash(after))
}

// RecordBurn counts one burned unit and takes it off holder's minted balance. The balance saturates at zero
// since holder may have received the unit by transfer rather than by minting it.
func (l *Ledger) RecordBurn(holder common.Address) error {
	burned, ok := arbmath.U256AddByUint(l.burned.Get(), 1)
	if !ok {
		panic("overflow in burned counter")
	}
	if err := l.burned.Set(burned); err != nil {
		return err
	}
	remaining := arbmath.U256SaturatingSubByUint(l.MintedBalance(holder), 1)
	return l.minted.Set(util.AddressToHash(holder), util.U256ToHash(remaining))
}

// SetMaxSupplyPerAddress installs a new per-address cap and turns per-address limiting on.
func (l *Ledger) SetMaxSupplyPerAddress(value *uint256.Int) error {
	if maxSupply := l.maxSupply.Get(); value.Gt(maxSupply) {
		return fmt.Errorf("%w: %v > %v", ErrMaxSupplyPerAddressExceeded, value, maxSupply)
	}
	if err := l.maxSupplyPerAddress.Set(value); err != nil {
		return err
	}
	return l.limitedPerAddress.Set(true)
}
