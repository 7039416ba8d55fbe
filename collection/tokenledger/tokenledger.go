// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package tokenledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/collection/util"
	"github.com/offchainlabs/mintengine/util/arbmath"
)

var (
	ErrInvalidReceiver    = errors.New("invalid receiver")
	ErrNonexistentToken   = errors.New("nonexistent token")
	ErrTokenAlreadyExists = errors.New("token already minted")
	ErrNotTokenOwner      = errors.New("caller is not the token owner")
	ErrReceiverRejected   = errors.New("receiver rejected token")
)

var (
	nameKey     = []byte{0}
	symbolKey   = []byte{1}
	ownersKey   = []byte{2}
	balancesKey = []byte{3}
)

// Ledger records which account holds each unit, ERC-721 style.
type Ledger struct {
	name      storage.StorageBackedString
	symbol    storage.StorageBackedString
	owners    *storage.Storage
	balances  *storage.Storage
	emitter   *eventlog.Emitter
	receivers hooks.Resolver
}

func Initialize(sto *storage.Storage, name, symbol string) error {
	nameSlot := sto.OpenStorageBackedString(nameKey)
	if err := nameSlot.Set(name); err != nil {
		return err
	}
	symbolSlot := sto.OpenStorageBackedString(symbolKey)
	return symbolSlot.Set(symbol)
}

func Open(sto *storage.Storage, emitter *eventlog.Emitter, receivers hooks.Resolver) *Ledger {
	if receivers == nil {
		receivers = hooks.None
	}
	return &Ledger{
		name:      sto.OpenStorageBackedString(nameKey),
		symbol:    sto.OpenStorageBackedString(symbolKey),
		owners:    sto.OpenSubStorage(ownersKey),
		balances:  sto.OpenSubStorage(balancesKey),
		emitter:   emitter,
		receivers: receivers,
	}
}

func (l *Ledger) Name() (string, error) {
	return l.name.Get()
}

func (l *Ledger) Symbol() (string, error) {
	return l.symbol.Get()
}

func (l *Ledger) holder(tokenId *uint256.Int) common.Address {
	return util.HashToAddress(l.owners.Get(util.U256ToHash(tokenId)))
}

func (l *Ledger) Exists(tokenId *uint256.Int) bool {
	return l.holder(tokenId) != (common.Address{})
}

func (l *Ledger) OwnerOf(tokenId *uint256.Int) (common.Address, error) {
	holder := l.holder(tokenId)
	if holder == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %v", ErrNonexistentToken, tokenId)
	}
	return holder, nil
}

func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	return util.HashToU256(l.balances.Get(util.AddressToHash(account)))
}

func (l *Ledger) setHolder(tokenId *uint256.Int, holder common.Address) error {
	return l.owners.Set(util.U256ToHash(tokenId), util.AddressToHash(holder))
}

func (l *Ledger) adjustBalance(account common.Address, increase bool) error {
	balance := l.BalanceOf(account)
	if increase {
		var ok bool
		balance, ok = arbmath.U256AddByUint(balance, 1)
		if !ok {
			panic("overflow in token balance")
		}
	} else {
		if balance.IsZero() {
			return fmt.Errorf("token balance of %v is already zero", account)
		}
		balance = arbmath.U256SaturatingSubByUint(balance, 1)
	}
	return l.balances.Set(util.AddressToHash(account), util.U256ToHash(balance))
}

// SafeMint records to as the holder of a new unit and then gives to's receiver hook, if any, the chance to
// refuse it. A refusal is returned as an error; the caller's transaction is expected to revert.
func (l *Ledger) SafeMint(operator, to common.Address, tokenId *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	if l.Exists(tokenId) {
		return fmt.Errorf("%w: %v", ErrTokenAlreadyExists, tokenId)
	}
	if err := l.setHolder(tokenId, to); err != nil {
		return err
	}
	if err := l.adjustBalance(to, true); err != nil {
		return err
	}
	if err := l.emitter.Emit("Transfer", common.Address{}, to, tokenId); err != nil {
		return err
	}
	return l.notify(operator, common.Address{}, to, tokenId)
}

func (l *Ledger) notify(operator, from, to common.Address, tokenId *uint256.Int) error {
	receiver, ok := l.receivers.TokenReceiver(to)
	if !ok {
		return nil
	}
	if err := receiver.OnTokenReceived(operator, from, tokenId); err != nil {
		return fmt.Errorf("%w: %w", ErrReceiverRejected, err)
	}
	return nil
}

// Burn destroys a unit and returns the account that held it.
func (l *Ledger) Burn(tokenId *uint256.Int) (common.Address, error) {
	holder, err := l.OwnerOf(tokenId)
	if err != nil {
		return common.Address{}, err
	}
	if err := l.setHolder(tokenId, common.Address{}); err != nil {
		return common.Address{}, err
	}
	if err := l.adjustBalance(holder, false); err != nil {
		return common.Address{}, err
	}
	return holder, l.emitter.Emit("Transfer", holder, common.Address{}, tokenId)
}

// TransferFrom moves a unit between accounts. Only the current holder may move it; approvals are not kept.
func (l *Ledger) TransferFrom(caller, from, to common.Address, tokenId *uint256.Int) error {
	holder, err := l.OwnerOf(tokenId)
	if err != nil {
		return err
	}
	if holder != from || caller != holder {
		return ErrNotTokenOwner
	}
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	if err := l.setHolder(tokenId, to); err != nil {
		return err
	}
	if err := l.adjustBalance(from, false); err != nil {
		return err
	}
	if err := l.adjustBalance(to, true); err != nil {
		return err
	}
	if err := l.emitter.Emit("Transfer", from, to, tokenId); err != nil {
		return err
	}
	return l.notify(caller, from, to, tokenId)
}
