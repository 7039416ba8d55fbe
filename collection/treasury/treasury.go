// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package treasury

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/hooks"
)

var (
	ErrInsufficientBalance = errors.New("insufficient treasury balance")
	ErrTransferRejected    = errors.New("payee rejected transfer")
)

// Treasury is the native balance held by a collection's address.
type Treasury struct {
	db        vm.StateDB
	account   common.Address
	receivers hooks.Resolver
}

func New(db vm.StateDB, account common.Address, receivers hooks.Resolver) *Treasury {
	if receivers == nil {
		receivers = hooks.None
	}
	return &Treasury{
		db:        db,
		account:   account,
		receivers: receivers,
	}
}

func (t *Treasury) Balance() *uint256.Int {
	return new(uint256.Int).Set(t.db.GetBalance(t.account))
}

// Transfer pays amount to the payee. If the payee's hook refuses the payment, every effect of the transfer is
// undone before the error is returned.
func (t *Treasury) Transfer(to common.Address, amount *uint256.Int) error {
	if balance := t.Balance(); balance.Lt(amount) {
		return fmt.Errorf("%w: have %v want %v", ErrInsufficientBalance, balance, amount)
	}
	snapshot := t.db.Snapshot()
	t.db.SubBalance(t.account, amount)
	t.db.AddBalance(to, amount)
	receiver, ok := t.receivers.ValueReceiver(to)
	if !ok {
		return nil
	}
	if err := receiver.OnValueReceived(t.account, amount); err != nil {
		t.db.RevertToSnapshot(snapshot)
		return fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}
	return nil
}
