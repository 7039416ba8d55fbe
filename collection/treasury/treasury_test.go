// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package treasury

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/util/testhelpers"
)

func TestTransfer(t *testing.T) {
	statedb := storage.NewMemoryBackedStateDB()
	account := testhelpers.RandomAddress()
	payee := testhelpers.RandomAddress()
	statedb.AddBalance(account, uint256.NewInt(100))

	treasury := New(statedb, account, nil)
	require.ErrorIs(t, treasury.Transfer(payee, uint256.NewInt(101)), ErrInsufficientBalance)
	require.NoError(t, treasury.Transfer(payee, uint256.NewInt(60)))
	require.Equal(t, uint64(40), treasury.Balance().Uint64())
	require.Equal(t, uint64(60), statedb.GetBalance(payee).Uint64())
}

func TestRefusedTransferLeavesBalances(t *testing.T) {
	statedb := storage.NewMemoryBackedStateDB()
	account := testhelpers.RandomAddress()
	payee := testhelpers.RandomAddress()
	statedb.AddBalance(account, uint256.NewInt(100))

	registry := hooks.NewRegistry()
	refused := errors.New("no thanks")
	registry.RegisterValueReceiver(payee, hooks.ValueReceiverFunc(func(from common.Address, amount *uint256.Int) error {
		require.Equal(t, account, from)
		return refused
	}))

	treasury := New(statedb, account, registry)
	err := treasury.Transfer(payee, uint256.NewInt(100))
	require.ErrorIs(t, err, ErrTransferRejected)
	require.ErrorIs(t, err, refused)
	require.Equal(t, uint64(100), treasury.Balance().Uint64())
	require.True(t, statedb.GetBalance(payee).IsZero())
}
