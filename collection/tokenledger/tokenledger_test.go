// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package tokenledger

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/util/testhelpers"
)

func openLedger(t *testing.T, receivers hooks.Resolver) (*Ledger, *state.StateDB, common.Hash) {
	t.Helper()
	account := testhelpers.RandomAddress()
	statedb := storage.NewMemoryBackedStateDB()
	txHash := testhelpers.RandomHash()
	statedb.SetTxContext(txHash, 0)
	sto := storage.NewGeth(statedb, account)
	require.NoError(t, Initialize(sto, "Collection", "COL"))
	return Open(sto, eventlog.NewEmitter(statedb, account, eventlog.CollectionABI), receivers), statedb, txHash
}

func TestMintTransferBurn(t *testing.T) {
	ledger, statedb, txHash := openLedger(t, nil)
	alice := testhelpers.RandomAddress()
	bob := testhelpers.RandomAddress()
	id := uint256.NewInt(1)

	name, err := ledger.Name()
	require.NoError(t, err)
	require.Equal(t, "Collection", name)

	_, err = ledger.OwnerOf(id)
	require.ErrorIs(t, err, ErrNonexistentToken)

	require.ErrorIs(t, ledger.SafeMint(alice, common.Address{}, id), ErrInvalidReceiver)
	require.NoError(t, ledger.SafeMint(alice, alice, id))
	require.ErrorIs(t, ledger.SafeMint(alice, bob, id), ErrTokenAlreadyExists)

	holder, err := ledger.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, alice, holder)
	require.Equal(t, uint64(1), ledger.BalanceOf(alice).Uint64())

	require.ErrorIs(t, ledger.TransferFrom(bob, alice, bob, id), ErrNotTokenOwner)
	require.NoError(t, ledger.TransferFrom(alice, alice, bob, id))
	require.True(t, ledger.BalanceOf(alice).IsZero())
	require.Equal(t, uint64(1), ledger.BalanceOf(bob).Uint64())

	holder, err = ledger.Burn(id)
	require.NoError(t, err)
	require.Equal(t, bob, holder)
	require.False(t, ledger.Exists(id))
	require.True(t, ledger.BalanceOf(bob).IsZero())

	events, err := eventlog.DecodeAll(eventlog.CollectionABI, statedb.GetLogs(txHash, 0, common.Hash{}))
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, event := range events {
		require.Equal(t, "Transfer", event.Name)
	}
	require.Equal(t, common.Address{}, events[0].Fields["from"])
	require.Equal(t, common.Address{}, events[2].Fields["to"])
}

func TestReceiverHookRefusal(t *testing.T) {
	registry := hooks.NewRegistry()
	refusing := testhelpers.RandomAddress()
	refused := errors.New("not accepting units")
	var seen []*uint256.Int
	registry.RegisterTokenReceiver(refusing, hooks.TokenReceiverFunc(func(operator, from common.Address, tokenId *uint256.Int) error {
		seen = append(seen, tokenId)
		return refused
	}))
	ledger, _, _ := openLedger(t, registry)

	err := ledger.SafeMint(refusing, refusing, uint256.NewInt(9))
	require.ErrorIs(t, err, ErrReceiverRejected)
	require.ErrorIs(t, err, refused)
	require.Len(t, seen, 1)
	require.Equal(t, uint64(9), seen[0].Uint64())
}
