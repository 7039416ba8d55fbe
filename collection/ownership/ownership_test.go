// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package ownership

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/util/testhelpers"
)

func TestTransferOwnership(t *testing.T) {
	account := testhelpers.RandomAddress()
	statedb := storage.NewMemoryBackedStateDB()
	txHash := testhelpers.RandomHash()
	statedb.SetTxContext(txHash, 0)
	sto := storage.NewGeth(statedb, account)
	emitter := eventlog.NewEmitter(statedb, account, eventlog.CollectionABI)

	owner := testhelpers.RandomAddress()
	next := testhelpers.RandomAddress()
	require.ErrorIs(t, Initialize(sto, common.Address{}, emitter), ErrInvalidOwner)
	require.NoError(t, Initialize(sto, owner, emitter))

	registry := Open(sto, emitter)
	require.Equal(t, owner, registry.Owner())
	require.ErrorIs(t, registry.TransferOwnership(next, next), ErrUnauthorizedAccess)
	require.ErrorIs(t, registry.TransferOwnership(owner, common.Address{}), ErrInvalidOwner)
	require.NoError(t, registry.TransferOwnership(owner, next))
	require.True(t, registry.IsOwner(next))
	require.ErrorIs(t, registry.RequireOwner(owner), ErrUnauthorizedAccess)

	events, err := eventlog.DecodeAll(eventlog.CollectionABI, statedb.GetLogs(txHash, 0, common.Hash{}))
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, common.Address{}, events[0].Fields["previousOwner"])
	require.Equal(t, owner, events[1].Fields["previousOwner"])
	require.Equal(t, next, events[1].Fields["newOwner"])
}
