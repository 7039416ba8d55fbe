// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package eventlog

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/mintengine/collection/storage"
	"github.com/offchainlabs/mintengine/util/testhelpers"
)

func TestEmitAndDecode(t *testing.T) {
	statedb := storage.NewMemoryBackedStateDB()
	txHash := testhelpers.RandomHash()
	statedb.SetTxContext(txHash, 0)

	address := testhelpers.RandomAddress()
	to := testhelpers.RandomAddress()
	emitter := NewEmitter(statedb, address, CollectionABI)

	require.NoError(t, emitter.Emit("Minted", to, uint256.NewInt(7), uint256.NewInt(3)))
	require.NoError(t, emitter.Emit("TokenURISet", "ipfs://collection/"))
	require.NoError(t, emitter.Emit("PausedContract", true))

	logs := statedb.GetLogs(txHash, 0, common.Hash{})
	require.Len(t, logs, 3)
	require.Len(t, logs[0].Topics, 3)
	require.Equal(t, common.BytesToHash(to.Bytes()), logs[0].Topics[1])

	events, err := DecodeAll(CollectionABI, logs)
	require.NoError(t, err)

	require.Equal(t, "Minted", events[0].Name)
	require.Equal(t, address, events[0].Address)
	require.Equal(t, to, events[0].Fields["to"])
	require.Equal(t, 0, big.NewInt(7).Cmp(events[0].Fields["tokenId"].(*big.Int)))
	require.Equal(t, 0, big.NewInt(3).Cmp(events[0].Fields["amount"].(*big.Int)))

	require.Equal(t, "TokenURISet", events[1].Name)
	require.Equal(t, "ipfs://collection/", events[1].Fields["uri"])

	require.Equal(t, "PausedContract", events[2].Name)
	require.Equal(t, true, events[2].Fields["paused"])
}

func TestEmitRejectsBadCalls(t *testing.T) {
	statedb := storage.NewMemoryBackedStateDB()
	emitter := NewEmitter(statedb, testhelpers.RandomAddress(), CollectionABI)

	err := emitter.Emit("Minted", testhelpers.RandomAddress())
	require.Error(t, err)

	err = emitter.Emit("NoSuchEvent")
	require.True(t, errors.Is(err, ErrUnknownEvent))
}

func TestDecodeForeignLog(t *testing.T) {
	_, err := Decode(CollectionABI, &types.Log{Topics: []common.Hash{testhelpers.RandomHash()}})
	require.ErrorIs(t, err, ErrUnknownEvent)

	_, err = Decode(CollectionABI, &types.Log{})
	require.ErrorIs(t, err, ErrUnknownEvent)
}
