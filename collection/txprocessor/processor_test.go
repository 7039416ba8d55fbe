// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package txprocessor

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/mintengine/util/testhelpers"
)

var (
	slot  = common.HexToHash("0x01")
	value = common.HexToHash("0x2a")
)

func newProcessor(t *testing.T, db ethdb.Database, alloc map[common.Address]*uint256.Int) *Processor {
	t.Helper()
	chain, err := OpenChain(db)
	require.NoError(t, err)
	processor, err := NewProcessor(chain, &TestConfig, nil)
	require.NoError(t, err)
	require.NoError(t, processor.Genesis(alloc))
	return processor
}

func TestApplyCommitsAndPersists(t *testing.T) {
	ctx := context.Background()
	db := rawdb.NewMemoryDatabase()
	from := testhelpers.RandomAddress()
	to := testhelpers.RandomAddress()
	processor := newProcessor(t, db, map[common.Address]*uint256.Int{from: uint256.NewInt(100)})
	genesis := processor.Head()
	require.Equal(t, uint64(1), genesis.Number)

	tx := &Transaction{From: from, To: to, Value: uint256.NewInt(30), Method: "store"}
	receipt, err := processor.Apply(ctx, tx, func(statedb vm.StateDB) error {
		statedb.SetState(to, slot, value)
		statedb.AddLog(&types.Log{Address: to, Topics: []common.Hash{slot}})
		return nil
	})
	require.NoError(t, err)
	require.True(t, receipt.Succeeded())
	require.Equal(t, tx.Hash(2), receipt.TxHash)
	require.Len(t, receipt.Logs, 1)
	require.Equal(t, uint64(70), processor.Balance(from).Uint64())
	require.Equal(t, uint64(30), processor.Balance(to).Uint64())

	cached, err := processor.Receipt(ctx, receipt.TxHash)
	require.NoError(t, err)
	require.Equal(t, receipt, cached)

	reopened := newProcessor(t, db, nil)
	require.Equal(t, processor.Head(), reopened.Head())
	require.Equal(t, uint64(30), reopened.Balance(to).Uint64())
	require.NoError(t, reopened.View(func(statedb vm.StateDB) error {
		require.Equal(t, value, statedb.GetState(to, slot))
		return nil
	}))
}

func TestFailedCallRevertsEverything(t *testing.T) {
	ctx := context.Background()
	from := testhelpers.RandomAddress()
	to := testhelpers.RandomAddress()
	processor := newProcessor(t, rawdb.NewMemoryDatabase(), map[common.Address]*uint256.Int{from: uint256.NewInt(100)})
	before := processor.Head()
	boom := errors.New("boom")

	receipt, err := processor.Apply(ctx, &Transaction{From: from, To: to, Value: uint256.NewInt(50), Method: "fail"}, func(statedb vm.StateDB) error {
		statedb.SetState(to, slot, value)
		statedb.AddLog(&types.Log{Address: to})
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, receipt.Succeeded())
	require.Equal(t, boom.Error(), receipt.Error)
	require.Empty(t, receipt.Logs)
	require.Equal(t, before.Root, receipt.StateRoot)
	require.Equal(t, before.Number+1, processor.Head().Number)
	require.Equal(t, uint64(100), processor.Balance(from).Uint64())
	require.True(t, processor.Balance(to).IsZero())
}

func TestValueNeedsBalance(t *testing.T) {
	processor := newProcessor(t, rawdb.NewMemoryDatabase(), nil)
	called := false
	_, err := processor.Apply(context.Background(), &Transaction{
		From:  testhelpers.RandomAddress(),
		To:    testhelpers.RandomAddress(),
		Value: uint256.NewInt(1),
	}, func(vm.StateDB) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrInsufficientBalanceForValue)
	require.False(t, called)
}

func TestPanicIsReverted(t *testing.T) {
	logs := testhelpers.InitTestLog(t, log.LevelTrace)
	processor := newProcessor(t, rawdb.NewMemoryDatabase(), nil)
	to := testhelpers.RandomAddress()
	receipt, err := processor.Apply(context.Background(), &Transaction{To: to, Method: "panic"}, func(statedb vm.StateDB) error {
		statedb.SetState(to, slot, value)
		panic("unreachable state")
	})
	require.Error(t, err)
	require.False(t, receipt.Succeeded())
	require.True(t, logs.WasLogged("transaction panicked"))
	require.True(t, logs.WasLogged("transaction reverted"))
	require.NoError(t, processor.View(func(statedb vm.StateDB) error {
		require.Equal(t, common.Hash{}, statedb.GetState(to, slot))
		return nil
	}))
}

func TestViewDiscardsWrites(t *testing.T) {
	processor := newProcessor(t, rawdb.NewMemoryDatabase(), nil)
	to := testhelpers.RandomAddress()
	require.NoError(t, processor.View(func(statedb vm.StateDB) error {
		statedb.SetState(to, slot, value)
		return nil
	}))
	require.NoError(t, processor.View(func(statedb vm.StateDB) error {
		require.Equal(t, common.Hash{}, statedb.GetState(to, slot))
		return nil
	}))
}

func TestUnknownReceipt(t *testing.T) {
	processor := newProcessor(t, rawdb.NewMemoryDatabase(), nil)
	_, err := processor.Receipt(context.Background(), testhelpers.RandomHash())
	require.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestConfigValidate(t *testing.T) {
	config := TestConfig
	require.NoError(t, config.Validate())
	config.ReceiptsCacheSize = 0
	require.Error(t, config.Validate())
}
