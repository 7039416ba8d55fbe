// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/mintengine/collection/collectionState"
	"github.com/offchainlabs/mintengine/collection/hooks"
)

func toInt64(t *testing.T, value interface{}) int64 {
	t.Helper()
	wide, ok := value.(*big.Int)
	require.True(t, ok, "expected *big.Int, got %T", value)
	require.True(t, wide.IsInt64())
	return wide.Int64()
}

func TestBurn(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.mint(h.alice, 300, 3, h.alice)
	require.NoError(t, err)

	first := uint256.NewInt(1)
	_, err = h.call(h.bob, 0, "burn", func(c *Collection, ctx CallContext) error {
		return c.Burn(ctx, first)
	})
	require.ErrorIs(t, err, ErrUnauthorizedAccess)
	h.view(func(c *Collection) {
		holder, err := c.OwnerOf(first)
		require.NoError(t, err)
		require.Equal(t, h.alice, holder)
		require.Equal(t, uint64(3), c.Supply().Uint64())
	})

	receipt, err := h.call(h.alice, 0, "burn", func(c *Collection, ctx CallContext) error {
		return c.Burn(ctx, first)
	})
	require.NoError(t, err)
	burned := eventsNamed(h.events(receipt), "Burned")
	require.Len(t, burned, 1)
	require.Equal(t, int64(1), toInt64(t, burned[0].Fields["tokenId"]))

	_, err = h.call(h.owner, 0, "burn", func(c *Collection, ctx CallContext) error {
		return c.Burn(ctx, uint256.NewInt(2))
	})
	require.NoError(t, err)

	_, err = h.call(h.alice, 0, "burn", func(c *Collection, ctx CallContext) error {
		return c.Burn(ctx, first)
	})
	require.ErrorIs(t, err, ErrNonexistentToken)

	h.view(func(c *Collection) {
		require.Equal(t, uint64(3), c.Supply().Uint64())
		require.Equal(t, uint64(1), c.TotalSupply().Uint64())
		require.Equal(t, uint64(2), c.Burned().Uint64())
		require.Equal(t, uint64(1), c.MintedBalance(h.alice).Uint64())
		require.Equal(t, uint64(1), c.OwnedCount(h.alice).Uint64())
	})

	// burned numbers are retired, and the freed allowance can be used again
	_, err = h.mint(h.alice, 200, 2, h.alice)
	require.NoError(t, err)
	h.view(func(c *Collection) {
		holder, err := c.OwnerOf(uint256.NewInt(5))
		require.NoError(t, err)
		require.Equal(t, h.alice, holder)
	})
}

func TestAdminSetters(t *testing.T) {
	h := newHarness(t, func(config *collectionState.InitConfig) {
		config.LimitedPerAddress = false
	})
	setters := map[string]func(*Collection, CallContext) error{
		"setCost": func(c *Collection, ctx CallContext) error {
			return c.SetCost(ctx, uint256.NewInt(7))
		},
		"setTokenURI": func(c *Collection, ctx CallContext) error {
			return c.SetTokenURI(ctx, "ipfs://moved/")
		},
		"setMaxSupplyPerAddress": func(c *Collection, ctx CallContext) error {
			return c.SetMaxSupplyPerAddress(ctx, uint256.NewInt(2))
		},
	}
	for method, setter := range setters {
		_, err := h.call(h.alice, 0, method, setter)
		require.ErrorIs(t, err, ErrUnauthorizedAccess, method)
	}
	h.view(func(c *Collection) {
		require.False(t, c.LimitedPerAddress())
		require.Equal(t, uint64(100), c.Cost().Uint64())
	})

	expectedEvents := map[string]string{
		"setCost":                "CostSet",
		"setTokenURI":            "TokenURISet",
		"setMaxSupplyPerAddress": "MaxSupplyPerAddressUpdated",
	}
	for method, setter := range setters {
		for i := 0; i < 2; i++ {
			receipt, err := h.call(h.owner, 0, method, setter)
			require.NoError(t, err, method)
			require.Len(t, eventsNamed(h.events(receipt), expectedEvents[method]), 1, method)
		}
	}
	_, err := h.call(h.owner, 0, "setMaxSupplyPerAddress", func(c *Collection, ctx CallContext) error {
		return c.SetMaxSupplyPerAddress(ctx, uint256.NewInt(11))
	})
	require.ErrorIs(t, err, ErrMaxSupplyPerAddressExceeded)

	h.view(func(c *Collection) {
		require.Equal(t, uint64(7), c.Cost().Uint64())
		require.True(t, c.LimitedPerAddress())
		require.Equal(t, uint64(2), c.MaxSupplyPerAddress().Uint64())
		uri, err := c.BaseURI()
		require.NoError(t, err)
		require.Equal(t, "ipfs://moved/", uri)
	})

	_, err = h.mint(h.alice, 21, 3, h.alice)
	require.ErrorIs(t, err, ErrMaxSupplyPerAddressExceeded)
	_, err = h.mint(h.alice, 14, 2, h.alice)
	require.NoError(t, err)
	h.view(func(c *Collection) {
		uri, err := c.TokenURI(uint256.NewInt(2))
		require.NoError(t, err)
		require.Equal(t, "ipfs://moved/", uri)
	})
}

func TestTokenURIIgnoresId(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.mint(h.alice, 100, 1, h.alice)
	require.NoError(t, err)
	first := uint256.NewInt(1)

	uriOf := func(id *uint256.Int) string {
		var uri string
		h.view(func(c *Collection) {
			var err error
			uri, err = c.TokenURI(id)
			require.NoError(t, err)
		})
		return uri
	}
	require.Equal(t, "ipfs://collection/", uriOf(first))
	require.Equal(t, "ipfs://collection/", uriOf(uint256.NewInt(99)))

	_, err = h.call(h.alice, 0, "burn", func(c *Collection, ctx CallContext) error {
		return c.Burn(ctx, first)
	})
	require.NoError(t, err)
	require.Equal(t, "ipfs://collection/", uriOf(first))
}

func TestTransferOwnership(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.call(h.alice, 0, "transferOwnership", func(c *Collection, ctx CallContext) error {
		return c.TransferOwnership(ctx, h.alice)
	})
	require.ErrorIs(t, err, ErrUnauthorizedAccess)

	_, err = h.call(h.owner, 0, "transferOwnership", func(c *Collection, ctx CallContext) error {
		return c.TransferOwnership(ctx, common.Address{})
	})
	require.ErrorIs(t, err, ErrInvalidOwner)

	receipt, err := h.call(h.owner, 0, "transferOwnership", func(c *Collection, ctx CallContext) error {
		return c.TransferOwnership(ctx, h.bob)
	})
	require.NoError(t, err)
	require.Len(t, eventsNamed(h.events(receipt), "OwnershipTransferred"), 1)

	_, err = h.mint(h.bob, 0, 5, h.alice)
	require.NoError(t, err)
	_, err = h.call(h.owner, 0, "setCost", func(c *Collection, ctx CallContext) error {
		return c.SetCost(ctx, uint256.NewInt(1))
	})
	require.ErrorIs(t, err, ErrUnauthorizedAccess)
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.call(h.owner, 0, "withdraw", func(c *Collection, ctx CallContext) error {
		return c.Withdraw(ctx)
	})
	require.ErrorIs(t, err, ErrNoFundsAvailable)

	_, err = h.mint(h.alice, 300, 3, h.alice)
	require.NoError(t, err)
	_, err = h.mint(h.bob, 150, 1, h.bob)
	require.NoError(t, err)

	_, err = h.call(h.alice, 0, "withdraw", func(c *Collection, ctx CallContext) error {
		return c.Withdraw(ctx)
	})
	require.ErrorIs(t, err, ErrUnauthorizedAccess)

	receipt, err := h.call(h.owner, 0, "withdraw", func(c *Collection, ctx CallContext) error {
		return c.Withdraw(ctx)
	})
	require.NoError(t, err)
	withdrawn := eventsNamed(h.events(receipt), "Withdrawn")
	require.Len(t, withdrawn, 1)
	require.Equal(t, int64(450), toInt64(t, withdrawn[0].Fields["amount"]))
	require.Equal(t, uint64(startingBalance+450), h.processor.Balance(h.owner).Uint64())
	require.True(t, h.processor.Balance(h.address).IsZero())
}

func TestWithdrawRefusedByOwner(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.mint(h.alice, 100, 1, h.alice)
	require.NoError(t, err)

	refused := errors.New("owner account cannot take payments")
	h.receivers.RegisterValueReceiver(h.owner, hooks.ValueReceiverFunc(func(common.Address, *uint256.Int) error {
		return refused
	}))
	_, err = h.call(h.owner, 0, "withdraw", func(c *Collection, ctx CallContext) error {
		return c.Withdraw(ctx)
	})
	require.ErrorIs(t, err, ErrWithdrawFailed)
	require.ErrorIs(t, err, refused)
	require.Equal(t, uint64(100), h.processor.Balance(h.address).Uint64())
	require.Equal(t, uint64(startingBalance), h.processor.Balance(h.owner).Uint64())
}

type failingTreasury struct {
	balance *uint256.Int
}

func (f *failingTreasury) Balance() *uint256.Int { return f.balance }

func (f *failingTreasury) Transfer(common.Address, *uint256.Int) error {
	return errors.New("transfer mechanism unavailable")
}

func TestSubstitutedTreasury(t *testing.T) {
	h := newHarness(t, nil, WithTreasury(&failingTreasury{balance: uint256.NewInt(5)}))
	_, err := h.call(h.owner, 0, "withdraw", func(c *Collection, ctx CallContext) error {
		return c.Withdraw(ctx)
	})
	require.ErrorIs(t, err, ErrWithdrawFailed)
}

func TestNestedCallsAreRejected(t *testing.T) {
	h := newHarness(t, nil)
	var nested []error
	h.receivers.RegisterTokenReceiver(h.alice, hooks.TokenReceiverFunc(func(operator, from common.Address, tokenId *uint256.Int) error {
		c, err := Open(h.statedb, h.address, h.receivers)
		require.NoError(t, err)
		inner := CallContext{Caller: h.alice}
		nested = append(nested,
			c.Mint(CallContext{Caller: h.alice, Value: uint256.NewInt(100)}, 1, h.alice),
			c.Burn(inner, tokenId),
			c.Drop(CallContext{Caller: h.owner}, []common.Address{h.alice}),
			c.Withdraw(CallContext{Caller: h.owner}),
		)
		return nil
	}))

	_, err := h.mint(h.alice, 100, 1, h.alice)
	require.NoError(t, err)
	require.Len(t, nested, 4)
	for _, err := range nested {
		require.ErrorIs(t, err, ErrReentrantCall)
	}
	require.Equal(t, uint64(1), h.supply())
	h.view(func(c *Collection) {
		require.Equal(t, uint64(1), c.MintedBalance(h.alice).Uint64())
	})
}

func TestRefusingReceiverRevertsBatch(t *testing.T) {
	h := newHarness(t, nil)
	h.receivers.RegisterTokenReceiver(h.bob, hooks.TokenReceiverFunc(func(_, _ common.Address, tokenId *uint256.Int) error {
		if tokenId.Uint64() == 2 {
			return errors.New("only one, please")
		}
		return nil
	}))
	receipt, err := h.mint(h.bob, 300, 3, h.bob)
	require.Error(t, err)
	require.Empty(t, receipt.Logs)
	require.Zero(t, h.supply())
	require.Equal(t, uint64(startingBalance), h.processor.Balance(h.bob).Uint64())
	h.view(func(c *Collection) {
		require.True(t, c.OwnedCount(h.bob).IsZero())
		require.True(t, c.MintedBalance(h.bob).IsZero())
	})
}

func TestReadOnlyCollectionRejectsWrites(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.processor.View(func(statedb vm.StateDB) error {
		c, err := OpenReadOnly(statedb, h.address)
		require.NoError(t, err)
		require.Error(t, c.SetPause(CallContext{Caller: h.owner}, true))
		return nil
	}))
}

func TestTransferFromKeepsMintedBalance(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.mint(h.alice, 300, 3, h.alice)
	require.NoError(t, err)

	id := uint256.NewInt(2)
	_, err = h.call(h.bob, 0, "transferFrom", func(c *Collection, ctx CallContext) error {
		return c.TransferFrom(ctx, h.alice, h.bob, id)
	})
	require.ErrorIs(t, err, ErrNotTokenOwner)

	receipt, err := h.call(h.alice, 0, "transferFrom", func(c *Collection, ctx CallContext) error {
		return c.TransferFrom(ctx, h.alice, h.bob, id)
	})
	require.NoError(t, err)
	require.Len(t, eventsNamed(h.events(receipt), "Transfer"), 1)

	h.view(func(c *Collection) {
		holder, err := c.OwnerOf(id)
		require.NoError(t, err)
		require.Equal(t, h.bob, holder)
		require.Equal(t, uint64(2), c.OwnedCount(h.alice).Uint64())
		require.Equal(t, uint64(1), c.OwnedCount(h.bob).Uint64())
		require.Equal(t, uint64(3), c.MintedBalance(h.alice).Uint64())
		require.True(t, c.MintedBalance(h.bob).IsZero())
	})

	// alice still holds three minted units against a cap of three
	_, err = h.mint(h.alice, 100, 1, h.alice)
	require.ErrorIs(t, err, ErrMaxSupplyPerAddressExceeded)
}
