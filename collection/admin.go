// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/policy"
)

// ownerOnly runs fn if the call comes from the owner and carries no value.
func (c *Collection) ownerOnly(ctx CallContext, fn func() error) error {
	if err := ctx.requireNonPayable(); err != nil {
		return err
	}
	if err := policy.RequireOwner(c, ctx.Caller); err != nil {
		return err
	}
	return fn()
}

func (c *Collection) SetCost(ctx CallContext, cost *uint256.Int) error {
	return c.ownerOnly(ctx, func() error {
		if err := c.state.SetCost(cost); err != nil {
			return err
		}
		log.Info("collection cost set", "cost", cost)
		return c.emitter.Emit("CostSet", cost)
	})
}

func (c *Collection) SetTokenURI(ctx CallContext, uri string) error {
	return c.ownerOnly(ctx, func() error {
		if err := c.state.SetTokenURI(uri); err != nil {
			return err
		}
		log.Info("collection token uri set", "uri", uri)
		return c.emitter.Emit("TokenURISet", uri)
	})
}

// SetMaxSupplyPerAddress installs a per-address cap, which may not exceed max supply, and switches
// per-address limiting on.
func (c *Collection) SetMaxSupplyPerAddress(ctx CallContext, value *uint256.Int) error {
	return c.ownerOnly(ctx, func() error {
		if err := c.supply.SetMaxSupplyPerAddress(value); err != nil {
			return err
		}
		log.Info("collection max supply per address set", "value", value)
		return c.emitter.Emit("MaxSupplyPerAddressUpdated", value)
	})
}

// SetPause stops or resumes Mint.
func (c *Collection) SetPause(ctx CallContext, paused bool) error {
	return c.ownerOnly(ctx, func() error {
		if err := c.state.SetPaused(paused); err != nil {
			return err
		}
		log.Info("collection pause set", "paused", paused)
		return c.emitter.Emit("PausedContract", paused)
	})
}

func (c *Collection) TransferOwnership(ctx CallContext, next common.Address) error {
	if err := ctx.requireNonPayable(); err != nil {
		return err
	}
	return c.owners.TransferOwnership(ctx.Caller, next)
}
