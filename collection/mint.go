// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ccoveille/go-safecast"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection/policy"
)

// Mint issues amount units to recipient. The owner mints for free and to anyone; everyone else can only buy
// for themselves, paying at least cost × amount, within the per-address cap. Units are numbered in order
// starting at supply + 1.
func (c *Collection) Mint(ctx CallContext, amount uint64, recipient common.Address) error {
	return c.nonReentrant(func() error {
		if c.state.Paused() {
			return ErrPaused
		}
		if err := c.checkBatch(amount); err != nil {
			return err
		}
		role, err := policy.Evaluate(c, &policy.Request{
			Caller:    ctx.Caller,
			Recipient: recipient,
			Amount:    amount,
			Payment:   ctx.payment(),
		})
		if err != nil {
			return err
		}
		if err := c.supply.Reserve(amount); err != nil {
			return err
		}
		batch := uint256.NewInt(amount)
		first, err := c.issue(ctx.Caller, recipient, amount, func(id *uint256.Int) error {
			return c.emitter.Emit("Minted", recipient, id, batch)
		})
		if err != nil {
			return err
		}
		log.Debug("minted batch", "to", recipient, "first", first, "amount", amount, "role", role, "paid", ctx.payment())
		countUnits(mintedCounter, amount)
		reportSupply(c.supply.Supply())
		return nil
	})
}

// Drop issues one unit to each receiver, in order. Receivers may repeat. Only the owner may drop; dropped
// units are free and not subject to the per-address cap, but the whole list must fit under max supply.
func (c *Collection) Drop(ctx CallContext, receivers []common.Address) error {
	return c.nonReentrant(func() error {
		if err := ctx.requireNonPayable(); err != nil {
			return err
		}
		if err := policy.RequireOwner(c, ctx.Caller); err != nil {
			return err
		}
		amount, err := safecast.ToUint64(len(receivers))
		if err != nil {
			return ErrInvalidAmount
		}
		if err := c.checkBatch(amount); err != nil {
			return err
		}
		if err := c.supply.Reserve(amount); err != nil {
			return err
		}
		for _, receiver := range receivers {
			receiver := receiver
			_, err := c.issue(ctx.Caller, receiver, 1, func(id *uint256.Int) error {
				return c.emitter.Emit("Dropped", receiver, id)
			})
			if err != nil {
				return err
			}
		}
		log.Debug("dropped units", "receivers", amount, "supply", c.supply.Supply())
		countUnits(droppedCounter, amount)
		reportSupply(c.supply.Supply())
		return nil
	})
}

// issue numbers, delivers and records amount units for recipient, calling notify once per unit. Capacity
// must already have been reserved. It returns the number of the first unit.
func (c *Collection) issue(operator, recipient common.Address, amount uint64, notify func(*uint256.Int) error) (*uint256.Int, error) {
	var first *uint256.Int
	for i := uint64(0); i < amount; i++ {
		id, err := c.supply.Commit(1)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = id
		}
		if err := c.tokens.SafeMint(operator, recipient, id); err != nil {
			return nil, err
		}
		if err := c.supply.AddMinted(recipient, 1); err != nil {
			return nil, err
		}
		if err := notify(id); err != nil {
			return nil, err
		}
	}
	return first, nil
}
