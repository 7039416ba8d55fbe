// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"fmt"

	"github.com/ccoveille/go-safecast"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/mintengine/collection/policy"
)

// Withdraw sends the collection's whole balance to the owner.
func (c *Collection) Withdraw(ctx CallContext) error {
	return c.nonReentrant(func() error {
		if err := ctx.requireNonPayable(); err != nil {
			return err
		}
		if err := policy.RequireOwner(c, ctx.Caller); err != nil {
			return err
		}
		balance := c.treasury.Balance()
		if balance.IsZero() {
			return ErrNoFundsAvailable
		}
		owner := c.Owner()
		if err := c.treasury.Transfer(owner, balance); err != nil {
			return fmt.Errorf("%w: %w", ErrWithdrawFailed, err)
		}
		if err := c.emitter.Emit("Withdrawn", owner, balance); err != nil {
			return err
		}
		log.Info("withdrew collection funds", "to", owner, "amount", balance)
		if balance.IsUint64() {
			if n, err := safecast.ToInt64(balance.Uint64()); err == nil {
				withdrawnCounter.Inc(n)
			}
		}
		return nil
	})
}
