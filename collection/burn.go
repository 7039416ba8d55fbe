// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Burn destroys a unit. Its holder or the owner may burn it. The unit's number is retired, not reused,
// and the holder's minted balance goes down by one.
func (c *Collection) Burn(ctx CallContext, tokenId *uint256.Int) error {
	return c.nonReentrant(func() error {
		if err := ctx.requireNonPayable(); err != nil {
			return err
		}
		holder, err := c.tokens.OwnerOf(tokenId)
		if err != nil {
			return err
		}
		if ctx.Caller != holder && ctx.Caller != c.Owner() {
			return ErrUnauthorizedAccess
		}
		if _, err := c.tokens.Burn(tokenId); err != nil {
			return err
		}
		if err := c.supply.RecordBurn(holder); err != nil {
			return err
		}
		if err := c.emitter.Emit("Burned", tokenId); err != nil {
			return err
		}
		log.Debug("burned unit", "id", tokenId, "holder", holder, "caller", ctx.Caller)
		burnedCounter.Inc(1)
		return nil
	})
}
