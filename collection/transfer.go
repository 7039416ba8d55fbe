// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// TransferFrom hands a unit to another account. Minted balances record issuance and do not follow the unit.
func (c *Collection) TransferFrom(ctx CallContext, from, to common.Address, tokenId *uint256.Int) error {
	return c.nonReentrant(func() error {
		if err := ctx.requireNonPayable(); err != nil {
			return err
		}
		if err := c.tokens.TransferFrom(ctx.Caller, from, to, tokenId); err != nil {
			return err
		}
		log.Debug("transferred unit", "id", tokenId, "from", from, "to", to)
		return nil
	})
}
