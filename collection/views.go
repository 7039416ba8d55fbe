// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (c *Collection) Owner() common.Address {
	return c.owners.Owner()
}

func (c *Collection) Cost() *uint256.Int {
	return c.state.Cost()
}

func (c *Collection) Paused() bool {
	return c.state.Paused()
}

// Supply is the number of the most recently issued unit.
func (c *Collection) Supply() *uint256.Int {
	return c.supply.Supply()
}

// TotalSupply counts units that exist now: issued minus burned.
func (c *Collection) TotalSupply() *uint256.Int {
	return c.supply.Circulating()
}

func (c *Collection) Burned() *uint256.Int {
	return c.supply.Burned()
}

func (c *Collection) MaxSupply() *uint256.Int {
	return c.supply.MaxSupply()
}

func (c *Collection) MaxSupplyPerAddress() *uint256.Int {
	return c.supply.MaxSupplyPerAddress()
}

func (c *Collection) Limited() bool {
	return c.supply.Limited()
}

func (c *Collection) LimitedPerAddress() bool {
	return c.supply.LimitedPerAddress()
}

func (c *Collection) MintedBalance(account common.Address) *uint256.Int {
	return c.supply.MintedBalance(account)
}

// OwnedCount is the number of units the token ledger says account holds.
func (c *Collection) OwnedCount(account common.Address) *uint256.Int {
	return c.tokens.BalanceOf(account)
}

func (c *Collection) OwnerOf(tokenId *uint256.Int) (common.Address, error) {
	return c.tokens.OwnerOf(tokenId)
}

// TokenURI is the collection-wide metadata URI. It is the same for every id, issued or not.
func (c *Collection) TokenURI(_ *uint256.Int) (string, error) {
	return c.state.TokenURI()
}

func (c *Collection) BaseURI() (string, error) {
	return c.state.TokenURI()
}

func (c *Collection) Name() (string, error) {
	return c.state.Tokens().Name()
}

func (c *Collection) Symbol() (string, error) {
	return c.state.Tokens().Symbol()
}

// Balance is the native balance collected from sales and not yet withdrawn.
func (c *Collection) Balance() *uint256.Int {
	return c.treasury.Balance()
}

func (c *Collection) SchemaVersion() uint64 {
	return c.state.FormatVersion()
}

// Info is a snapshot of a collection's configuration and counters.
type Info struct {
	Address             common.Address `json:"address"`
	Owner               common.Address `json:"owner"`
	Name                string         `json:"name"`
	Symbol              string         `json:"symbol"`
	TokenURI            string         `json:"tokenURI"`
	Cost                *uint256.Int   `json:"cost"`
	Supply              *uint256.Int   `json:"supply"`
	TotalSupply         *uint256.Int   `json:"totalSupply"`
	Burned              *uint256.Int   `json:"burned"`
	MaxSupply           *uint256.Int   `json:"maxSupply"`
	MaxSupplyPerAddress *uint256.Int   `json:"maxSupplyPerAddress"`
	Limited             bool           `json:"limited"`
	LimitedPerAddress   bool           `json:"limitedPerAddress"`
	Paused              bool           `json:"paused"`
	Balance             *uint256.Int   `json:"balance"`
	SchemaVersion       uint64         `json:"schemaVersion"`
}

func (c *Collection) Info() (*Info, error) {
	name, err := c.Name()
	if err != nil {
		return nil, err
	}
	symbol, err := c.Symbol()
	if err != nil {
		return nil, err
	}
	uri, err := c.BaseURI()
	if err != nil {
		return nil, err
	}
	return &Info{
		Address:             c.Address(),
		Owner:               c.Owner(),
		Name:                name,
		Symbol:              symbol,
		TokenURI:            uri,
		Cost:                c.Cost(),
		Supply:              c.Supply(),
		TotalSupply:         c.TotalSupply(),
		Burned:              c.Burned(),
		MaxSupply:           c.MaxSupply(),
		MaxSupplyPerAddress: c.MaxSupplyPerAddress(),
		Limited:             c.Limited(),
		LimitedPerAddress:   c.LimitedPerAddress(),
		Paused:              c.Paused(),
		Balance:             c.Balance(),
		SchemaVersion:       c.SchemaVersion(),
	}, nil
}
