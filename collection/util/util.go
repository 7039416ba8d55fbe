// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package util

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func AddressToHash(address common.Address) common.Hash {
	return common.BytesToHash(address.Bytes())
}

func HashToAddress(hash common.Hash) common.Address {
	return common.BytesToAddress(hash.Bytes())
}

func UintToHash(val uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(val))
}

func U256ToHash(val *uint256.Int) common.Hash {
	return common.Hash(val.Bytes32())
}

func HashToU256(hash common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(hash[:])
}

func BoolToHash(val bool) common.Hash {
	if val {
		return UintToHash(1)
	}
	return common.Hash{}
}

// HashToBool treats any non-zero word as true.
func HashToBool(hash common.Hash) bool {
	return hash != (common.Hash{})
}
