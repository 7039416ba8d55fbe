// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package util

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestU256HashRoundTrip(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	for _, val := range []*uint256.Int{uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(1 << 40), max} {
		hash := U256ToHash(val)
		if hash.Big().Cmp(val.ToBig()) != 0 {
			t.Fatal("hash encoding mismatch", val, hash)
		}
		if !HashToU256(hash).Eq(val) {
			t.Fatal("round trip mismatch", val)
		}
	}
}

func TestAddressHash(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000c0ffe")
	if HashToAddress(AddressToHash(addr)) != addr {
		t.Fatal("address round trip failed")
	}
	if HashToBool(common.Hash{}) || !HashToBool(BoolToHash(true)) || HashToBool(BoolToHash(false)) {
		t.Fatal("bool encoding mismatch")
	}
}
