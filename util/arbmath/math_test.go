// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package arbmath

import (
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/util/testhelpers"
)

func TestSaturatingUint(t *testing.T) {
	if SaturatingUAdd(uint64(math.MaxUint64), 1) != math.MaxUint64 {
		Fail(t, "add should saturate")
	}
	if SaturatingUAdd(uint8(200), 55) != 255 || SaturatingUAdd(uint8(200), 56) != 255 {
		Fail(t, "add should saturate at the type width")
	}
	if SaturatingUSub(uint64(3), 5) != 0 || SaturatingUSub(uint64(5), 3) != 2 {
		Fail(t, "sub should clip at zero")
	}
	if MinInt(uint64(7), 3) != 3 {
		Fail(t)
	}
}

func TestU256Checked(t *testing.T) {
	max := MaxU256()
	if _, ok := U256AddByUint(max, 1); ok {
		Fail(t, "max + 1 must overflow")
	}
	sum, ok := U256AddByUint(uint256.NewInt(9), 2)
	if !ok || sum.Uint64() != 11 {
		Fail(t, "unexpected sum", sum)
	}
	if _, ok := U256MulByUint(max, 2); ok {
		Fail(t, "max * 2 must overflow")
	}
	product, ok := U256MulByUint(uint256.NewInt(1e18), 3)
	if !ok || !U256Equals(product, uint256.NewInt(3e18)) {
		Fail(t, "unexpected product", product)
	}
	if !U256SaturatingSubByUint(uint256.NewInt(1), 2).IsZero() {
		Fail(t, "sub should clip at zero")
	}
}

func TestBigToU256(t *testing.T) {
	if _, ok := BigToU256(big.NewInt(-1)); ok {
		Fail(t, "negative should not convert")
	}
	tooWide := new(big.Int).Lsh(big.NewInt(1), 256)
	if _, ok := BigToU256(tooWide); ok {
		Fail(t, "2^256 should not convert")
	}
	value, ok := BigToU256(big.NewInt(31591083))
	if !ok || value.Uint64() != 31591083 {
		Fail(t, "unexpected conversion", value)
	}
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}
