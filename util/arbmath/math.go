// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package arbmath

import (
	"math/big"

	"github.com/holiman/uint256"
)

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// MinInt the minimum of two ints
func MinInt[T Unsigned](value, ceiling T) T {
	if value > ceiling {
		return ceiling
	}
	return value
}

// SaturatingUAdd add two integers without overflow
func SaturatingUAdd[T Unsigned](a, b T) T {
	sum := a + b
	if sum < a || sum < b {
		sum = ^T(0)
	}
	return sum
}

// SaturatingUSub subtract an integer from another without underflow
func SaturatingUSub[T Unsigned](a, b T) T {
	if b >= a {
		return 0
	}
	return a - b
}

// MaxU256 is 2^256 - 1, the value an unlimited cap is stored as.
func MaxU256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// U256AddByUint adds without wrapping; ok is false if the true sum exceeds 256 bits.
func U256AddByUint(augend *uint256.Int, addend uint64) (sum *uint256.Int, ok bool) {
	sum, overflow := new(uint256.Int).AddOverflow(augend, uint256.NewInt(addend))
	return sum, !overflow
}

// U256MulByUint multiplies without wrapping; ok is false if the true product exceeds 256 bits.
func U256MulByUint(multiplicand *uint256.Int, multiplier uint64) (product *uint256.Int, ok bool) {
	product, overflow := new(uint256.Int).MulOverflow(multiplicand, uint256.NewInt(multiplier))
	return product, !overflow
}

// U256SaturatingSubByUint subtracts, clipping at zero.
func U256SaturatingSubByUint(minuend *uint256.Int, subtrahend uint64) *uint256.Int {
	sub := uint256.NewInt(subtrahend)
	if minuend.Lt(sub) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(minuend, sub)
}

// BigToU256 converts, failing for negative values and values wider than 256 bits.
func BigToU256(value *big.Int) (*uint256.Int, bool) {
	if value == nil || value.Sign() < 0 {
		return nil, false
	}
	converted, overflow := uint256.FromBig(value)
	return converted, !overflow
}

func U256Equals(first, second *uint256.Int) bool {
	return first.Cmp(second) == 0
}

// U256Clone copies value so the result can be mutated freely.
func U256Clone(value *uint256.Int) *uint256.Int {
	return new(uint256.Int).Set(value)
}
