// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package collection

import (
	"github.com/ccoveille/go-safecast"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
)

var (
	mintedCounter    = metrics.NewRegisteredCounter("collection/minted", nil)
	droppedCounter   = metrics.NewRegisteredCounter("collection/dropped", nil)
	burnedCounter    = metrics.NewRegisteredCounter("collection/burned", nil)
	withdrawnCounter = metrics.NewRegisteredCounter("collection/withdrawn", nil)
	supplyGauge      = metrics.NewRegisteredGauge("collection/supply", nil)
)

func countUnits(counter metrics.Counter, units uint64) {
	if n, err := safecast.ToInt64(units); err == nil {
		counter.Inc(n)
	}
}

func reportSupply(supply *uint256.Int) {
	if !supply.IsUint64() {
		return
	}
	if n, err := safecast.ToInt64(supply.Uint64()); err == nil {
		supplyGauge.Update(n)
	}
}
