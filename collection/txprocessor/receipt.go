// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package txprocessor

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

var ErrReceiptNotFound = errors.New("receipt not found")

type Receipt struct {
	TxHash    common.Hash    `json:"transactionHash"`
	Number    uint64         `json:"number"`
	Method    string         `json:"method"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Value     *hexutil.Big   `json:"value"`
	Status    uint64         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Logs      []*types.Log   `json:"logs"`
	StateRoot common.Hash    `json:"stateRoot"`
}

func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}

// ReceiptStore keeps receipts beyond the processor's in-memory cache.
type ReceiptStore interface {
	Put(ctx context.Context, receipt *Receipt) error
	Get(ctx context.Context, txHash common.Hash) (*Receipt, error)
}
