// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package txprocessor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const RECEIPT_KEY_PREFIX string = "collection.receipt."

func ReceiptKeyFor(txHash common.Hash) string { return RECEIPT_KEY_PREFIX + txHash.Hex() }

// RedisReceiptStore shares receipts with other processes through redis. Entries expire after ttl;
// a zero ttl keeps them forever.
type RedisReceiptStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisReceiptStore(client redis.UniversalClient, ttl time.Duration) *RedisReceiptStore {
	return &RedisReceiptStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisReceiptStore) Put(ctx context.Context, receipt *Receipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ReceiptKeyFor(receipt.TxHash), data, s.ttl).Err()
}

func (s *RedisReceiptStore) Get(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	data, err := s.client.Get(ctx, ReceiptKeyFor(txHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, err
	}
	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("corrupt receipt %v in redis: %w", txHash, err)
	}
	return &receipt, nil
}
