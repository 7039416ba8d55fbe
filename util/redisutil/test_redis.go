// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package redisutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/offchainlabs/mintengine/util/testhelpers"
)

// CreateTestRedis gives a test a redis url. An external server named by MINTENGINE_TEST_REDIS wins; otherwise
// an in-process miniredis is started and stopped when either ctx ends or the test finishes.
func CreateTestRedis(ctx context.Context, t *testing.T) string {
	t.Helper()
	if external := os.Getenv("MINTENGINE_TEST_REDIS"); external != "" {
		return external
	}
	server := miniredis.NewMiniRedis()
	testhelpers.RequireImpl(t, server.Start())
	t.Cleanup(server.Close)
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	return fmt.Sprintf("redis://%s/%d", server.Addr(), 0)
}
