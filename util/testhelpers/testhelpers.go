// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package testhelpers

import (
	"context"
	"crypto/rand"
	"io"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/slog"
)

// RequireImpl fails a test should an error occur
func RequireImpl(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	if err != nil {
		t.Fatal(printables, err)
	}
}

func FailImpl(t *testing.T, printables ...interface{}) {
	t.Helper()
	t.Fatal(printables...)
}

func RandomizeSlice(slice []byte) []byte {
	_, err := rand.Read(slice)
	if err != nil {
		panic(err)
	}
	return slice
}

func RandomHash() common.Hash {
	var hash common.Hash
	RandomizeSlice(hash[:])
	return hash
}

func RandomAddress() common.Address {
	var address common.Address
	RandomizeSlice(address[:])
	return address
}

// LogHandler records every message that passes through it, and forwards them to a terminal handler.
type LogHandler struct {
	mutex    sync.Mutex
	t        *testing.T
	records  []slog.Record
	terminal slog.Handler
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.terminal.Enabled(ctx, level)
}

func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.terminal.Handle(ctx, record); err != nil {
		return err
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *LogHandler) WasLogged(pattern string) bool {
	re, err := regexp.Compile(pattern)
	RequireImpl(h.t, err)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, record := range h.records {
		if re.MatchString(record.Message) {
			return true
		}
	}
	return false
}

func newLogHandler(t *testing.T, out io.Writer) *LogHandler {
	return &LogHandler{
		t:        t,
		records:  make([]slog.Record, 0),
		terminal: log.NewTerminalHandlerWithLevel(out, log.LevelTrace, false),
	}
}

// InitTestLog installs a recording root logger at the given verbosity for the duration of the test.
func InitTestLog(t *testing.T, level slog.Level) *LogHandler {
	handler := newLogHandler(t, os.Stderr)
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	previous := log.Root()
	log.SetDefault(log.NewLogger(glogger))
	t.Cleanup(func() { log.SetDefault(previous) })
	return handler
}
