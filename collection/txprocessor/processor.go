// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

// Package txprocessor runs calls against a collection's state one at a time, each as an all-or-nothing
// transaction, and commits the state after every transaction.
package txprocessor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
	flag "github.com/spf13/pflag"

	"github.com/offchainlabs/mintengine/util/containers"
)

var ErrInsufficientBalanceForValue = errors.New("insufficient balance for transfer of value")

var (
	appliedCounter  = metrics.NewRegisteredCounter("txprocessor/applied", nil)
	revertedCounter = metrics.NewRegisteredCounter("txprocessor/reverted", nil)
	applyTimer      = metrics.NewRegisteredTimer("txprocessor/apply", nil)
)

type Config struct {
	ReceiptsCacheSize int           `koanf:"receipts-cache-size"`
	RedisUrl          string        `koanf:"redis-url"`
	ReceiptTTL        time.Duration `koanf:"receipt-ttl"`
}

var DefaultConfig = Config{
	ReceiptsCacheSize: 1024,
	RedisUrl:          "",
	ReceiptTTL:        24 * time.Hour,
}

var TestConfig = Config{
	ReceiptsCacheSize: 16,
	RedisUrl:          "",
	ReceiptTTL:        time.Minute,
}

func ConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.Int(prefix+".receipts-cache-size", DefaultConfig.ReceiptsCacheSize, "number of recent receipts kept in memory")
	f.String(prefix+".redis-url", DefaultConfig.RedisUrl, "if set, receipts are also published to this redis server")
	f.Duration(prefix+".receipt-ttl", DefaultConfig.ReceiptTTL, "how long receipts published to redis are kept (0 keeps them forever)")
}

func (c *Config) Validate() error {
	if c.ReceiptsCacheSize <= 0 {
		return fmt.Errorf("receipts cache size must be positive, got %d", c.ReceiptsCacheSize)
	}
	if c.ReceiptTTL < 0 {
		return fmt.Errorf("receipt ttl must not be negative, got %v", c.ReceiptTTL)
	}
	return nil
}

// Transaction describes a call: From invokes Method on To, attaching Value.
type Transaction struct {
	From   common.Address
	To     common.Address
	Value  *uint256.Int
	Method string
}

func (tx *Transaction) value() *uint256.Int {
	if tx.Value == nil {
		return new(uint256.Int)
	}
	return tx.Value
}

// Hash identifies the transaction applied as the given head number.
func (tx *Transaction) Hash(number uint64) common.Hash {
	var encodedNumber [8]byte
	binary.BigEndian.PutUint64(encodedNumber[:], number)
	value := tx.value().Bytes32()
	return crypto.Keccak256Hash(tx.From.Bytes(), tx.To.Bytes(), value[:], []byte(tx.Method), encodedNumber[:])
}

// Call is the body of a transaction. Returning an error reverts everything it did.
type Call func(statedb vm.StateDB) error

type Processor struct {
	mutex    sync.Mutex
	chain    *Chain
	statedb  *state.StateDB
	receipts *containers.LruCache[common.Hash, *Receipt]
	store    ReceiptStore
}

// NewProcessor opens a processor at the chain's head. store may be nil.
func NewProcessor(chain *Chain, config *Config, store ReceiptStore) (*Processor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	statedb, err := chain.State()
	if err != nil {
		return nil, err
	}
	return &Processor{
		chain:    chain,
		statedb:  statedb,
		receipts: containers.NewLruCache[common.Hash, *Receipt](config.ReceiptsCacheSize),
		store:    store,
	}, nil
}

func (p *Processor) Head() Head {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.chain.Head()
}

// Apply runs call as a transaction. tx.Value moves from tx.From to tx.To before call runs. If call fails,
// the state, the value transfer and the logs are all rolled back, and the error is returned together with a
// failed receipt. A nil receipt means the host itself failed to persist the transaction.
func (p *Processor) Apply(ctx context.Context, tx *Transaction, call Call) (*Receipt, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	start := time.Now()
	defer func() { applyTimer.UpdateSince(start) }()

	number := p.chain.Head().Number + 1
	txHash := tx.Hash(number)
	p.statedb.SetTxContext(txHash, 0)
	snapshot := p.statedb.Snapshot()
	callErr := p.execute(tx, call)
	if callErr != nil {
		p.statedb.RevertToSnapshot(snapshot)
	}
	logs := p.statedb.GetLogs(txHash, number, common.Hash{})

	head, err := p.chain.Commit(p.statedb)
	if err != nil {
		return nil, err
	}
	p.statedb, err = p.chain.State()
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		TxHash:    txHash,
		Number:    head.Number,
		Method:    tx.Method,
		From:      tx.From,
		To:        tx.To,
		Value:     (*hexutil.Big)(tx.value().ToBig()),
		Status:    ReceiptStatusSuccessful,
		Logs:      logs,
		StateRoot: head.Root,
	}
	if callErr != nil {
		receipt.Status = ReceiptStatusFailed
		receipt.Error = callErr.Error()
		revertedCounter.Inc(1)
		log.Debug("transaction reverted", "hash", txHash, "method", tx.Method, "from", tx.From, "err", callErr)
	} else {
		appliedCounter.Inc(1)
		log.Debug("transaction applied", "hash", txHash, "method", tx.Method, "from", tx.From, "logs", len(logs), "root", head.Root)
	}
	p.receipts.Add(txHash, receipt)
	if p.store != nil {
		if err := p.store.Put(ctx, receipt); err != nil {
			log.Warn("failed to publish receipt", "hash", txHash, "err", err)
		}
	}
	return receipt, callErr
}

func (p *Processor) execute(tx *Transaction, call Call) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("transaction panicked", "method", tx.Method, "from", tx.From, "panic", recovered)
			err = fmt.Errorf("transaction panicked: %v", recovered)
		}
	}()
	value := tx.value()
	if !value.IsZero() {
		balance := p.statedb.GetBalance(tx.From)
		if balance.Lt(value) {
			return fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientBalanceForValue, tx.From, balance, value)
		}
		p.statedb.SubBalance(tx.From, value)
		p.statedb.AddBalance(tx.To, value)
	}
	return call(p.statedb)
}

// View runs call against the current state and discards whatever it changed.
func (p *Processor) View(call Call) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	snapshot := p.statedb.Snapshot()
	defer p.statedb.RevertToSnapshot(snapshot)
	return call(p.statedb)
}

func (p *Processor) Balance(account common.Address) *uint256.Int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return new(uint256.Int).Set(p.statedb.GetBalance(account))
}

// Receipt looks a transaction up in the cache, then in the receipt store.
func (p *Processor) Receipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	p.mutex.Lock()
	receipt, ok := p.receipts.Get(txHash)
	p.mutex.Unlock()
	if ok {
		return receipt, nil
	}
	if p.store == nil {
		return nil, ErrReceiptNotFound
	}
	return p.store.Get(ctx, txHash)
}

// Genesis commits the initial allocation if the chain has no head yet.
func (p *Processor) Genesis(alloc map[common.Address]*uint256.Int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.chain.Initialized() {
		return nil
	}
	if err := p.chain.Genesis(alloc); err != nil {
		return err
	}
	statedb, err := p.chain.State()
	if err != nil {
		return err
	}
	p.statedb = statedb
	return nil
}
