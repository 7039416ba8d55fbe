// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package txprocessor

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var headKey = []byte("mintengine-head")

// Head identifies the last committed state. Every applied transaction advances Number by one.
type Head struct {
	Root   common.Hash
	Number uint64
}

// Chain persists the state trie and the head pointer in an ethdb.Database.
type Chain struct {
	db          ethdb.Database
	stateDb     state.Database
	head        Head
	initialized bool
}

func OpenChain(db ethdb.Database) (*Chain, error) {
	chain := &Chain{
		db:      db,
		stateDb: state.NewDatabase(db),
		head:    Head{Root: types.EmptyRootHash},
	}
	has, err := db.Has(headKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up chain head")
	}
	if !has {
		return chain, nil
	}
	encoded, err := db.Get(headKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chain head")
	}
	if err := rlp.DecodeBytes(encoded, &chain.head); err != nil {
		return nil, errors.Wrap(err, "failed to decode chain head")
	}
	chain.initialized = true
	log.Info("opened collection chain", "number", chain.head.Number, "root", chain.head.Root)
	return chain, nil
}

func (c *Chain) Head() Head {
	return c.head
}

// Initialized reports whether a genesis state has been committed.
func (c *Chain) Initialized() bool {
	return c.initialized
}

// State opens a stateDB at the current head.
func (c *Chain) State() (*state.StateDB, error) {
	statedb, err := state.New(c.head.Root, c.stateDb, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open state at %v", c.head.Root)
	}
	return statedb, nil
}

// Commit writes statedb to disk as the next head. statedb must not be used afterwards.
func (c *Chain) Commit(statedb *state.StateDB) (Head, error) {
	next := c.head.Number + 1
	root, err := statedb.Commit(next, true)
	if err != nil {
		return Head{}, errors.Wrap(err, "failed to commit state")
	}
	if err := c.stateDb.TrieDB().Commit(root, false); err != nil {
		return Head{}, errors.Wrap(err, "failed to flush state trie")
	}
	head := Head{Root: root, Number: next}
	encoded, err := rlp.EncodeToBytes(&head)
	if err != nil {
		return Head{}, err
	}
	if err := c.db.Put(headKey, encoded); err != nil {
		return Head{}, errors.Wrap(err, "failed to write chain head")
	}
	c.head = head
	c.initialized = true
	return head, nil
}

// Genesis funds the given accounts and commits the result as the first head. It does nothing on a chain
// that already has a head.
func (c *Chain) Genesis(alloc map[common.Address]*uint256.Int) error {
	if c.initialized {
		return nil
	}
	statedb, err := c.State()
	if err != nil {
		return err
	}
	for account, balance := range alloc {
		statedb.AddBalance(account, balance)
	}
	head, err := c.Commit(statedb)
	if err != nil {
		return err
	}
	log.Info("committed collection genesis", "accounts", len(alloc), "root", head.Root)
	return nil
}
