// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package reentrancy

import (
	"errors"
	"fmt"

	"github.com/offchainlabs/mintengine/collection/storage"
)

var ErrReentrantCall = errors.New("reentrant call")

const (
	statusOffset uint64 = iota
)

// The status word is never zero once initialized, so a lock that was never set up is detectable.
const (
	notEntered uint64 = 1
	entered    uint64 = 2
)

// Lock is a storage-backed mutual exclusion flag for entry points that call out to other accounts.
// Because it lives in state, a reverted transaction also reverts any lock it took.
type Lock struct {
	status storage.StorageBackedUint64
}

func Initialize(sto *storage.Storage) error {
	status := sto.OpenStorageBackedUint64(statusOffset)
	return status.Set(notEntered)
}

func Open(sto *storage.Storage) *Lock {
	return &Lock{
		status: sto.OpenStorageBackedUint64(statusOffset),
	}
}

// Enter takes the lock, failing if it is already held.
func (l *Lock) Enter() error {
	status, err := l.status.Get()
	if err != nil {
		return err
	}
	switch status {
	case notEntered:
		return l.status.Set(entered)
	case entered:
		return ErrReentrantCall
	default:
		return fmt.Errorf("reentrancy lock has unexpected status %d", status)
	}
}

func (l *Lock) Exit() error {
	return l.status.Set(notEntered)
}

// Do runs fn while holding the lock. The lock is released whether or not fn succeeds.
func (l *Lock) Do(fn func() error) error {
	if err := l.Enter(); err != nil {
		return err
	}
	err := fn()
	if exitErr := l.Exit(); err == nil {
		err = exitErr
	}
	return err
}
