// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package ownership

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/storage"
)

var (
	ErrUnauthorizedAccess = errors.New("unauthorized caller to access-controlled method")
	ErrInvalidOwner       = errors.New("invalid owner")
)

const (
	ownerOffset uint64 = iota
)

// Registry records the single privileged account of a collection.
type Registry struct {
	owner   storage.StorageBackedAddress
	emitter *eventlog.Emitter
}

func Initialize(sto *storage.Storage, owner common.Address, emitter *eventlog.Emitter) error {
	if owner == (common.Address{}) {
		return ErrInvalidOwner
	}
	slot := sto.OpenStorageBackedAddress(ownerOffset)
	if err := slot.Set(owner); err != nil {
		return err
	}
	return emitter.Emit("OwnershipTransferred", common.Address{}, owner)
}

func Open(sto *storage.Storage, emitter *eventlog.Emitter) *Registry {
	return &Registry{
		owner:   sto.OpenStorageBackedAddress(ownerOffset),
		emitter: emitter,
	}
}

func (r *Registry) Owner() common.Address {
	return r.owner.Get()
}

func (r *Registry) IsOwner(account common.Address) bool {
	return account == r.owner.Get()
}

func (r *Registry) RequireOwner(caller common.Address) error {
	if !r.IsOwner(caller) {
		return ErrUnauthorizedAccess
	}
	return nil
}

// TransferOwnership hands the privileged role to next. Only the current owner may call it.
func (r *Registry) TransferOwnership(caller, next common.Address) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	if next == (common.Address{}) {
		return ErrInvalidOwner
	}
	previous := r.owner.Get()
	if err := r.owner.Set(next); err != nil {
		return err
	}
	log.Info("collection ownership transferred", "previous", previous, "next", next)
	return r.emitter.Emit("OwnershipTransferred", previous, next)
}
