// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package eventlog

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var (
	ErrUnknownEvent     = errors.New("unknown event")
	ErrUnsupportedTopic = errors.New("unsupported indexed argument type")
)

// Emitter writes ABI-encoded logs on behalf of a single address. Logs go through the stateDB's journal,
// so they disappear together with every other effect when the enclosing transaction is reverted.
type Emitter struct {
	db      vm.StateDB
	address common.Address
	abi     *abi.ABI
}

func NewEmitter(db vm.StateDB, address common.Address, contractABI *abi.ABI) *Emitter {
	return &Emitter{
		db:      db,
		address: address,
		abi:     contractABI,
	}
}

func (e *Emitter) Address() common.Address {
	return e.address
}

// Emit packs args according to the named event and appends the resulting log.
// *uint256.Int arguments are accepted wherever the ABI expects a uint256.
func (e *Emitter) Emit(name string, args ...interface{}) error {
	event, ok := e.abi.Events[name]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownEvent, name)
	}
	if len(args) != len(event.Inputs) {
		return fmt.Errorf("event %v takes %d arguments but got %d", name, len(event.Inputs), len(args))
	}

	topics := []common.Hash{event.ID}
	var dataInputs abi.Arguments
	var dataValues []interface{}
	for i, input := range event.Inputs {
		value := normalize(args[i])
		if !input.Indexed {
			dataInputs = append(dataInputs, input)
			dataValues = append(dataValues, value)
			continue
		}
		topic, err := packTopic(input, value)
		if err != nil {
			return fmt.Errorf("event %v argument %v: %w", name, input.Name, err)
		}
		topics = append(topics, topic)
	}

	data, err := dataInputs.PackValues(dataValues)
	if err != nil {
		return fmt.Errorf("failed to pack event %v: %w", name, err)
	}
	e.db.AddLog(&types.Log{
		Address: e.address,
		Topics:  topics,
		Data:    data,
	})
	return nil
}

func normalize(value interface{}) interface{} {
	if wide, ok := value.(*uint256.Int); ok {
		return wide.ToBig()
	}
	return value
}

func packTopic(input abi.Argument, value interface{}) (common.Hash, error) {
	switch input.Type.T {
	case abi.StringTy:
		str, ok := value.(string)
		if !ok {
			return common.Hash{}, fmt.Errorf("expected string, got %T", value)
		}
		return crypto.Keccak256Hash([]byte(str)), nil
	case abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return common.Hash{}, fmt.Errorf("%w: %v", ErrUnsupportedTopic, input.Type)
	}
	packed, err := abi.Arguments{abi.Argument{Type: input.Type}}.Pack(value)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(packed), nil
}

// Event is a decoded log.
type Event struct {
	Name    string                 `json:"name"`
	Address common.Address         `json:"address"`
	Fields  map[string]interface{} `json:"fields"`
}

// Decode recovers the event name and arguments of a log written by an Emitter using contractABI.
func Decode(contractABI *abi.ABI, lg *types.Log) (*Event, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("%w: log without topics", ErrUnknownEvent)
	}
	event, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEvent, lg.Topics[0])
	}
	fields := make(map[string]interface{})
	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(fields, lg.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack %v data: %w", event.Name, err)
		}
	}
	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %v topics: %w", event.Name, err)
	}
	return &Event{
		Name:    event.Name,
		Address: lg.Address,
		Fields:  fields,
	}, nil
}

// DecodeAll decodes every log, stopping at the first one that does not belong to contractABI.
func DecodeAll(contractABI *abi.ABI, logs []*types.Log) ([]*Event, error) {
	events := make([]*Event, 0, len(logs))
	for _, lg := range logs {
		event, err := Decode(contractABI, lg)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
