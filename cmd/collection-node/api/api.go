// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/node"
	"github.com/ethereum/go-ethereum/p2p"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/mintengine/collection"
	"github.com/offchainlabs/mintengine/collection/collectionState"
	"github.com/offchainlabs/mintengine/collection/eventlog"
	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/txprocessor"
	"github.com/offchainlabs/mintengine/util/arbmath"
)

const Namespace = "collection"

var ErrInvalidQuantity = errors.New("quantity must be a non-negative integer of at most 256 bits")

var DefaultStackConfig = node.Config{
	DataDir:          "", // state lives in persistent.chain, not in the node's directory
	HTTPPort:         node.DefaultHTTPPort,
	HTTPModules:      []string{Namespace},
	HTTPHost:         node.DefaultHTTPHost,
	HTTPVirtualHosts: []string{"localhost"},
	HTTPTimeouts:     rpc.DefaultHTTPTimeouts,
	P2P: p2p.Config{
		ListenAddr:  "",
		NoDiscovery: true,
		NoDial:      true,
	},
}

// revertError is returned for a transaction that was applied but reverted. Its data carries the
// transaction hash so the failed receipt can be fetched.
type revertError struct {
	error
	txHash common.Hash
}

func (e *revertError) ErrorCode() int { return 3 }

func (e *revertError) ErrorData() interface{} { return e.txHash }

func (e *revertError) Unwrap() error { return e.error }

// TxArgs identifies the sender of a call and the value it attaches.
type TxArgs struct {
	From  common.Address `json:"from"`
	Value *hexutil.Big   `json:"value"`
}

func (a TxArgs) value() (*uint256.Int, error) {
	if a.Value == nil {
		return new(uint256.Int), nil
	}
	return toU256(a.Value)
}

func toU256(value *hexutil.Big) (*uint256.Int, error) {
	if value == nil {
		return nil, ErrInvalidQuantity
	}
	converted, ok := arbmath.BigToU256(value.ToInt())
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuantity, value)
	}
	return converted, nil
}

func toHexBig(value *uint256.Int) *hexutil.Big {
	return (*hexutil.Big)(value.ToBig())
}

type CollectionAPI struct {
	processor *txprocessor.Processor
	address   common.Address
	receivers hooks.Resolver
	opts      []collection.Option
}

// NewCollectionAPI serves the collection at address. opts are applied every time the collection is opened.
func NewCollectionAPI(processor *txprocessor.Processor, address common.Address, receivers hooks.Resolver, opts ...collection.Option) *CollectionAPI {
	return &CollectionAPI{
		processor: processor,
		address:   address,
		receivers: receivers,
		opts:      opts,
	}
}

func (a *CollectionAPI) send(ctx context.Context, method string, args TxArgs, fn func(*collection.Collection, collection.CallContext) error) (common.Hash, error) {
	value, err := args.value()
	if err != nil {
		return common.Hash{}, err
	}
	tx := &txprocessor.Transaction{From: args.From, To: a.address, Value: value, Method: method}
	receipt, err := a.processor.Apply(ctx, tx, func(statedb vm.StateDB) error {
		c, err := collection.Open(statedb, a.address, a.receivers, a.opts...)
		if err != nil {
			return err
		}
		return fn(c, collection.CallContext{Caller: args.From, Value: value})
	})
	if receipt == nil {
		return common.Hash{}, err
	}
	if err != nil {
		return receipt.TxHash, &revertError{error: err, txHash: receipt.TxHash}
	}
	return receipt.TxHash, nil
}

func (a *CollectionAPI) view(fn func(*collection.Collection) error) error {
	return a.processor.View(func(statedb vm.StateDB) error {
		c, err := collection.OpenReadOnly(statedb, a.address, a.opts...)
		if err != nil {
			return err
		}
		return fn(c)
	})
}

func (a *CollectionAPI) Mint(ctx context.Context, args TxArgs, amount hexutil.Uint64, recipient common.Address) (common.Hash, error) {
	return a.send(ctx, "mint", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.Mint(callCtx, uint64(amount), recipient)
	})
}

func (a *CollectionAPI) Drop(ctx context.Context, args TxArgs, receivers []common.Address) (common.Hash, error) {
	return a.send(ctx, "drop", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.Drop(callCtx, receivers)
	})
}

func (a *CollectionAPI) Burn(ctx context.Context, args TxArgs, tokenId *hexutil.Big) (common.Hash, error) {
	id, err := toU256(tokenId)
	if err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, "burn", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.Burn(callCtx, id)
	})
}

func (a *CollectionAPI) TransferFrom(ctx context.Context, args TxArgs, from, to common.Address, tokenId *hexutil.Big) (common.Hash, error) {
	id, err := toU256(tokenId)
	if err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, "transferFrom", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.TransferFrom(callCtx, from, to, id)
	})
}

func (a *CollectionAPI) SetCost(ctx context.Context, args TxArgs, cost *hexutil.Big) (common.Hash, error) {
	converted, err := toU256(cost)
	if err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, "setCost", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.SetCost(callCtx, converted)
	})
}

func (a *CollectionAPI) SetTokenURI(ctx context.Context, args TxArgs, uri string) (common.Hash, error) {
	return a.send(ctx, "setTokenURI", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.SetTokenURI(callCtx, uri)
	})
}

func (a *CollectionAPI) SetMaxSupplyPerAddress(ctx context.Context, args TxArgs, value *hexutil.Big) (common.Hash, error) {
	converted, err := toU256(value)
	if err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, "setMaxSupplyPerAddress", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.SetMaxSupplyPerAddress(callCtx, converted)
	})
}

func (a *CollectionAPI) SetPause(ctx context.Context, args TxArgs, paused bool) (common.Hash, error) {
	return a.send(ctx, "setPause", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.SetPause(callCtx, paused)
	})
}

func (a *CollectionAPI) Withdraw(ctx context.Context, args TxArgs) (common.Hash, error) {
	return a.send(ctx, "withdraw", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.Withdraw(callCtx)
	})
}

func (a *CollectionAPI) TransferOwnership(ctx context.Context, args TxArgs, next common.Address) (common.Hash, error) {
	return a.send(ctx, "transferOwnership", args, func(c *collection.Collection, callCtx collection.CallContext) error {
		return c.TransferOwnership(callCtx, next)
	})
}

type InfoResult struct {
	Address             common.Address `json:"address"`
	Owner               common.Address `json:"owner"`
	Name                string         `json:"name"`
	Symbol              string         `json:"symbol"`
	TokenURI            string         `json:"tokenURI"`
	Cost                *hexutil.Big   `json:"cost"`
	Supply              *hexutil.Big   `json:"supply"`
	TotalSupply         *hexutil.Big   `json:"totalSupply"`
	Burned              *hexutil.Big   `json:"burned"`
	MaxSupply           *hexutil.Big   `json:"maxSupply"`
	MaxSupplyPerAddress *hexutil.Big   `json:"maxSupplyPerAddress"`
	Limited             bool           `json:"limited"`
	LimitedPerAddress   bool           `json:"limitedPerAddress"`
	Paused              bool           `json:"paused"`
	Balance             *hexutil.Big   `json:"balance"`
	SchemaVersion       hexutil.Uint64 `json:"schemaVersion"`
}

func (a *CollectionAPI) Info() (*InfoResult, error) {
	var result *InfoResult
	err := a.view(func(c *collection.Collection) error {
		info, err := c.Info()
		if err != nil {
			return err
		}
		result = &InfoResult{
			Address:             info.Address,
			Owner:               info.Owner,
			Name:                info.Name,
			Symbol:              info.Symbol,
			TokenURI:            info.TokenURI,
			Cost:                toHexBig(info.Cost),
			Supply:              toHexBig(info.Supply),
			TotalSupply:         toHexBig(info.TotalSupply),
			Burned:              toHexBig(info.Burned),
			MaxSupply:           toHexBig(info.MaxSupply),
			MaxSupplyPerAddress: toHexBig(info.MaxSupplyPerAddress),
			Limited:             info.Limited,
			LimitedPerAddress:   info.LimitedPerAddress,
			Paused:              info.Paused,
			Balance:             toHexBig(info.Balance),
			SchemaVersion:       hexutil.Uint64(info.SchemaVersion),
		}
		return nil
	})
	return result, err
}

func (a *CollectionAPI) OwnerOf(tokenId *hexutil.Big) (common.Address, error) {
	id, err := toU256(tokenId)
	if err != nil {
		return common.Address{}, err
	}
	var holder common.Address
	err = a.view(func(c *collection.Collection) error {
		holder, err = c.OwnerOf(id)
		return err
	})
	return holder, err
}

func (a *CollectionAPI) TokenURI(tokenId *hexutil.Big) (string, error) {
	id, err := toU256(tokenId)
	if err != nil {
		return "", err
	}
	var uri string
	err = a.view(func(c *collection.Collection) error {
		uri, err = c.TokenURI(id)
		return err
	})
	return uri, err
}

// BalanceOf is the number of units account holds.
func (a *CollectionAPI) BalanceOf(account common.Address) (*hexutil.Big, error) {
	var count *hexutil.Big
	err := a.view(func(c *collection.Collection) error {
		count = toHexBig(c.OwnedCount(account))
		return nil
	})
	return count, err
}

// MintedBalance is the number of units issued to account that it has not burned.
func (a *CollectionAPI) MintedBalance(account common.Address) (*hexutil.Big, error) {
	var minted *hexutil.Big
	err := a.view(func(c *collection.Collection) error {
		minted = toHexBig(c.MintedBalance(account))
		return nil
	})
	return minted, err
}

// GetBalance is the native balance of account.
func (a *CollectionAPI) GetBalance(account common.Address) *hexutil.Big {
	return toHexBig(a.processor.Balance(account))
}

type HeadResult struct {
	Number hexutil.Uint64 `json:"number"`
	Root   common.Hash    `json:"root"`
}

func (a *CollectionAPI) Head() HeadResult {
	head := a.processor.Head()
	return HeadResult{Number: hexutil.Uint64(head.Number), Root: head.Root}
}

type RPCReceipt struct {
	TxHash    common.Hash       `json:"transactionHash"`
	Number    hexutil.Uint64    `json:"number"`
	Method    string            `json:"method"`
	From      common.Address    `json:"from"`
	To        common.Address    `json:"to"`
	Value     *hexutil.Big      `json:"value"`
	Status    hexutil.Uint64    `json:"status"`
	Error     string            `json:"error,omitempty"`
	StateRoot common.Hash       `json:"stateRoot"`
	Logs      []*types.Log      `json:"logs"`
	Events    []*eventlog.Event `json:"events"`
}

// GetReceipt returns the receipt of a transaction with its logs decoded.
func (a *CollectionAPI) GetReceipt(ctx context.Context, txHash common.Hash) (*RPCReceipt, error) {
	receipt, err := a.processor.Receipt(ctx, txHash)
	if errors.Is(err, txprocessor.ErrReceiptNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	events, err := eventlog.DecodeAll(eventlog.CollectionABI, receipt.Logs)
	if err != nil {
		log.Warn("receipt holds logs the collection did not emit", "hash", txHash, "err", err)
		events = nil
	}
	return &RPCReceipt{
		TxHash:    receipt.TxHash,
		Number:    hexutil.Uint64(receipt.Number),
		Method:    receipt.Method,
		From:      receipt.From,
		To:        receipt.To,
		Value:     receipt.Value,
		Status:    hexutil.Uint64(receipt.Status),
		Error:     receipt.Error,
		StateRoot: receipt.StateRoot,
		Logs:      receipt.Logs,
		Events:    events,
	}, nil
}

// Deploy initializes the collection from deployer unless the address already holds one.
func Deploy(ctx context.Context, processor *txprocessor.Processor, address, deployer common.Address, config *collectionState.InitConfig, receivers hooks.Resolver) error {
	var version uint64
	err := processor.View(func(statedb vm.StateDB) error {
		var err error
		version, err = collectionState.SchemaVersion(statedb, address)
		return err
	})
	if err != nil {
		return err
	}
	if version != 0 {
		log.Info("collection already deployed", "address", address, "schemaVersion", version)
		return nil
	}
	tx := &txprocessor.Transaction{From: deployer, To: address, Method: "initialize"}
	receipt, err := processor.Apply(ctx, tx, func(statedb vm.StateDB) error {
		_, err := collection.Initialize(statedb, address, collection.CallContext{Caller: deployer}, collectionState.Initializer{Deployer: deployer}, config, receivers)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to deploy collection at %v: %w", address, err)
	}
	log.Info("deployed collection", "address", address, "owner", config.Owner, "hash", receipt.TxHash)
	return nil
}

func NewStack(stackConfig *node.Config, service *CollectionAPI) (*node.Node, error) {
	stack, err := node.New(stackConfig)
	if err != nil {
		return nil, err
	}
	stack.RegisterAPIs([]rpc.API{{
		Namespace: Namespace,
		Version:   "1.0",
		Service:   service,
	}})
	return stack, nil
}
