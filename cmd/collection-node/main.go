// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/mintengine/cmd/collection-node/api"
	"github.com/offchainlabs/mintengine/cmd/genericconf"
	"github.com/offchainlabs/mintengine/cmd/util"
	"github.com/offchainlabs/mintengine/cmd/util/confighelpers"
	"github.com/offchainlabs/mintengine/collection"
	"github.com/offchainlabs/mintengine/collection/hooks"
	"github.com/offchainlabs/mintengine/collection/txprocessor"
	"github.com/offchainlabs/mintengine/util/redisutil"
)

func printSampleUsage(progname string) {
	fmt.Printf("\n")
	fmt.Printf("Sample usage:                  %s --collection.deployer 0x... --collection.owner 0x... --collection.name Tiles --collection.symbol TIL --collection.max-supply 1000 --http.addr 127.0.0.1\n", progname)
}

func mainImpl() int {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	config, err := ParseNode(os.Args[1:])
	if err != nil {
		confighelpers.PrintErrorAndExit(err, printSampleUsage)
	}

	err = genericconf.InitLog(config.LogType, config.LogLevel, &config.FileLogging, genericconf.DefaultPathResolver(config.Persistent.GlobalConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing log: %v\n", err)
		return 1
	}
	defer func() {
		if err := genericconf.CloseLog(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
		}
	}()

	if err := util.StartMetrics(config.MetricsOpts()); err != nil {
		log.Error("error starting metrics server", "err", err)
		return 1
	}

	if err := config.Persistent.ResolveDirectoryNames(); err != nil {
		log.Error("error resolving persistent directories", "err", err)
		return 1
	}
	db, err := config.Persistent.OpenDatabase("collection/")
	if err != nil {
		log.Error("error opening database", "err", err)
		return 1
	}
	defer db.Close()

	chain, err := txprocessor.OpenChain(db)
	if err != nil {
		log.Error("error opening chain", "err", err)
		return 1
	}

	var store txprocessor.ReceiptStore
	redisClient, err := redisutil.RedisClientFromURL(config.Processor.RedisUrl)
	if err != nil {
		log.Error("error connecting to redis", "err", err)
		return 1
	}
	if redisClient != nil {
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("redis is unreachable", "url", config.Processor.RedisUrl, "err", err)
			return 1
		}
		store = txprocessor.NewRedisReceiptStore(redisClient, config.Processor.ReceiptTTL)
	}

	processor, err := txprocessor.NewProcessor(chain, &config.Processor, store)
	if err != nil {
		log.Error("error creating processor", "err", err)
		return 1
	}

	alloc, err := config.GenesisAlloc()
	if err != nil {
		log.Error("error parsing dev-alloc", "err", err)
		return 1
	}
	address, err := config.Collection.ContractAddress()
	if err != nil {
		log.Error("error parsing collection address", "err", err)
		return 1
	}
	deployer, err := config.Collection.DeployerAddress()
	if err != nil {
		log.Error("error parsing deployer address", "err", err)
		return 1
	}
	initConfig, err := config.Collection.InitConfig()
	if err != nil {
		log.Error("error building collection config", "err", err)
		return 1
	}

	if err := processor.Genesis(alloc); err != nil {
		log.Error("error committing genesis", "err", err)
		return 1
	}
	receivers := hooks.NewRegistry()
	if err := api.Deploy(ctx, processor, address, deployer, initConfig, receivers); err != nil {
		log.Error("error deploying collection", "err", err)
		return 1
	}

	stackConf := api.DefaultStackConfig
	config.HTTP.Apply(&stackConf)
	stack, err := api.NewStack(&stackConf, api.NewCollectionAPI(processor, address, receivers, collection.WithMaxBatchSize(config.Collection.MaxBatchSize)))
	if err != nil {
		log.Error("error creating stack", "err", err)
		return 1
	}
	if err := stack.Start(); err != nil {
		log.Error("error starting stack", "err", err)
		return 1
	}
	defer stack.Close()

	head := processor.Head()
	log.Info("collection node running", "address", address, "head", head.Number, "root", head.Root, "http", stack.HTTPEndpoint())

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint
	log.Info("shutting down collection node")
	return 0
}

func main() {
	os.Exit(mainImpl())
}
