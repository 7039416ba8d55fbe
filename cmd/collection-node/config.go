// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	flag "github.com/spf13/pflag"

	"github.com/offchainlabs/mintengine/cmd/conf"
	"github.com/offchainlabs/mintengine/cmd/genericconf"
	"github.com/offchainlabs/mintengine/cmd/util"
	"github.com/offchainlabs/mintengine/cmd/util/confighelpers"
	"github.com/offchainlabs/mintengine/collection"
	"github.com/offchainlabs/mintengine/collection/collectionState"
	"github.com/offchainlabs/mintengine/collection/txprocessor"
	"github.com/offchainlabs/mintengine/util/arbmath"
)

type CollectionConfig struct {
	Address             string `koanf:"address"`
	Deployer            string `koanf:"deployer"`
	Owner               string `koanf:"owner"`
	Name                string `koanf:"name"`
	Symbol              string `koanf:"symbol"`
	TokenURI            string `koanf:"token-uri"`
	Cost                string `koanf:"cost"`
	MaxSupply           string `koanf:"max-supply"`
	MaxSupplyPerAddress string `koanf:"max-supply-per-address"`
	Limited             bool   `koanf:"limited"`
	LimitedPerAddress   bool   `koanf:"limited-per-address"`
	MaxBatchSize        uint64 `koanf:"max-batch-size"`
}

var CollectionConfigDefault = CollectionConfig{
	Address:             "0x00000000000000000000000000000000000C0113",
	Deployer:            "",
	Owner:               "",
	Name:                "",
	Symbol:              "",
	TokenURI:            "",
	Cost:                "0",
	MaxSupply:           "0",
	MaxSupplyPerAddress: "0",
	Limited:             true,
	LimitedPerAddress:   true,
	MaxBatchSize:        collection.DefaultMaxBatchSize,
}

func CollectionConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.String(prefix+".address", CollectionConfigDefault.Address, "address the collection is deployed at")
	f.String(prefix+".deployer", CollectionConfigDefault.Deployer, "account that deploys the collection; the only account allowed to initialize it")
	f.String(prefix+".owner", CollectionConfigDefault.Owner, "initial owner of the collection")
	f.String(prefix+".name", CollectionConfigDefault.Name, "collection name")
	f.String(prefix+".symbol", CollectionConfigDefault.Symbol, "collection symbol")
	f.String(prefix+".token-uri", CollectionConfigDefault.TokenURI, "metadata URI shared by every unit")
	f.String(prefix+".cost", CollectionConfigDefault.Cost, "price of one unit in wei, as a decimal")
	f.String(prefix+".max-supply", CollectionConfigDefault.MaxSupply, "maximum number of units issued, as a decimal")
	f.String(prefix+".max-supply-per-address", CollectionConfigDefault.MaxSupplyPerAddress, "maximum number of units a direct buyer may mint, as a decimal (0 = same as max-supply)")
	f.Bool(prefix+".limited", CollectionConfigDefault.Limited, "enforce max-supply")
	f.Bool(prefix+".limited-per-address", CollectionConfigDefault.LimitedPerAddress, "enforce max-supply-per-address")
	f.Uint64(prefix+".max-batch-size", CollectionConfigDefault.MaxBatchSize, "most units a single mint or drop may issue")
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func parseQuantity(name, value string) (*uint256.Int, error) {
	quantity, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return quantity, nil
}

func (c *CollectionConfig) ContractAddress() (common.Address, error) {
	return parseAddress("collection", c.Address)
}

func (c *CollectionConfig) DeployerAddress() (common.Address, error) {
	return parseAddress("deployer", c.Deployer)
}

// InitConfig converts the flags into the parameters the collection is initialized with.
func (c *CollectionConfig) InitConfig() (*collectionState.InitConfig, error) {
	owner, err := parseAddress("owner", c.Owner)
	if err != nil {
		return nil, err
	}
	cost, err := parseQuantity("cost", c.Cost)
	if err != nil {
		return nil, err
	}
	maxSupply, err := parseQuantity("max-supply", c.MaxSupply)
	if err != nil {
		return nil, err
	}
	maxSupplyPerAddress, err := parseQuantity("max-supply-per-address", c.MaxSupplyPerAddress)
	if err != nil {
		return nil, err
	}
	if maxSupplyPerAddress.IsZero() {
		maxSupplyPerAddress = maxSupply
		if !c.Limited {
			maxSupplyPerAddress = arbmath.MaxU256()
		}
	}
	config := &collectionState.InitConfig{
		Owner:               owner,
		Name:                c.Name,
		Symbol:              c.Symbol,
		TokenURI:            c.TokenURI,
		Cost:                cost,
		MaxSupply:           maxSupply,
		MaxSupplyPerAddress: maxSupplyPerAddress,
		Limited:             c.Limited,
		LimitedPerAddress:   c.LimitedPerAddress,
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *CollectionConfig) Validate() error {
	if c.MaxBatchSize == 0 {
		return errors.New("max-batch-size must be positive")
	}
	if _, err := c.ContractAddress(); err != nil {
		return err
	}
	if _, err := c.DeployerAddress(); err != nil {
		return err
	}
	_, err := c.InitConfig()
	return err
}

type NodeConfig struct {
	Conf          genericconf.ConfConfig          `koanf:"conf"`
	Persistent    conf.PersistentConfig           `koanf:"persistent"`
	FileLogging   genericconf.FileLoggingConfig   `koanf:"file-logging"`
	LogLevel      string                          `koanf:"log-level"`
	LogType       string                          `koanf:"log-type"`
	Metrics       bool                            `koanf:"metrics"`
	MetricsServer genericconf.MetricsServerConfig `koanf:"metrics-server"`
	HTTP          genericconf.HTTPConfig          `koanf:"http"`
	Collection    CollectionConfig                `koanf:"collection"`
	Processor     txprocessor.Config              `koanf:"processor"`
	DevAlloc      []string                        `koanf:"dev-alloc"`
}

var NodeConfigDefault = NodeConfig{
	Conf:          genericconf.ConfConfigDefault,
	Persistent:    conf.PersistentConfigDefault,
	FileLogging:   genericconf.DefaultFileLoggingConfig,
	LogLevel:      "INFO",
	LogType:       "plaintext",
	Metrics:       false,
	MetricsServer: genericconf.MetricsServerConfigDefault,
	HTTP:          genericconf.HTTPConfigDefault,
	Collection:    CollectionConfigDefault,
	Processor:     txprocessor.DefaultConfig,
	DevAlloc:      []string{},
}

func NodeConfigAddOptions(f *flag.FlagSet) {
	genericconf.ConfConfigAddOptions("conf", f)
	conf.PersistentConfigAddOptions("persistent", f)
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	f.String("log-level", NodeConfigDefault.LogLevel, "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", NodeConfigDefault.LogType, "log type (plaintext or json)")
	f.Bool("metrics", NodeConfigDefault.Metrics, "enable metrics")
	genericconf.MetricsServerAddOptions("metrics-server", f)
	genericconf.HTTPConfigAddOptions("http", f)
	CollectionConfigAddOptions("collection", f)
	txprocessor.ConfigAddOptions("processor", f)
	f.StringSlice("dev-alloc", NodeConfigDefault.DevAlloc, "genesis balances as address=wei pairs, applied only to an empty chain")
}

func (c *NodeConfig) Validate() error {
	if err := c.Persistent.Validate(); err != nil {
		return err
	}
	if err := c.FileLogging.Validate(); err != nil {
		return err
	}
	if err := c.Processor.Validate(); err != nil {
		return err
	}
	if err := c.Collection.Validate(); err != nil {
		return fmt.Errorf("invalid collection config: %w", err)
	}
	_, err := c.GenesisAlloc()
	return err
}

func (c *NodeConfig) MetricsOpts() *util.MetricsOpts {
	return &util.MetricsOpts{Metrics: c.Metrics, MetricsServer: c.MetricsServer}
}

// GenesisAlloc parses DevAlloc. Repeated addresses are summed.
func (c *NodeConfig) GenesisAlloc() (map[common.Address]*uint256.Int, error) {
	alloc := make(map[common.Address]*uint256.Int, len(c.DevAlloc))
	for _, entry := range c.DevAlloc {
		addressPart, amountPart, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("invalid dev-alloc entry %q, expected address=wei", entry)
		}
		account, err := parseAddress("dev-alloc", strings.TrimSpace(addressPart))
		if err != nil {
			return nil, err
		}
		amount, err := parseQuantity("dev-alloc amount", strings.TrimSpace(amountPart))
		if err != nil {
			return nil, err
		}
		if previous, ok := alloc[account]; ok {
			sum, overflow := new(uint256.Int).AddOverflow(previous, amount)
			if overflow {
				return nil, errors.New("dev-alloc balance overflows 256 bits")
			}
			amount = sum
		}
		alloc[account] = amount
	}
	return alloc, nil
}

func ParseNode(args []string) (*NodeConfig, error) {
	f := flag.NewFlagSet("", flag.ContinueOnError)
	NodeConfigAddOptions(f)

	k, err := confighelpers.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var nodeConfig NodeConfig
	if err := confighelpers.EndCommonParse(k, &nodeConfig); err != nil {
		return nil, err
	}
	if nodeConfig.Conf.Dump {
		if err := confighelpers.DumpConfig(k, map[string]interface{}{}); err != nil {
			return nil, err
		}
	}
	if err := nodeConfig.Validate(); err != nil {
		return nil, err
	}
	return &nodeConfig, nil
}
