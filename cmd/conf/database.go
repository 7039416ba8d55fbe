// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package conf

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	flag "github.com/spf13/pflag"
)

type PersistentConfig struct {
	GlobalConfig string `koanf:"global-config"`
	Chain        string `koanf:"chain"`
	Handles      int    `koanf:"handles"`
	Cache        int    `koanf:"cache"`
	DBEngine     string `koanf:"db-engine"`
}

var PersistentConfigDefault = PersistentConfig{
	GlobalConfig: ".mintengine",
	Chain:        "",
	Handles:      512,
	Cache:        128,
	DBEngine:     "pebble",
}

func PersistentConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.String(prefix+".global-config", PersistentConfigDefault.GlobalConfig, "directory to store global config")
	f.String(prefix+".chain", PersistentConfigDefault.Chain, "directory to store collection state (empty keeps state in memory)")
	f.Int(prefix+".handles", PersistentConfigDefault.Handles, "number of file descriptor handles to use for the database")
	f.Int(prefix+".cache", PersistentConfigDefault.Cache, "database cache size in MB")
	f.String(prefix+".db-engine", PersistentConfigDefault.DBEngine, "backing database implementation to use ('leveldb' or 'pebble')")
}

func (c *PersistentConfig) Validate() error {
	if c.DBEngine != "leveldb" && c.DBEngine != "pebble" {
		return fmt.Errorf(`invalid persistent.db-engine "%s", expected "leveldb" or "pebble"`, c.DBEngine)
	}
	if c.Handles <= 0 {
		return fmt.Errorf("persistent.handles must be positive, got %d", c.Handles)
	}
	return nil
}

// InMemory reports whether no chain directory was configured.
func (c *PersistentConfig) InMemory() bool {
	return c.Chain == ""
}

// ResolveDirectoryNames makes GlobalConfig absolute under the home directory and Chain absolute under
// GlobalConfig, creating both.
func (c *PersistentConfig) ResolveDirectoryNames() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("unable to read users home directory: %w", err)
	}
	if !filepath.IsAbs(c.GlobalConfig) {
		c.GlobalConfig = path.Join(homeDir, c.GlobalConfig)
	}
	if err := os.MkdirAll(c.GlobalConfig, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create global configuration directory: %w", err)
	}
	if c.InMemory() {
		return nil
	}
	if !filepath.IsAbs(c.Chain) {
		c.Chain = path.Join(c.GlobalConfig, c.Chain)
	}
	if err := os.MkdirAll(c.Chain, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create chain directory: %w", err)
	}
	if DatabaseInDirectory(c.Chain) {
		return fmt.Errorf("database in --persistent.chain (%s) directory, try specifying parent directory", c.Chain)
	}
	return nil
}

func DatabaseInDirectory(path string) bool {
	// Consider database present if file `CURRENT` in directory
	_, err := os.Stat(path + "/CURRENT")
	return err == nil
}

// OpenDatabase opens the collection database under Chain, or an in-memory one.
func (c *PersistentConfig) OpenDatabase(namespace string) (ethdb.Database, error) {
	if c.InMemory() {
		log.Warn("no persistent.chain directory configured, collection state will not survive a restart")
		return rawdb.NewMemoryDatabase(), nil
	}
	db, err := rawdb.Open(rawdb.OpenOptions{
		Type:      c.DBEngine,
		Directory: path.Join(c.Chain, "collectiondata"),
		Namespace: namespace,
		Cache:     c.Cache,
		Handles:   c.Handles,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening %s database in %s: %w", c.DBEngine, c.Chain, err)
	}
	return db, nil
}
