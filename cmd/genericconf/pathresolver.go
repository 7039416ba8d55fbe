// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package genericconf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// DefaultPathResolver returns a resolver that leaves absolute paths alone, expands a leading ~ to the home
// directory and joins anything else onto base. An empty base means the current directory.
func DefaultPathResolver(base string) func(string) string {
	base = expandHome(base)
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Warn("could not determine working directory, resolving paths as given", "err", err)
		}
		base = cwd
	}
	return func(path string) string {
		path = expandHome(path)
		if filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn("could not determine home directory", "path", path, "err", err)
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
