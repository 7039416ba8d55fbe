// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

// Package confighelpers layers command line flags, JSON configuration and environment variables into a
// single koanf tree.
package confighelpers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
)

var ErrVersion = errors.New("version requested")

// BeginCommonParse loads, in increasing priority: flag defaults, conf.string, each conf.file in order,
// environment variables under conf.env-prefix, and finally flags set explicitly on the command line.
func BeginCommonParse(f *flag.FlagSet, args []string) (*koanf.Koanf, error) {
	for _, arg := range args {
		if arg == "--version" || arg == "-v" {
			return nil, ErrVersion
		}
	}
	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if f.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument: %s", f.Arg(0))
	}

	k := koanf.New(".")
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error loading command line flags: %w", err)
	}

	if configString := k.String("conf.string"); configString != "" {
		if err := k.Load(rawbytes.Provider([]byte(configString)), json.Parser()); err != nil {
			return nil, fmt.Errorf("error loading conf.string: %w", err)
		}
	}

	for _, configFile := range k.Strings("conf.file") {
		if configFile == "" {
			continue
		}
		if err := k.Load(file.Provider(configFile), json.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", configFile, err)
		}
	}

	if envPrefix := k.String("conf.env-prefix"); envPrefix != "" {
		if err := loadEnvironmentVariables(k, envPrefix); err != nil {
			return nil, err
		}
	}

	// flags given explicitly win over everything loaded since
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("error reloading command line flags: %w", err)
	}
	return k, nil
}

// loadEnvironmentVariables maps PREFIX_HTTP_ADDR to http.addr and PREFIX_COLLECTION_MAX__SUPPLY to
// collection.max-supply.
func loadEnvironmentVariables(k *koanf.Koanf, envPrefix string) error {
	prefix := strings.ToUpper(envPrefix) + "_"
	return k.Load(env.Provider(prefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, prefix))
		s = strings.ReplaceAll(s, "__", "-")
		return strings.ReplaceAll(s, "_", ".")
	}), nil)
}

// EndCommonParse decodes the loaded tree into config. Keys that match no field are an error.
func EndCommonParse(k *koanf.Koanf, config interface{}) error {
	decoderConfig := mapstructure.DecoderConfig{
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Metadata:         nil,
		Result:           config,
		TagName:          "koanf",
		WeaklyTypedInput: true,
	}
	return k.UnmarshalWithConf("", config, koanf.UnmarshalConf{DecoderConfig: &decoderConfig})
}

// DumpConfig prints the active configuration as JSON, with overrides applied first so that secrets and the
// dump switch itself are not printed.
func DumpConfig(k *koanf.Koanf, overrides map[string]interface{}) error {
	masked := map[string]interface{}{"conf.dump": false}
	for key, value := range overrides {
		masked[key] = value
	}
	if err := k.Load(confmap.Provider(masked, "."), nil); err != nil {
		return fmt.Errorf("error removing extra parameters before dump: %w", err)
	}
	c, err := k.Marshal(json.Parser())
	if err != nil {
		return fmt.Errorf("unable to marshal config file to JSON: %w", err)
	}
	fmt.Println(string(c))
	return nil
}

func PrintErrorAndExit(err error, usage func(string)) {
	if err != nil && errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "\nERROR: %s\n", err.Error())
	if usage != nil {
		usage(os.Args[0])
	}
	os.Exit(1)
}
