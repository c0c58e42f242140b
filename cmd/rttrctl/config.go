package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/rttr/binding/wasmhost"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/signature"
)

// Config is the optional YAML configuration file.
type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Module is the wasm host module name used by exports and browse.
	Module string `yaml:"module"`
	// Compare lists the folding rules applied by decode --normalize.
	Compare []string `yaml:"compare"`
}

var compareFlags = map[string]signature.CompareFlag{
	"ref-as-pointer":        signature.CompareRefAsPointer,
	"rvalue-ref-as-pointer": signature.CompareRValueRefAsPointer,
	"ignore-const":          signature.CompareIgnoreConst,
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Module:   wasmhost.DefaultModuleName,
		Compare:  []string{"ref-as-pointer", "rvalue-ref-as-pointer", "ignore-const"},
	}
}

// LoadConfig reads path over the defaults. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.ConfigFailed(path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.ConfigFailed(path, err)
	}
	if _, err := cfg.CompareFlags(); err != nil {
		return cfg, errors.ConfigFailed(path, err)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, errors.ConfigFailed(path, err)
	}
	return cfg, nil
}

// CompareFlags folds the Compare names into a flag set.
func (c Config) CompareFlags() (signature.CompareFlag, error) {
	var flags signature.CompareFlag
	for _, name := range c.Compare {
		f, ok := compareFlags[name]
		if !ok {
			return 0, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown compare rule %q", name))
		}
		flags |= f
	}
	return flags, nil
}

// Logger builds a console logger on stderr at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, errors.ConfigFailed("log level", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
