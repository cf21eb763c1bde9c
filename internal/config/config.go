package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultNetwork   = "monad-testnet"
	defaultAlgorithm = "fastest"
	defaultBackend   = "json"
	defaultInterval  = 5

	configFile = "config.json"

	// EnvPrefix prefixes every environment override, e.g. NFTTERM_NETWORK.
	EnvPrefix = "NFTTERM"
	// DirEnv overrides the config directory.
	DirEnv = "NFTTERM_CONFIG_DIR"
)

// ErrUnknownKey is returned by Set for keys that are not configurable.
var ErrUnknownKey = errors.New("unknown config key")

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"network":  "network",
	"log-file": "log_file",
	"store":    "store_backend",
}

// Load reads config from dir. Values are layered, lowest first: defaults,
// <dir>/config.json, .env files, NFTTERM_* environment variables and any
// flags in flags that were set. dir defaults to $NFTTERM_CONFIG_DIR or
// ~/.nftterm.
func Load(dir string, flags *pflag.FlagSet) (*Config, error) {
	dir, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	// .env files never override variables already in the environment.
	for _, envFile := range []string{filepath.Join(dir, ".env"), ".env"} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}

	v := viper.New()
	setDefaults(v)

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration rooted at dir without reading
// any file or environment.
func Default(dir string) *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.CustomRPCs = make(map[string][]string)
	cfg.configDir = dir
	return cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "json", "leveldb", "pebble", "memory":
	default:
		return fmt.Errorf("invalid store_backend %q (json, leveldb, pebble, memory)", c.StoreBackend)
	}
	switch c.RPCAlgorithm {
	case "fastest", "round-robin", "failover":
	default:
		return fmt.Errorf("invalid rpc_algorithm %q (fastest, round-robin, failover)", c.RPCAlgorithm)
	}
	if c.ScanWindow == 0 || c.RangeSpan == 0 {
		return errors.New("scan_window and range_span must be positive")
	}
	if c.BatchSize < 1 {
		return errors.New("batch_size must be at least 1")
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

var keys = []string{
	"batch_size", "breaker_failures", "custom_rpcs", "log_file", "network",
	"range_span", "rate_burst", "rate_limit", "recent_transfers", "refresh_interval",
	"rpc_algorithm", "scan_window", "store_backend", "top_holders", "websocket",
}

// Keys returns every configurable key in name order.
func Keys() []string {
	return slices.Clone(keys)
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "network":
		return c.Network, nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "custom_rpcs":
		data, err := json.Marshal(c.CustomRPCs)
		return string(data), err
	case "store_backend":
		return c.StoreBackend, nil
	case "scan_window":
		return strconv.FormatUint(c.ScanWindow, 10), nil
	case "range_span":
		return strconv.FormatUint(c.RangeSpan, 10), nil
	case "batch_size":
		return strconv.Itoa(c.BatchSize), nil
	case "top_holders":
		return strconv.Itoa(c.TopHolders), nil
	case "recent_transfers":
		return strconv.Itoa(c.RecentTransfers), nil
	case "rate_limit":
		return strconv.FormatFloat(c.RateLimit, 'f', -1, 64), nil
	case "rate_burst":
		return strconv.Itoa(c.RateBurst), nil
	case "breaker_failures":
		return strconv.FormatUint(uint64(c.BreakerFailures), 10), nil
	case "refresh_interval":
		return strconv.Itoa(c.RefreshInterval), nil
	case "websocket":
		return strconv.FormatBool(c.Websocket), nil
	case "log_file":
		return c.LogFile, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set parses value into key. The result is validated; the config is left
// unchanged on error.
func (c *Config) Set(key, value string) error {
	next := *c
	var err error
	switch key {
	case "network":
		next.Network = value
	case "rpc_algorithm":
		next.RPCAlgorithm = value
	case "store_backend":
		next.StoreBackend = value
	case "log_file":
		next.LogFile = value
	case "scan_window":
		next.ScanWindow, err = strconv.ParseUint(value, 10, 64)
	case "range_span":
		next.RangeSpan, err = strconv.ParseUint(value, 10, 64)
	case "batch_size":
		next.BatchSize, err = strconv.Atoi(value)
	case "top_holders":
		next.TopHolders, err = strconv.Atoi(value)
	case "recent_transfers":
		next.RecentTransfers, err = strconv.Atoi(value)
	case "rate_limit":
		next.RateLimit, err = strconv.ParseFloat(value, 64)
	case "rate_burst":
		next.RateBurst, err = strconv.Atoi(value)
	case "breaker_failures":
		var n uint64
		n, err = strconv.ParseUint(value, 10, 32)
		next.BreakerFailures = uint32(n)
	case "refresh_interval":
		next.RefreshInterval, err = strconv.Atoi(value)
	case "websocket":
		next.Websocket, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// --- helpers ---

func resolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv(DirEnv); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".nftterm"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", defaultNetwork)
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("store_backend", defaultBackend)
	v.SetDefault("scan_window", 2000)
	v.SetDefault("range_span", 99)
	v.SetDefault("batch_size", 10)
	v.SetDefault("top_holders", 10)
	v.SetDefault("recent_transfers", 5)
	v.SetDefault("rate_limit", 25.0)
	v.SetDefault("rate_burst", 10)
	v.SetDefault("breaker_failures", 5)
	v.SetDefault("refresh_interval", defaultInterval)
	v.SetDefault("websocket", false)
	v.SetDefault("log_file", "")
}
