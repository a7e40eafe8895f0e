// Package config loads client configuration from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/contracts"
	"github.com/Rampop01/spectralpay/pkg/logger"
)

// FileEnv names the YAML file overlaid on top of the environment.
const FileEnv = "SPECTRALPAY_CONFIG"

// Contracts are the deployed contract script hashes.
type Contracts struct {
	JobMarketplace    string `env:"SPECTRALPAY_JOB_MARKETPLACE,default=0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718201" yaml:"job_marketplace"`
	PseudonymRegistry string `env:"SPECTRALPAY_PSEUDONYM_REGISTRY,default=0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718202" yaml:"pseudonym_registry"`
	Escrow            string `env:"SPECTRALPAY_ESCROW,default=0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718203" yaml:"escrow"`
	ZKVerifier        string `env:"SPECTRALPAY_ZK_VERIFIER,default=0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718204" yaml:"zk_verifier"`
}

// Config is read once at startup.
type Config struct {
	Contracts Contracts `yaml:"contracts"`

	Network  string `env:"SPECTRALPAY_NETWORK,default=testnet" yaml:"network"`
	Explorer string `env:"SPECTRALPAY_EXPLORER_URL,default=https://testnet.neotube.io" yaml:"explorer_url"`

	RPCURL     string        `env:"SPECTRALPAY_RPC_URL,default=https://testnet1.neo.coz.io:443" yaml:"rpc_url"`
	RPCTimeout time.Duration `env:"SPECTRALPAY_RPC_TIMEOUT,default=30s" yaml:"rpc_timeout"`
	RateLimit  float64       `env:"SPECTRALPAY_RPC_RATE_LIMIT,default=10" yaml:"rate_limit"`
	RateBurst  int           `env:"SPECTRALPAY_RPC_RATE_BURST,default=5" yaml:"rate_burst"`

	LogLevel  string `env:"SPECTRALPAY_LOG_LEVEL,default=info" yaml:"log_level"`
	LogFormat string `env:"SPECTRALPAY_LOG_FORMAT,default=text" yaml:"log_format"`

	// PrivateKey is never read from the YAML file.
	PrivateKey string `env:"SPECTRALPAY_PRIVATE_KEY" yaml:"-"`
}

// Load reads .env (if present), then the environment, then the file named
// by SPECTRALPAY_CONFIG (if set).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("network is required")
	}
	if _, ok := chain.NetworkMagic(c.Network); !ok {
		return fmt.Errorf("unknown network %q", c.Network)
	}
	for name, v := range map[string]string{
		"job_marketplace":    c.Contracts.JobMarketplace,
		"pseudonym_registry": c.Contracts.PseudonymRegistry,
		"escrow":             c.Contracts.Escrow,
		"zk_verifier":        c.Contracts.ZKVerifier,
	} {
		if !isScriptHash(v) {
			return fmt.Errorf("contracts.%s: %q is not a 0x-prefixed 20 byte script hash", name, v)
		}
	}
	for name, v := range map[string]string{"rpc_url": c.RPCURL, "explorer_url": c.Explorer} {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: %q is not an absolute URL", name, v)
		}
	}
	if c.RPCTimeout <= 0 {
		return fmt.Errorf("rpc_timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

func isScriptHash(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return false
	}
	for _, r := range s[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// Addresses returns the contract addresses in the form the gateways take.
func (c *Config) Addresses() contracts.Addresses {
	return contracts.Addresses{
		JobMarketplace:    c.Contracts.JobMarketplace,
		PseudonymRegistry: c.Contracts.PseudonymRegistry,
		Escrow:            c.Contracts.Escrow,
		ZKVerifier:        c.Contracts.ZKVerifier,
	}
}

// ChainConfig returns the RPC client settings.
func (c *Config) ChainConfig() chain.Config {
	magic, _ := chain.NetworkMagic(c.Network)
	return chain.Config{
		RPCURL:            c.RPCURL,
		NetworkID:         magic,
		Timeout:           c.RPCTimeout,
		RequestsPerSecond: c.RateLimit,
		Burst:             c.RateBurst,
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// Explorer link kinds.
const (
	KindTransaction = "transaction"
	KindContract    = "contract"
	KindAddress     = "address"
)

// ExplorerURL links id on the block explorer.
func (c *Config) ExplorerURL(id, kind string) string {
	base := strings.TrimRight(c.Explorer, "/")
	switch kind {
	case KindContract, KindAddress:
	default:
		kind = KindTransaction
	}
	return base + "/" + kind + "/" + id
}

// FormatAddress shortens addr for display as 0x1234...abcd.
func FormatAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
