package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "https://testnet.neotube.io", cfg.Explorer)
	assert.Equal(t, 30*time.Second, cfg.RPCTimeout)
	assert.Equal(t, "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718201", cfg.Addresses().JobMarketplace)
	assert.Equal(t, "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718204", cfg.Addresses().ZKVerifier)
	assert.Empty(t, cfg.PrivateKey)

	cc := cfg.ChainConfig()
	assert.Equal(t, uint32(894710606), cc.NetworkID)
	assert.Equal(t, 10.0, cc.RequestsPerSecond)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("SPECTRALPAY_NETWORK", "mainnet")
	t.Setenv("SPECTRALPAY_RPC_TIMEOUT", "5s")
	t.Setenv("SPECTRALPAY_ESCROW", "0x00000000000000000000000000000000000000ee")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, 5*time.Second, cfg.RPCTimeout)
	assert.Equal(t, "0x00000000000000000000000000000000000000ee", cfg.Contracts.Escrow)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectralpay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network: mainnet
explorer_url: https://neotube.io
contracts:
  job_marketplace: "0x00000000000000000000000000000000000000aa"
private_key: should-be-ignored
`), 0o600))
	t.Setenv(FileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "https://neotube.io", cfg.Explorer)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", cfg.Contracts.JobMarketplace)
	assert.Equal(t, "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718202", cfg.Contracts.PseudonymRegistry)
	assert.Empty(t, cfg.PrivateKey)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		t.Setenv(FileEnv, "")
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := valid()
	cfg.Contracts.Escrow = "0x1234"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Network = "moonnet"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RPCURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RPCTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestExplorerURL(t *testing.T) {
	cfg := &Config{Explorer: "https://testnet.neotube.io/"}
	assert.Equal(t, "https://testnet.neotube.io/transaction/0xabc", cfg.ExplorerURL("0xabc", KindTransaction))
	assert.Equal(t, "https://testnet.neotube.io/contract/0xdef", cfg.ExplorerURL("0xdef", KindContract))
	assert.Equal(t, "https://testnet.neotube.io/address/NQ", cfg.ExplorerURL("NQ", KindAddress))
	assert.Equal(t, "https://testnet.neotube.io/transaction/0x1", cfg.ExplorerURL("0x1", "bogus"))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "0x5c6a...8201", FormatAddress("0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718201"))
	assert.Equal(t, "0x1234", FormatAddress("0x1234"))
	assert.Equal(t, "", FormatAddress(""))
}
