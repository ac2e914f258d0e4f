package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8845", cfg.ListenAddress)
	assert.Equal(t, ".govledger", cfg.DataDir)
	assert.False(t, cfg.InMemory)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "govledger.yaml")
	raw := []byte(`
listenAddress: "0.0.0.0:9000"
inMemory: true
maxSupply: 5000
currencies: ["EUR", "USD"]
`)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress)
	assert.True(t, cfg.InMemory)
	assert.Equal(t, int64(5000), cfg.MaxSupply)
	assert.Equal(t, []string{"EUR", "USD"}, cfg.Currencies)
	// Untouched keys keep their defaults.
	assert.Equal(t, ".govledger", cfg.DataDir)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "govledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listenAddress: "0.0.0.0:9000"`), 0o600))
	t.Setenv("GOVLEDGER_LISTEN_ADDRESS", "127.0.0.1:7000")
	t.Setenv("GOVLEDGER_LOCK_PERIOD", "10")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddress)
	assert.Equal(t, int64(10), cfg.LockPeriod)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
