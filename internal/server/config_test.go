package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentpoker.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
  seed      = 42
}

table "main" {
  small_blind = 5
  big_blind   = 10
  rake_micros = 10
}

table "high" {
  small_blind   = 50
  big_blind     = 100
  buy_in_min    = 2000
  buy_in_max    = 20000
  max_players   = 9
  hand_delay_ms = 500
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, int64(42), cfg.Server.Seed)
	require.Len(t, cfg.Tables, 2)

	// Unset fields fall back to blind-relative defaults.
	main := cfg.Tables[0].GameConfig()
	assert.Equal(t, 500, main.MinBuyIn)
	assert.Equal(t, 5000, main.MaxBuyIn)
	assert.Equal(t, 6, main.MaxPlayers)
	assert.Equal(t, 10, main.RakeMicros)
	assert.Equal(t, 2*time.Second, main.HandDelay)

	high := cfg.Tables[1].GameConfig()
	assert.Equal(t, 2000, high.MinBuyIn)
	assert.Equal(t, 9, high.MaxPlayers)
	assert.Equal(t, 500*time.Millisecond, high.HandDelay)
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, 2, cfg.Tables[0].BigBlind)
}

func TestLoadServerConfigRejectsBadHCL(t *testing.T) {
	path := writeConfig(t, `table "broken" { small_blind = `)
	_, err := LoadServerConfig(path)
	require.Error(t, err)
}

func TestValidateRejectsBadTables(t *testing.T) {
	path := writeConfig(t, `
table "bad" {
  small_blind = 10
  big_blind   = 5
}
`)
	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
