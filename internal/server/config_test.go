package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dealerd.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, []int{50, 100, 500}, cfg.Game.ChipButtons)
	assert.Equal(t, "gpt-4o-mini", cfg.Advisor.Model)
	assert.Equal(t, "balances.txt", cfg.Ledger.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoadServerConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server {
  address = "0.0.0.0"
  port    = 9000
}

game {
  join_timeout = 30
  default_bet  = 100
  chip_buttons = [25, 50]
}

advisor {
  model       = "gpt-4o"
  max_retries = 5
}

ledger {
  path          = "/var/lib/dealerd/balances.txt"
  house_balance = 5000
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, 30, cfg.Game.JoinTimeout)
	assert.Equal(t, []int{25, 50}, cfg.Game.ChipButtons)
	// Unset fields still get defaults.
	assert.Equal(t, 20, cfg.Game.BetTimeout)
	assert.Equal(t, []int{2, 3, 5}, cfg.Game.Multipliers)
	assert.Equal(t, "gpt-4o", cfg.Advisor.Model)
	assert.Equal(t, 5000, cfg.Ledger.HouseBalance)
}

func TestLoadServerConfigRejectsBadHCL(t *testing.T) {
	path := writeConfig(t, `server { address = `)

	_, err := LoadServerConfig(path)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *ServerConfig) { c.Game.TurnTimeout = 0 }},
		{"negative chip", func(c *ServerConfig) { c.Game.ChipButtons = []int{-50} }},
		{"multiplier of one", func(c *ServerConfig) { c.Game.Multipliers = []int{1} }},
		{"dealer stand too high", func(c *ServerConfig) { c.Game.DealerStand = 25 }},
		{"empty ledger path", func(c *ServerConfig) { c.Ledger.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGameConfigConversion(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Game.TurnTimeout = 45
	cfg.Game.KeepBrokePlayers = true

	gc := cfg.GameConfig()
	assert.Equal(t, 45*time.Second, gc.TurnTimeout)
	assert.False(t, gc.KickBrokePlayers)
	assert.Equal(t, 17, gc.DealerStand)
}

func TestAdvisorConfigReadsKeyFromEnv(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Advisor.APIKeyEnv = "DEALERD_TEST_KEY"
	t.Setenv("DEALERD_TEST_KEY", "sk-test")

	ac := cfg.AdvisorConfig()
	assert.Equal(t, "sk-test", ac.APIKey)
	assert.Equal(t, 30*time.Second, ac.Timeout)
}
