package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/dealerd/dealerd/internal/advisor"
	"github.com/dealerd/dealerd/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server  ServerSettings  `hcl:"server,block"`
	Game    GameSettings    `hcl:"game,block"`
	Advisor AdvisorSettings `hcl:"advisor,block"`
	Ledger  LedgerSettings  `hcl:"ledger,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings parameterizes the blackjack tables. Timeouts are in
// seconds.
type GameSettings struct {
	JoinTimeout      int   `hcl:"join_timeout,optional"`
	BetTimeout       int   `hcl:"bet_timeout,optional"`
	TurnTimeout      int   `hcl:"turn_timeout,optional"`
	DefaultBet       int   `hcl:"default_bet,optional"`
	ChipButtons      []int `hcl:"chip_buttons,optional"`
	Multipliers      []int `hcl:"multipliers,optional"`
	DealerStand      int   `hcl:"dealer_stand,optional"`
	KeepBrokePlayers bool  `hcl:"keep_broke_players,optional"`
}

// AdvisorSettings configures the LLM the house plays with. The API key
// comes from the api_key_env environment variable, never the file.
type AdvisorSettings struct {
	Model      string `hcl:"model,optional"`
	APIKeyEnv  string `hcl:"api_key_env,optional"`
	MaxRetries int    `hcl:"max_retries,optional"`
	Timeout    int    `hcl:"timeout,optional"`
}

// LedgerSettings configures balance persistence
type LedgerSettings struct {
	Path         string `hcl:"path,optional"`
	HouseBalance int    `hcl:"house_balance,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			JoinTimeout: 20,
			BetTimeout:  20,
			TurnTimeout: 20,
			DefaultBet:  50,
			ChipButtons: []int{50, 100, 500},
			Multipliers: []int{2, 3, 5},
			DealerStand: 17,
		},
		Advisor: AdvisorSettings{
			Model:      "gpt-4o-mini",
			APIKeyEnv:  "OPENAI_API_KEY",
			MaxRetries: 3,
			Timeout:    30,
		},
		Ledger: LedgerSettings{
			Path:         "balances.txt",
			HouseBalance: 1000,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()

	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}

	if config.Game.JoinTimeout == 0 {
		config.Game.JoinTimeout = defaults.Game.JoinTimeout
	}
	if config.Game.BetTimeout == 0 {
		config.Game.BetTimeout = defaults.Game.BetTimeout
	}
	if config.Game.TurnTimeout == 0 {
		config.Game.TurnTimeout = defaults.Game.TurnTimeout
	}
	if config.Game.DefaultBet == 0 {
		config.Game.DefaultBet = defaults.Game.DefaultBet
	}
	if len(config.Game.ChipButtons) == 0 {
		config.Game.ChipButtons = defaults.Game.ChipButtons
	}
	if len(config.Game.Multipliers) == 0 {
		config.Game.Multipliers = defaults.Game.Multipliers
	}
	if config.Game.DealerStand == 0 {
		config.Game.DealerStand = defaults.Game.DealerStand
	}

	if config.Advisor.Model == "" {
		config.Advisor.Model = defaults.Advisor.Model
	}
	if config.Advisor.APIKeyEnv == "" {
		config.Advisor.APIKeyEnv = defaults.Advisor.APIKeyEnv
	}
	if config.Advisor.MaxRetries == 0 {
		config.Advisor.MaxRetries = defaults.Advisor.MaxRetries
	}
	if config.Advisor.Timeout == 0 {
		config.Advisor.Timeout = defaults.Advisor.Timeout
	}

	if config.Ledger.Path == "" {
		config.Ledger.Path = defaults.Ledger.Path
	}
	if config.Ledger.HouseBalance == 0 {
		config.Ledger.HouseBalance = defaults.Ledger.HouseBalance
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Game.JoinTimeout <= 0 || c.Game.BetTimeout <= 0 || c.Game.TurnTimeout <= 0 {
		return fmt.Errorf("game timeouts must be positive")
	}
	if c.Game.DefaultBet <= 0 {
		return fmt.Errorf("default bet must be positive")
	}
	for _, chip := range c.Game.ChipButtons {
		if chip <= 0 {
			return fmt.Errorf("chip buttons must be positive, got %d", chip)
		}
	}
	for _, m := range c.Game.Multipliers {
		if m < 2 {
			return fmt.Errorf("multipliers must be at least 2, got %d", m)
		}
	}
	if c.Game.DealerStand < 2 || c.Game.DealerStand > 21 {
		return fmt.Errorf("dealer stand must be between 2 and 21, got %d", c.Game.DealerStand)
	}

	if c.Advisor.MaxRetries < 0 {
		return fmt.Errorf("advisor max retries must not be negative")
	}
	if c.Advisor.Timeout <= 0 {
		return fmt.Errorf("advisor timeout must be positive")
	}

	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger path must not be empty")
	}
	if c.Ledger.HouseBalance < 0 {
		return fmt.Errorf("house balance must not be negative")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts the settings into the engine's configuration.
func (c *ServerConfig) GameConfig() game.Config {
	return game.Config{
		JoinTimeout:      time.Duration(c.Game.JoinTimeout) * time.Second,
		BetTimeout:       time.Duration(c.Game.BetTimeout) * time.Second,
		TurnTimeout:      time.Duration(c.Game.TurnTimeout) * time.Second,
		DefaultBet:       c.Game.DefaultBet,
		ChipButtons:      c.Game.ChipButtons,
		Multipliers:      c.Game.Multipliers,
		DealerStand:      c.Game.DealerStand,
		KickBrokePlayers: !c.Game.KeepBrokePlayers,
	}
}

// AdvisorConfig converts the settings into the OpenAI client
// configuration, resolving the API key from the environment.
func (c *ServerConfig) AdvisorConfig() advisor.OpenAIConfig {
	return advisor.OpenAIConfig{
		APIKey:     os.Getenv(c.Advisor.APIKeyEnv),
		Model:      c.Advisor.Model,
		MaxRetries: c.Advisor.MaxRetries,
		Timeout:    time.Duration(c.Advisor.Timeout) * time.Second,
	}
}
