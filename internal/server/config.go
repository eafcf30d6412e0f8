package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/haveebot/agentpoker/internal/game"
)

// ServerConfig is the complete gateway configuration.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	Seed     int64  `hcl:"seed,optional"` // 0 picks a random seed at startup
}

// TableConfig defines one table opened at startup.
type TableConfig struct {
	Name        string `hcl:"name,label"`
	SmallBlind  int    `hcl:"small_blind"`
	BigBlind    int    `hcl:"big_blind"`
	MinBuyIn    int    `hcl:"buy_in_min,optional"`
	MaxBuyIn    int    `hcl:"buy_in_max,optional"`
	MaxPlayers  int    `hcl:"max_players,optional"`
	RakeMicros  int    `hcl:"rake_micros,optional"`
	HandDelayMS int    `hcl:"hand_delay_ms,optional"`
}

// GameConfig converts the HCL table block into the engine configuration.
func (t TableConfig) GameConfig() game.Config {
	return game.Config{
		SmallBlind: t.SmallBlind,
		BigBlind:   t.BigBlind,
		MinBuyIn:   t.MinBuyIn,
		MaxBuyIn:   t.MaxBuyIn,
		MaxPlayers: t.MaxPlayers,
		RakeMicros: t.RakeMicros,
		HandDelay:  time.Duration(t.HandDelayMS) * time.Millisecond,
	}
}

// DefaultServerConfig returns the configuration used when no file is given:
// one 1/2 table on localhost:8080.
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{Name: "main", SmallBlind: 1, BigBlind: 2},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads configuration from an HCL file. A missing file is
// not an error; the defaults apply.
func LoadServerConfig(filename string) (*ServerConfig, error) {
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

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.MaxPlayers == 0 {
			t.MaxPlayers = 6
		}
		if t.MinBuyIn == 0 {
			t.MinBuyIn = t.BigBlind * 50
		}
		if t.MaxBuyIn == 0 {
			t.MaxBuyIn = t.BigBlind * 500
		}
		if t.HandDelayMS == 0 {
			t.HandDelayMS = 2000
		}
	}
}

// Validate checks the configuration, delegating per-table checks to the
// engine's own validation.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	for _, t := range c.Tables {
		if err := t.GameConfig().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	return nil
}

// ListenAddress returns the host:port the gateway binds to.
func (c *ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
