// Package config loads the HCL configuration for the holdem server and CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/feltworks/holdem/internal/ai"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerSettings  `hcl:"server,block"`
	History HistorySettings `hcl:"history,block"`
	Tables  []TableConfig   `hcl:"table,block"`
	Bots    []BotConfig     `hcl:"bot,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// HistorySettings controls hand-history recording.
type HistorySettings struct {
	Enabled   bool   `hcl:"enabled,optional"`
	Directory string `hcl:"directory,optional"`
}

// TableConfig defines one table.
type TableConfig struct {
	Name            string `hcl:"name,label"`
	MaxPlayers      int    `hcl:"max_players,optional"`
	SmallBlind      int    `hcl:"small_blind"`
	BigBlind        int    `hcl:"big_blind"`
	BuyIn           int    `hcl:"buy_in,optional"`
	DecisionTimeout string `hcl:"decision_timeout,optional"`
	Training        bool   `hcl:"training,optional"` // emit advisory hints to seated humans
}

// BotConfig seats a computer opponent.
type BotConfig struct {
	Name   string   `hcl:"name,label"`
	Style  string   `hcl:"style"`
	Tables []string `hcl:"tables,optional"`
	BuyIn  int      `hcl:"buy_in,optional"`
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		History: HistorySettings{
			Enabled:   true,
			Directory: "hands",
		},
		Tables: []TableConfig{
			{
				Name:            "main",
				MaxPlayers:      6,
				SmallBlind:      5,
				BigBlind:        10,
				BuyIn:           1000,
				DecisionTimeout: "30s",
			},
		},
	}
}

// Load parses the HCL file at filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// defaults for values the file omitted
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.History.Directory == "" {
		cfg.History.Directory = "hands"
	}
	for i := range cfg.Tables {
		if cfg.Tables[i].MaxPlayers == 0 {
			cfg.Tables[i].MaxPlayers = 6
		}
		if cfg.Tables[i].BuyIn == 0 {
			cfg.Tables[i].BuyIn = cfg.Tables[i].BigBlind * 100
		}
		if cfg.Tables[i].DecisionTimeout == "" {
			cfg.Tables[i].DecisionTimeout = "30s"
		}
	}
	for i := range cfg.Bots {
		if cfg.Bots[i].BuyIn == 0 {
			cfg.Bots[i].BuyIn = 1000
		}
		if len(cfg.Bots[i].Tables) == 0 {
			for _, table := range cfg.Tables {
				cfg.Bots[i].Tables = append(cfg.Bots[i].Tables, table.Name)
			}
		}
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	for _, table := range c.Tables {
		if table.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", table.Name)
		}
		if table.BigBlind <= table.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", table.Name)
		}
		if table.MaxPlayers < 2 || table.MaxPlayers > 10 {
			return fmt.Errorf("table %s: max players must be between 2 and 10", table.Name)
		}
		if table.BuyIn < table.BigBlind*10 {
			return fmt.Errorf("table %s: buy-in must cover at least 10 big blinds", table.Name)
		}
		if _, err := table.Timeout(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}

	validStyles := map[string]bool{
		string(ai.StyleRandom):          true,
		string(ai.StyleCallingStation):  true,
		string(ai.StyleTightAggressive): true,
	}
	for _, bot := range c.Bots {
		if !validStyles[bot.Style] {
			return fmt.Errorf("bot %s: invalid style %s", bot.Name, bot.Style)
		}
		if bot.BuyIn <= 0 {
			return fmt.Errorf("bot %s: buy-in must be positive", bot.Name)
		}
	}
	return nil
}

// Timeout parses the table's decision timeout.
func (t *TableConfig) Timeout() (time.Duration, error) {
	if t.DecisionTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.DecisionTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid decision_timeout %q: %w", t.DecisionTimeout, err)
	}
	return d, nil
}

// ListenAddress returns the address:port the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TableByName returns a table configuration by name, or nil.
func (c *Config) TableByName(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// BotsForTable returns the bots configured to sit at the named table.
func (c *Config) BotsForTable(tableName string) []BotConfig {
	var bots []BotConfig
	for _, bot := range c.Bots {
		for _, table := range bot.Tables {
			if table == tableName {
				bots = append(bots, bot)
				break
			}
		}
	}
	return bots
}
