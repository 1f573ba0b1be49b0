package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
)

// Environment variables that override file settings.
const (
	EnvDB       = "STOCKLEDGER_DB"
	EnvAddr     = "STOCKLEDGER_ADDR"
	EnvLogLevel = "STOCKLEDGER_LOG_LEVEL"
	EnvLogFile  = "STOCKLEDGER_LOG_FILE"
)

// Config represents the complete ledger configuration
type Config struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`
	Fees   FeesConfig   `json:"fees" yaml:"fees"`
}

// StoreConfig locates the SQLite database
type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServerConfig contains HTTP API parameters
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn, error
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// FeesConfig contains broker-specific fee parameters. Exchange rates live
// in the database fee schedule.
type FeesConfig struct {
	// DefaultCommission is the commission rate given to instruments opened
	// without an explicit rate.
	DefaultCommission float64 `json:"default_commission" yaml:"default_commission"`
	// MinCommission maps an action name (open, add, reduce, close) to the
	// minimum commission charged on it.
	MinCommission map[string]float64 `json:"min_commission,omitempty" yaml:"min_commission,omitempty"`
}

// Policy converts the minimum commission table.
func (f FeesConfig) Policy() (fee.Policy, error) {
	p := fee.Policy{MinCommission: make(map[market.ActionKind]float64, len(f.MinCommission))}
	for name, v := range f.MinCommission {
		kind, err := market.ParseActionKind(name)
		if err != nil {
			return fee.Policy{}, fmt.Errorf("fees.min_commission: %w", err)
		}
		p.MinCommission[kind] = v
	}
	return p, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is set, then applies the .env file and
// environment overrides.
// Priority: ENV > .env file > config file > defaults
func Load(path, envPath string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Fees.DefaultCommission < 0 || c.Fees.DefaultCommission >= 1 {
		return fmt.Errorf("fees.default_commission must be in [0, 1)")
	}
	for name, v := range c.Fees.MinCommission {
		if _, err := market.ParseActionKind(name); err != nil {
			return fmt.Errorf("fees.min_commission: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("fees.min_commission.%s must not be negative", name)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			DBPath: "./stockledger.db",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Fees: FeesConfig{
			DefaultCommission: fee.DefaultInstrumentCommission,
			MinCommission: map[string]float64{
				market.Open.String(): fee.DefaultMinCommission,
			},
		},
	}
}
