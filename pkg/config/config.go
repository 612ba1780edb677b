package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Store        StoreConfig        `yaml:"store"`
	Sync         SyncConfig         `yaml:"sync"`
	Transactions TransactionsConfig `yaml:"transactions"`
	Inspector    ServerConfig       `yaml:"inspector"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// StoreConfig contains embedded store settings
type StoreConfig struct {
	// Path is the SQLite database file. Ignored when InMemory is set.
	Path        string        `yaml:"path" default:"wallet.db" validate:"required_without=InMemory"`
	InMemory    bool          `yaml:"in_memory"`
	BusyTimeout time.Duration `yaml:"busy_timeout" default:"5s" validate:"gte=0"`
}

// SyncConfig contains offline orchestrator settings
type SyncConfig struct {
	// MaxAge is the staleness threshold used by NeedsSync when callers pass none.
	MaxAge       time.Duration `yaml:"max_age" default:"60s" validate:"gt=0"`
	SingleFlight bool          `yaml:"single_flight" default:"true"`
}

// TransactionsConfig contains transaction cache settings
type TransactionsConfig struct {
	RetentionDays int `yaml:"retention_days" default:"30" validate:"gte=1"`
}

// ServerConfig contains inspector HTTP server settings
type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" default:"true"`
	Host            string        `yaml:"host" default:"127.0.0.1" validate:"required"`
	Port            int           `yaml:"port" default:"8089" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// Default returns a configuration populated with defaults only.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. Fields absent from the file
// keep their defaults.
func Load(configPath string) (*Config, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes, defaults and validates a YAML document. Defaults are applied
// before decoding so an explicit false or zero in the file wins.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

// DSN returns the modernc SQLite data source name for the store.
func (c *StoreConfig) DSN() string {
	if c.InMemory {
		return ":memory:"
	}
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
		c.Path, c.BusyTimeout.Milliseconds(),
	)
}
