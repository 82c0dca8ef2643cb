// Package config loads the blackjack HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/store/postgres"
	"github.com/lox/blackjack/internal/store/redisstore"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the complete configuration
type Config struct {
	Server   ServerSettings
	Storage  StorageSettings
	Postgres *PostgresSettings
	Redis    *RedisSettings
	Game     GameSettings
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	ReadTimeoutMS  int    `hcl:"read_timeout_ms,optional"`
	WriteTimeoutMS int    `hcl:"write_timeout_ms,optional"`
}

// StorageSettings picks a driver for each store
type StorageSettings struct {
	Games        string `hcl:"games,optional"`
	Players      string `hcl:"players,optional"`
	SnapshotFile string `hcl:"snapshot_file,optional"`
}

// PostgresSettings configures the postgres driver
type PostgresSettings struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	Database string `hcl:"database,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	SSLMode  string `hcl:"sslmode,optional"`
}

// RedisSettings configures the redis driver
type RedisSettings struct {
	Addr     string `hcl:"addr,optional"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`
	Prefix   string `hcl:"prefix,optional"`
}

// GameSettings configures the engine. A zero seed shuffles from the clock.
type GameSettings struct {
	Seed int64 `hcl:"seed,optional"`
}

// file mirrors the HCL layout; every block is optional
type file struct {
	Server   *ServerSettings   `hcl:"server,block"`
	Storage  *StorageSettings  `hcl:"storage,block"`
	Postgres *PostgresSettings `hcl:"postgres,block"`
	Redis    *RedisSettings    `hcl:"redis,block"`
	Game     *GameSettings     `hcl:"game,block"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and applies defaults
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", formatDiags(diags))
	}

	cfg := &Config{Postgres: raw.Postgres, Redis: raw.Redis}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Storage != nil {
		cfg.Storage = *raw.Storage
	}
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}
	cfg.applyDefaults()
	return cfg, nil
}

func formatDiags(diags hcl.Diagnostics) string {
	if len(diags) == 1 {
		return diags[0].Error()
	}
	return diags.Error()
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ReadTimeoutMS == 0 {
		c.Server.ReadTimeoutMS = 5000
	}
	if c.Server.WriteTimeoutMS == 0 {
		c.Server.WriteTimeoutMS = 10000
	}
	if c.Storage.Games == "" {
		c.Storage.Games = DriverMemory
	}
	if c.Storage.Players == "" {
		c.Storage.Players = DriverMemory
	}
	if c.Postgres != nil {
		if c.Postgres.Host == "" {
			c.Postgres.Host = "localhost"
		}
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.Database == "" {
			c.Postgres.Database = "blackjack"
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
	}
	if c.Redis != nil {
		if c.Redis.Addr == "" {
			c.Redis.Addr = "localhost:6379"
		}
		if c.Redis.Prefix == "" {
			c.Redis.Prefix = redisstore.DefaultPrefix
		}
	}
}

// Validate checks drivers and the blocks they depend on
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("server: invalid log_level %q", c.Server.LogLevel)
	}
	if c.Server.ReadTimeoutMS < 0 || c.Server.WriteTimeoutMS < 0 {
		return fmt.Errorf("server: timeouts must not be negative")
	}
	for _, d := range []struct{ store, driver string }{
		{"games", c.Storage.Games},
		{"players", c.Storage.Players},
	} {
		switch d.driver {
		case DriverMemory:
		case DriverPostgres:
			if c.Postgres == nil {
				return fmt.Errorf("storage: %s uses postgres but no postgres block is configured", d.store)
			}
		case DriverRedis:
			if c.Redis == nil {
				return fmt.Errorf("storage: %s uses redis but no redis block is configured", d.store)
			}
		default:
			return fmt.Errorf("storage: unknown driver %q for %s", d.driver, d.store)
		}
	}
	if c.Storage.SnapshotFile != "" && c.Storage.Games != DriverMemory && c.Storage.Players != DriverMemory {
		return fmt.Errorf("storage: snapshot_file requires a memory driver")
	}
	if c.Postgres != nil && (c.Postgres.Port < 1 || c.Postgres.Port > 65535) {
		return fmt.Errorf("postgres: invalid port %d", c.Postgres.Port)
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ReadTimeout returns the HTTP read timeout
func (s ServerSettings) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns the HTTP write timeout
func (s ServerSettings) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

// PostgresConfig converts the block to driver settings
func (c *Config) PostgresConfig() postgres.Config {
	if c.Postgres == nil {
		return postgres.Config{}
	}
	p := c.Postgres
	return postgres.Config{
		Host:     p.Host,
		Port:     p.Port,
		Database: p.Database,
		User:     p.User,
		Password: p.Password,
		SSLMode:  p.SSLMode,
	}
}

// RedisConfig converts the block to driver settings
func (c *Config) RedisConfig() redisstore.Config {
	if c.Redis == nil {
		return redisstore.Config{}
	}
	return redisstore.Config{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Prefix:   c.Redis.Prefix,
	}
}
