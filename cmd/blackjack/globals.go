package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/config"
)

// Globals are flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"blackjack.hcl" type:"path" help:"HCL config file (missing file uses defaults)"`
	LogLevel string `help:"Log level (debug, info, warn, error), overrides the config file"`
	URL      string `help:"Server base URL for client commands (defaults to the configured address)"`
	Timeout  int    `default:"10000" help:"Client request timeout in milliseconds"`
}

// load reads and validates the config after applying flag overrides
func (g *Globals) load(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Config, err)
	}
	return cfg, nil
}

// client builds an API client for the configured server
func (g *Globals) client() (*client.Client, error) {
	cfg, err := g.load(nil)
	if err != nil {
		return nil, err
	}
	logger := shared.SetupLogger(cfg.Level())
	return client.NewClient(g.baseURL(cfg), logger, client.WithTimeout(time.Duration(g.Timeout)*time.Millisecond)), nil
}

func (g *Globals) baseURL(cfg *config.Config) string {
	if g.URL != "" {
		return strings.TrimRight(g.URL, "/")
	}
	return "http://" + cfg.Server.Address
}
