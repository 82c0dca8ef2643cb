package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the terminal client
type PlayCmd struct {
	Name    string `short:"n" help:"Player name (prompted when empty)"`
	NoColor bool   `help:"Disable colors"`
	LogFile string `type:"path" help:"Write logs to this file"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load(nil)
	if err != nil {
		return err
	}

	// The terminal belongs to the program, so logs only go to a file
	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := log.NewWithOptions(out, log.Options{Level: cfg.Level(), ReportTimestamp: true})

	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	cl := client.NewClient(g.baseURL(cfg), logger)
	if err := cl.Health(ctx); err != nil {
		return fmt.Errorf("server %s is not reachable: %w", g.baseURL(cfg), err)
	}

	return tui.Run(ctx, cl, logger, tui.Options{Name: c.Name, NoColor: c.NoColor})
}
