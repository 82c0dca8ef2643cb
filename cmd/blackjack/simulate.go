package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays automated rounds against in-memory stores
type SimulateCmd struct {
	Rounds    int   `default:"10000" help:"Number of rounds to play"`
	Workers   int   `default:"0" help:"Concurrent players (0 uses GOMAXPROCS)"`
	Threshold int   `default:"17" help:"Hit while the player score is below this"`
	Seed      int64 `default:"0" help:"Deterministic seed (0 picks one)"`
	Debug     bool  `help:"Log every game"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	level := log.WarnLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := shared.SetupLogger(level)

	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	res, err := simulator.New(simulator.Config{
		Rounds:    c.Rounds,
		Workers:   c.Workers,
		Threshold: c.Threshold,
		Seed:      c.Seed,
		Logger:    logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, res)
	return nil
}
