package main

import (
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
	"github.com/lox/blackjack/internal/store/backend"
)

// ServerCmd runs the HTTP API
type ServerCmd struct {
	Addr        string `help:"Server address, overrides the config file"`
	Seed        *int64 `help:"Deterministic shuffle seed (optional)"`
	Snapshot    string `help:"Snapshot file for the memory store"`
	JSONLogs    bool   `help:"Log as JSON"`
	GameStore   string `help:"Game store driver (memory, postgres, redis)"`
	PlayerStore string `help:"Player store driver (memory, postgres, redis)"`
}

func (c *ServerCmd) Run(g *Globals) error {
	cfg, err := g.load(c.apply)
	if err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Level())
	if c.JSONLogs {
		logger = shared.SetupStructuredLogger(cfg.Level())
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	stores, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stores.Close(); cerr != nil {
			logger.Error("Failed to close stores", "error", cerr)
		}
	}()

	seed := randutil.Seed(cfg.Game.Seed)
	if cfg.Game.Seed != 0 {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Info("Using random seed", "seed", seed)
	}

	players := player.NewService(stores.Players, logger)
	engine := game.NewEngine(stores.Games, stores.Players, logger, game.WithSeed(seed))
	srv := server.NewServer(engine, players, logger,
		server.WithAddress(cfg.Server.Address),
		server.WithTimeouts(cfg.Server.ReadTimeout(), cfg.Server.WriteTimeout()),
	)

	logger.Info("Starting blackjack server",
		"address", cfg.Server.Address,
		"games", cfg.Storage.Games,
		"players", cfg.Storage.Players,
		"read_timeout", cfg.Server.ReadTimeout(),
		"write_timeout", cfg.Server.WriteTimeout())

	return srv.ListenAndServe(ctx)
}

func (c *ServerCmd) apply(cfg *config.Config) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if c.Snapshot != "" {
		cfg.Storage.SnapshotFile = c.Snapshot
	}
	if c.GameStore != "" {
		cfg.Storage.Games = c.GameStore
	}
	if c.PlayerStore != "" {
		cfg.Storage.Players = c.PlayerStore
	}
}
