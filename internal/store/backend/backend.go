// Package backend opens the game and player stores selected in the
// configuration. Each store may use a different driver.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/store/memory"
	"github.com/lox/blackjack/internal/store/postgres"
	"github.com/lox/blackjack/internal/store/redisstore"
)

// Stores holds the opened stores and the connections behind them
type Stores struct {
	Games   game.GameStore
	Players player.Store
	closers []func() error
}

// Open connects each driver at most once and returns the stores
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Stores, error) {
	logger = logger.WithPrefix("storage")
	s := &Stores{}

	var (
		mem *memory.DB
		pg  *postgres.DB
		rd  *redisstore.DB
	)
	connect := func(driver string) error {
		var err error
		switch driver {
		case config.DriverMemory:
			if mem == nil {
				mem, err = memory.Open(memory.WithSnapshot(cfg.Storage.SnapshotFile), memory.WithLogger(logger))
			}
		case config.DriverPostgres:
			if pg == nil {
				if pg, err = postgres.Open(ctx, cfg.PostgresConfig(), logger); err == nil {
					s.closers = append(s.closers, pg.Close)
				}
			}
		case config.DriverRedis:
			if rd == nil {
				if rd, err = redisstore.Open(ctx, cfg.RedisConfig(), logger); err == nil {
					s.closers = append(s.closers, rd.Close)
				}
			}
		default:
			err = fmt.Errorf("unknown storage driver %q", driver)
		}
		return err
	}

	if err := connect(cfg.Storage.Games); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	if err := connect(cfg.Storage.Players); err != nil {
		return nil, errors.Join(err, s.Close())
	}

	switch cfg.Storage.Games {
	case config.DriverMemory:
		s.Games = mem.Games()
	case config.DriverPostgres:
		s.Games = pg.Games()
	case config.DriverRedis:
		s.Games = rd.Games()
	}
	switch cfg.Storage.Players {
	case config.DriverMemory:
		s.Players = mem.Players()
	case config.DriverPostgres:
		s.Players = pg.Players()
	case config.DriverRedis:
		s.Players = rd.Players()
	}

	logger.Info("Opened stores", "games", cfg.Storage.Games, "players", cfg.Storage.Players)
	return s, nil
}

// Close releases every connection
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}
