package game

import (
	"context"

	"github.com/lox/blackjack/internal/player"
)

// GameStore persists game records. Save inserts when Version is 0 and
// otherwise updates only if the stored version matches, returning
// store.ErrConflict when it does not; on success it bumps r.Version.
// Lookups of unknown ids return store.ErrNotFound.
type GameStore interface {
	FindByID(ctx context.Context, id string) (*Record, error)
	FindAll(ctx context.Context) ([]*Record, error)
	Save(ctx context.Context, r *Record) error
	Delete(ctx context.Context, r *Record) error
}

// PlayerStore is the part of player.Store the engine needs
type PlayerStore interface {
	FindByName(ctx context.Context, name string) (*player.Player, error)
	FindByID(ctx context.Context, id string) (*player.Player, error)
	Save(ctx context.Context, p *player.Player) error
}
