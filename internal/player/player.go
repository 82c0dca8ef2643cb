// Package player manages registered players and the aggregate statistics
// credited to them after each finished game.
package player

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no player matches a name or id
	ErrNotFound = errors.New("player not found")
	// ErrInvalidName is returned for blank player names
	ErrInvalidName = errors.New("player name must not be empty")
	// ErrAlreadyExists is returned when a name is already registered
	ErrAlreadyExists = errors.New("player with that name already exists")
)

// Player is a registered player and their lifetime counters
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
	TotalScore  int       `json:"totalScore"`
	CreatedAt   time.Time `json:"createdAt"`

	// Version is bumped by every successful Save and guards conditional writes
	Version int64 `json:"-"`
}

// WinRate returns games won over games played, or 0 before the first game
func (p Player) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed)
}

// Store persists players. Save inserts when Version is 0 and otherwise
// updates only if the stored version still matches; on success it bumps
// p.Version.
type Store interface {
	FindByName(ctx context.Context, name string) (*Player, error)
	FindByID(ctx context.Context, id string) (*Player, error)
	FindAll(ctx context.Context) ([]*Player, error)
	Save(ctx context.Context, p *Player) error
	Delete(ctx context.Context, p *Player) error
}
