// Package memory implements the game and player stores over in-process
// maps, optionally persisted to a JSON snapshot file after every mutation.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/store"
)

// DB holds every record behind a single lock
type DB struct {
	mu       sync.RWMutex
	games    map[string]game.Record
	players  map[string]playerRow
	snapshot string
	logger   *log.Logger
}

type playerRow struct {
	Player  player.Player `json:"player"`
	Version int64         `json:"version"`
}

type snapshotFile struct {
	Games   []game.Record `json:"games"`
	Players []playerRow   `json:"players"`
}

// Option configures a DB
type Option func(*DB)

// WithSnapshot persists the DB to path. An existing snapshot is loaded by Open.
func WithSnapshot(path string) Option {
	return func(db *DB) { db.snapshot = path }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(db *DB) { db.logger = logger.WithPrefix("memory") }
}

// New creates an empty DB that is never persisted
func New() *DB {
	db, _ := Open()
	return db
}

// Open creates a DB and loads its snapshot, if one is configured and exists
func Open(opts ...Option) (*DB, error) {
	db := &DB{
		games:   make(map[string]game.Record),
		players: make(map[string]playerRow),
		logger:  log.Default().WithPrefix("memory"),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.snapshot == "" {
		return db, nil
	}

	var snap snapshotFile
	found, err := fileutil.ReadJSON(db.snapshot, &snap)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if found {
		for _, r := range snap.Games {
			db.games[r.ID] = r
		}
		for _, row := range snap.Players {
			db.players[row.Player.ID] = row
		}
		db.logger.Info("Loaded snapshot", "path", db.snapshot, "games", len(db.games), "players", len(db.players))
	}
	return db, nil
}

// Games returns the game store view of the DB
func (db *DB) Games() *GameStore {
	return &GameStore{db: db}
}

// Players returns the player store view of the DB
func (db *DB) Players() *PlayerStore {
	return &PlayerStore{db: db}
}

// persist writes the snapshot. Callers hold db.mu.
func (db *DB) persist() error {
	if db.snapshot == "" {
		return nil
	}
	snap := snapshotFile{
		Games:   make([]game.Record, 0, len(db.games)),
		Players: make([]playerRow, 0, len(db.players)),
	}
	for _, r := range db.games {
		snap.Games = append(snap.Games, r)
	}
	for _, row := range db.players {
		snap.Players = append(snap.Players, row)
	}
	slices.SortFunc(snap.Games, func(a, b game.Record) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Players, func(a, b playerRow) int { return cmp.Compare(a.Player.ID, b.Player.ID) })

	if err := fileutil.WriteJSONAtomic(db.snapshot, snap); err != nil {
		db.logger.Error("Failed to write snapshot", "path", db.snapshot, "error", err)
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// GameStore implements game.GameStore
type GameStore struct {
	db *DB
}

var _ game.GameStore = (*GameStore)(nil)

func (s *GameStore) FindByID(_ context.Context, id string) (*game.Record, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, store.ErrNotFound)
	}
	return &r, nil
}

// FindAll returns games oldest first
func (s *GameStore) FindAll(_ context.Context) ([]*game.Record, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]*game.Record, 0, len(s.db.games))
	for _, r := range s.db.games {
		out = append(out, &r)
	}
	slices.SortFunc(out, func(a, b *game.Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *GameStore) Save(_ context.Context, r *game.Record) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, exists := s.db.games[r.ID]
	switch {
	case r.Version == 0 && exists:
		return fmt.Errorf("game %s: %w", r.ID, store.ErrDuplicate)
	case r.Version != 0 && !exists:
		return fmt.Errorf("game %s: %w", r.ID, store.ErrNotFound)
	case r.Version != 0 && current.Version != r.Version:
		return fmt.Errorf("game %s at version %d, have %d: %w", r.ID, current.Version, r.Version, store.ErrConflict)
	}

	saved := *r
	saved.Version++
	s.db.games[r.ID] = saved
	if err := s.db.persist(); err != nil {
		if exists {
			s.db.games[r.ID] = current
		} else {
			delete(s.db.games, r.ID)
		}
		return err
	}
	r.Version = saved.Version
	return nil
}

func (s *GameStore) Delete(_ context.Context, r *game.Record) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.games[r.ID]; !ok {
		return fmt.Errorf("game %s: %w", r.ID, store.ErrNotFound)
	}
	delete(s.db.games, r.ID)
	return s.db.persist()
}

// PlayerStore implements player.Store
type PlayerStore struct {
	db *DB
}

var _ player.Store = (*PlayerStore)(nil)

func (s *PlayerStore) FindByName(_ context.Context, name string) (*player.Player, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, row := range s.db.players {
		if row.Player.Name == name {
			return row.load(), nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
}

func (s *PlayerStore) FindByID(_ context.Context, id string) (*player.Player, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	row, ok := s.db.players[id]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", id, store.ErrNotFound)
	}
	return row.load(), nil
}

func (s *PlayerStore) FindAll(_ context.Context) ([]*player.Player, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]*player.Player, 0, len(s.db.players))
	for _, row := range s.db.players {
		out = append(out, row.load())
	}
	slices.SortFunc(out, func(a, b *player.Player) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *PlayerStore) Save(_ context.Context, p *player.Player) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, exists := s.db.players[p.ID]
	switch {
	case p.Version == 0 && exists:
		return fmt.Errorf("player %s: %w", p.ID, store.ErrDuplicate)
	case p.Version != 0 && !exists:
		return fmt.Errorf("player %s: %w", p.ID, store.ErrNotFound)
	case p.Version != 0 && current.Version != p.Version:
		return fmt.Errorf("player %s at version %d, have %d: %w", p.ID, current.Version, p.Version, store.ErrConflict)
	}
	for id, row := range s.db.players {
		if id != p.ID && row.Player.Name == p.Name {
			return fmt.Errorf("player name %q: %w", p.Name, store.ErrDuplicate)
		}
	}

	row := playerRow{Player: *p, Version: p.Version + 1}
	row.Player.Version = 0
	s.db.players[p.ID] = row
	if err := s.db.persist(); err != nil {
		if exists {
			s.db.players[p.ID] = current
		} else {
			delete(s.db.players, p.ID)
		}
		return err
	}
	p.Version = row.Version
	return nil
}

func (s *PlayerStore) Delete(_ context.Context, p *player.Player) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.players[p.ID]; !ok {
		return fmt.Errorf("player %s: %w", p.ID, store.ErrNotFound)
	}
	delete(s.db.players, p.ID)
	return s.db.persist()
}

func (row playerRow) load() *player.Player {
	p := row.Player
	p.Version = row.Version
	return &p
}
