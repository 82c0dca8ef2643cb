package player

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/store"
)

// Standing is one row of the ranking table
type Standing struct {
	Name        string  `json:"name"`
	GamesPlayed int     `json:"gamesPlayed"`
	GamesWon    int     `json:"gamesWon"`
	WinRate     float64 `json:"winRate"`
	TotalScore  int     `json:"totalScore"`
}

// Service handles player registration and lookups
type Service struct {
	store  Store
	clock  quartz.Clock
	logger *log.Logger
	newID  func() string
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used for CreatedAt
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithIDFunc overrides player id generation
func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a player service backed by store
func NewService(store Store, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  quartz.NewReal(),
		logger: logger.WithPrefix("player"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a player with zeroed counters
func (s *Service) Register(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if _, err := s.store.FindByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find player %q: %w", name, err)
	}

	p := &Player{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.clock.Now("player", "register").UTC(),
	}
	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, name)
		}
		return nil, fmt.Errorf("save player %q: %w", name, err)
	}

	s.logger.Info("Registered player", "id", p.ID, "name", p.Name)
	return p, nil
}

// ByName looks a player up by exact name
func (s *Service) ByName(ctx context.Context, name string) (*Player, error) {
	p, err := s.store.FindByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: name %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("find player %q: %w", name, err)
	}
	return p, nil
}

// ByID looks a player up by id
func (s *Service) ByID(ctx context.Context, id string) (*Player, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	p, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find player %s: %w", id, err)
	}
	return p, nil
}

// List returns every player ordered by name
func (s *Service) List(ctx context.Context) ([]*Player, error) {
	players, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	slices.SortFunc(players, func(a, b *Player) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return players, nil
}

// Ranking orders players by win rate, then total score, highest first
func (s *Service) Ranking(ctx context.Context) ([]Standing, error) {
	players, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, Standing{
			Name:        p.Name,
			GamesPlayed: p.GamesPlayed,
			GamesWon:    p.GamesWon,
			WinRate:     p.WinRate(),
			TotalScore:  p.TotalScore,
		})
	}
	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.WinRate, a.WinRate); c != 0 {
			return c
		}
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	return standings, nil
}

// Rename changes a player's name, keeping names unique
func (s *Service) Rename(ctx context.Context, id, newName string) (*Player, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrInvalidName
	}

	p, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name == newName {
		return p, nil
	}

	if other, err := s.store.FindByName(ctx, newName); err == nil && other.ID != p.ID {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, newName)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find player %q: %w", newName, err)
	}

	oldName := p.Name
	p.Name = newName
	if err := s.store.Save(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, newName)
		}
		return nil, fmt.Errorf("rename player %s: %w", id, err)
	}

	s.logger.Info("Renamed player", "id", p.ID, "from", oldName, "to", newName)
	return p, nil
}

// Delete removes a player. Their games are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: id %q", ErrNotFound, id)
		}
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	s.logger.Warn("Deleted player", "id", id, "name", p.Name)
	return nil
}
