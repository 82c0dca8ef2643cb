package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/store"
)

// maxCreditAttempts bounds re-reads after a player version conflict
const maxCreditAttempts = 3

// Reconciler credits a player's counters once per finished game
type Reconciler struct {
	games   GameStore
	players PlayerStore
	logger  *log.Logger
}

// NewReconciler creates a reconciler over the given stores
func NewReconciler(games GameStore, players PlayerStore, logger *log.Logger) *Reconciler {
	return &Reconciler{games: games, players: players, logger: logger.WithPrefix("stats")}
}

// UpdateIfFinished credits the player for g if g is finished and has not
// been credited yet. The credit is claimed with a conditional write on the
// game before the player is touched, so concurrent or repeated calls
// credit at most once.
func (r *Reconciler) UpdateIfFinished(ctx context.Context, g *Game) error {
	if !g.Status.Terminal() {
		r.logger.Debug("Game still in progress, stats untouched", "game", g.ID)
		return nil
	}
	if g.StatsApplied {
		r.logger.Debug("Stats already applied", "game", g.ID)
		return nil
	}

	claimed := *g
	claimed.StatsApplied = true
	rec, err := claimed.Record()
	if err != nil {
		return err
	}
	if err := r.games.Save(ctx, rec); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: claim stats for game %s: %w", ErrConcurrentUpdate, g.ID, err)
		}
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: claim stats for game %s: %w", ErrGameNotFound, g.ID, err)
		}
		return fmt.Errorf("claim stats for game %s: %w", g.ID, err)
	}
	g.StatsApplied = true
	g.Version = rec.Version

	return r.credit(ctx, g)
}

// credit applies g's result to its player. The caller must hold the claim.
func (r *Reconciler) credit(ctx context.Context, g *Game) error {
	for attempt := 1; ; attempt++ {
		p, err := r.players.FindByID(ctx, g.PlayerID)
		if errors.Is(err, store.ErrNotFound) {
			r.logger.Error("Finished game references missing player", "game", g.ID, "player", g.PlayerID)
			return fmt.Errorf("%w: id %q referenced by game %s", ErrPlayerNotFound, g.PlayerID, g.ID)
		}
		if err != nil {
			return fmt.Errorf("find player %s: %w", g.PlayerID, err)
		}

		p.GamesPlayed++
		if g.Status == FinishedPlayerWon {
			p.GamesWon++
		}
		p.TotalScore += g.PlayerScore

		err = r.players.Save(ctx, p)
		if errors.Is(err, store.ErrConflict) && attempt < maxCreditAttempts {
			r.logger.Debug("Player changed while crediting, retrying", "player", p.ID, "attempt", attempt)
			continue
		}
		if err != nil {
			return fmt.Errorf("credit player %s for game %s: %w", p.ID, g.ID, err)
		}

		r.logger.Info("Updated player stats",
			"player", p.Name,
			"game", g.ID,
			"gamesPlayed", p.GamesPlayed,
			"gamesWon", p.GamesWon,
			"totalScore", p.TotalScore)
		return nil
	}
}
