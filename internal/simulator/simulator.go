// Package simulator plays automated blackjack rounds in-process.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store/memory"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the score the player stands on
const DefaultThreshold = 17

// ErrCreditMismatch is returned when games played don't add up to rounds
var ErrCreditMismatch = errors.New("credited games do not match rounds played")

// Config holds configuration for running simulations
type Config struct {
	Rounds    int
	Workers   int   // Defaults to GOMAXPROCS
	Threshold int   // Hit while the player score is below this
	Seed      int64 // Zero picks a time-derived seed
	Logger    *log.Logger
}

// Result is the outcome of a simulation run
type Result struct {
	Seed    int64
	Stats   *statistics.Statistics
	Players []*player.Player
}

// Simulator runs blackjack simulations
type Simulator struct {
	config Config
}

// New creates a simulator, filling in defaults
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Rounds > 0 && config.Workers > config.Rounds {
		config.Workers = config.Rounds
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	config.Seed = randutil.Seed(config.Seed)
	return &Simulator{config: config}
}

// Run plays every round and verifies each worker's player was credited
// exactly once per round
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("invalid rounds count: %d", s.config.Rounds)
	}

	logger := s.config.Logger.WithPrefix("simulator")
	db := memory.New()
	players := player.NewService(db.Players(), logger)

	logger.Info("Starting simulation",
		"rounds", s.config.Rounds,
		"workers", s.config.Workers,
		"threshold", s.config.Threshold,
		"seed", s.config.Seed)

	perWorker := make([]*statistics.Statistics, s.config.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range s.config.Workers {
		rounds := s.config.Rounds / s.config.Workers
		if w < s.config.Rounds%s.config.Workers {
			rounds++
		}
		seed := s.config.Seed + int64(w)
		g.Go(func() error {
			stats, err := s.work(ctx, db, players, w, seed, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			perWorker[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, ws := range perWorker {
		stats.Merge(ws)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	// ctx from the errgroup is cancelled once Wait returns
	list, err := players.List(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	played := 0
	for _, p := range list {
		played += p.GamesPlayed
	}
	if played != s.config.Rounds {
		return nil, fmt.Errorf("%w: %d credited, %d played", ErrCreditMismatch, played, s.config.Rounds)
	}

	logger.Info("Simulation complete", "rounds", stats.Rounds, "win_rate", stats.WinRate())
	return &Result{Seed: s.config.Seed, Stats: stats, Players: list}, nil
}

func (s *Simulator) work(ctx context.Context, db *memory.DB, players *player.Service, worker int, seed int64, rounds int) (*statistics.Statistics, error) {
	name := fmt.Sprintf("sim-%02d", worker+1)
	if _, err := players.Register(ctx, name); err != nil {
		return nil, err
	}

	engine := game.NewEngine(db.Games(), db.Players(), s.config.Logger, game.WithSeed(seed))
	stats := &statistics.Statistics{}
	for range rounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := s.playRound(ctx, engine, name)
		if err != nil {
			return nil, err
		}
		r.Seed = seed
		stats.Add(r)
	}
	return stats, nil
}

// dealer is the part of game.Engine a round needs
type dealer interface {
	Create(ctx context.Context, playerName string) (game.View, error)
	Hit(ctx context.Context, id string) (game.View, error)
	Stand(ctx context.Context, id string) (game.View, error)
}

// playRound hits while below the threshold, then stands
func (s *Simulator) playRound(ctx context.Context, engine dealer, name string) (statistics.RoundResult, error) {
	v, err := engine.Create(ctx, name)
	if err != nil {
		return statistics.RoundResult{}, fmt.Errorf("creating game: %w", err)
	}

	hits := 0
	id := v.ID
	for !v.Status.Terminal() && v.PlayerScore < s.config.Threshold {
		if v, err = engine.Hit(ctx, id); err != nil {
			return statistics.RoundResult{}, fmt.Errorf("hit %s: %w", id, err)
		}
		hits++
	}
	if !v.Status.Terminal() {
		if v, err = engine.Stand(ctx, id); err != nil {
			return statistics.RoundResult{}, fmt.Errorf("stand %s: %w", id, err)
		}
	}

	return statistics.RoundResult{
		Status:      v.Status,
		PlayerScore: v.PlayerScore,
		DealerScore: v.DealerScore,
		Hits:        hits,
	}, nil
}

// PrintSummary writes a summary of the results to w
func PrintSummary(w io.Writer, res *Result) {
	stats := res.Stats
	pct := func(n int) float64 { return float64(n) / float64(stats.Rounds) * 100 }
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== RESULTS (seed %d) ===\n", res.Seed)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	fmt.Fprintf(w, "Player wins: %d (%.1f%%)\n", stats.PlayerWins, pct(stats.PlayerWins))
	fmt.Fprintf(w, "Dealer wins: %d (%.1f%%)\n", stats.DealerWins, pct(stats.DealerWins))
	fmt.Fprintf(w, "Draws: %d (%.1f%%)\n", stats.Draws, pct(stats.Draws))
	fmt.Fprintf(w, "Player busts: %d (%.1f%%)\n", stats.PlayerBusts, pct(stats.PlayerBusts))
	fmt.Fprintf(w, "Dealer busts: %d (%.1f%%)\n", stats.DealerBusts, pct(stats.DealerBusts))
	fmt.Fprintf(w, "Hits per round: %.2f\n", float64(stats.Hits)/float64(stats.Rounds))

	fmt.Fprintf(w, "\n=== PLAYER SCORE ===\n")
	fmt.Fprintf(w, "Mean: %.3f\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.1f\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.3f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.3f, %.3f]\n", low, high)

	fmt.Fprintf(w, "\n=== PLAYERS ===\n")
	for _, p := range res.Players {
		fmt.Fprintf(w, "%s: %d played, %d won (%.1f%%), total score %d\n",
			p.Name, p.GamesPlayed, p.GamesWon, p.WinRate()*100, p.TotalScore)
	}
}
