package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/gameid"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/rules"
	"github.com/lox/blackjack/internal/store"
)

// DeckSource supplies a fresh full deck for every new game
type DeckSource interface {
	Deck() deck.Deck
}

// IDGenerator assigns ids to new games
type IDGenerator interface {
	Generate() string
}

// Engine runs the game state machine over a GameStore and a PlayerStore
type Engine struct {
	games   GameStore
	players PlayerStore
	stats   *Reconciler
	decks   DeckSource
	ids     IDGenerator
	clock   quartz.Clock
	logger  *log.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for CreatedAt and game ids
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDeckSource sets where new decks come from
func WithDeckSource(src DeckSource) Option {
	return func(e *Engine) { e.decks = src }
}

// WithSeed shuffles decks from a deterministic seed
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.decks = deck.NewShuffler(randutil.New(seed)) }
}

// WithIDGenerator overrides game id generation
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// NewEngine creates an engine. Without options decks are shuffled from a
// time-derived seed and ids come from the real clock.
func NewEngine(games GameStore, players PlayerStore, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		games:   games,
		players: players,
		clock:   quartz.NewReal(),
		logger:  logger.WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.decks == nil {
		e.decks = deck.NewShuffler(randutil.New(randutil.Seed(0)))
	}
	if e.ids == nil {
		e.ids = gameid.NewGenerator(e.clock, nil)
	}
	e.stats = NewReconciler(games, players, logger)
	return e
}

// Stats returns the reconciler the engine credits players through
func (e *Engine) Stats() *Reconciler {
	return e.stats
}

// Create deals a new game for the named player
func (e *Engine) Create(ctx context.Context, playerName string) (View, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		e.logger.Warn("Rejected game with empty player name")
		return View{}, ErrInvalidPlayerName
	}

	p, err := e.players.FindByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return View{}, fmt.Errorf("%w: name %q", ErrPlayerNotFound, name)
	}
	if err != nil {
		return View{}, fmt.Errorf("find player %q: %w", name, err)
	}

	d := e.decks.Deck()
	playerHand, dealerHand, err := deck.SplitInitialHands(&d)
	if err != nil {
		e.logger.Error("Not enough cards to start a game", "cards", d.Len())
		return View{}, fmt.Errorf("deal initial hands: %w", err)
	}
	if len(playerHand) != 2 || len(dealerHand) != 2 {
		return View{}, fmt.Errorf("%w: player %d, dealer %d", ErrInvalidInitialCards, len(playerHand), len(dealerHand))
	}

	g := &Game{
		ID:          e.ids.Generate(),
		PlayerID:    p.ID,
		CreatedAt:   e.clock.Now("engine", "create").UTC(),
		Status:      InProgress,
		Turn:        PlayerTurn,
		PlayerScore: rules.Score(playerHand),
		DealerScore: rules.Score(dealerHand),
		Deck:        d,
		PlayerHand:  playerHand,
		DealerHand:  dealerHand,
	}
	if err := e.save(ctx, g); err != nil {
		return View{}, err
	}

	e.logger.Info("Created game",
		"game", g.ID,
		"player", name,
		"playerScore", g.PlayerScore,
		"dealerScore", g.DealerScore)
	return g.View(), nil
}

// Hit draws one card for the player
func (e *Engine) Hit(ctx context.Context, id string) (View, error) {
	g, err := e.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	if !g.playable() {
		e.logger.Warn("Rejected hit", "game", g.ID, "status", g.Status, "turn", g.Turn)
		return View{}, fmt.Errorf("%w: game %s is already finished or not in the player's turn", ErrInvalidGameState, g.ID)
	}

	card, err := g.Deck.Draw()
	if err != nil {
		e.logger.Warn("Deck is empty", "game", g.ID)
		return View{}, fmt.Errorf("hit game %s: %w", g.ID, err)
	}
	g.PlayerHand = append(g.PlayerHand, card)
	g.PlayerScore = rules.Score(g.PlayerHand)
	e.logger.Debug("Player drew", "game", g.ID, "card", card, "score", g.PlayerScore)

	switch {
	case rules.IsBust(g.PlayerScore):
		err = g.finish(rules.DealerWins)
	case g.PlayerScore == rules.Blackjack:
		err = g.finish(rules.DetermineWinner(g.PlayerScore, g.DealerScore))
	}
	if err != nil {
		return View{}, err
	}

	return e.commit(ctx, g)
}

// Stand ends the player's turn, plays the dealer out and resolves the round
func (e *Engine) Stand(ctx context.Context, id string) (View, error) {
	g, err := e.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	if !g.playable() {
		e.logger.Warn("Rejected stand", "game", g.ID, "status", g.Status, "turn", g.Turn)
		return View{}, fmt.Errorf("%w: game %s is not in the player's turn", ErrInvalidGameState, g.ID)
	}

	before := len(g.DealerHand)
	g.DealerHand, g.DealerScore = rules.PlayDealer(g.DealerHand, &g.Deck)
	g.PlayerScore = rules.Score(g.PlayerHand)
	e.logger.Debug("Dealer played", "game", g.ID, "drew", len(g.DealerHand)-before, "score", g.DealerScore)

	if err := g.finish(rules.DetermineWinner(g.PlayerScore, g.DealerScore)); err != nil {
		return View{}, err
	}
	return e.commit(ctx, g)
}

// Get returns the game with the given id
func (e *Engine) Get(ctx context.Context, id string) (View, error) {
	g, err := e.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return g.View(), nil
}

// List returns every stored game
func (e *Engine) List(ctx context.Context) ([]View, error) {
	records, err := e.games.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	views := make([]View, 0, len(records))
	for _, r := range records {
		g, err := FromRecord(r)
		if err != nil {
			return nil, err
		}
		views = append(views, g.View())
	}
	return views, nil
}

// Delete removes the game with the given id
func (e *Engine) Delete(ctx context.Context, id string) error {
	r, err := e.find(ctx, id)
	if err != nil {
		return err
	}
	if err := e.games.Delete(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	e.logger.Info("Deleted game", "game", id)
	return nil
}

// commit saves g and hands it to the reconciler. Only a game that this call
// moved into a terminal state is credited.
func (e *Engine) commit(ctx context.Context, g *Game) (View, error) {
	if err := e.save(ctx, g); err != nil {
		return View{}, err
	}

	if g.Status.Terminal() {
		e.logger.Info("Game finished",
			"game", g.ID,
			"status", g.Status,
			"playerScore", g.PlayerScore,
			"dealerScore", g.DealerScore)
		if err := e.stats.credit(ctx, g); err != nil {
			return View{}, err
		}
	} else if err := e.stats.UpdateIfFinished(ctx, g); err != nil {
		return View{}, err
	}
	return g.View(), nil
}

func (e *Engine) find(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: game id must not be empty", ErrGameNotFound)
	}
	r, err := e.games.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		e.logger.Warn("Game not found", "game", id)
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find game %s: %w", id, err)
	}
	return r, nil
}

func (e *Engine) load(ctx context.Context, id string) (*Game, error) {
	r, err := e.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromRecord(r)
}

func (e *Engine) save(ctx context.Context, g *Game) error {
	r, err := g.Record()
	if err != nil {
		return err
	}
	if err := e.games.Save(ctx, r); err != nil {
		if errors.Is(err, store.ErrConflict) {
			e.logger.Warn("Lost concurrent update", "game", g.ID, "version", g.Version)
			return fmt.Errorf("%w: game %s: %w", ErrConcurrentUpdate, g.ID, err)
		}
		if g.Version > 0 && errors.Is(err, store.ErrNotFound) {
			e.logger.Warn("Game deleted during update", "game", g.ID)
			return fmt.Errorf("%w: %s was deleted: %w", ErrGameNotFound, g.ID, err)
		}
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	g.Version = r.Version
	return nil
}

// FixedDecks replays the given decks in order, then keeps returning the
// last one. With no decks it always returns an ordered deck. Intended for
// tests and demos.
func FixedDecks(decks ...deck.Deck) DeckSource {
	if len(decks) == 0 {
		decks = []deck.Deck{deck.Ordered()}
	}
	return &fixedDecks{decks: decks}
}

type fixedDecks struct {
	mu    sync.Mutex
	decks []deck.Deck
	next  int
}

func (f *fixedDecks) Deck() deck.Deck {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.decks[f.next]
	if f.next < len(f.decks)-1 {
		f.next++
	}
	return deck.New(d.Cards())
}
