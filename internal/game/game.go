package game

import (
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/rules"
)

// Status is the lifecycle status of a game
type Status string

const (
	InProgress        Status = "IN_PROGRESS"
	FinishedPlayerWon Status = "FINISHED_PLAYER_WON"
	FinishedDealerWon Status = "FINISHED_DEALER_WON"
	FinishedDraw      Status = "FINISHED_DRAW"
)

// Terminal reports whether the status is one of the finished values
func (s Status) Terminal() bool {
	return s == FinishedPlayerWon || s == FinishedDealerWon || s == FinishedDraw
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == InProgress || s.Terminal()
}

// StatusFor maps a round outcome to its terminal status
func StatusFor(o rules.Outcome) Status {
	switch o {
	case rules.PlayerWins:
		return FinishedPlayerWon
	case rules.DealerWins:
		return FinishedDealerWon
	default:
		return FinishedDraw
	}
}

// Turn records whose action is pending
type Turn string

const (
	PlayerTurn Turn = "PLAYER_TURN"
	Finished   Turn = "FINISHED"
)

// Valid reports whether t is a known turn
func (t Turn) Valid() bool {
	return t == PlayerTurn || t == Finished
}

// Game is a decoded game aggregate
type Game struct {
	ID          string
	PlayerID    string
	CreatedAt   time.Time
	Status      Status
	Turn        Turn
	PlayerScore int
	DealerScore int
	Deck        deck.Deck
	PlayerHand  deck.Hand
	DealerHand  deck.Hand

	// StatsApplied is set in the same write that finishes the game; once
	// set, the player is never credited for this game again.
	StatsApplied bool
	Version      int64
}

// Record is the persisted form of a game, with hands and deck encoded
type Record struct {
	ID              string    `json:"id"`
	PlayerID        string    `json:"playerId"`
	CreatedAt       time.Time `json:"createdAt"`
	Status          Status    `json:"status"`
	Turn            Turn      `json:"turn"`
	PlayerScore     int       `json:"playerScore"`
	DealerScore     int       `json:"dealerScore"`
	DeckJSON        string    `json:"deck"`
	PlayerCardsJSON string    `json:"playerCards"`
	DealerCardsJSON string    `json:"dealerCards"`
	StatsApplied    bool      `json:"statsApplied"`
	Version         int64     `json:"version"`
}

// playable reports whether the player may still act
func (g *Game) playable() bool {
	return g.Status == InProgress && g.Turn == PlayerTurn
}

// finish moves the game into its terminal state. It refuses to run on a
// game that has already left IN_PROGRESS.
func (g *Game) finish(o rules.Outcome) error {
	if !g.playable() {
		return fmt.Errorf("%w: game %s is %s/%s", ErrInvalidGameState, g.ID, g.Status, g.Turn)
	}
	g.Status = StatusFor(o)
	g.Turn = Finished
	g.StatsApplied = true
	return nil
}

// Record encodes the game for persistence
func (g *Game) Record() (*Record, error) {
	deckJSON, err := deck.EncodeDeck(g.Deck)
	if err != nil {
		return nil, fmt.Errorf("game %s deck: %w", g.ID, err)
	}
	playerJSON, err := deck.Encode(g.PlayerHand)
	if err != nil {
		return nil, fmt.Errorf("game %s player hand: %w", g.ID, err)
	}
	dealerJSON, err := deck.Encode(g.DealerHand)
	if err != nil {
		return nil, fmt.Errorf("game %s dealer hand: %w", g.ID, err)
	}
	return &Record{
		ID:              g.ID,
		PlayerID:        g.PlayerID,
		CreatedAt:       g.CreatedAt,
		Status:          g.Status,
		Turn:            g.Turn,
		PlayerScore:     g.PlayerScore,
		DealerScore:     g.DealerScore,
		DeckJSON:        deckJSON,
		PlayerCardsJSON: playerJSON,
		DealerCardsJSON: dealerJSON,
		StatsApplied:    g.StatsApplied,
		Version:         g.Version,
	}, nil
}

// FromRecord decodes a persisted game and checks its invariants: status and
// turn move in lockstep, and deck plus hands hold exactly one full deck.
func FromRecord(r *Record) (*Game, error) {
	if !r.Status.Valid() || !r.Turn.Valid() {
		return nil, fmt.Errorf("%w: game %s has status %q turn %q", ErrCorrupt, r.ID, r.Status, r.Turn)
	}
	if r.Status.Terminal() != (r.Turn == Finished) {
		return nil, fmt.Errorf("%w: game %s pairs status %s with turn %s", ErrCorrupt, r.ID, r.Status, r.Turn)
	}

	d, err := deck.DecodeDeck(r.DeckJSON)
	if err != nil {
		return nil, fmt.Errorf("game %s deck: %w", r.ID, err)
	}
	playerHand, err := deck.Decode(r.PlayerCardsJSON)
	if err != nil {
		return nil, fmt.Errorf("game %s player hand: %w", r.ID, err)
	}
	dealerHand, err := deck.Decode(r.DealerCardsJSON)
	if err != nil {
		return nil, fmt.Errorf("game %s dealer hand: %w", r.ID, err)
	}
	if err := deck.CheckComplete(d.Cards(), playerHand, dealerHand); err != nil {
		return nil, fmt.Errorf("%w: game %s: %v", ErrCorrupt, r.ID, err)
	}

	return &Game{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		CreatedAt:    r.CreatedAt,
		Status:       r.Status,
		Turn:         r.Turn,
		PlayerScore:  r.PlayerScore,
		DealerScore:  r.DealerScore,
		Deck:         d,
		PlayerHand:   playerHand,
		DealerHand:   dealerHand,
		StatsApplied: r.StatsApplied,
		Version:      r.Version,
	}, nil
}
