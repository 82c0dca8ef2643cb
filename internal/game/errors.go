package game

import (
	"errors"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/player"
)

var (
	// ErrPlayerNotFound is returned when the player cannot be resolved
	ErrPlayerNotFound = player.ErrNotFound
	// ErrInvalidPlayerName is returned for a blank player name. It matches ErrPlayerNotFound.
	ErrInvalidPlayerName = &classError{msg: "player name must not be null or empty", class: ErrPlayerNotFound}
	// ErrGameNotFound is returned when no game has the requested id
	ErrGameNotFound = errors.New("game not found")
	// ErrInsufficientCards is returned when a deal or draw needs more cards than remain
	ErrInsufficientCards = deck.ErrInsufficientCards
	// ErrInvalidGameState is returned for an action the current state forbids
	ErrInvalidGameState = errors.New("invalid game state")
	// ErrInvalidInitialCards is returned when a deal does not produce two cards per hand
	ErrInvalidInitialCards = errors.New("invalid initial cards")
	// ErrDecode is matched by errors from malformed persisted card blobs
	ErrDecode = deck.ErrDecode
	// ErrCorrupt is returned when a persisted game breaks an invariant
	ErrCorrupt = errors.New("corrupt game record")
	// ErrConcurrentUpdate is returned when another request changed the game first
	ErrConcurrentUpdate = errors.New("game was modified concurrently")
)

// classError is a sentinel that also matches a broader class sentinel
type classError struct {
	msg   string
	class error
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Is(target error) bool { return target == e.class }
