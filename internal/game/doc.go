// Package game implements the blackjack turn engine: a single player against
// an automated dealer, with the round persisted between requests.
//
// The main type is Engine, which creates games and applies player actions.
// Each call loads one game record, advances its state machine, saves it with
// a conditional write and, when the round ends, credits the player's
// statistics exactly once.
//
// # Basic Usage
//
//	engine := game.NewEngine(games, players, logger)
//	view, err := engine.Create(ctx, "alice")
//	view, err = engine.Hit(ctx, view.ID)
//	view, err = engine.Stand(ctx, view.ID)
//
// # State Machine
//
// A game starts IN_PROGRESS on the PLAYER_TURN. Hit draws one card: a bust
// ends the game for the dealer and exactly 21 resolves immediately against
// the dealer's current score. Stand plays the dealer out and resolves. Every
// terminal status is paired with the FINISHED turn and never changes again.
//
// # Deterministic Testing
//
// Inject a deck source to control the cards:
//
//	d, _ := deck.NewStacked(cards...)
//	engine := game.NewEngine(games, players, logger, game.WithDeckSource(game.FixedDecks(d)))
//
// or seed the shuffler:
//
//	engine := game.NewEngine(games, players, logger, game.WithSeed(42))
package game
