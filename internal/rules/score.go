// Package rules holds the house rules: hand scoring, round adjudication and
// the dealer's drawing policy.
package rules

import "github.com/lox/blackjack/internal/deck"

const (
	// Blackjack is the best possible score
	Blackjack = 21
	// DealerStandsOn is the score at which the dealer stops drawing
	DealerStandsOn = 17
)

// Outcome is the result of a finished round
type Outcome int

const (
	Draw Outcome = iota
	PlayerWins
	DealerWins
)

// String returns a lower-case name for the outcome
func (o Outcome) String() string {
	switch o {
	case PlayerWins:
		return "player_wins"
	case DealerWins:
		return "dealer_wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Score sums the points of every card. Aces always count 11; there is no
// soft-hand re-evaluation.
func Score(cards []deck.Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}

// IsBust reports whether score exceeds 21
func IsBust(score int) bool {
	return score > Blackjack
}

// DetermineWinner adjudicates two final scores. A player bust loses even
// when the dealer also busts.
func DetermineWinner(playerScore, dealerScore int) Outcome {
	switch {
	case IsBust(playerScore):
		return DealerWins
	case IsBust(dealerScore):
		return PlayerWins
	case playerScore > dealerScore:
		return PlayerWins
	case dealerScore > playerScore:
		return DealerWins
	default:
		return Draw
	}
}
