package game

import (
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// View is the caller-facing snapshot of a game
type View struct {
	ID          string      `json:"id"`
	PlayerID    string      `json:"playerId"`
	CreatedAt   time.Time   `json:"createdAt"`
	Status      Status      `json:"status"`
	Turn        Turn        `json:"turn"`
	PlayerScore int         `json:"playerScore"`
	DealerScore int         `json:"dealerScore"`
	PlayerCards []deck.Card `json:"playerCards"`
	DealerCards []deck.Card `json:"dealerCards"`
}

// View returns a snapshot that shares no storage with the game
func (g *Game) View() View {
	return View{
		ID:          g.ID,
		PlayerID:    g.PlayerID,
		CreatedAt:   g.CreatedAt,
		Status:      g.Status,
		Turn:        g.Turn,
		PlayerScore: g.PlayerScore,
		DealerScore: g.DealerScore,
		PlayerCards: append([]deck.Card{}, g.PlayerHand...),
		DealerCards: append([]deck.Card{}, g.DealerHand...),
	}
}
