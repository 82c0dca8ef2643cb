package rules

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(ranks ...deck.Rank) []deck.Card {
	out := make([]deck.Card, len(ranks))
	for i, r := range ranks {
		out[i] = deck.NewCard(deck.Suits[i%len(deck.Suits)], r)
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		cards []deck.Card
		want  int
	}{
		{"empty", nil, 0},
		{"ten seven", cards(deck.Ten, deck.Seven), 17},
		{"king queen two", cards(deck.King, deck.Queen, deck.Two), 22},
		{"ace king", cards(deck.Ace, deck.King), 21},
		{"two aces stay at 22", cards(deck.Ace, deck.Ace), 22},
		{"face cards", cards(deck.Jack, deck.Queen), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.cards))
		})
	}
}

func TestDetermineWinner(t *testing.T) {
	tests := []struct {
		player, dealer int
		want           Outcome
	}{
		{22, 18, DealerWins},
		{17, 24, PlayerWins},
		{18, 18, Draw},
		{22, 25, DealerWins},
		{20, 19, PlayerWins},
		{17, 19, DealerWins},
		{21, 21, Draw},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetermineWinner(tt.player, tt.dealer), "player=%d dealer=%d", tt.player, tt.dealer)
	}
}

func TestPlayDealerStandsImmediately(t *testing.T) {
	d, err := deck.NewStacked(deck.NewCard(deck.Hearts, deck.Two))
	require.NoError(t, err)

	hand := deck.Hand{deck.NewCard(deck.Spades, deck.Nine), deck.NewCard(deck.Clubs, deck.Eight)}
	final, score := PlayDealer(hand, &d)

	assert.Equal(t, 17, score)
	assert.Equal(t, hand, final)
	assert.Equal(t, deck.Size, d.Len())
}

func TestPlayDealerDrawsToSeventeen(t *testing.T) {
	d, err := deck.NewStacked(
		deck.NewCard(deck.Hearts, deck.Two),
		deck.NewCard(deck.Hearts, deck.Three),
		deck.NewCard(deck.Hearts, deck.King),
	)
	require.NoError(t, err)

	hand := deck.Hand{deck.NewCard(deck.Spades, deck.Five), deck.NewCard(deck.Clubs, deck.Six)}
	final, score := PlayDealer(hand, &d)

	// 11 -> 13 -> 16 -> 26
	assert.Equal(t, 26, score)
	assert.Len(t, final, 5)
	assert.Equal(t, deck.Size-3, d.Len())
}

func TestPlayDealerStopsWhenDeckExhausted(t *testing.T) {
	d := deck.New(cards(deck.Two))
	hand := deck.Hand(cards(deck.Two, deck.Three))

	final, score := PlayDealer(hand, &d)
	assert.Equal(t, 7, score)
	assert.Len(t, final, 3)
	assert.True(t, d.IsEmpty())
}

func TestPlayDealerDoesNotMutateInputHand(t *testing.T) {
	d, err := deck.NewStacked(deck.NewCard(deck.Hearts, deck.King))
	require.NoError(t, err)

	hand := make(deck.Hand, 2, 10)
	hand[0] = deck.NewCard(deck.Spades, deck.Two)
	hand[1] = deck.NewCard(deck.Clubs, deck.Five)

	final, score := PlayDealer(hand, &d)
	assert.Equal(t, 17, score)
	assert.Len(t, final, 3)
	assert.Len(t, hand, 2)
	assert.Equal(t, deck.Card{}, hand[:3][2], "spare capacity of the input must not be written")
}

func TestPlayDealerConservesCards(t *testing.T) {
	rng := randutil.New(31)
	for i := 0; i < 200; i++ {
		d := deck.NewShuffled(rng)
		start := d.Len()
		player, dealer, err := deck.SplitInitialHands(&d)
		require.NoError(t, err)
		afterDeal := d.Len()

		final, score := PlayDealer(dealer, &d)

		drawn := afterDeal - d.Len()
		assert.Equal(t, len(final)-len(dealer), drawn)
		assert.Equal(t, start, len(player)+len(final)+d.Len())
		require.NoError(t, deck.CheckComplete(player, final, d.Cards()))

		// stops the first time the score reaches 17
		assert.GreaterOrEqual(t, score, DealerStandsOn)
		if len(final) > len(dealer) {
			assert.Less(t, Score(final[:len(final)-1]), DealerStandsOn)
		}
	}
}
