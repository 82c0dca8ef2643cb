package rules

import "github.com/lox/blackjack/internal/deck"

// PlayDealer draws for the dealer: while the hand scores below 17 and the
// deck still has cards, the top card moves from d into the hand. It returns
// the final hand and its score; d keeps whatever was not drawn.
func PlayDealer(hand deck.Hand, d *deck.Deck) (deck.Hand, int) {
	out := append(deck.Hand(nil), hand...)
	score := Score(out)
	for score < DealerStandsOn {
		card, err := d.Draw()
		if err != nil {
			break
		}
		out = append(out, card)
		score = Score(out)
	}
	return out, score
}
