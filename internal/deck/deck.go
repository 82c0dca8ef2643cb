package deck

import (
	"errors"
	rand "math/rand/v2"
	"sync"
)

// Size is the number of cards in a standard deck
const Size = 52

// ErrInsufficientCards is returned when a deal or draw needs more cards than remain
var ErrInsufficientCards = errors.New("insufficient cards in deck")

// Hand is an ordered sequence of cards held by one party
type Hand []Card

// Deck represents the undrawn cards of one game, consumed from the front.
// A Deck owns its backing slice: constructors copy their input and Cards
// returns a copy, so two decks never share storage.
type Deck struct {
	cards []Card
}

// New creates a deck holding a copy of the given cards in order
func New(cards []Card) Deck {
	return Deck{cards: append([]Card(nil), cards...)}
}

// Ordered returns the full 52-card deck in canonical order
func Ordered() Deck {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return Deck{cards: cards}
}

// NewShuffled returns all 52 cards in a uniformly random order
func NewShuffled(rng *rand.Rand) Deck {
	d := Ordered()
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrInsufficientCards
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// DrawN removes the top n cards. The deck is left untouched when fewer than n remain.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrInsufficientCards
	}
	drawn := append([]Card(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return drawn, nil
}

// Len returns the number of cards left in the deck
func (d Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, top first
func (d Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Peek returns the top card without removing it from the deck
func (d Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}

// SplitInitialHands deals two cards to the player and then two to the dealer.
// The remaining cards stay in d.
func SplitInitialHands(d *Deck) (player, dealer Hand, err error) {
	dealt, err := d.DrawN(4)
	if err != nil {
		return nil, nil, err
	}
	return Hand{dealt[0], dealt[1]}, Hand{dealt[2], dealt[3]}, nil
}

// Shuffler hands out freshly shuffled decks from a single seeded source.
// It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler creates a shuffler drawing randomness from rng
func NewShuffler(rng *rand.Rand) *Shuffler {
	return &Shuffler{rng: rng}
}

// Deck returns a new shuffled 52-card deck
func (s *Shuffler) Deck() Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewShuffled(s.rng)
}
