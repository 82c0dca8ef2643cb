package deck

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in canonical deck order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the symbol for the suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the persisted name of the suit (e.g. "HEARTS")
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "HEARTS"
	case Diamonds:
		return "DIAMONDS"
	case Clubs:
		return "CLUBS"
	case Spades:
		return "SPADES"
	default:
		return ""
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ParseSuit parses a persisted suit name
func ParseSuit(name string) (Suit, error) {
	for _, s := range Suits {
		if s.Name() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", name)
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank in canonical deck order
var Ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the short label of the rank
func (r Rank) String() string {
	switch r {
	case Two, Three, Four, Five, Six, Seven, Eight, Nine:
		return fmt.Sprintf("%d", int(r))
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Name returns the persisted name of the rank (e.g. "QUEEN")
func (r Rank) Name() string {
	switch r {
	case Two:
		return "TWO"
	case Three:
		return "THREE"
	case Four:
		return "FOUR"
	case Five:
		return "FIVE"
	case Six:
		return "SIX"
	case Seven:
		return "SEVEN"
	case Eight:
		return "EIGHT"
	case Nine:
		return "NINE"
	case Ten:
		return "TEN"
	case Jack:
		return "JACK"
	case Queen:
		return "QUEEN"
	case King:
		return "KING"
	case Ace:
		return "ACE"
	default:
		return ""
	}
}

// Points returns the blackjack value of the rank. Aces always count 11.
func (r Rank) Points() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten && r <= King:
		return 10
	case r >= Two && r < Ten:
		return int(r)
	default:
		return 0
	}
}

// ParseRank parses a persisted rank name
func ParseRank(name string) (Rank, error) {
	for _, r := range Ranks {
		if r.Name() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", name)
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Label returns a long-form description such as "QUEEN of HEARTS"
func (c Card) Label() string {
	return c.Rank.Name() + " of " + c.Suit.Name()
}

// Points returns the blackjack value of the card
func (c Card) Points() int {
	return c.Rank.Points()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Valid reports whether both suit and rank are known
func (c Card) Valid() bool {
	return c.Suit.Name() != "" && c.Rank.Name() != ""
}

type wireCard struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// MarshalJSON encodes the card as {"suit":"HEARTS","value":"ACE"}
func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid card (suit=%d rank=%d)", c.Suit, c.Rank)
	}
	return json.Marshal(wireCard{Suit: c.Suit.Name(), Value: c.Rank.Name()})
}

// UnmarshalJSON decodes a card, rejecting unknown or missing names
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	suit, err := ParseSuit(w.Suit)
	if err != nil {
		return err
	}
	rank, err := ParseRank(w.Value)
	if err != nil {
		return err
	}
	*c = Card{Suit: suit, Rank: rank}
	return nil
}
