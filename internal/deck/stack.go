package deck

import (
	"fmt"
	"strings"
)

// NewStacked returns a full deck whose first cards are top, followed by the
// remaining cards in canonical order.
func NewStacked(top ...Card) (Deck, error) {
	seen := make(map[Card]bool, Size)
	cards := make([]Card, 0, Size)
	for _, c := range top {
		if !c.Valid() {
			return Deck{}, fmt.Errorf("invalid card %v", c)
		}
		if seen[c] {
			return Deck{}, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
		cards = append(cards, c)
	}
	for _, c := range Ordered().cards {
		if !seen[c] {
			cards = append(cards, c)
		}
	}
	return Deck{cards: cards}, nil
}

// CheckComplete verifies that parts together hold exactly the 52-card set
func CheckComplete(parts ...[]Card) error {
	seen := make(map[Card]bool, Size)
	total := 0
	for _, part := range parts {
		for _, c := range part {
			if !c.Valid() {
				return fmt.Errorf("invalid card %v", c)
			}
			if seen[c] {
				return fmt.Errorf("duplicate card %s", c)
			}
			seen[c] = true
			total++
		}
	}
	if total != Size {
		var missing []string
		for _, c := range Ordered().cards {
			if !seen[c] {
				missing = append(missing, c.String())
			}
		}
		return fmt.Errorf("expected %d cards, found %d (missing %s)", Size, total, strings.Join(missing, " "))
	}
	return nil
}
