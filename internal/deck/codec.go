package deck

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is matched by every DecodeError
var ErrDecode = errors.New("malformed card blob")

// DecodeError reports a persisted card blob that could not be decoded
type DecodeError struct {
	Blob string
	Err  error
}

func (e *DecodeError) Error() string {
	blob := e.Blob
	if len(blob) > 64 {
		blob = blob[:64] + "..."
	}
	return fmt.Sprintf("decode cards %q: %v", blob, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) true for any DecodeError
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Encode serializes cards as a JSON array of {"suit","value"} objects
func Encode(cards []Card) (string, error) {
	if cards == nil {
		cards = []Card{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("encode cards: %w", err)
	}
	return string(data), nil
}

// Decode parses a blob produced by Encode
func Decode(blob string) ([]Card, error) {
	if blob == "" {
		return nil, &DecodeError{Blob: blob, Err: errors.New("empty blob")}
	}
	var cards []Card
	if err := json.Unmarshal([]byte(blob), &cards); err != nil {
		return nil, &DecodeError{Blob: blob, Err: err}
	}
	if cards == nil {
		return nil, &DecodeError{Blob: blob, Err: errors.New("not a card array")}
	}
	return cards, nil
}

// EncodeDeck serializes the remaining cards of d
func EncodeDeck(d Deck) (string, error) {
	return Encode(d.cards)
}

// DecodeDeck parses a blob into a deck
func DecodeDeck(blob string) (Deck, error) {
	cards, err := Decode(blob)
	if err != nil {
		return Deck{}, err
	}
	return Deck{cards: cards}, nil
}
