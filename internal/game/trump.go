package game

import (
	"encoding/json"
	"fmt"
)

// Trump is the optional trump suit of a round. The zero value means no trump.
type Trump struct {
	suit Suit
	set  bool
}

// NoTrump returns an absent trump
func NoTrump() Trump {
	return Trump{}
}

// TrumpOf returns a trump of the given suit
func TrumpOf(s Suit) Trump {
	return Trump{suit: s, set: true}
}

// Suit returns the trump suit and whether there is one
func (t Trump) Suit() (Suit, bool) {
	return t.suit, t.set
}

// Is reports whether the given suit is trump
func (t Trump) Is(s Suit) bool {
	return t.set && t.suit == s
}

func (t Trump) String() string {
	if !t.set {
		return "no trump"
	}
	return string(t.suit)
}

// MarshalJSON encodes the trump as its suit name, or null when absent
func (t Trump) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return json.Marshal(string(t.suit))
}

// UnmarshalJSON accepts one of the four suit names or null
func (t *Trump) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*t = NoTrump()
		return nil
	}
	for _, suit := range Suits {
		if Suit(*s) == suit {
			*t = TrumpOf(suit)
			return nil
		}
	}
	return fmt.Errorf("invalid trump suit %q", *s)
}
