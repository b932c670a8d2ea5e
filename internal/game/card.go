package game

import "sort"

// Suit represents a card suit
type Suit string

// Rank represents a card rank
type Rank string

// Card suits
const (
	Hearts    Suit = "hearts"
	Diamonds  Suit = "diamonds"
	Spades    Suit = "spades"
	Clubs     Suit = "clubs"
	JokerSuit Suit = "joker"
)

// Card ranks
const (
	Ace       Rank = "A"
	King      Rank = "K"
	Queen     Rank = "Q"
	Jack      Rank = "J"
	Ten       Rank = "10"
	Nine      Rank = "9"
	Eight     Rank = "8"
	Seven     Rank = "7"
	Six       Rank = "6"
	JokerRank Rank = "joker"
)

// JokerID is the identifier of the single joker in the deck
const JokerID = "joker"

// Suits lists the four regular suits in deck order
var Suits = []Suit{Hearts, Diamonds, Spades, Clubs}

// Ranks lists the nine regular ranks from highest to lowest
var Ranks = []Rank{Ace, King, Queen, Jack, Ten, Nine, Eight, Seven, Six}

// Card represents a playing card
type Card struct {
	ID    string `json:"id"`
	Suit  Suit   `json:"suit"`
	Rank  Rank   `json:"rank"`
	Value int    `json:"value"`
}

// NewCard builds a regular card with its id and point value filled in
func NewCard(suit Suit, rank Rank) Card {
	return Card{
		ID:    string(suit) + "-" + string(rank),
		Suit:  suit,
		Rank:  rank,
		Value: PointValue(rank),
	}
}

// Joker returns the joker card
func Joker() Card {
	return Card{ID: JokerID, Suit: JokerSuit, Rank: JokerRank, Value: 0}
}

// IsJoker reports whether the card is the joker
func (c Card) IsJoker() bool {
	return c.Suit == JokerSuit
}

// PointValue returns the number of points a card of the given rank is worth
// when captured in a trick
func PointValue(rank Rank) int {
	switch rank {
	case Ace:
		return 11
	case Ten:
		return 10
	case King:
		return 4
	case Queen:
		return 3
	case Jack:
		return 2
	default:
		return 0
	}
}

// rankStrength orders ranks for trick resolution. The joker outranks everything.
func rankStrength(rank Rank) int {
	switch rank {
	case JokerRank:
		return 15
	case Ace:
		return 14
	case King:
		return 13
	case Queen:
		return 12
	case Jack:
		return 11
	case Ten:
		return 10
	case Nine:
		return 9
	case Eight:
		return 8
	case Seven:
		return 7
	case Six:
		return 6
	default:
		return 0
	}
}

// Symbol returns the glyph used to display the suit
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	case JokerSuit:
		return "★"
	default:
		return "?"
	}
}

// String returns a short human readable form such as "A♥" or "Joker"
func (c Card) String() string {
	if c.IsJoker() {
		return "Joker"
	}
	return string(c.Rank) + c.Suit.Symbol()
}

// CardByID looks up a card of the standard deck by its id
func CardByID(id string) (Card, bool) {
	if id == JokerID {
		return Joker(), true
	}
	for _, s := range Suits {
		for _, r := range Ranks {
			if string(s)+"-"+string(r) == id {
				return NewCard(s, r), true
			}
		}
	}
	return Card{}, false
}

func suitOrder(s Suit) int {
	switch s {
	case Hearts:
		return 0
	case Diamonds:
		return 1
	case Spades:
		return 2
	case Clubs:
		return 3
	default:
		return 4
	}
}

// SortHand returns a copy of the hand in display order: by suit, then by
// descending rank, with the joker last
func SortHand(hand []Card) []Card {
	sorted := append([]Card(nil), hand...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if suitOrder(a.Suit) != suitOrder(b.Suit) {
			return suitOrder(a.Suit) < suitOrder(b.Suit)
		}
		return rankStrength(a.Rank) > rankStrength(b.Rank)
	})
	return sorted
}

func containsCard(cards []Card, id string) bool {
	return indexOfCard(cards, id) >= 0
}

func indexOfCard(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// removeCards returns cards without the ones whose ids are listed
func removeCards(cards []Card, ids ...string) []Card {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func sumValues(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value
	}
	return total
}
