package game

import "fmt"

type Phase string

const (
	Setup    Phase = "setup"    // Names can be set, no cards dealt
	Dealing  Phase = "dealing"  // Waiting for the deal
	Bidding  Phase = "bidding"  // Players discard three cards as their bid
	Playing  Phase = "playing"  // Tricks are being played
	Scoring  Phase = "scoring"  // All tricks played, waiting for scores
	GameOver Phase = "gameOver" // Round scored, winner recorded
)

type Player struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Hand       []Card   `json:"hand"`
	Tricks     [][]Card `json:"tricks"`
	Bid        *int     `json:"bid"`
	BidCards   []Card   `json:"bidCards"`
	Score      int      `json:"score"`
	CardPoints int      `json:"cardPoints"`
}

// State is an immutable snapshot of a game. Engine.Apply returns new
// snapshots and never modifies the one it is given.
type State struct {
	Deck         []Card       `json:"deck"`
	Players      []Player     `json:"players"`
	Turn         int          `json:"turn"`
	Leader       int          `json:"leader"`
	Trump        Trump        `json:"trump"`
	TrumpCard    *Card        `json:"trumpCard"`
	CurrentTrick []Card       `json:"currentTrick"`
	Tricks       int          `json:"tricks"`
	Phase        Phase        `json:"phase"`
	TrickWinner  *int         `json:"trickWinner"`
	Winner       *int         `json:"winner"`
	Round        int          `json:"round"`
	LastScores   []RoundScore `json:"lastScores"`
	MatchOver    bool         `json:"matchOver"`
	Message      string       `json:"message"`
}

// DefaultPlayerName is the name used for a seat without one
func DefaultPlayerName(i int) string {
	return fmt.Sprintf("Player %d", i+1)
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

func intPtr(n int) *int {
	return &n
}

func (p Player) clone() Player {
	out := p
	out.Hand = cloneCards(p.Hand)
	out.BidCards = cloneCards(p.BidCards)
	out.Bid = cloneInt(p.Bid)
	if p.Tricks != nil {
		out.Tricks = make([][]Card, len(p.Tricks))
		for i, t := range p.Tricks {
			out.Tricks[i] = cloneCards(t)
		}
	}
	return out
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	out := s
	out.Deck = cloneCards(s.Deck)
	out.CurrentTrick = cloneCards(s.CurrentTrick)
	if s.LastScores != nil {
		out.LastScores = make([]RoundScore, len(s.LastScores))
		copy(out.LastScores, s.LastScores)
	}
	out.TrickWinner = cloneInt(s.TrickWinner)
	out.Winner = cloneInt(s.Winner)
	if s.TrumpCard != nil {
		c := *s.TrumpCard
		out.TrumpCard = &c
	}
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			out.Players[i] = p.clone()
		}
	}
	return out
}

// Names returns the player names in seat order
func (s State) Names() []string {
	names := make([]string, len(s.Players))
	for i, p := range s.Players {
		names[i] = p.Name
	}
	return names
}

// CardsInPlay counts every card the state accounts for
func (s State) CardsInPlay() int {
	n := len(s.Deck) + len(s.CurrentTrick)
	for _, p := range s.Players {
		n += len(p.Hand) + len(p.BidCards)
		for _, t := range p.Tricks {
			n += len(t)
		}
	}
	return n
}

// CheckInvariants verifies that a dealt state accounts for every card of the
// deck exactly once and that captured tricks are complete
func (s State) CheckInvariants() error {
	if s.Phase == Setup || s.Phase == Dealing {
		return nil
	}

	seen := make(map[string]bool, DeckSize)
	check := func(where string, cards []Card) error {
		for _, c := range cards {
			if seen[c.ID] {
				return invariantf("check state", "card %s duplicated in %s", c.ID, where)
			}
			seen[c.ID] = true
		}
		return nil
	}

	if err := check("deck", s.Deck); err != nil {
		return err
	}
	if err := check("current trick", s.CurrentTrick); err != nil {
		return err
	}
	for _, p := range s.Players {
		if err := check(p.Name+" hand", p.Hand); err != nil {
			return err
		}
		if err := check(p.Name+" bid", p.BidCards); err != nil {
			return err
		}
		for _, t := range p.Tricks {
			if len(t) != len(s.Players) {
				return invariantf("check state", "%s holds a trick of %d cards", p.Name, len(t))
			}
			if err := check(p.Name+" tricks", t); err != nil {
				return err
			}
		}
	}

	if len(seen) != DeckSize {
		return invariantf("check state", "%d cards accounted for, want %d", len(seen), DeckSize)
	}
	return nil
}
