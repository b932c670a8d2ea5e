package game

// CanPlayCard reports whether card may be played from hand onto the current
// trick. A player must follow the led suit when able. Trumping is never forced,
// so trump does not affect legality.
func CanPlayCard(card Card, hand []Card, trick []Card, trump Trump) bool {
	if len(trick) == 0 {
		return true
	}
	lead := trick[0].Suit
	if card.Suit == lead {
		return true
	}
	for _, c := range hand {
		if c.Suit == lead {
			return false
		}
	}
	return true
}

// LegalCards returns the cards in hand that may be played onto the trick
func LegalCards(hand []Card, trick []Card, trump Trump) []Card {
	legal := make([]Card, 0, len(hand))
	for _, c := range hand {
		if CanPlayCard(c, hand, trick, trump) {
			legal = append(legal, c)
		}
	}
	return legal
}

// beats reports whether challenger takes the trick from the current best card
func beats(challenger, best Card, lead Suit, trump Trump) bool {
	challengerTrump := trump.Is(challenger.Suit)
	bestTrump := trump.Is(best.Suit)
	switch {
	case challengerTrump && !bestTrump:
		return true
	case challengerTrump && bestTrump:
		return rankStrength(challenger.Rank) > rankStrength(best.Rank)
	case bestTrump:
		return false
	case challenger.Suit == lead && best.Suit == lead:
		return rankStrength(challenger.Rank) > rankStrength(best.Rank)
	default:
		return false
	}
}

// ResolveTrick returns the index of the player who wins a completed trick.
// The trick holds cards in play order starting with leader. The highest trump
// wins when one was played, otherwise the highest card of the led suit.
func ResolveTrick(trick []Card, trump Trump, leader, players int) (int, error) {
	if players <= 0 || len(trick) != players {
		return 0, invariantf("resolve trick", "trick has %d cards, want %d", len(trick), players)
	}
	if leader < 0 || leader >= players {
		return 0, invariantf("resolve trick", "leader %d out of range", leader)
	}

	lead := trick[0].Suit
	best := 0
	for i := 1; i < len(trick); i++ {
		if beats(trick[i], trick[best], lead, trump) {
			best = i
		}
	}
	return (leader + best) % players, nil
}
