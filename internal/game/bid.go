package game

// suitBidWeight is what a discarded card of each suit adds to a bid
func suitBidWeight(s Suit) int {
	switch s {
	case Spades:
		return 10
	case Hearts:
		return 20
	case Clubs:
		return 30
	default:
		// diamonds, and the joker when valued outside the state machine
		return 0
	}
}

// BidValue computes the bid encoded by a set of discarded cards.
// Only suits matter; ranks are ignored.
func BidValue(cards []Card) int {
	bid := 0
	for _, c := range cards {
		bid += suitBidWeight(c.Suit)
	}
	return bid
}
