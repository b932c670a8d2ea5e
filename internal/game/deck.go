package game

// DeckSize is the number of cards in a full Counterpoint deck
const DeckSize = 37

// Source is the random source used for shuffling. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Deck is a pile of cards drawn from the top
type Deck struct {
	Cards []Card
}

// NewDeck creates the 37-card deck: nine ranks in each of the four suits
// followed by the joker
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return append(cards, Joker())
}

// ValidateDeck checks that no card id appears twice
func ValidateDeck(cards []Card) error {
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			return invariantf("validate deck", "duplicate card %s", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Shuffle returns a random permutation of cards. The input is left untouched.
func Shuffle(cards []Card, rng Source) []Card {
	out := append([]Card(nil), cards...)

	// Fisher-Yates shuffle algorithm
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// DrawCard removes and returns the top card from the deck
func (d *Deck) DrawCard() (Card, bool) {
	if len(d.Cards) == 0 {
		return Card{}, false
	}

	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	return card, true
}

// DealResult holds the hands produced by Deal and the undealt remainder
type DealResult struct {
	Hands     [][]Card
	Remaining []Card
}

// Deal shuffles the cards and deals them one at a time, round-robin, until
// every player holds perPlayer cards
func Deal(cards []Card, players, perPlayer int, rng Source) (DealResult, error) {
	if players <= 0 || perPlayer <= 0 {
		return DealResult{}, invariantf("deal", "invalid deal of %d cards to %d players", perPlayer, players)
	}
	if players*perPlayer > len(cards) {
		return DealResult{}, invariantf("deal", "deck of %d cards cannot deal %d cards to %d players", len(cards), perPlayer, players)
	}
	if err := ValidateDeck(cards); err != nil {
		return DealResult{}, err
	}

	deck := &Deck{Cards: Shuffle(cards, rng)}
	hands := make([][]Card, players)
	for i := range hands {
		hands[i] = make([]Card, 0, perPlayer)
	}

	for round := 0; round < perPlayer; round++ {
		for p := 0; p < players; p++ {
			card, ok := deck.DrawCard()
			if !ok {
				return DealResult{}, invariantf("deal", "deck ran out after %d rounds", round)
			}
			hands[p] = append(hands[p], card)
		}
	}

	return DealResult{Hands: hands, Remaining: deck.Cards}, nil
}

// DeriveTrump determines the trump for a round from the turned-up card.
// A nine or the joker means the round is played without trumps.
func DeriveTrump(card Card) Trump {
	if card.Rank == Nine || card.IsJoker() {
		return NoTrump()
	}
	return TrumpOf(card.Suit)
}
