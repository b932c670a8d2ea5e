// Package sim drives complete rounds through the engine with random legal
// moves and checks the round level invariants after every step.
package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/calvinwijaya/counterpoint/internal/game"
)

// ActionRecord is one applied action, kept for failure reports
type ActionRecord struct {
	Round  int
	Step   int
	Phase  game.Phase
	Action string
	Detail string
}

// RunSelfPlayRounds plays the given number of rounds with a seeded engine and
// returns the first problem found
func RunSelfPlayRounds(seed int64, rounds int) error {
	rng := rand.New(rand.NewSource(seed))
	engine, err := game.NewEngine(rand.New(rand.NewSource(seed)), game.DefaultRules())
	if err != nil {
		return err
	}
	rules := engine.Rules()
	state := engine.NewGame(nil)
	records := []ActionRecord{}

	apply := func(r, step int, a game.Action, detail string) error {
		next, err := engine.Apply(state, a)
		records = append(records, ActionRecord{Round: r, Step: step, Phase: state.Phase, Action: game.ActionName(a), Detail: detail})
		if err != nil {
			return failure(seed, records, fmt.Sprintf("apply error: %v", err))
		}
		state = next
		return nil
	}

	for r := 0; r < rounds; r++ {
		if err := apply(r, 0, game.StartRound{}, ""); err != nil {
			return err
		}
		if state.Trump != game.DeriveTrump(*state.TrumpCard) {
			return failure(seed, records, "trump does not match the turn-up card")
		}

		step := 1
		for state.Phase == game.Bidding {
			p := state.Turn
			bid := pickBid(state.Players[p].Hand, rules.BidCards, rng)
			if err := apply(r, step, game.SubmitBid{Player: p, Cards: bid}, cardList(bid)); err != nil {
				return err
			}
			step++
		}

		for state.Phase == game.Playing {
			p := state.Turn
			legal := game.LegalCards(state.Players[p].Hand, state.CurrentTrick, state.Trump)
			if len(legal) == 0 {
				return failure(seed, records, fmt.Sprintf("player %d has no legal card", p))
			}
			card := legal[rng.Intn(len(legal))]
			if err := apply(r, step, game.PlayCard{Player: p, Card: card}, card.String()); err != nil {
				return err
			}
			step++
			if step > 200 {
				return failure(seed, records, "round did not finish")
			}
		}

		if err := checkRound(state, rules); err != nil {
			return failure(seed, records, err.Error())
		}

		before := scores(state)
		if err := apply(r, step, game.ComputeScores{}, ""); err != nil {
			return err
		}
		for i, p := range state.Players {
			if p.Score < before[i] {
				return failure(seed, records, fmt.Sprintf("player %d score went down", i))
			}
		}
		if state.Phase != game.GameOver || state.Winner == nil {
			return failure(seed, records, "scoring did not record a winner")
		}
	}
	return nil
}

func pickBid(hand []game.Card, n int, rng *rand.Rand) []game.Card {
	candidates := make([]game.Card, 0, len(hand))
	for _, c := range hand {
		if !c.IsJoker() {
			candidates = append(candidates, c)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates[:n]
}

func checkRound(state game.State, rules game.Rules) error {
	if state.Phase != game.Scoring {
		return fmt.Errorf("round ended in phase %s", state.Phase)
	}
	if want := rules.HandSize - rules.BidCards; state.Tricks != want {
		return fmt.Errorf("played %d tricks, want %d", state.Tricks, want)
	}

	total := 0
	for _, c := range state.Deck {
		total += c.Value
	}
	for _, p := range state.Players {
		if len(p.Hand) != 0 {
			return fmt.Errorf("%s still holds %d cards", p.Name, len(p.Hand))
		}
		total += p.CardPoints
		for _, c := range p.BidCards {
			total += c.Value
		}
	}
	if total != 120 {
		return fmt.Errorf("card points add up to %d", total)
	}
	return nil
}

func scores(state game.State) []int {
	out := make([]int, len(state.Players))
	for i, p := range state.Players {
		out[i] = p.Score
	}
	return out
}

func cardList(cards []game.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func failure(seed int64, records []ActionRecord, reason string) error {
	start := 0
	if len(records) > 10 {
		start = len(records) - 10
	}
	var b strings.Builder
	for _, r := range records[start:] {
		fmt.Fprintf(&b, "\n  round %d step %d [%s] %s %s", r.Round, r.Step, r.Phase, r.Action, r.Detail)
	}
	return fmt.Errorf("seed %d: %s; last actions:%s", seed, reason, b.String())
}
