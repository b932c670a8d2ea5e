package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// WelcomeMessage is shown on a fresh game
const WelcomeMessage = "Welcome to Counterpoint! Press \"Start Game\" to begin."

// Rules holds the table configuration. The game is designed for three players
// with twelve cards each and a three card bid.
type Rules struct {
	Players  int `json:"players"`
	HandSize int `json:"handSize"`
	BidCards int `json:"bidCards"`

	// TargetScore ends the match once a player reaches it. Zero disables it.
	TargetScore int `json:"targetScore"`
	// DealLimit ends the match after this many rounds. Zero disables it.
	DealLimit int `json:"dealLimit"`
}

// DefaultRules returns the standard three player rules
func DefaultRules() Rules {
	return Rules{Players: 3, HandSize: 12, BidCards: 3}
}

// Validate checks that a round can be dealt and played under the rules
func (r Rules) Validate() error {
	switch {
	case r.Players < 2:
		return fmt.Errorf("at least 2 players are required, got %d", r.Players)
	case r.HandSize <= 0 || r.Players*r.HandSize > DeckSize:
		return fmt.Errorf("cannot deal %d cards to %d players from %d", r.HandSize, r.Players, DeckSize)
	case r.BidCards <= 0 || r.BidCards >= r.HandSize:
		return fmt.Errorf("bid of %d cards does not fit a hand of %d", r.BidCards, r.HandSize)
	case r.TargetScore < 0 || r.DealLimit < 0:
		return errors.New("target score and deal limit cannot be negative")
	}
	return nil
}

// Engine applies actions to game states. It holds the rules and the random
// source used for dealing. An Engine is not safe for concurrent use.
type Engine struct {
	rules Rules
	rng   Source
}

// NewEngine creates an engine. A nil rng is replaced with a time seeded one.
func NewEngine(rng Source, rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rules: rules, rng: rng}, nil
}

// Rules returns the engine's rules
func (e *Engine) Rules() Rules {
	return e.rules
}

// NewGame creates the initial state for a game. Missing names get a default.
func (e *Engine) NewGame(names []string) State {
	players := make([]Player, e.rules.Players)
	for i := range players {
		players[i] = Player{
			ID:       i,
			Name:     pickName(names, i),
			Hand:     []Card{},
			Tricks:   [][]Card{},
			BidCards: []Card{},
		}
	}
	return State{
		Deck:         NewDeck(),
		Players:      players,
		CurrentTrick: []Card{},
		Phase:        Setup,
		Message:      WelcomeMessage,
	}
}

func pickName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return DefaultPlayerName(i)
}

// Apply returns the state that results from applying a to s. The given state
// is never modified.
//
// A rejected action returns a copy of s whose Message explains the refusal,
// together with a *RejectionError. An invariant violation returns s itself
// with an *InvariantError.
func (e *Engine) Apply(s State, a Action) (State, error) {
	next := s.Clone()

	var err error
	switch act := a.(type) {
	case StartRound:
		err = e.startRound(&next, startablePhases)
	case PrepareRound:
		err = e.prepareRound(&next)
	case DealCards:
		err = e.startRound(&next, []Phase{Dealing})
	case SubmitBid:
		err = e.submitBid(&next, act)
	case PlayCard:
		err = e.playCard(&next, act)
	case ComputeScores:
		err = e.computeScores(&next)
	case SetPlayerNames:
		err = e.setPlayerNames(&next, act)
	case StartNewGame:
		next = e.NewGame(s.Names())
	default:
		err = reject(ReasonUnknownAction, "Unknown action.")
	}

	if err != nil {
		if rej, ok := IsRejection(err); ok {
			out := s.Clone()
			out.Message = rej.Message
			return out, err
		}
		return s, err
	}

	if err := next.CheckInvariants(); err != nil {
		return s, fmt.Errorf("%s: %w", ActionName(a), err)
	}
	return next, nil
}

var startablePhases = []Phase{Setup, Dealing, Scoring, GameOver}

func phaseIn(p Phase, phases []Phase) bool {
	for _, q := range phases {
		if p == q {
			return true
		}
	}
	return false
}

func (e *Engine) resetRound(s *State) {
	for i := range s.Players {
		p := &s.Players[i]
		p.Hand = []Card{}
		p.Tricks = [][]Card{}
		p.Bid = nil
		p.BidCards = []Card{}
		p.CardPoints = 0
	}
	s.Deck = NewDeck()
	s.Turn = 0
	s.Leader = 0
	s.Trump = NoTrump()
	s.TrumpCard = nil
	s.CurrentTrick = []Card{}
	s.Tricks = 0
	s.TrickWinner = nil
	s.Winner = nil
	s.LastScores = nil
}

func (e *Engine) prepareRound(s *State) error {
	if s.MatchOver {
		return reject(ReasonMatchOver, "The match is over! Start a new game.")
	}
	if !phaseIn(s.Phase, []Phase{Setup, Scoring, GameOver}) {
		return reject(ReasonWrongPhase, "Finish the current round first!")
	}
	e.resetRound(s)
	s.Phase = Dealing
	s.Message = "Dealing cards for a new round..."
	return nil
}

func (e *Engine) startRound(s *State, allowed []Phase) error {
	if s.MatchOver {
		return reject(ReasonMatchOver, "The match is over! Start a new game.")
	}
	if !phaseIn(s.Phase, allowed) {
		return reject(ReasonWrongPhase, "Finish the current round first!")
	}

	e.resetRound(s)
	dealt, err := Deal(s.Deck, e.rules.Players, e.rules.HandSize, e.rng)
	if err != nil {
		return err
	}

	for i := range s.Players {
		s.Players[i].Hand = SortHand(dealt.Hands[i])
	}
	s.Deck = dealt.Remaining
	if len(dealt.Remaining) > 0 {
		card := dealt.Remaining[0]
		s.TrumpCard = &card
		s.Trump = DeriveTrump(card)
	}
	s.Round++
	s.Phase = Bidding
	s.Message = fmt.Sprintf("%s, select %d cards to make your bid.", s.Players[0].Name, e.rules.BidCards)
	return nil
}

func (e *Engine) checkPlayer(s *State, player int) error {
	if player < 0 || player >= len(s.Players) {
		return reject(ReasonUnknownPlayer, "There is no player %d.", player)
	}
	if player != s.Turn {
		return reject(ReasonNotYourTurn, "Not your turn. It's %s's turn.", s.Players[s.Turn].Name)
	}
	return nil
}

func (e *Engine) submitBid(s *State, act SubmitBid) error {
	if s.Phase != Bidding {
		if phaseIn(s.Phase, []Phase{Playing, Scoring, GameOver}) {
			return reject(ReasonWrongPhase, "The bidding phase is over!")
		}
		return reject(ReasonWrongPhase, "It's not the bidding phase yet!")
	}
	if err := e.checkPlayer(s, act.Player); err != nil {
		return err
	}
	if len(act.Cards) != e.rules.BidCards {
		return reject(ReasonBidCardCount, "You must select exactly %d cards for your bid.", e.rules.BidCards)
	}

	player := &s.Players[act.Player]
	ids := make([]string, 0, len(act.Cards))
	seen := make(map[string]bool, len(act.Cards))
	bid := make([]Card, 0, len(act.Cards))
	for _, c := range act.Cards {
		if seen[c.ID] {
			return reject(ReasonDuplicateCard, "You selected %s twice.", c)
		}
		seen[c.ID] = true
		i := indexOfCard(player.Hand, c.ID)
		if i < 0 {
			return reject(ReasonCardNotInHand, "%s is not in your hand.", c)
		}
		held := player.Hand[i]
		if held.IsJoker() {
			return reject(ReasonJokerBid, "The Joker cannot be part of a bid.")
		}
		ids = append(ids, held.ID)
		bid = append(bid, held)
	}

	value := BidValue(bid)
	player.Bid = intPtr(value)
	player.BidCards = bid
	player.Hand = removeCards(player.Hand, ids...)

	if e.allBid(s) {
		s.Phase = Playing
		s.Turn = 0
		s.Leader = 0
		s.Message = fmt.Sprintf("%s leads the first trick.", s.Players[0].Name)
		return nil
	}

	s.Turn = (s.Turn + 1) % len(s.Players)
	s.Message = fmt.Sprintf("%s bid %d. %s, select %d cards to make your bid.",
		player.Name, value, s.Players[s.Turn].Name, e.rules.BidCards)
	return nil
}

func (e *Engine) allBid(s *State) bool {
	for _, p := range s.Players {
		if p.Bid == nil {
			return false
		}
	}
	return true
}

func (e *Engine) playCard(s *State, act PlayCard) error {
	if s.Phase != Playing {
		if phaseIn(s.Phase, []Phase{Scoring, GameOver}) {
			return reject(ReasonWrongPhase, "The round is over!")
		}
		return reject(ReasonWrongPhase, "It's not the playing phase yet!")
	}
	if err := e.checkPlayer(s, act.Player); err != nil {
		return err
	}

	player := &s.Players[act.Player]
	i := indexOfCard(player.Hand, act.Card.ID)
	if i < 0 {
		return reject(ReasonCardNotInHand, "%s is not in your hand.", act.Card)
	}
	card := player.Hand[i]
	if !CanPlayCard(card, player.Hand, s.CurrentTrick, s.Trump) {
		return reject(ReasonIllegalCard, "You must follow suit if possible!")
	}

	if len(s.CurrentTrick) == 0 {
		s.Leader = act.Player
	}
	player.Hand = removeCards(player.Hand, card.ID)
	s.CurrentTrick = append(s.CurrentTrick, card)

	if len(s.CurrentTrick) < len(s.Players) {
		s.Turn = (s.Turn + 1) % len(s.Players)
		s.Message = fmt.Sprintf("%s's turn.", s.Players[s.Turn].Name)
		return nil
	}

	winner, err := ResolveTrick(s.CurrentTrick, s.Trump, s.Leader, len(s.Players))
	if err != nil {
		return err
	}
	w := &s.Players[winner]
	w.Tricks = append(w.Tricks, s.CurrentTrick)
	w.CardPoints += sumValues(s.CurrentTrick)
	s.CurrentTrick = []Card{}
	s.Tricks++
	s.TrickWinner = intPtr(winner)
	s.Turn = winner
	s.Leader = winner

	if e.handsEmpty(s) {
		s.Phase = Scoring
		s.Message = "Round complete! Calculating scores..."
		return nil
	}
	s.Message = fmt.Sprintf("%s wins the trick and leads next.", w.Name)
	return nil
}

func (e *Engine) handsEmpty(s *State) bool {
	for _, p := range s.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

func (e *Engine) computeScores(s *State) error {
	if s.Phase != Scoring {
		return reject(ReasonWrongPhase, "The round is not finished yet!")
	}

	results := ScoreRound(s.Players)
	for i, r := range results {
		s.Players[i].Score += r.Total
	}
	s.LastScores = results

	winner := Leader(s.Players)
	s.Winner = intPtr(winner)
	s.Phase = GameOver
	s.Message = fmt.Sprintf("%s wins with %d points!", s.Players[winner].Name, s.Players[winner].Score)

	if e.matchOver(s) {
		s.MatchOver = true
		s.Message = fmt.Sprintf("%s wins the match with %d points!", s.Players[winner].Name, s.Players[winner].Score)
	}
	return nil
}

func (e *Engine) matchOver(s *State) bool {
	if e.rules.DealLimit > 0 && s.Round >= e.rules.DealLimit {
		return true
	}
	if e.rules.TargetScore > 0 {
		for _, p := range s.Players {
			if p.Score >= e.rules.TargetScore {
				return true
			}
		}
	}
	return false
}

func (e *Engine) setPlayerNames(s *State, act SetPlayerNames) error {
	if !phaseIn(s.Phase, []Phase{Setup, Dealing, Scoring, GameOver}) {
		return reject(ReasonWrongPhase, "Names can only be changed between rounds.")
	}
	for i := range s.Players {
		s.Players[i].Name = pickName(act.Names, i)
	}
	return nil
}
