package game

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	e, err := NewEngine(rand.New(rand.NewSource(seed)), DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func mustApply(t *testing.T, e *Engine, s State, a Action) State {
	t.Helper()
	next, err := e.Apply(s, a)
	if err != nil {
		t.Fatalf("%s: %v", ActionName(a), err)
	}
	return next
}

// firstBid picks the first cards of a hand that are not the joker
func firstBid(hand []Card, n int) []Card {
	bid := []Card{}
	for _, c := range hand {
		if len(bid) == n {
			break
		}
		if !c.IsJoker() {
			bid = append(bid, c)
		}
	}
	return bid
}

func biddingDone(t *testing.T, e *Engine, s State) State {
	t.Helper()
	for s.Phase == Bidding {
		s = mustApply(t, e, s, SubmitBid{Player: s.Turn, Cards: firstBid(s.Players[s.Turn].Hand, 3)})
	}
	return s
}

func TestNewEngineRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
	}{
		{"one player", Rules{Players: 1, HandSize: 12, BidCards: 3}},
		{"hands too large", Rules{Players: 3, HandSize: 13, BidCards: 3}},
		{"bid consumes hand", Rules{Players: 3, HandSize: 3, BidCards: 3}},
		{"negative target", Rules{Players: 3, HandSize: 12, BidCards: 3, TargetScore: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(nil, tt.rules); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestNewGame(t *testing.T) {
	e := newTestEngine(t, 1)
	s := e.NewGame([]string{"Ann", ""})
	if s.Phase != Setup {
		t.Fatalf("expected setup phase, got %s", s.Phase)
	}
	want := []string{"Ann", "Player 2", "Player 3"}
	if !reflect.DeepEqual(s.Names(), want) {
		t.Fatalf("names = %v, want %v", s.Names(), want)
	}
	if s.Message != WelcomeMessage {
		t.Fatalf("unexpected message %q", s.Message)
	}
}

func TestStartRound(t *testing.T) {
	e := newTestEngine(t, 42)
	s := mustApply(t, e, e.NewGame(nil), StartRound{})

	if s.Phase != Bidding || s.Turn != 0 || s.Round != 1 {
		t.Fatalf("unexpected state after start: phase %s turn %d round %d", s.Phase, s.Turn, s.Round)
	}
	for i, p := range s.Players {
		if len(p.Hand) != 12 {
			t.Errorf("player %d holds %d cards", i, len(p.Hand))
		}
		if p.Bid != nil {
			t.Errorf("player %d already has a bid", i)
		}
	}
	if len(s.Deck) != 1 || s.TrumpCard == nil || s.TrumpCard.ID != s.Deck[0].ID {
		t.Fatalf("trump card must be the single remaining card")
	}
	if s.Trump != DeriveTrump(*s.TrumpCard) {
		t.Fatalf("trump %v does not match turn-up %s", s.Trump, s.TrumpCard)
	}
	if s.CardsInPlay() != DeckSize {
		t.Fatalf("expected %d cards in play, got %d", DeckSize, s.CardsInPlay())
	}
}

func TestPrepareRoundThenDeal(t *testing.T) {
	e := newTestEngine(t, 5)
	s := mustApply(t, e, e.NewGame(nil), PrepareRound{})
	if s.Phase != Dealing || s.Message != "Dealing cards for a new round..." {
		t.Fatalf("unexpected state %s %q", s.Phase, s.Message)
	}
	s = mustApply(t, e, s, DealCards{})
	if s.Phase != Bidding {
		t.Fatalf("expected bidding after deal, got %s", s.Phase)
	}
	if _, err := e.Apply(s, DealCards{}); !errors.Is(err, ErrRejected) {
		t.Fatalf("dealing mid-round should be rejected, got %v", err)
	}
}

func TestSubmitBid(t *testing.T) {
	e := newTestEngine(t, 42)
	s := mustApply(t, e, e.NewGame(nil), StartRound{})

	bid := firstBid(s.Players[0].Hand, 3)
	next := mustApply(t, e, s, SubmitBid{Player: 0, Cards: bid})

	p := next.Players[0]
	if p.Bid == nil || *p.Bid != BidValue(bid) {
		t.Fatalf("bid = %v, want %d", p.Bid, BidValue(bid))
	}
	if len(p.Hand) != 9 || len(p.BidCards) != 3 {
		t.Fatalf("hand %d cards, bid %d cards", len(p.Hand), len(p.BidCards))
	}
	for _, c := range bid {
		if containsCard(p.Hand, c.ID) {
			t.Fatalf("%s still in hand after bidding", c.ID)
		}
	}
	if next.Turn != 1 || next.Phase != Bidding {
		t.Fatalf("expected player 1 to bid next, got turn %d phase %s", next.Turn, next.Phase)
	}
	if s.Players[0].Bid != nil || len(s.Players[0].Hand) != 12 {
		t.Fatal("Apply modified the input state")
	}

	done := biddingDone(t, e, next)
	if done.Phase != Playing || done.Turn != 0 || done.Leader != 0 {
		t.Fatalf("expected play to start with player 0, got %s turn %d", done.Phase, done.Turn)
	}
	if done.Message != "Player 1 leads the first trick." {
		t.Fatalf("unexpected message %q", done.Message)
	}
}

func TestSubmitBidRejections(t *testing.T) {
	e := newTestEngine(t, 42)
	s := mustApply(t, e, e.NewGame(nil), StartRound{})
	hand := s.Players[0].Hand
	other := s.Players[1].Hand
	pair := firstBid(hand, 2)

	var withJoker State
	jokerHolder := -1
	for i, p := range s.Players {
		if containsCard(p.Hand, JokerID) {
			jokerHolder = i
		}
	}

	tests := []struct {
		name   string
		state  State
		action SubmitBid
		reason Reason
	}{
		{"wrong turn", s, SubmitBid{Player: 1, Cards: firstBid(other, 3)}, ReasonNotYourTurn},
		{"too few cards", s, SubmitBid{Player: 0, Cards: firstBid(hand, 2)}, ReasonBidCardCount},
		{"too many cards", s, SubmitBid{Player: 0, Cards: firstBid(hand, 4)}, ReasonBidCardCount},
		{"card not held", s, SubmitBid{Player: 0, Cards: append(firstBid(hand, 2), other[0])}, ReasonCardNotInHand},
		{"same card twice", s, SubmitBid{Player: 0, Cards: []Card{pair[0], pair[0], pair[1]}}, ReasonDuplicateCard},
		{"unknown player", s, SubmitBid{Player: 7, Cards: firstBid(hand, 3)}, ReasonUnknownPlayer},
		{"before dealing", e.NewGame(nil), SubmitBid{Player: 0, Cards: firstBid(hand, 3)}, ReasonWrongPhase},
	}

	if jokerHolder >= 0 {
		withJoker = s.Clone()
		withJoker.Turn = jokerHolder
		h := withJoker.Players[jokerHolder].Hand
		bid := append(firstBid(h, 2), Joker())
		tests = append(tests, struct {
			name   string
			state  State
			action SubmitBid
			reason Reason
		}{"joker in bid", withJoker, SubmitBid{Player: jokerHolder, Cards: bid}, ReasonJokerBid})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := e.Apply(tt.state, tt.action)
			rej, ok := IsRejection(err)
			if !ok {
				t.Fatalf("expected rejection, got %v", err)
			}
			if rej.Reason != tt.reason {
				t.Fatalf("reason = %s, want %s", rej.Reason, tt.reason)
			}
			if errors.Is(err, ErrInvariant) {
				t.Fatal("rejection must not match ErrInvariant")
			}
			if next.Message != rej.Message {
				t.Fatalf("message %q not surfaced in state", rej.Message)
			}
			next.Message = tt.state.Message
			if !reflect.DeepEqual(next, tt.state) {
				t.Fatal("rejected action changed more than the message")
			}
		})
	}
}

func TestPlayCardRejections(t *testing.T) {
	e := newTestEngine(t, 11)
	bidding := mustApply(t, e, e.NewGame(nil), StartRound{})
	s := biddingDone(t, e, bidding)

	// Lead a suit player 1 holds alongside another suit, so player 1 has an
	// illegal card to try.
	var lead, illegal Card
	found := false
	for _, c := range s.Players[0].Hand {
		legal := LegalCards(s.Players[1].Hand, []Card{c}, s.Trump)
		if len(legal) == 0 || len(legal) == len(s.Players[1].Hand) {
			continue
		}
		for _, h := range s.Players[1].Hand {
			if !containsCard(legal, h.ID) {
				lead, illegal, found = c, h, true
				break
			}
		}
		break
	}
	if !found {
		t.Fatal("no lead leaves player 1 with an illegal card for this seed")
	}
	afterLead := mustApply(t, e, s, PlayCard{Player: 0, Card: lead})
	own := afterLead.Players[0].Hand[0]

	tests := []struct {
		name    string
		state   State
		action  PlayCard
		reason  Reason
		message string
	}{
		{"out of turn", afterLead, PlayCard{Player: 0, Card: own}, ReasonNotYourTurn, "Not your turn. It's Player 2's turn."},
		{"card not in hand", afterLead, PlayCard{Player: 1, Card: own}, ReasonCardNotInHand, ""},
		{"must follow suit", afterLead, PlayCard{Player: 1, Card: illegal}, ReasonIllegalCard, "You must follow suit if possible!"},
		{"unknown player", afterLead, PlayCard{Player: -1, Card: illegal}, ReasonUnknownPlayer, ""},
		{"during bidding", bidding, PlayCard{Player: 0, Card: lead}, ReasonWrongPhase, "It's not the playing phase yet!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := e.Apply(tt.state, tt.action)
			rej, ok := IsRejection(err)
			if !ok {
				t.Fatalf("expected rejection, got %v", err)
			}
			if rej.Reason != tt.reason {
				t.Fatalf("reason = %s, want %s", rej.Reason, tt.reason)
			}
			if tt.message != "" && rej.Message != tt.message {
				t.Fatalf("message = %q, want %q", rej.Message, tt.message)
			}
			if next.Message != rej.Message {
				t.Fatalf("message %q not surfaced in state", rej.Message)
			}
			next.Message = tt.state.Message
			if !reflect.DeepEqual(next, tt.state) {
				t.Fatal("rejected play changed more than the message")
			}
		})
	}
}

func TestStartRoundSortsHands(t *testing.T) {
	e := newTestEngine(t, 21)
	s := mustApply(t, e, e.NewGame(nil), StartRound{})
	for i, p := range s.Players {
		if !reflect.DeepEqual(p.Hand, SortHand(p.Hand)) {
			t.Fatalf("player %d hand is not in display order: %v", i, p.Hand)
		}
	}
}

func TestPlayCardResolvesTrick(t *testing.T) {
	e := newTestEngine(t, 1)
	s := e.NewGame(nil)
	s.Phase = Playing
	s.Trump = TrumpOf(Hearts)
	s.Deck = cards("hearts-K")
	turnUp := s.Deck[0]
	s.TrumpCard = &turnUp

	// Remaining cards split so every hand can be checked by hand.
	s.Players[0].Hand = cards("spades-9", "clubs-A")
	s.Players[1].Hand = cards("hearts-6", "clubs-K")
	s.Players[2].Hand = cards("spades-K", "clubs-Q")
	rest := removeCards(NewDeck(), "hearts-K", "spades-9", "clubs-A", "hearts-6", "clubs-K", "spades-K", "clubs-Q")
	s.Players[0].BidCards = rest[:3]
	s.Players[1].BidCards = rest[3:6]
	s.Players[2].BidCards = rest[6:9]
	s.Players[0].Tricks = [][]Card{rest[9:12], rest[12:15], rest[15:18], rest[18:21], rest[21:24], rest[24:27], rest[27:30]}
	bid := 0
	for i := range s.Players {
		s.Players[i].Bid = intPtr(bid)
	}

	s = mustApply(t, e, s, PlayCard{Player: 0, Card: card("spades-9")})
	if s.Turn != 1 || s.Message != "Player 2's turn." {
		t.Fatalf("unexpected turn %d message %q", s.Turn, s.Message)
	}
	s = mustApply(t, e, s, PlayCard{Player: 1, Card: card("hearts-6")})
	s = mustApply(t, e, s, PlayCard{Player: 2, Card: card("spades-K")})

	if s.TrickWinner == nil || *s.TrickWinner != 1 || s.Turn != 1 || s.Leader != 1 {
		t.Fatalf("expected player 1 to take the trick with a trump, got %v turn %d", s.TrickWinner, s.Turn)
	}
	if s.Players[1].CardPoints != 4 || len(s.Players[1].Tricks) != 1 {
		t.Fatalf("trick not awarded: %d points, %d tricks", s.Players[1].CardPoints, len(s.Players[1].Tricks))
	}
	if len(s.CurrentTrick) != 0 || s.Tricks != 1 {
		t.Fatalf("trick not cleared: %d cards, %d played", len(s.CurrentTrick), s.Tricks)
	}
	if s.Message != "Player 2 wins the trick and leads next." {
		t.Fatalf("unexpected message %q", s.Message)
	}

	s = mustApply(t, e, s, PlayCard{Player: 1, Card: card("clubs-K")})
	s = mustApply(t, e, s, PlayCard{Player: 2, Card: card("clubs-Q")})
	s = mustApply(t, e, s, PlayCard{Player: 0, Card: card("clubs-A")})

	if s.Phase != Scoring {
		t.Fatalf("expected scoring once hands are empty, got %s", s.Phase)
	}
	if *s.TrickWinner != 0 || s.Players[0].CardPoints != 18 {
		t.Fatalf("expected player 0 to win the last trick, got %d with %d points", *s.TrickWinner, s.Players[0].CardPoints)
	}
}

func TestFullRound(t *testing.T) {
	e := newTestEngine(t, 2024)
	rng := rand.New(rand.NewSource(99))
	s := mustApply(t, e, e.NewGame([]string{"Ann", "Bo", "Cy"}), StartRound{})
	s = biddingDone(t, e, s)

	plays := 0
	for s.Phase == Playing {
		p := s.Turn
		legal := LegalCards(s.Players[p].Hand, s.CurrentTrick, s.Trump)
		choice := legal[rng.Intn(len(legal))]

		trick := append(cloneCards(s.CurrentTrick), choice)
		leader := s.Leader
		if len(s.CurrentTrick) == 0 {
			leader = p
		}

		s = mustApply(t, e, s, PlayCard{Player: p, Card: choice})
		plays++

		if len(trick) == 3 {
			want, err := ResolveTrick(trick, s.Trump, leader, 3)
			if err != nil {
				t.Fatal(err)
			}
			if *s.TrickWinner != want || s.Turn != want {
				t.Fatalf("trick %v: winner %d, want %d", trick, *s.TrickWinner, want)
			}
		}
	}

	if plays != 27 || s.Tricks != 9 {
		t.Fatalf("expected 27 plays over 9 tricks, got %d plays and %d tricks", plays, s.Tricks)
	}
	if s.Phase != Scoring {
		t.Fatalf("expected scoring, got %s", s.Phase)
	}

	want := RoundScores(s.Players)
	s = mustApply(t, e, s, ComputeScores{})
	for i, p := range s.Players {
		if p.Score != want[i] {
			t.Fatalf("player %d score %d, want %d", i, p.Score, want[i])
		}
	}
	if s.Phase != GameOver || s.Winner == nil || *s.Winner != Leader(s.Players) {
		t.Fatalf("expected game over with a winner, got %s %v", s.Phase, s.Winner)
	}
	if len(s.LastScores) != 3 {
		t.Fatalf("expected round breakdown, got %v", s.LastScores)
	}

	// A new round keeps cumulative scores.
	again := mustApply(t, e, s, StartRound{})
	for i, p := range again.Players {
		if p.Score != s.Players[i].Score {
			t.Fatalf("player %d lost score across rounds", i)
		}
		if p.CardPoints != 0 || len(p.Tricks) != 0 || p.Bid != nil {
			t.Fatalf("player %d round fields not reset", i)
		}
	}
	if again.Round != 2 || again.Winner != nil {
		t.Fatalf("unexpected round %d winner %v", again.Round, again.Winner)
	}
}

func TestComputeScoresWrongPhase(t *testing.T) {
	e := newTestEngine(t, 3)
	s := mustApply(t, e, e.NewGame(nil), StartRound{})
	if _, err := e.Apply(s, ComputeScores{}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestSetPlayerNames(t *testing.T) {
	e := newTestEngine(t, 3)
	s := mustApply(t, e, e.NewGame(nil), SetPlayerNames{Names: []string{"Ann", "", "Cy", "Extra"}})
	want := []string{"Ann", "Player 2", "Cy"}
	if !reflect.DeepEqual(s.Names(), want) {
		t.Fatalf("names = %v, want %v", s.Names(), want)
	}

	playing := biddingDone(t, e, mustApply(t, e, s, StartRound{}))
	if _, err := e.Apply(playing, SetPlayerNames{Names: []string{"X"}}); !errors.Is(err, ErrRejected) {
		t.Fatalf("renaming mid-round should be rejected, got %v", err)
	}
}

func TestStartNewGameKeepsNames(t *testing.T) {
	e := newTestEngine(t, 8)
	s := mustApply(t, e, e.NewGame([]string{"Ann", "Bo", "Cy"}), StartRound{})
	s.Players[1].Score = 50

	s = mustApply(t, e, s, StartNewGame{})
	if s.Phase != Setup || s.Round != 0 {
		t.Fatalf("unexpected phase %s round %d", s.Phase, s.Round)
	}
	if !reflect.DeepEqual(s.Names(), []string{"Ann", "Bo", "Cy"}) {
		t.Fatalf("names not kept: %v", s.Names())
	}
	for _, p := range s.Players {
		if p.Score != 0 || len(p.Hand) != 0 {
			t.Fatalf("player %s not reset", p.Name)
		}
	}
}

func TestMatchOver(t *testing.T) {
	rules := DefaultRules()
	rules.DealLimit = 1
	e, err := NewEngine(rand.New(rand.NewSource(4)), rules)
	if err != nil {
		t.Fatal(err)
	}

	s := e.NewGame(nil)
	s.Phase = Scoring
	s = mustApply(t, e, s, PrepareRound{})
	s = mustApply(t, e, s, DealCards{})
	s = biddingDone(t, e, s)
	for s.Phase == Playing {
		p := s.Turn
		s = mustApply(t, e, s, PlayCard{Player: p, Card: LegalCards(s.Players[p].Hand, s.CurrentTrick, s.Trump)[0]})
	}
	s = mustApply(t, e, s, ComputeScores{})
	if !s.MatchOver {
		t.Fatal("expected the match to end after the deal limit")
	}

	_, err = e.Apply(s, StartRound{})
	if rej, ok := IsRejection(err); !ok || rej.Reason != ReasonMatchOver {
		t.Fatalf("expected match over rejection, got %v", err)
	}
	fresh := mustApply(t, e, s, StartNewGame{})
	if fresh.MatchOver {
		t.Fatal("a new game must clear the match over flag")
	}
}

func TestApplyInvariantViolation(t *testing.T) {
	e := newTestEngine(t, 6)
	s := biddingDone(t, e, mustApply(t, e, e.NewGame(nil), StartRound{}))

	corrupt := s.Clone()
	dup := corrupt.Players[0].Hand[0]
	corrupt.Players[1].Hand = append(corrupt.Players[1].Hand, dup)

	next, err := e.Apply(corrupt, PlayCard{Player: 0, Card: corrupt.Players[0].Hand[1]})
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
	if errors.Is(err, ErrRejected) {
		t.Fatal("invariant error must not match ErrRejected")
	}
	if !reflect.DeepEqual(next, corrupt) {
		t.Fatal("invariant failure must return the input state")
	}
}
