package game

// Action is a request to change the game state. The set of actions is closed;
// see Engine.Apply for how each one is handled.
type Action interface {
	actionName() string
}

// StartRound deals a fresh round and moves straight to bidding
type StartRound struct{}

// PrepareRound clears the table and waits for DealCards
type PrepareRound struct{}

// DealCards deals the cards of a prepared round
type DealCards struct{}

// SubmitBid discards cards from a player's hand as their bid
type SubmitBid struct {
	Player int
	Cards  []Card
}

// PlayCard plays one card from a player's hand onto the current trick
type PlayCard struct {
	Player int
	Card   Card
}

// ComputeScores scores a finished round and records the leader
type ComputeScores struct{}

// SetPlayerNames renames the players. Missing or blank names get a default.
type SetPlayerNames struct {
	Names []string
}

// StartNewGame resets scores and returns to setup, keeping player names
type StartNewGame struct{}

func (StartRound) actionName() string     { return "start round" }
func (PrepareRound) actionName() string   { return "prepare round" }
func (DealCards) actionName() string      { return "deal cards" }
func (SubmitBid) actionName() string      { return "submit bid" }
func (PlayCard) actionName() string       { return "play card" }
func (ComputeScores) actionName() string  { return "compute scores" }
func (SetPlayerNames) actionName() string { return "set player names" }
func (StartNewGame) actionName() string   { return "start new game" }

// ActionName returns a short description of an action, used in logs
func ActionName(a Action) string {
	if a == nil {
		return "none"
	}
	return a.actionName()
}
