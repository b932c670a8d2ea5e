package game

// AccuracyBonus rewards a player for landing close to their own bid
func AccuracyBonus(difference int) int {
	switch {
	case difference == 0:
		return 30
	case difference <= 2:
		return 20
	case difference <= 5:
		return 10
	default:
		return 0
	}
}

// RoundScore is the breakdown of one player's score for a round
type RoundScore struct {
	Player        int `json:"player"`
	Bid           int `json:"bid"`
	CardPoints    int `json:"cardPoints"`
	Difference    int `json:"difference"`
	OpponentsMiss int `json:"opponentsMiss"`
	Bonus         int `json:"bonus"`
	Total         int `json:"total"`
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ScoreRound scores a finished round. Each player earns the sum of every
// opponent's bid miss plus a bonus for their own accuracy. A missing bid counts
// as zero.
func ScoreRound(players []Player) []RoundScore {
	scores := make([]RoundScore, len(players))
	for i, p := range players {
		bid := 0
		if p.Bid != nil {
			bid = *p.Bid
		}
		scores[i] = RoundScore{
			Player:     i,
			Bid:        bid,
			CardPoints: p.CardPoints,
			Difference: abs(bid - p.CardPoints),
		}
	}

	for i := range scores {
		for j := range scores {
			if i != j {
				scores[i].OpponentsMiss += scores[j].Difference
			}
		}
		scores[i].Bonus = AccuracyBonus(scores[i].Difference)
		scores[i].Total = scores[i].OpponentsMiss + scores[i].Bonus
	}
	return scores
}

// RoundScores returns only the totals of ScoreRound, indexed by player
func RoundScores(players []Player) []int {
	totals := make([]int, len(players))
	for i, s := range ScoreRound(players) {
		totals[i] = s.Total
	}
	return totals
}

// Leader returns the index of the player with the highest cumulative score.
// Ties go to the lowest index. It returns -1 when there are no players.
func Leader(players []Player) int {
	best := -1
	for i, p := range players {
		if best < 0 || p.Score > players[best].Score {
			best = i
		}
	}
	return best
}
