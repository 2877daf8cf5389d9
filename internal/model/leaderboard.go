package model

import "time"

// LeaderboardEntry aggregates results per player name
type LeaderboardEntry struct {
	PlayerName     string    `json:"playerName"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Games          int       `json:"games"`
	Score          int       `json:"score"`
	DamageDealt    int       `json:"damageDealt"`
	QuestionPoints int       `json:"questionPoints"`
	CorrectCount   int       `json:"correctCount"`
	PartialCount   int       `json:"partialCount"`
	Rank           int       `json:"rank,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Apply folds one game result into the entry
func (e *LeaderboardEntry) Apply(r GameResult) {
	e.Games++
	if r.Won {
		e.Wins++
	} else {
		e.Losses++
	}
	e.Score += r.Score
	e.DamageDealt += r.DamageDealt
	e.QuestionPoints += r.QuestionPoints
	e.CorrectCount += r.CorrectCount
	e.PartialCount += r.PartialCount
	e.UpdatedAt = time.Now()
}

// Leaderboard is the document-store representation of all entries
type Leaderboard struct {
	Entries map[string]*LeaderboardEntry `json:"entries"`
}
