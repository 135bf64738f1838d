// internal/models/score.go
package models

import (
	"fmt"
	"time"
)

// Score is a finished game result as stored in the scores table.
type Score struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	Moves      int       `json:"moves"`
	Time       int       `json:"time"` // seconds
	GridSize   string    `json:"grid_size"`
	Theme      string    `json:"theme"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScoreCreate is the request payload for submitting a result.
type ScoreCreate struct {
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
	Moves      int    `json:"moves"`
	Time       int    `json:"time"`
	GridSize   string `json:"grid_size"`
	Theme      string `json:"theme"`
}

// Validate applies the same field limits the original API enforced.
func (s ScoreCreate) Validate() error {
	if s.PlayerName == "" || len(s.PlayerName) > 100 {
		return fmt.Errorf("player_name must be 1-100 characters")
	}
	if s.Score < 0 {
		return fmt.Errorf("score must be >= 0")
	}
	if s.Moves < 0 {
		return fmt.Errorf("moves must be >= 0")
	}
	if s.Time < 0 {
		return fmt.Errorf("time must be >= 0")
	}
	if s.GridSize == "" || len(s.GridSize) > 10 {
		return fmt.Errorf("grid_size must be 1-10 characters")
	}
	if s.Theme == "" || len(s.Theme) > 20 {
		return fmt.Errorf("theme must be 1-20 characters")
	}
	return nil
}

// TopScore is a ranked entry of the leaderboard.
type TopScore struct {
	Score
	Rank int `json:"rank"`
}

// Statistics aggregates every recorded game.
type Statistics struct {
	TotalParticipations int64   `json:"total_participations"`
	AverageScore        float64 `json:"average_score"`
	AverageTime         float64 `json:"average_time"`
	AverageMoves        float64 `json:"average_moves"`
	BestTime            int     `json:"best_time"`
	BestMoves           int     `json:"best_moves"`
	TotalPlayers        int     `json:"total_players"`
}
