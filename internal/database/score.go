// internal/database/score.go
package database

import (
	"context"
	"fmt"

	"github.com/Gabriel-Gonta/memory-game/internal/models"
)

// InsertScore persists a finished game result and returns the stored row.
func (s *Store) InsertScore(ctx context.Context, in models.ScoreCreate) (*models.Score, error) {
	q := `
		INSERT INTO scores (player_name, score, moves, time, grid_size, theme)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, player_name, score, moves, time, grid_size, theme, created_at
	`
	var sc models.Score
	err := s.pool.QueryRow(ctx, q,
		in.PlayerName, in.Score, in.Moves, in.Time, in.GridSize, in.Theme,
	).Scan(
		&sc.ID, &sc.PlayerName, &sc.Score, &sc.Moves, &sc.Time,
		&sc.GridSize, &sc.Theme, &sc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert score: %w", err)
	}
	return &sc, nil
}

// GetTopScores returns the leaderboard: best score first, ties broken
// by faster time, then fewer moves. Rank is 1-based.
func (s *Store) GetTopScores(ctx context.Context, limit int) ([]models.TopScore, error) {
	q := `
		SELECT id, player_name, score, moves, time, grid_size, theme, created_at
		FROM scores
		ORDER BY score DESC, time ASC, moves ASC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var out []models.TopScore
	rank := 0
	for rows.Next() {
		var sc models.Score
		if err := rows.Scan(
			&sc.ID, &sc.PlayerName, &sc.Score, &sc.Moves, &sc.Time,
			&sc.GridSize, &sc.Theme, &sc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan top score: %w", err)
		}
		rank++
		out = append(out, models.TopScore{Score: sc, Rank: rank})
	}
	return out, rows.Err()
}

// GetStatistics aggregates every recorded game. An empty table yields
// the zero Statistics rather than an error.
func (s *Store) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics

	err := s.pool.QueryRow(ctx, `SELECT COUNT(id) FROM scores`).Scan(&stats.TotalParticipations)
	if err != nil {
		return nil, fmt.Errorf("count scores: %w", err)
	}
	if stats.TotalParticipations == 0 {
		return &stats, nil
	}

	q := `
		SELECT
			AVG(score), AVG(time), AVG(moves),
			MIN(time), MIN(moves),
			COUNT(DISTINCT player_name)
		FROM scores
	`
	err = s.pool.QueryRow(ctx, q).Scan(
		&stats.AverageScore, &stats.AverageTime, &stats.AverageMoves,
		&stats.BestTime, &stats.BestMoves, &stats.TotalPlayers,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}
	return &stats, nil
}
