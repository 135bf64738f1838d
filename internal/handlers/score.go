package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Gabriel-Gonta/memory-game/internal/models"
)

// CreateScoreHandler records one finished game for the leaderboard.
func (s *Server) CreateScoreHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.ScoreCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	score, err := s.Scores.InsertScore(r.Context(), req)
	if err != nil {
		s.Logger.Errorf("failed to insert score: %v", err)
		http.Error(w, "failed to save score", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, score)
}

// TopScoresHandler returns the ranked leaderboard. Database trouble
// degrades to an empty list so the client UI keeps working.
func (s *Server) TopScoresHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	scores, err := s.Scores.GetTopScores(r.Context(), limit)
	if err != nil {
		s.Logger.Errorf("failed to load top scores: %v", err)
		scores = []models.TopScore{}
	}
	if scores == nil {
		scores = []models.TopScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

// StatisticsHandler returns aggregate play statistics, zero-valued
// when the database is unavailable.
func (s *Server) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Scores.GetStatistics(r.Context())
	if err != nil {
		s.Logger.Errorf("failed to load statistics: %v", err)
		stats = &models.Statistics{}
	}
	writeJSON(w, http.StatusOK, stats)
}
