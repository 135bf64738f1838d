package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabriel-Gonta/memory-game/internal/models"
	"github.com/Gabriel-Gonta/memory-game/internal/room"
	"github.com/Gabriel-Gonta/memory-game/internal/ws"
)

type stubScoreStore struct {
	inserted []models.ScoreCreate
	top      []models.TopScore
	stats    *models.Statistics
	err      error
}

func (s *stubScoreStore) InsertScore(ctx context.Context, in models.ScoreCreate) (*models.Score, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.inserted = append(s.inserted, in)
	return &models.Score{ID: 1, PlayerName: in.PlayerName, Score: in.Score}, nil
}

func (s *stubScoreStore) GetTopScores(ctx context.Context, limit int) ([]models.TopScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.top) {
		return s.top[:limit], nil
	}
	return s.top, nil
}

func (s *stubScoreStore) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func serverWithScores(store ScoreStore) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewServer(room.NewRegistry(), ws.NewHub(logger), store, nil, logger)
}

func TestCreateScoreHandler(t *testing.T) {
	store := &stubScoreStore{}
	s := serverWithScores(store)

	body := `{"player_name":"Alice","score":42,"moves":18,"time":95,"grid_size":"4x4","theme":"pokemon"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/scores", strings.NewReader(body))

	s.CreateScoreHandler(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "Alice", store.inserted[0].PlayerName)

	var got models.Score
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, 42, got.Score)
}

func TestCreateScoreHandlerRejectsInvalid(t *testing.T) {
	s := serverWithScores(&stubScoreStore{})

	cases := []string{
		`{"player_name":"","score":1,"moves":1,"time":1,"grid_size":"4x4","theme":"pokemon"}`,
		`{"player_name":"A","score":-1,"moves":1,"time":1,"grid_size":"4x4","theme":"pokemon"}`,
		`not json`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/scores", strings.NewReader(body))
		s.CreateScoreHandler(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestCreateScoreHandlerMethodNotAllowed(t *testing.T) {
	s := serverWithScores(&stubScoreStore{})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/scores", nil)
	s.CreateScoreHandler(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTopScoresHandlerHonorsLimit(t *testing.T) {
	store := &stubScoreStore{top: []models.TopScore{
		{Score: models.Score{PlayerName: "A", Score: 90}, Rank: 1},
		{Score: models.Score{PlayerName: "B", Score: 80}, Rank: 2},
		{Score: models.Score{PlayerName: "C", Score: 70}, Rank: 3},
	}}
	s := serverWithScores(store)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/scores/top?limit=2", nil)
	s.TopScoresHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.TopScore
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
}

func TestTopScoresHandlerDegradesToEmptyList(t *testing.T) {
	s := serverWithScores(&stubScoreStore{err: errors.New("db down")})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/scores/top", nil)
	s.TopScoresHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestStatisticsHandlerDegradesToZero(t *testing.T) {
	s := serverWithScores(&stubScoreStore{err: errors.New("db down")})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/scores/statistics", nil)
	s.StatisticsHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Statistics
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Zero(t, got.TotalParticipations)
}
