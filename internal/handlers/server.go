// internal/handlers/server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Gabriel-Gonta/memory-game/internal/models"
	"github.com/Gabriel-Gonta/memory-game/internal/room"
	"github.com/Gabriel-Gonta/memory-game/internal/themes"
	"github.com/Gabriel-Gonta/memory-game/internal/ws"
)

// ScoreStore is what the score endpoints need from persistence.
type ScoreStore interface {
	InsertScore(ctx context.Context, in models.ScoreCreate) (*models.Score, error)
	GetTopScores(ctx context.Context, limit int) ([]models.TopScore, error)
	GetStatistics(ctx context.Context) (*models.Statistics, error)
}

// Server holds the registry, the hub and their collaborators. It is
// the mediator between them: the registry and the hub never call each
// other, every room mutation here is followed by the matching
// broadcast.
type Server struct {
	Registry *room.Registry
	Hub      *ws.Hub
	Scores   ScoreStore
	Themes   *themes.Service
	Logger   *logrus.Logger
}

// NewServer wires the server from explicitly constructed parts; there
// are no package-level singletons.
func NewServer(registry *room.Registry, hub *ws.Hub, scores ScoreStore, th *themes.Service, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		Registry: registry,
		Hub:      hub,
		Scores:   scores,
		Themes:   th,
		Logger:   logger,
	}
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
