// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Gabriel-Gonta/memory-game/internal/auth"
	"github.com/Gabriel-Gonta/memory-game/internal/cache"
	"github.com/Gabriel-Gonta/memory-game/internal/database"
	"github.com/Gabriel-Gonta/memory-game/internal/handlers"
	"github.com/Gabriel-Gonta/memory-game/internal/middleware"
	"github.com/Gabriel-Gonta/memory-game/internal/room"
	"github.com/Gabriel-Gonta/memory-game/internal/themes"
	"github.com/Gabriel-Gonta/memory-game/internal/ws"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	store := database.Connect()
	defer store.Close()

	redisCache, err := cache.Connect()
	if err != nil {
		logger.Warnf("redis unavailable, theme caching disabled: %v", err)
		redisCache = nil
	}

	registry := room.NewRegistry()
	hub := ws.NewHub(logger)
	themeSvc := themes.NewService(redisCache, logger)

	srv := handlers.NewServer(registry, hub, store, themeSvc, logger)

	go sweepExpiredRooms(registry, logger)

	mux := http.NewServeMux()

	logged := func(h http.HandlerFunc) http.Handler {
		return middleware.LogMiddleware(logger)(middleware.CORSMiddleware(h))
	}

	mux.Handle("/health", logged(srv.HealthHandler))

	// game websocket
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	// score endpoints
	mux.Handle("/api/scores", logged(srv.CreateScoreHandler))
	mux.Handle("/api/scores/top", logged(srv.TopScoresHandler))
	mux.Handle("/api/scores/statistics", logged(srv.StatisticsHandler))

	// theme content
	mux.Handle("/api/themes/", logged(srv.ThemeHandler))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// sweepExpiredRooms evicts rooms past their TTL on a fixed interval.
func sweepExpiredRooms(registry *room.Registry, logger *logrus.Logger) {
	interval := time.Minute
	if v := os.Getenv("ROOM_SWEEP_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			interval = time.Duration(secs) * time.Second
		}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if removed := registry.CleanupExpiredRooms(); removed > 0 {
			logger.Infof("expired %d room(s)", removed)
		}
	}
}
