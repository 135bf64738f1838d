// internal/handlers/player.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Gabriel-Gonta/memory-game/internal/auth"
)

const playerCookieName = "player_token"

// EnsurePlayer resolves the caller's player identity from the signed
// cookie, minting a fresh ephemeral ID when the cookie is missing or
// stale. The ID is opaque to everything downstream; no account exists
// behind it. Must run before any WebSocket upgrade, as it may set a
// cookie.
func EnsurePlayer(w http.ResponseWriter, r *http.Request) (string, error) {
	cookieHeader := r.Header.Get("Cookie")
	if strings.Contains(cookieHeader, playerCookieName+"=") {
		token := extractCookieToken(cookieHeader, playerCookieName)
		if playerID, err := auth.AuthenticateJWT(token); err == nil {
			return playerID, nil
		}
	}

	playerID := uuid.New().String()
	token, err := auth.CreateJWT(playerID)
	if err != nil {
		return "", fmt.Errorf("failed to mint player token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return playerID, nil
}
