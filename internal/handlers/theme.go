package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gabriel-Gonta/memory-game/internal/themes"
)

// ThemeHandler serves card-deck content for a named theme, e.g.
// GET /api/themes/pokemon?limit=18.
func (s *Server) ThemeHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/themes/")
	name = strings.Trim(name, "/")
	if name == "" {
		http.Error(w, "theme name required", http.StatusBadRequest)
		return
	}

	limit := themes.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	items, err := s.Themes.Get(r.Context(), name, limit)
	if err != nil {
		var unknown themes.ErrUnknownTheme
		if errors.As(err, &unknown) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.Logger.Errorf("theme fetch failed for %q: %v", name, err)
		http.Error(w, "failed to load theme content", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"theme": name,
		"data":  items,
	})
}
