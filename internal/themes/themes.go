// internal/themes/themes.go
package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gabriel-Gonta/memory-game/internal/cache"
)

const (
	// DefaultLimit is how many card faces a theme request yields when
	// the client does not ask for a specific count.
	DefaultLimit = 18

	cacheTTL = 10 * time.Minute
)

// Item is one card face: either an image URL or an emoji.
type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

// ErrUnknownTheme reports a theme name outside the supported set.
type ErrUnknownTheme struct{ Name string }

func (e ErrUnknownTheme) Error() string { return fmt.Sprintf("unknown theme %q", e.Name) }

// Service fetches card-face sets from public APIs and caches the
// results in Redis so repeated grid setups do not hammer them. The
// settings blob rooms carry is produced from these payloads by the
// client; the room core never sees this package.
type Service struct {
	client *http.Client
	cache  *cache.Cache
	logger *logrus.Logger

	// Base URLs are fields so tests can point them at local servers.
	PokeAPIBase   string
	DogAPIBase    string
	CountriesBase string
	TMDBImageBase string
}

// NewService builds a Service with production endpoints.
func NewService(c *cache.Cache, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		client:        &http.Client{Timeout: 15 * time.Second},
		cache:         c,
		logger:        logger,
		PokeAPIBase:   "https://pokeapi.co/api/v2",
		DogAPIBase:    "https://dog.ceo/api",
		CountriesBase: "https://restcountries.com/v3.1",
		TMDBImageBase: "https://image.tmdb.org/t/p",
	}
}

// Get returns up to limit items for the named theme, serving from the
// cache when possible.
func (s *Service) Get(ctx context.Context, theme string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := fmt.Sprintf("theme:%s:%d", theme, limit)
	var cached []Item
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.Warnf("theme cache read failed: %v", err)
	} else if hit {
		return cached, nil
	}

	var (
		items []Item
		err   error
	)
	switch theme {
	case "pokemon":
		items, err = s.fetchPokemon(ctx, limit)
	case "dogs":
		items, err = s.fetchDogs(ctx, limit)
	case "movies":
		items, err = s.fetchMovies(ctx, limit)
	case "flags":
		items, err = s.fetchFlags(ctx, limit)
	case "fruits":
		items, err = fruits(limit), nil
	default:
		return nil, ErrUnknownTheme{Name: theme}
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, items, cacheTTL); err != nil {
		s.logger.Warnf("theme cache write failed: %v", err)
	}
	return items, nil
}

// fetchPokemon draws random Pokemon from the first generation and
// keeps the ones whose sprite resolves. Individual failures are
// skipped; only a fully empty result is an error.
func (s *Service) fetchPokemon(ctx context.Context, limit int) ([]Item, error) {
	ids := rand.Perm(151)
	if limit < len(ids) {
		ids = ids[:limit]
	}

	var items []Item
	for _, n := range ids {
		id := n + 1
		var payload struct {
			Name    string `json:"name"`
			Sprites struct {
				FrontDefault string `json:"front_default"`
			} `json:"sprites"`
		}
		url := fmt.Sprintf("%s/pokemon/%d", s.PokeAPIBase, id)
		if err := s.getJSON(ctx, url, &payload); err != nil {
			s.logger.Warnf("pokemon %d fetch failed: %v", id, err)
			continue
		}
		if payload.Sprites.FrontDefault == "" {
			continue
		}
		items = append(items, Item{
			ID:    id,
			Name:  title(payload.Name),
			Image: payload.Sprites.FrontDefault,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("failed to fetch any pokemon data")
	}
	return items, nil
}

func (s *Service) fetchDogs(ctx context.Context, limit int) ([]Item, error) {
	var payload struct {
		Status  string   `json:"status"`
		Message []string `json:"message"`
	}
	url := fmt.Sprintf("%s/breeds/image/random/%d", s.DogAPIBase, limit)
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("fetch dogs theme: %w", err)
	}
	if payload.Status != "success" {
		return nil, fmt.Errorf("dog API returned status %q", payload.Status)
	}

	var items []Item
	for i, imageURL := range payload.Message {
		items = append(items, Item{
			ID:    i + 1,
			Name:  breedFromURL(imageURL),
			Image: imageURL,
		})
		if len(items) == limit {
			break
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no dog images received")
	}
	return items, nil
}

// movie posters come from a curated list with known-good TMDB paths;
// there is no keyless listing endpoint to query.
var movieCatalog = []struct {
	id     int
	name   string
	poster string
}{
	{550, "Fight Club", "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg"},
	{278, "The Shawshank Redemption", "/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg"},
	{238, "The Godfather", "/3bhkrj58Vtu7enYsRolD1fZdja1.jpg"},
	{129, "Spirited Away", "/39wmItIWvg5YkBGp3rMyHEcrSRI.jpg"},
	{497, "The Green Mile", "/velWPhVMQeQKcxggNEU8YmIo52R.jpg"},
	{680, "Pulp Fiction", "/d5iIlFn5s0ImszYzBPb8JPIfbXD.jpg"},
	{13, "Forrest Gump", "/arw2vcBveWOVZr6pxd9XTd1TdQa.jpg"},
	{155, "The Dark Knight", "/qJ2tW6WMUDux911r6m7haRef0WH.jpg"},
	{11, "Star Wars", "/6FfCtAuVAW8XJjZ7eWeLibRLWTw.jpg"},
	{27205, "Inception", "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg"},
	{603, "The Matrix", "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"},
	{389, "12 Angry Men", "/ppd84D2i9W8ijXFMhXK62lO7vfQ.jpg"},
	{769, "GoodFellas", "/aKuFiU82s5ISJpGZp7YkIr3kCUd.jpg"},
	{274, "The Silence of the Lambs", "/uS9m8OBk1A8eM9I042e8rVKbOc0.jpg"},
	{539, "Psycho", "/tdqX0MWaFHuGwUygYn7j6eluOdP.jpg"},
	{18, "The Fifth Element", "/zaFa1NRZEnFgRTv5OVXyIZg1fZ8.jpg"},
	{475557, "Joker", "/udDclJo2j3QyA8kX3i3k6tqEaZ3.jpg"},
	{284054, "Black Panther", "/uxzzxijgPIY7slzFvMotPv8wjKA.jpg"},
	{299536, "Avengers: Infinity War", "/7WsyChQLEftFiDOVTGkv3hFpyyt.jpg"},
	{299534, "Avengers: Endgame", "/or06FN3Dka5tukK1e9sl16pB3iy.jpg"},
}

func (s *Service) fetchMovies(_ context.Context, limit int) ([]Item, error) {
	idx := rand.Perm(len(movieCatalog))
	if limit < len(idx) {
		idx = idx[:limit]
	}
	items := make([]Item, 0, len(idx))
	for _, i := range idx {
		m := movieCatalog[i]
		items = append(items, Item{
			ID:    m.id,
			Name:  m.name,
			Image: s.TMDBImageBase + "/w500" + m.poster,
		})
	}
	return items, nil
}

func (s *Service) fetchFlags(ctx context.Context, limit int) ([]Item, error) {
	var payload []struct {
		Name struct {
			Common string `json:"common"`
		} `json:"name"`
		Flags struct {
			PNG string `json:"png"`
		} `json:"flags"`
	}
	url := fmt.Sprintf("%s/all?fields=name,flags", s.CountriesBase)
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("fetch flags theme: %w", err)
	}

	idx := rand.Perm(len(payload))
	var items []Item
	for _, i := range idx {
		c := payload[i]
		if c.Name.Common == "" || c.Flags.PNG == "" {
			continue
		}
		items = append(items, Item{
			ID:    len(items) + 1,
			Name:  c.Name.Common,
			Image: c.Flags.PNG,
		})
		if len(items) == limit {
			break
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no country flags received")
	}
	return items, nil
}

var fruitEmoji = []struct {
	name  string
	emoji string
}{
	{"Apple", "🍎"}, {"Pear", "🍐"}, {"Orange", "🍊"}, {"Lemon", "🍋"},
	{"Banana", "🍌"}, {"Watermelon", "🍉"}, {"Grapes", "🍇"}, {"Strawberry", "🍓"},
	{"Blueberries", "🫐"}, {"Melon", "🍈"}, {"Cherries", "🍒"}, {"Peach", "🍑"},
	{"Mango", "🥭"}, {"Pineapple", "🍍"}, {"Coconut", "🥥"}, {"Kiwi", "🥝"},
	{"Tomato", "🍅"}, {"Avocado", "🥑"},
}

func fruits(limit int) []Item {
	if limit > len(fruitEmoji) {
		limit = len(fruitEmoji)
	}
	items := make([]Item, 0, limit)
	for i := 0; i < limit; i++ {
		items = append(items, Item{
			ID:    i + 1,
			Name:  fruitEmoji[i].name,
			Emoji: fruitEmoji[i].emoji,
		})
	}
	return items
}

func (s *Service) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// breedFromURL recovers a display name from a Dog CEO image URL, whose
// second-to-last path segment is the breed slug.
func breedFromURL(imageURL string) string {
	parts := strings.Split(imageURL, "/")
	if len(parts) < 4 {
		return "Dog"
	}
	return title(strings.ReplaceAll(parts[len(parts)-2], "-", " "))
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
