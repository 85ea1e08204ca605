package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cabot-server/game"
	"cabot-server/matcherrors"
	"cabot-server/matchmaking"
)

// MatchLookup is what the handlers need from the matchmaker.
type MatchLookup interface {
	Lookup(id string) (*matchmaking.Table, error)
	Count() int
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Matches MatchLookup
	Now     func() time.Time
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(matches MatchLookup) *Handler {
	return &Handler{
		Matches: matches,
		Now:     time.Now,
	}
}

// Routes mounts the read-only endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Use(corsMiddleware)
	r.Get("/health", h.Health)
	r.Get("/matches/{id}", h.Match)
	r.Get("/matches/{id}/score", h.Score)
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CORS(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HealthResponse is the JSON structure for /api/health.
type HealthResponse struct {
	OK      bool `json:"ok"`
	Matches int  `json:"matches"`
}

// Health reports liveness and the number of live matches.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{OK: true, Matches: h.Matches.Count()})
}

// Match returns the human's view of a match, with hidden cards face-down.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var view game.GameStateMsg
	t.Do(func(m *game.Match) {
		view = m.ViewForHuman(h.Now())
	})
	writeJSON(w, view)
}

// ScoreResponse is the JSON structure for /api/matches/{id}/score.
type ScoreResponse struct {
	MatchID      string           `json:"matchId"`
	PlayerName   string           `json:"playerName"`
	OpponentName string           `json:"opponentName"`
	You          int              `json:"you"`
	Opponent     int              `json:"opponent"`
	Session      game.SessionView `json:"session"`
}

// Score returns the session score of a match.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	resp := ScoreResponse{MatchID: t.ID, PlayerName: t.PlayerName, OpponentName: t.AIName}
	t.Do(func(m *game.Match) {
		view := m.ViewForHuman(h.Now())
		resp.You = view.You.Score
		resp.Opponent = view.Opponent.Score
		resp.Session = view.Session
	})
	writeJSON(w, resp)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*matchmaking.Table, bool) {
	id := chi.URLParam(r, "id")
	t, err := h.Matches.Lookup(id)
	if err != nil {
		if errors.Is(err, matcherrors.ErrMatchNotFound) {
			http.Error(w, "match not found", http.StatusNotFound)
			return nil, false
		}
		slog.Error("lookup match", "tag", "api", "match", id, "error", err)
		http.Error(w, "failed to load match", http.StatusInternalServerError)
		return nil, false
	}
	return t, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "tag", "api", "error", err)
	}
}
