package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/cakecatcher/internal/store"
)

// MaxListLimit caps the limit parameter of GET /api/scores.
const MaxListLimit = 100

// ScoreHandler serves /api/scores and /api/scores/{id}.
type ScoreHandler struct {
	store *store.Store
}

// NewScoreHandler creates a new ScoreHandler with the given store.
func NewScoreHandler(s *store.Store) *ScoreHandler {
	return &ScoreHandler{store: s}
}

func (h *ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/scores")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createScoreRequest struct {
	Name   string `json:"name"`
	Score  *int   `json:"score"`
	Level  int    `json:"level"`
	Caught int    `json:"caught"`
	Missed int    `json:"missed"`
}

type scoreResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Level    int    `json:"level"`
	Caught   int    `json:"caught"`
	Missed   int    `json:"missed"`
	PlayedAt string `json:"played_at"`
}

type listScoresResponse struct {
	Scores []scoreResponse `json:"scores"`
}

func toScoreResponse(sc *store.Score) scoreResponse {
	return scoreResponse{
		ID:       sc.ID,
		Name:     sc.Name,
		Score:    sc.Score,
		Level:    sc.Level,
		Caught:   sc.Caught,
		Missed:   sc.Missed,
		PlayedAt: sc.PlayedAt.Format(time.RFC3339),
	}
}

func toScoreResponses(scores []*store.Score) []scoreResponse {
	out := make([]scoreResponse, 0, len(scores))
	for _, sc := range scores {
		out = append(out, toScoreResponse(sc))
	}
	return out
}

// list handles GET /api/scores?limit=N, best first.
func (h *ScoreHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	scores, err := h.store.Scores().Top(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scores")
		return
	}

	writeJSON(w, http.StatusOK, listScoresResponse{Scores: toScoreResponses(scores)})
}

// create handles POST /api/scores. The browser client uses it to submit a
// round played under a different name.
func (h *ScoreHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Score == nil {
		writeError(w, http.StatusBadRequest, "score is required")
		return
	}
	if req.Level < 0 || req.Caught < 0 || req.Missed < 0 {
		writeError(w, http.StatusBadRequest, "level, caught and missed must not be negative")
		return
	}

	sc := &store.Score{
		Name:   req.Name,
		Score:  *req.Score,
		Level:  req.Level,
		Caught: req.Caught,
		Missed: req.Missed,
	}
	if err := h.store.Scores().Create(sc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create score")
		return
	}

	writeJSON(w, http.StatusCreated, toScoreResponse(sc))
}

func (h *ScoreHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sc, err := h.store.Scores().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Score not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get score")
		return
	}

	writeJSON(w, http.StatusOK, toScoreResponse(sc))
}

func (h *ScoreHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Scores().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Score not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete score")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
