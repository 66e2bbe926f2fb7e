package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/cakecatcher/internal/store"
)

// LeaderboardHandler serves GET /api/leaderboard and
// GET /api/leaderboard/check?score=N.
type LeaderboardHandler struct {
	store *store.Store
}

// NewLeaderboardHandler creates a new LeaderboardHandler with the given store.
func NewLeaderboardHandler(s *store.Store) *LeaderboardHandler {
	return &LeaderboardHandler{store: s}
}

type leaderboardResponse struct {
	Entries     []scoreResponse `json:"entries"`
	Size        int             `json:"size"`
	ScoreToBeat *int            `json:"score_to_beat,omitempty"`
}

type checkResponse struct {
	Score     int  `json:"score"`
	Rank      int  `json:"rank"`
	Qualifies bool `json:"qualifies"`
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/leaderboard")
	switch strings.Trim(path, "/") {
	case "":
		h.board(w, r)
	case "check":
		h.check(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *LeaderboardHandler) board(w http.ResponseWriter, r *http.Request) {
	scores := h.store.Scores()

	top, err := scores.Leaderboard()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	resp := leaderboardResponse{
		Entries: toScoreResponses(top),
		Size:    store.LeaderboardSize,
	}

	beat, ok, err := scores.ScoreToBeat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	if ok {
		resp.ScoreToBeat = &beat
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *LeaderboardHandler) check(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "score must be an integer")
		return
	}

	scores := h.store.Scores()
	qualifies, err := scores.Qualifies(score)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check score")
		return
	}
	rank, err := scores.Rank(score)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check score")
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{Score: score, Rank: rank, Qualifies: qualifies})
}
