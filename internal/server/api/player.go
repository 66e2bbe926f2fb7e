package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ayusman/cakecatcher/internal/store"
)

// MaxNameLength is the longest accepted player name, in runes.
const MaxNameLength = 20

// PlayerHandler serves GET and PUT /api/player, the name recorded with the
// next finished round.
type PlayerHandler struct {
	store *store.Store
}

// NewPlayerHandler creates a new PlayerHandler with the given store.
func NewPlayerHandler(s *store.Store) *PlayerHandler {
	return &PlayerHandler{store: s}
}

type playerRequest struct {
	Name string `json:"name"`
}

type playerResponse struct {
	Name string `json:"name"`
}

func (h *PlayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, playerResponse{Name: h.store.Settings().LastPlayerName()})
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PlayerHandler) update(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		writeError(w, http.StatusBadRequest, "name is too long")
		return
	}

	if err := h.store.Settings().Set(store.KeyLastPlayer, name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save name")
		return
	}

	writeJSON(w, http.StatusOK, playerResponse{Name: name})
}
