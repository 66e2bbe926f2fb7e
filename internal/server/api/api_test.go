package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/cakecatcher/internal/store"
)

// newTestStore creates a Store with a temporary database.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store, scores ...int) []*store.Score {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var out []*store.Score
	for i, v := range scores {
		sc := &store.Score{Name: "p", Score: v, PlayedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.Scores().Create(sc); err != nil {
			t.Fatalf("failed to create score: %v", err)
		}
		out = append(out, sc)
	}
	return out
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLeaderboardHandler_Board(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, 10, 80, -5, 40, 120, 60)
	h := NewLeaderboardHandler(s)

	rec := serve(h, http.MethodGet, "/api/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var resp leaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := []int{120, 80, 60, 40, 10}
	if len(resp.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(resp.Entries))
	}
	for i, e := range resp.Entries {
		if e.Score != want[i] {
			t.Errorf("entry %d score = %d, want %d", i, e.Score, want[i])
		}
	}
	if resp.ScoreToBeat == nil || *resp.ScoreToBeat != 11 {
		t.Errorf("score_to_beat = %v, want 11", resp.ScoreToBeat)
	}
}

func TestLeaderboardHandler_EmptyBoard(t *testing.T) {
	h := NewLeaderboardHandler(newTestStore(t))

	rec := serve(h, http.MethodGet, "/api/leaderboard", nil)

	var resp leaderboardResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Entries == nil || len(resp.Entries) != 0 {
		t.Errorf("expected an empty entries array, got %v", resp.Entries)
	}
	if resp.ScoreToBeat != nil {
		t.Errorf("score_to_beat = %d, want absent", *resp.ScoreToBeat)
	}
}

func TestLeaderboardHandler_Check(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, 10, 20, 30, 40, 50)
	h := NewLeaderboardHandler(s)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantRank   int
		wantQual   bool
	}{
		{"top score", "/api/leaderboard/check?score=99", http.StatusOK, 1, true},
		{"ties the last place", "/api/leaderboard/check?score=10", http.StatusOK, 6, false},
		{"negative score", "/api/leaderboard/check?score=-20", http.StatusOK, 6, false},
		{"missing score", "/api/leaderboard/check", http.StatusBadRequest, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodGet, tt.target, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp checkResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Rank != tt.wantRank || resp.Qualifies != tt.wantQual {
				t.Errorf("got rank %d qualifies %v, want %d %v", resp.Rank, resp.Qualifies, tt.wantRank, tt.wantQual)
			}
		})
	}
}

func TestLeaderboardHandler_MethodNotAllowed(t *testing.T) {
	h := NewLeaderboardHandler(newTestStore(t))

	rec := serve(h, http.MethodPost, "/api/leaderboard", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestScoreHandler_ListWithLimit(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, 1, 2, 3, 4, 5, 6, 7)
	h := NewScoreHandler(s)

	rec := serve(h, http.MethodGet, "/api/scores?limit=7", nil)
	var resp listScoresResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Scores) != 7 {
		t.Errorf("expected 7 scores, got %d", len(resp.Scores))
	}

	rec = serve(h, http.MethodGet, "/api/scores?limit=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for a bad limit, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestScoreHandler_Create(t *testing.T) {
	h := NewScoreHandler(newTestStore(t))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Ada","score":-15,"level":2}`, http.StatusCreated},
		{"missing score", `{"name":"Ada"}`, http.StatusBadRequest},
		{"negative level", `{"score":5,"level":-1}`, http.StatusBadRequest},
		{"invalid JSON", `{"score":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodPost, "/api/scores", []byte(tt.body))
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestScoreHandler_GetAndDelete(t *testing.T) {
	s := newTestStore(t)
	created := seed(t, s, 42)
	h := NewScoreHandler(s)
	id := created[0].ID

	rec := serve(h, http.MethodGet, "/api/scores/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got scoreResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Score != 42 || got.ID != id {
		t.Errorf("got %+v", got)
	}

	if rec := serve(h, http.MethodDelete, "/api/scores/"+id, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/api/scores/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPlayerHandler(t *testing.T) {
	s := newTestStore(t)
	h := NewPlayerHandler(s)

	rec := serve(h, http.MethodGet, "/api/player", nil)
	var resp playerResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Name != store.DefaultPlayerName {
		t.Errorf("default name = %q, want %q", resp.Name, store.DefaultPlayerName)
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"  Grace "}`, http.StatusOK},
		{"blank", `{"name":"   "}`, http.StatusBadRequest},
		{"too long", `{"name":"abcdefghijklmnopqrstuvwxyz"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodPut, "/api/player", []byte(tt.body))
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}

	if got := s.Settings().LastPlayerName(); got != "Grace" {
		t.Errorf("stored name = %q, want %q", got, "Grace")
	}
}
