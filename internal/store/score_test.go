package store

import (
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func seedScores(t *testing.T, r *ScoreRepository, scores ...int) {
	t.Helper()
	for i, v := range scores {
		sc := &Score{Name: "p", Score: v, PlayedAt: epoch.Add(time.Duration(i) * time.Minute)}
		if err := r.Create(sc); err != nil {
			t.Fatalf("Create(%d) error = %v", v, err)
		}
	}
}

func TestScoreRepository_Create(t *testing.T) {
	r := newTestStore(t).Scores()

	sc := &Score{Name: "  Ada  ", Score: -25, Level: 4, Caught: 12, Missed: 7}
	if err := r.Create(sc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sc.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}
	if sc.PlayedAt.IsZero() {
		t.Error("Create() did not set PlayedAt")
	}

	got, err := r.GetByID(sc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Ada" || got.Score != -25 || got.Level != 4 || got.Caught != 12 || got.Missed != 7 {
		t.Errorf("GetByID() = %+v", got)
	}
}

func TestScoreRepository_CreateDefaultName(t *testing.T) {
	r := newTestStore(t).Scores()

	sc := &Score{Name: "   ", Score: 10}
	r.Create(sc)

	if sc.Name != DefaultPlayerName {
		t.Errorf("Name = %q, want %q", sc.Name, DefaultPlayerName)
	}
}

func TestScoreRepository_GetByID_NotFound(t *testing.T) {
	r := newTestStore(t).Scores()

	if _, err := r.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestScoreRepository_Top(t *testing.T) {
	r := newTestStore(t).Scores()
	seedScores(t, r, 30, 120, -15, 60, 120, 90, 10)

	top, err := r.Leaderboard()
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	want := []int{120, 120, 90, 60, 30}
	if len(top) != len(want) {
		t.Fatalf("got %d entries, want %d", len(top), len(want))
	}
	for i, sc := range top {
		if sc.Score != want[i] {
			t.Errorf("entry %d score = %d, want %d", i, sc.Score, want[i])
		}
	}
	if !top[0].PlayedAt.Before(top[1].PlayedAt) {
		t.Error("tied scores should keep the earlier round first")
	}

	if none, _ := r.Top(0); none != nil {
		t.Errorf("Top(0) = %v, want nil", none)
	}
}

func TestScoreRepository_Qualifies(t *testing.T) {
	tests := []struct {
		name   string
		seed   []int
		score  int
		want   bool
		beat   int
		beatOK bool
	}{
		{"empty board", nil, -50, true, 0, false},
		{"board not full", []int{10, 20, 30, 40}, 0, true, 0, false},
		{"beats the last entry", []int{10, 20, 30, 40, 50}, 11, true, 11, true},
		{"ties the last entry", []int{10, 20, 30, 40, 50}, 10, false, 11, true},
		{"below the board", []int{10, 20, 30, 40, 50, 60}, 5, false, 21, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestStore(t).Scores()
			seedScores(t, r, tt.seed...)

			got, err := r.Qualifies(tt.score)
			if err != nil {
				t.Fatalf("Qualifies() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Qualifies(%d) = %v, want %v", tt.score, got, tt.want)
			}

			beat, ok, err := r.ScoreToBeat()
			if err != nil {
				t.Fatalf("ScoreToBeat() error = %v", err)
			}
			if ok != tt.beatOK || beat != tt.beat {
				t.Errorf("ScoreToBeat() = %d, %v, want %d, %v", beat, ok, tt.beat, tt.beatOK)
			}
		})
	}
}

func TestScoreRepository_Rank(t *testing.T) {
	r := newTestStore(t).Scores()
	seedScores(t, r, 100, 50, 50, 10)

	tests := []struct {
		score int
		want  int
	}{
		{200, 1},
		{100, 2},
		{50, 4},
		{0, 5},
	}

	for _, tt := range tests {
		got, err := r.Rank(tt.score)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("Rank(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestScoreRepository_Delete(t *testing.T) {
	r := newTestStore(t).Scores()
	sc := &Score{Name: "Ada", Score: 10}
	r.Create(sc)

	if err := r.Delete(sc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := r.Delete(sc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
