package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/cakecatcher/internal/config"
	"github.com/ayusman/cakecatcher/internal/game"
	"github.com/ayusman/cakecatcher/internal/store"
)

func shortRound(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Round.Duration = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func centered() game.PointerSource {
	return game.PointerFunc(func() (float64, bool) { return 0.5, true })
}

// playOut starts a round and ticks it until it is over.
func playOut(t *testing.T, s *Session) game.Snapshot {
	t.Helper()
	if err := s.Command(CmdStart); err != nil {
		t.Fatalf("Command(start) error = %v", err)
	}
	var snap game.Snapshot
	for i := 0; i < 1000; i++ {
		snap = s.Step(1.0 / 30)
		if snap.State.Phase == game.GameOver {
			return snap
		}
	}
	t.Fatal("round did not end")
	return snap
}

func TestSession_Commands(t *testing.T) {
	s := New(Config{Game: shortRound(t), Pointer: centered(), Seed: 1})

	if got := s.Snapshot().State.Phase; got != game.Idle {
		t.Fatalf("initial phase = %s, want idle", got)
	}

	tests := []struct {
		action string
		want   game.Phase
	}{
		{"restart", game.Idle},
		{" START ", game.Running},
		{"start", game.Running},
		{"restart", game.Running},
		{"stop", game.Idle},
	}

	for _, tt := range tests {
		if err := s.Command(tt.action); err != nil {
			t.Fatalf("Command(%q) error = %v", tt.action, err)
		}
		if got := s.Snapshot().State.Phase; got != tt.want {
			t.Errorf("after %q phase = %s, want %s", tt.action, got, tt.want)
		}
	}
}

func TestSession_UnknownCommand(t *testing.T) {
	s := New(Config{Game: shortRound(t), Seed: 1})

	err := s.Command("jump")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Command(jump) error = %v, want ErrUnknownCommand", err)
	}
	if got := s.Snapshot().State.Phase; got != game.Idle {
		t.Errorf("phase = %s, want idle", got)
	}
}

func TestSession_SinksSeeEveryTick(t *testing.T) {
	s := New(Config{Game: shortRound(t), Pointer: centered(), Seed: 1})

	var mu sync.Mutex
	var seen []game.Snapshot
	s.AddSink(SinkFunc(func(snap game.Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	}))

	s.Command(CmdStart)
	for i := 0; i < 5; i++ {
		s.Step(0.1)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 5 {
		t.Fatalf("sink saw %d snapshots, want 5", len(seen))
	}
	if seen[4].State.Elapsed <= seen[0].State.Elapsed {
		t.Error("sink snapshots did not advance")
	}
}

func TestSession_SnapshotDropsEffects(t *testing.T) {
	s := New(Config{Game: shortRound(t), Pointer: centered(), Seed: 1})
	last := playOut(t, s)

	if len(last.Effects) == 0 {
		t.Fatal("final tick should carry a game over effect")
	}
	if got := s.Snapshot().Effects; len(got) != 0 {
		t.Errorf("Snapshot().Effects = %v, want none", got)
	}
}

func TestSession_RecordsFinishedRound(t *testing.T) {
	st := newTestStore(t)
	s := New(Config{Game: shortRound(t), Pointer: centered(), Store: st, PlayerName: "Ada", Seed: 7})

	final := playOut(t, s)

	// Ticks after game over must not record again.
	for i := 0; i < 10; i++ {
		s.Step(1.0 / 30)
	}

	n, err := st.Scores().Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("recorded %d rounds, want 1", n)
	}

	res := s.LastResult()
	if res == nil {
		t.Fatal("LastResult() = nil")
	}
	if res.Name != "Ada" || res.Score != final.State.Score || res.Level != final.State.Level {
		t.Errorf("LastResult() = %+v, want Ada with score %d level %d", res, final.State.Score, final.State.Level)
	}
	if res.Caught != final.State.Caught || res.Missed != final.State.Missed {
		t.Errorf("caught, missed = %d, %d, want %d, %d", res.Caught, res.Missed, final.State.Caught, final.State.Missed)
	}

	saved, err := st.Scores().GetByID(res.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if saved.Score != res.Score {
		t.Errorf("saved score = %d, want %d", saved.Score, res.Score)
	}

	// A new round clears the last result.
	if err := s.Command(CmdRestart); err != nil {
		t.Fatalf("Command(restart) error = %v", err)
	}
	if s.LastResult() != nil {
		t.Error("LastResult() should be nil while a new round runs")
	}
}

func TestSession_StoppedRoundIsNotRecorded(t *testing.T) {
	st := newTestStore(t)
	s := New(Config{Game: shortRound(t), Pointer: centered(), Store: st, Seed: 3})

	s.Command(CmdStart)
	s.Step(0.5)
	s.Command(CmdStop)
	s.Step(1)

	if n, _ := st.Scores().Count(); n != 0 {
		t.Errorf("recorded %d rounds after stop, want 0", n)
	}
}

func TestSession_PlayerName(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		s := New(Config{Game: shortRound(t)})
		if got := s.PlayerName(); got != store.DefaultPlayerName {
			t.Errorf("PlayerName() = %q, want %q", got, store.DefaultPlayerName)
		}
		if err := s.SetPlayerName("  Lin "); err != nil {
			t.Fatalf("SetPlayerName() error = %v", err)
		}
		if got := s.PlayerName(); got != "Lin" {
			t.Errorf("PlayerName() = %q, want Lin", got)
		}
		if err := s.SetPlayerName("   "); err == nil {
			t.Error("SetPlayerName(blank) error = nil")
		}
	})

	t.Run("remembered in store", func(t *testing.T) {
		st := newTestStore(t)
		if err := st.Settings().Set(store.KeyLastPlayer, "Grace"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		s := New(Config{Game: shortRound(t), Store: st})
		if got := s.PlayerName(); got != "Grace" {
			t.Errorf("PlayerName() = %q, want Grace", got)
		}

		if err := s.SetPlayerName("Ada"); err != nil {
			t.Fatalf("SetPlayerName() error = %v", err)
		}
		if got := New(Config{Game: shortRound(t), Store: st}).PlayerName(); got != "Ada" {
			t.Errorf("new session PlayerName() = %q, want Ada", got)
		}
	})

	t.Run("flag wins until changed", func(t *testing.T) {
		st := newTestStore(t)
		st.Settings().Set(store.KeyLastPlayer, "Grace")

		s := New(Config{Game: shortRound(t), Store: st, PlayerName: "Flag"})
		if got := s.PlayerName(); got != "Flag" {
			t.Errorf("PlayerName() = %q, want Flag", got)
		}
		s.SetPlayerName("Ada")
		if got := s.PlayerName(); got != "Ada" {
			t.Errorf("PlayerName() = %q, want Ada", got)
		}
	})
}

func TestSession_Run(t *testing.T) {
	s := New(Config{Game: shortRound(t), Pointer: centered(), Seed: 1})
	s.Command(CmdStart)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.Snapshot().State.Elapsed == 0 {
		if time.Now().After(deadline) {
			t.Fatal("loop did not advance the round")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
