// Package app runs a Cake Catcher session: it owns the round controller,
// feeds it pointer samples, fans snapshots out to render and audio sinks and
// records finished rounds on the leaderboard.
package app

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/cakecatcher/internal/config"
	"github.com/ayusman/cakecatcher/internal/game"
	"github.com/ayusman/cakecatcher/internal/store"
)

// Commands accepted by Session.Command.
const (
	CmdStart   = "start"
	CmdRestart = "restart"
	CmdStop    = "stop"
)

// ErrUnknownCommand is returned for a command name Session does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Sink receives the snapshot of every tick.
type Sink interface {
	Present(snap game.Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(snap game.Snapshot)

// Present calls f.
func (f SinkFunc) Present(snap game.Snapshot) { f(snap) }

// Config holds the session dependencies.
type Config struct {
	// Game must already be validated.
	Game    *config.Config
	Pointer game.PointerSource
	// Store is optional; without it finished rounds are not recorded.
	Store *store.Store
	// PlayerName overrides the remembered player name when set.
	PlayerName string
	// Seed drives item spawning. Zero picks a time-based seed.
	Seed int64
}

// Session is safe for concurrent use: one goroutine ticks it while HTTP,
// websocket and tray handlers send commands and read snapshots.
type Session struct {
	config Config
	ctrl   *game.Controller

	mu         sync.Mutex
	sinks      []Sink
	nameFlag   string
	lastResult *store.Score
}

// New creates a session in the Idle phase.
func New(cfg Config) *Session {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Session{
		config:   cfg,
		ctrl:     game.NewController(cfg.Game, cfg.Pointer, rand.New(rand.NewSource(seed))),
		nameFlag: strings.TrimSpace(cfg.PlayerName),
	}
}

// AddSink registers a sink for every following tick.
func (s *Session) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Step advances the round by dt seconds and presents the result to every
// sink. A round that ends on this tick is recorded before sinks see it.
func (s *Session) Step(dt float64) game.Snapshot {
	s.mu.Lock()
	before := s.ctrl.State().Phase
	snap := s.ctrl.Tick(dt)
	if before == game.Running && snap.State.Phase == game.GameOver {
		s.record(snap.State)
	}
	sinks := make([]Sink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Present(snap)
	}
	return snap
}

// Command applies a named round command. Commands that do not apply in the
// current phase are ignored.
func (s *Session) Command(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ctrl.State().Phase
	switch strings.ToLower(strings.TrimSpace(action)) {
	case CmdStart:
		s.ctrl.Start()
	case CmdRestart:
		s.ctrl.Restart()
	case CmdStop:
		s.ctrl.Stop()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, action)
	}

	if after := s.ctrl.State().Phase; after != before {
		if after == game.Running {
			s.lastResult = nil
		}
		log.Printf("Command %s: %s -> %s", action, before, after)
	}
	return nil
}

// Snapshot returns the current state without the one-shot effects of the
// last tick.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ctrl.Snapshot()
	snap.Effects = nil
	return snap
}

// PlayerName returns the name finished rounds are recorded under: the
// configured name, else the remembered one, else store.DefaultPlayerName.
func (s *Session) PlayerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerName()
}

func (s *Session) playerName() string {
	switch {
	case s.nameFlag != "":
		return s.nameFlag
	case s.config.Store != nil:
		return s.config.Store.Settings().LastPlayerName()
	default:
		return store.DefaultPlayerName
	}
}

// SetPlayerName changes the player name. With a store the name is remembered
// for later sessions.
func (s *Session) SetPlayerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("player name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Store == nil {
		s.nameFlag = name
		return nil
	}
	if err := s.config.Store.Settings().Set(store.KeyLastPlayer, name); err != nil {
		return fmt.Errorf("failed to remember player name: %w", err)
	}
	s.nameFlag = ""
	return nil
}

// LastResult returns the score recorded for the most recent finished round,
// or nil when none was recorded since the last start.
func (s *Session) LastResult() *store.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return nil
	}
	r := *s.lastResult
	return &r
}

// Leaderboard returns the top scores, or nil without a store.
func (s *Session) Leaderboard() ([]*store.Score, error) {
	if s.config.Store == nil {
		return nil, nil
	}
	return s.config.Store.Scores().Leaderboard()
}

// record saves a finished round. Callers hold s.mu.
func (s *Session) record(st game.RoundState) {
	sc := &store.Score{
		Name:   s.playerName(),
		Score:  st.Score,
		Level:  st.Level,
		Caught: st.Caught,
		Missed: st.Missed,
	}

	if s.config.Store == nil {
		s.lastResult = sc
		return
	}

	scores := s.config.Store.Scores()
	// Rank before inserting so the new round does not count itself.
	rank, rankErr := scores.Rank(sc.Score)
	qualifies, _ := scores.Qualifies(sc.Score)

	if err := scores.Create(sc); err != nil {
		log.Printf("Failed to save score: %v", err)
		return
	}
	s.lastResult = sc

	if rankErr == nil && qualifies {
		log.Printf("%s scored %d, leaderboard rank %d", sc.Name, sc.Score, rank)
	} else {
		log.Printf("%s scored %d", sc.Name, sc.Score)
	}
}
