// Package server exposes the game to browsers: a websocket render sink, the
// leaderboard API and the camera preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/cakecatcher/internal/config"
	"github.com/ayusman/cakecatcher/internal/server/api"
	"github.com/ayusman/cakecatcher/internal/store"
	"github.com/ayusman/cakecatcher/web"
)

// Config holds the server configuration. Every dependency is optional; routes
// for missing ones are not registered.
type Config struct {
	// StaticDir overrides the embedded browser client.
	StaticDir string
	Store     *store.Store
	Preview   PreviewSource
	Game      Game
	World     config.World
}

// Server is the HTTP server of the game.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *Hub
	start  time.Time
	http   *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	if config.Game != nil {
		s.hub = NewHub(config.Game, config.World)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Game != nil {
		s.mux.Handle("/ws", s.hub)
		s.mux.HandleFunc("/api/game", s.handleGame)
		s.mux.HandleFunc("/api/game/", s.handleGame)
	}

	if s.config.Store != nil {
		leaderboard := api.NewLeaderboardHandler(s.config.Store)
		scores := api.NewScoreHandler(s.config.Store)
		s.mux.Handle("/api/leaderboard", leaderboard)
		s.mux.Handle("/api/leaderboard/", leaderboard)
		s.mux.Handle("/api/scores", scores)
		s.mux.Handle("/api/scores/", scores)
		s.mux.Handle("/api/player", api.NewPlayerHandler(s.config.Store))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	} else {
		s.mux.Handle("/", http.FileServer(http.FS(web.Static())))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the websocket hub, or nil when no game is configured.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Game != nil {
		response["phase"] = s.config.Game.Snapshot().State.Phase
		response["clients"] = s.hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleGame serves GET /api/game (current snapshot) and
// POST /api/game/{action}.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/game"), "/")

	switch {
	case action == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.config.Game.Snapshot())
	case action != "" && r.Method == http.MethodPost:
		if err := s.config.Game.Command(action); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, s.config.Game.Snapshot().State)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Start listens on addr and serves in the background. It returns the bound
// address, which differs from addr when addr asks for port 0.
func (s *Server) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s.http = &http.Server{Handler: s}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	log.Printf("HTTP server listening on http://%s", ln.Addr())
	return ln.Addr(), nil
}

// Shutdown disconnects websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
