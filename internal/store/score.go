package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeaderboardSize is how many scores the leaderboard shows.
const LeaderboardSize = 5

// DefaultPlayerName is recorded when a round finishes without a name.
const DefaultPlayerName = "Player"

// Score is one finished round.
type Score struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Level    int       `json:"level"`
	Caught   int       `json:"caught"`
	Missed   int       `json:"missed"`
	PlayedAt time.Time `json:"played_at"`
}

// ScoreRepository records finished rounds and answers leaderboard queries.
type ScoreRepository struct {
	db *sql.DB
}

// Scores returns the score repository for this store.
func (s *Store) Scores() *ScoreRepository {
	return &ScoreRepository{db: s.db}
}

// Create inserts a score. An empty ID gets a new UUID, an empty name becomes
// DefaultPlayerName and a zero PlayedAt becomes now.
func (r *ScoreRepository) Create(sc *Score) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		sc.Name = DefaultPlayerName
	}
	if sc.PlayedAt.IsZero() {
		sc.PlayedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO scores (id, name, score, level, caught, missed, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Name, sc.Score, sc.Level, sc.Caught, sc.Missed, sc.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// GetByID retrieves a score by its ID.
func (r *ScoreRepository) GetByID(id string) (*Score, error) {
	sc := &Score{}
	err := r.db.QueryRow(
		`SELECT id, name, score, level, caught, missed, played_at FROM scores WHERE id = ?`,
		id,
	).Scan(&sc.ID, &sc.Name, &sc.Score, &sc.Level, &sc.Caught, &sc.Missed, &sc.PlayedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sc, nil
}

// Top returns the n best scores, highest first. Ties keep the earlier round
// ahead.
func (r *ScoreRepository) Top(n int) ([]*Score, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.db.Query(
		`SELECT id, name, score, level, caught, missed, played_at
		 FROM scores ORDER BY score DESC, played_at ASC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*Score
	for rows.Next() {
		sc := &Score{}
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Score, &sc.Level, &sc.Caught, &sc.Missed, &sc.PlayedAt); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}

// Leaderboard returns the top LeaderboardSize scores.
func (r *ScoreRepository) Leaderboard() ([]*Score, error) {
	return r.Top(LeaderboardSize)
}

// Rank returns the position a new round with this score would take. Existing
// rounds with an equal score stay ahead.
func (r *ScoreRepository) Rank(score int) (int, error) {
	var ahead int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM scores WHERE score >= ?`, score).Scan(&ahead); err != nil {
		return 0, err
	}
	return ahead + 1, nil
}

// Qualifies reports whether score would enter the leaderboard: it is full
// only with LeaderboardSize entries, and a score must then beat the last one.
func (r *ScoreRepository) Qualifies(score int) (bool, error) {
	top, err := r.Leaderboard()
	if err != nil {
		return false, err
	}
	if len(top) < LeaderboardSize {
		return true, nil
	}
	return score > top[len(top)-1].Score, nil
}

// ScoreToBeat returns the score needed to enter a full leaderboard. ok is
// false while the leaderboard still has free places.
func (r *ScoreRepository) ScoreToBeat() (score int, ok bool, err error) {
	top, err := r.Leaderboard()
	if err != nil {
		return 0, false, err
	}
	if len(top) < LeaderboardSize {
		return 0, false, nil
	}
	return top[len(top)-1].Score + 1, true, nil
}

// Count returns the number of recorded rounds.
func (r *ScoreRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM scores`).Scan(&n)
	return n, err
}

// Delete removes a score by its ID.
func (r *ScoreRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM scores WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
