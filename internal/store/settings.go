package store

import (
	"database/sql"
	"errors"
)

// KeyLastPlayer stores the name entered for the most recent round.
const KeyLastPlayer = "last_player_name"

// SettingsRepository is a key-value table of player settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// LastPlayerName returns the remembered player name, or DefaultPlayerName.
func (r *SettingsRepository) LastPlayerName() string {
	name, err := r.Get(KeyLastPlayer)
	if err != nil || name == "" {
		return DefaultPlayerName
	}
	return name
}
