// Package prefs stores per-user window preferences (fullscreen, sound and
// camera mirroring) in the platform's application data directory.
package prefs

import (
	"fmt"
	"log"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// AppName is the gdata application directory name.
const AppName = "cakecatcher"

const (
	prefsObject   = "prefs"
	prefsProperty = "window"
)

// Prefs are the user-facing toggles of the window UI.
type Prefs struct {
	Fullscreen   bool    `yaml:"fullscreen"`
	SoundEnabled bool    `yaml:"sound_enabled"`
	Volume       float64 `yaml:"volume"`
	// Mirror flips the camera so the plate follows the hand like a mirror.
	Mirror bool `yaml:"mirror"`
}

// Default returns the preferences used on first launch.
func Default() Prefs {
	return Prefs{
		SoundEnabled: true,
		Volume:       0.8,
		Mirror:       true,
	}
}

// Manager loads and saves Prefs. A Manager without a backing gdata store keeps
// preferences in memory only.
type Manager struct {
	mu    sync.Mutex
	data  *gdata.Manager
	prefs Prefs
}

// Open creates a Manager backed by the user's data directory. If the data
// directory cannot be opened the Manager still works, in memory only.
func Open() *Manager {
	data, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[prefs] data directory unavailable, preferences will not persist: %v", err)
		data = nil
	}
	return NewManager(data)
}

// NewManager creates a Manager on top of data, which may be nil, and loads
// any saved preferences. Load failures fall back to defaults.
func NewManager(data *gdata.Manager) *Manager {
	m := &Manager{data: data, prefs: Default()}
	if err := m.Load(); err != nil {
		log.Printf("[prefs] failed to load preferences, using defaults: %v", err)
	}
	return m
}

// Persistent reports whether preferences survive a restart.
func (m *Manager) Persistent() bool {
	return m.data != nil
}

// Load reads saved preferences. Without a store or a saved object the
// defaults are used.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil || !m.data.ObjectPropExists(prefsObject, prefsProperty) {
		m.prefs = Default()
		return nil
	}

	raw, err := m.data.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		m.prefs = Default()
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		m.prefs = Default()
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	p.Volume = clampVolume(p.Volume)
	m.prefs = p
	return nil
}

// Save writes the current preferences. It is a no-op without a store.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}

	raw, err := yaml.Marshal(m.prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := m.data.SaveObjectProp(prefsObject, prefsProperty, raw); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Get returns a copy of the current preferences.
func (m *Manager) Get() Prefs {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

// SetFullscreen changes the fullscreen flag in memory.
func (m *Manager) SetFullscreen(on bool) {
	m.mu.Lock()
	m.prefs.Fullscreen = on
	m.mu.Unlock()
}

// SetSoundEnabled changes the sound flag in memory.
func (m *Manager) SetSoundEnabled(on bool) {
	m.mu.Lock()
	m.prefs.SoundEnabled = on
	m.mu.Unlock()
}

// SetVolume changes the volume in memory, clamped to [0, 1].
func (m *Manager) SetVolume(v float64) {
	m.mu.Lock()
	m.prefs.Volume = clampVolume(v)
	m.mu.Unlock()
}

// SetMirror changes the mirror flag in memory.
func (m *Manager) SetMirror(on bool) {
	m.mu.Lock()
	m.prefs.Mirror = on
	m.mu.Unlock()
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
