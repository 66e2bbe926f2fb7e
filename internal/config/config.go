// Package config loads and validates the Cake Catcher game configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config is the complete game configuration. Every section has defaults, so a
// config file only needs the keys it overrides.
type Config struct {
	World    World    `yaml:"world"`
	Round    Round    `yaml:"round"`
	Spawn    Spawn    `yaml:"spawn"`
	Plate    Plate    `yaml:"plate"`
	Scoring  Scoring  `yaml:"scoring"`
	Camera   Camera   `yaml:"camera"`
	Detector Detector `yaml:"detector"`
	Server   Server   `yaml:"server"`
	Store    Store    `yaml:"store"`
}

// World is the logical play field in pixels. Renderers scale it to the window.
type World struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Round holds the round clock. Durations are in seconds.
type Round struct {
	Duration     float64 `yaml:"duration"`
	RampInterval float64 `yaml:"ramp_interval"`
}

// Spawn configures the item spawner.
type Spawn struct {
	GoodWeight    float64 `yaml:"good_weight"`
	BadWeight     float64 `yaml:"bad_weight"`
	SpecialWeight float64 `yaml:"special_weight"`

	// Seconds between spawns at level 0; each level removes IntervalStep,
	// never going below MinInterval.
	BaseInterval float64 `yaml:"base_interval"`
	IntervalStep float64 `yaml:"interval_step"`
	MinInterval  float64 `yaml:"min_interval"`

	// Base fall speed in px/s is drawn from [BaseSpeedMin, BaseSpeedMax] and
	// multiplied by (1 + SpeedK*level).
	BaseSpeedMin float64 `yaml:"base_speed_min"`
	BaseSpeedMax float64 `yaml:"base_speed_max"`
	SpeedK       float64 `yaml:"speed_k"`

	ItemSize    float64 `yaml:"item_size"`
	SpecialSize float64 `yaml:"special_size"`
}

// Plate configures the player's catching plate.
type Plate struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	BottomOffset float64 `yaml:"bottom_offset"`
	Smoothing    float64 `yaml:"smoothing"`
}

// Scoring holds per-category score values and the combo rules.
type Scoring struct {
	Good    int `yaml:"good"`
	Bad     int `yaml:"bad"`
	Special int `yaml:"special"`

	ComboWindow     float64     `yaml:"combo_window"`
	ComboMilestones map[int]int `yaml:"combo_milestones"`
}

// Camera configures webcam capture.
type Camera struct {
	Device          int     `yaml:"device"`
	FPS             int     `yaml:"fps"`
	Mirror          bool    `yaml:"mirror"`
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// Detector configures hand landmark detection.
type Detector struct {
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
}

// Server configures the HTTP/websocket server.
type Server struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Store configures the leaderboard database.
type Store struct {
	Path string `yaml:"path"`
}

// Default returns the configuration the game ships with. Values are tuned for a
// 1920x1080 field at 30 ticks per second.
func Default() *Config {
	return &Config{
		World: World{Width: 1920, Height: 1080},
		Round: Round{Duration: 60, RampInterval: 15},
		Spawn: Spawn{
			GoodWeight:    0.65,
			BadWeight:     0.30,
			SpecialWeight: 0.05,
			BaseInterval:  2.0,
			IntervalStep:  0.3,
			MinInterval:   0.8,
			BaseSpeedMin:  120,
			BaseSpeedMax:  230,
			SpeedK:        0.2,
			ItemSize:      135,
			SpecialSize:   162,
		},
		Plate: Plate{
			Width:        202,
			Height:       54,
			BottomOffset: 100,
			Smoothing:    0.2,
		},
		Scoring: Scoring{
			Good:            10,
			Bad:             -15,
			Special:         50,
			ComboWindow:     4,
			ComboMilestones: map[int]int{5: 10, 10: 30},
		},
		Camera: Camera{
			Device:          0,
			FPS:             30,
			Mirror:          true,
			MotionThreshold: 0.5,
		},
		Detector: Detector{
			MaxHands:              1,
			MinConfidence:         0.7,
			MinTrackingConfidence: 0.5,
		},
		Server: Server{Addr: "127.0.0.1:8080"},
	}
}

// Load reads a YAML config file on top of Default. A missing file is not an
// error: the defaults are returned. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
