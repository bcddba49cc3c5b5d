package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for reel.
type Config struct {
	Player        PlayerConfig       `yaml:"player"`
	Download      DownloadConfig     `yaml:"download"`
	Notifications NotificationConfig `yaml:"notifications"`
	Stream        StreamConfig       `yaml:"stream"`
}

// PlayerConfig controls frame geometry and playback timing.
type PlayerConfig struct {
	FPS           int      `yaml:"fps"`
	RefreshRate   int      `yaml:"refresh_rate"`
	FrameWidth    int      `yaml:"frame_width"`
	FrameHeight   int      `yaml:"frame_height"`
	BaseURL       string   `yaml:"base_url"`
	Images        []string `yaml:"images"`
	PlayLastFrame bool     `yaml:"play_last_frame"`
}

// DownloadConfig controls how sprite sheets are fetched.
type DownloadConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// NotificationConfig controls how the user is notified of player events.
type NotificationConfig struct {
	TerminalBell bool     `yaml:"terminal_bell"`
	BellDebounce Duration `yaml:"bell_debounce"`
	BellOnEvents []string `yaml:"bell_on_events"`
}

// StreamConfig describes the MQTT LED matrix target used by `reel stream`.
type StreamConfig struct {
	Broker      string `yaml:"broker"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	FrameTopic  string `yaml:"frame_topic"`
	EventsTopic string `yaml:"events_topic"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	QoS         int    `yaml:"qos"`
}

// Duration wraps time.Duration for YAML unmarshalling from strings like "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// knownEvents mirrors the player event names. Kept here to avoid an import
// cycle between config and player.
var knownEvents = map[string]bool{
	"play":             true,
	"pause":            true,
	"resume":           true,
	"end":              true,
	"downloadcomplete": true,
}

// DefaultImages is the sprite-sheet sequence played when none is configured.
func DefaultImages() []string {
	images := make([]string, 7)
	for i := range images {
		images[i] = fmt.Sprintf("/images/%d.jpg", i)
	}
	return images
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Player: PlayerConfig{
			FPS:         10,
			RefreshRate: 60,
			FrameWidth:  128,
			FrameHeight: 72,
			BaseURL:     "http://localhost:8000",
			Images:      DefaultImages(),
		},
		Download: DownloadConfig{
			Timeout: Duration{30 * time.Second},
		},
		Notifications: NotificationConfig{
			TerminalBell: true,
			BellDebounce: Duration{5 * time.Second},
			BellOnEvents: []string{"end"},
		},
		Stream: StreamConfig{
			Broker:      "tcp://localhost:1883",
			FrameTopic:  "reel/frames",
			EventsTopic: "reel/events",
			Width:       32,
			Height:      18,
			QoS:         0,
		},
	}
}

// Load reads the config file and merges with defaults.
// Missing file is not an error, defaults are used silently.
func Load() (Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads config from a specific path.
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Defaults(), fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges. It is exported so flag overrides applied
// after loading can be re-checked.
func (c Config) Validate() error {
	p := c.Player
	if p.FPS < 1 || p.FPS > 60 {
		return fmt.Errorf("fps must be between 1 and 60, got %d", p.FPS)
	}
	if p.RefreshRate < p.FPS || p.RefreshRate > 240 {
		return fmt.Errorf("refresh_rate must be between fps (%d) and 240, got %d", p.FPS, p.RefreshRate)
	}
	if p.FrameWidth <= 0 || p.FrameHeight <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", p.FrameWidth, p.FrameHeight)
	}

	to := c.Download.Timeout.Duration
	if to < time.Second || to > 5*time.Minute {
		return fmt.Errorf("download timeout must be between 1s and 5m, got %s", to)
	}

	for _, e := range c.Notifications.BellOnEvents {
		if !knownEvents[e] {
			return fmt.Errorf("bell_on_events: unknown event %q", e)
		}
	}

	s := c.Stream
	if s.QoS < 0 || s.QoS > 2 {
		return fmt.Errorf("stream qos must be 0, 1 or 2, got %d", s.QoS)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("stream matrix size must be positive, got %dx%d", s.Width, s.Height)
	}

	return nil
}

// Interval returns the time between frames.
func (p PlayerConfig) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS)
}

// RefreshInterval returns the time between loop ticks.
func (p PlayerConfig) RefreshInterval() time.Duration {
	return time.Second / time.Duration(p.RefreshRate)
}

func configPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reel", "config.yml")
}
