// Package config loads daemon options from a TOML file. User-facing
// preferences live in the settings store instead.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultListenAddress = "localhost:12050"

type ServerConfig struct {
	Listen string `toml:"listen"`
	CORS   bool   `toml:"cors"`
}

type WindowConfig struct {
	// Bridge selects the host integration: auto, exec or none.
	Bridge         string   `toml:"bridge"`
	Title          string   `toml:"title"`
	FrameInterval  Duration `toml:"frame_interval"`
	ClickThreshold Duration `toml:"click_threshold"`
	ReflowDelay    Duration `toml:"reflow_delay"`
}

type ChatConfig struct {
	Model             string   `toml:"model"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	Burst             int      `toml:"burst"`
	Timeout           Duration `toml:"timeout"`
}

type AppsConfig struct {
	PollInterval Duration `toml:"poll_interval"`
}

type Config struct {
	// SettingsFile overrides the settings.ini location.
	SettingsFile string       `toml:"settings_file"`
	LogJSON      bool         `toml:"log_json"`
	Server       ServerConfig `toml:"server"`
	Window       WindowConfig `toml:"window"`
	Chat         ChatConfig   `toml:"chat"`
	Apps         AppsConfig   `toml:"apps"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: DefaultListenAddress,
		},
		Window: WindowConfig{
			Bridge:         "auto",
			Title:          "leo",
			FrameInterval:  Duration{16 * time.Millisecond},
			ClickThreshold: Duration{200 * time.Millisecond},
			ReflowDelay:    Duration{16 * time.Millisecond},
		},
		Chat: ChatConfig{
			Model:             "gemini-2.0-flash",
			RequestsPerMinute: 30,
			Burst:             3,
			Timeout:           Duration{60 * time.Second},
		},
		Apps: AppsConfig{
			PollInterval: Duration{time.Second},
		},
	}
}

// Path is config.toml under $XDG_CONFIG_HOME/leo, or ~/.config/leo.
func Path() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "leo", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "leo", "config.toml")
}

// Load reads the config at Path, returning defaults when it is absent.
func Load() (*Config, error) {
	return LoadFromFile(Path())
}

func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes TOML over the defaults and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Window.Bridge {
	case "auto", "exec", "none":
	default:
		return fmt.Errorf("window.bridge must be auto, exec or none, got %q", c.Window.Bridge)
	}
	if c.Window.FrameInterval.Duration <= 0 {
		return fmt.Errorf("window.frame_interval must be positive")
	}
	if c.Chat.RequestsPerMinute < 0 {
		return fmt.Errorf("chat.requests_per_minute cannot be negative")
	}
	if c.Apps.PollInterval.Duration <= 0 {
		return fmt.Errorf("apps.poll_interval must be positive")
	}
	return nil
}
