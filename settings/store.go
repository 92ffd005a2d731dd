package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
	"gopkg.in/ini.v1"
)

const windowSection = "window"

// Store keeps settings and the widget position in a single INI file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is settings.ini under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "leo", "settings.ini"), nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*ini.File, error) {
	f, err := ini.Load(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ini.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return f, nil
}

func (s *Store) write(f *ini.File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := f.SaveTo(tmp); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Load returns the stored settings overlaid on the defaults. Unreadable
// or invalid files fall back to the defaults.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Defaults()
	f, err := s.open()
	if err != nil {
		utils.Warn("Using default settings: %v", err)
		return out
	}
	if err := out.mapFrom(f); err != nil {
		utils.Warn("Using default settings: %v", err)
		return Defaults()
	}
	if err := out.Validate(); err != nil {
		utils.Warn("Using default settings: %v", err)
		return Defaults()
	}
	return out
}

// Save validates and writes settings, keeping other sections intact.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		utils.Warn("Rewriting unreadable settings file: %v", err)
		f = ini.Empty()
	}
	if err := settings.reflectInto(f); err != nil {
		return err
	}
	return s.write(f)
}

// Set updates one dotted key and persists the result.
func (s *Store) Set(key, value string) (Settings, error) {
	updated, err := s.Load().With(key, value)
	if err != nil {
		return Settings{}, err
	}
	if err := s.Save(updated); err != nil {
		return Settings{}, err
	}
	return updated, nil
}

func (s *Store) LoadPosition() (types.Position, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return types.Position{}, false, err
	}
	if !f.HasSection(windowSection) {
		return types.Position{}, false, nil
	}

	section := f.Section(windowSection)
	if !section.HasKey("x") || !section.HasKey("y") {
		return types.Position{}, false, nil
	}
	x, err := section.Key("x").Int()
	if err != nil {
		return types.Position{}, false, fmt.Errorf("invalid window.x: %w", err)
	}
	y, err := section.Key("y").Int()
	if err != nil {
		return types.Position{}, false, fmt.Errorf("invalid window.y: %w", err)
	}
	return types.Position{X: x, Y: y}, true, nil
}

func (s *Store) SavePosition(pos types.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		f = ini.Empty()
	}
	section := f.Section(windowSection)
	section.Key("x").SetValue(fmt.Sprint(pos.X))
	section.Key("y").SetValue(fmt.Sprint(pos.Y))
	return s.write(f)
}
