// Package settings holds user preferences for the widget and persists
// them alongside the window position.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

var ErrInvalidSetting = errors.New("invalid setting")

type General struct {
	LaunchAtStartup  bool   `json:"launch_at_startup" ini:"launch_at_startup"`
	RememberPosition bool   `json:"remember_position" ini:"remember_position"`
	UpdateChannel    string `json:"update_channel" ini:"update_channel"`
}

type Theme struct {
	Appearance  string `json:"appearance" ini:"appearance"`
	AccentColor string `json:"accent_color" ini:"accent_color"`
	Animations  bool   `json:"animations" ini:"animations"`
	BlurEffects bool   `json:"blur_effects" ini:"blur_effects"`
}

type AI struct {
	Model           string `json:"model" ini:"model"`
	CodeCompletion  bool   `json:"code_completion" ini:"code_completion"`
	ImageGeneration bool   `json:"image_generation" ini:"image_generation"`
	VoiceCommands   bool   `json:"voice_commands" ini:"voice_commands"`
}

type Privacy struct {
	DataCollection bool   `json:"data_collection" ini:"data_collection"`
	Security       string `json:"security" ini:"security"`
}

type Settings struct {
	General General `json:"general"`
	Theme   Theme   `json:"theme"`
	AI      AI      `json:"ai"`
	Privacy Privacy `json:"privacy"`
}

var (
	UpdateChannels = []string{"stable", "beta"}
	Appearances    = []string{"system", "light", "dark"}
	AccentColors   = []string{"purple", "blue", "green", "orange", "pink"}
	Models         = []string{"gpt4", "claude", "gemini"}
	SecurityModes  = []string{"system", "password", "biometric"}
)

func Defaults() Settings {
	return Settings{
		General: General{
			LaunchAtStartup: true,
			UpdateChannel:   "stable",
		},
		Theme: Theme{
			Appearance:  "system",
			AccentColor: "purple",
			Animations:  true,
			BlurEffects: true,
		},
		AI: AI{
			Model:          "gpt4",
			CodeCompletion: true,
		},
		Privacy: Privacy{
			Security: "system",
		},
	}
}

func oneOf(field, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidSetting, field, strings.Join(allowed, ", "), value)
}

// Validate rejects enum fields holding unknown values.
func (s Settings) Validate() error {
	return errors.Join(
		oneOf("general.update_channel", s.General.UpdateChannel, UpdateChannels),
		oneOf("theme.appearance", s.Theme.Appearance, Appearances),
		oneOf("theme.accent_color", s.Theme.AccentColor, AccentColors),
		oneOf("ai.model", s.AI.Model, Models),
		oneOf("privacy.security", s.Privacy.Security, SecurityModes),
	)
}

const sectionPrefix = "settings."

func (s *Settings) groups() map[string]interface{} {
	return map[string]interface{}{
		"general": &s.General,
		"theme":   &s.Theme,
		"ai":      &s.AI,
		"privacy": &s.Privacy,
	}
}

func (s Settings) reflectInto(f *ini.File) error {
	for name, group := range s.groups() {
		if err := f.Section(sectionPrefix + name).ReflectFrom(group); err != nil {
			return fmt.Errorf("failed to write section %s: %w", name, err)
		}
	}
	return nil
}

// mapFrom overlays the sections present in f onto s. Missing sections
// and keys keep their current values.
func (s *Settings) mapFrom(f *ini.File) error {
	for name, group := range s.groups() {
		section := sectionPrefix + name
		if !f.HasSection(section) {
			continue
		}
		if err := f.Section(section).StrictMapTo(group); err != nil {
			return fmt.Errorf("failed to read section %s: %w", name, err)
		}
	}
	return nil
}

// With returns a copy of s with the dotted key ("theme.appearance") set
// to value. The result is validated.
func (s Settings) With(key, value string) (Settings, error) {
	group, name, ok := strings.Cut(key, ".")
	if !ok {
		return s, fmt.Errorf("%w: key %q must be group.name", ErrInvalidSetting, key)
	}

	f := ini.Empty()
	if err := s.reflectInto(f); err != nil {
		return s, err
	}

	section := sectionPrefix + group
	if !f.HasSection(section) || !f.Section(section).HasKey(name) {
		return s, fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
	}

	k := f.Section(section).Key(name)
	if current := k.String(); current == "true" || current == "false" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidSetting, key, value)
		}
		value = strconv.FormatBool(b)
	}
	k.SetValue(value)

	out := s
	if err := out.mapFrom(f); err != nil {
		return s, err
	}
	if err := out.Validate(); err != nil {
		return s, err
	}
	return out, nil
}
