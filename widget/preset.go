package widget

import (
	"fmt"
	"strings"

	"github.com/leoassist/leo/types"
)

// Preset is one of the fixed window configurations the widget can occupy.
type Preset int

const (
	Collapsed Preset = iota
	Expanded
	Chat
	Theater
)

// sizes in logical pixels; the host scales them for high DPI displays
var presetSizes = map[Preset]types.Size{
	Collapsed: {Width: 70, Height: 70},
	Expanded:  {Width: 280, Height: 340},
	Chat:      {Width: 320, Height: 480},
	Theater:   {Width: 480, Height: 640},
}

var presetNames = map[Preset]string{
	Collapsed: "collapsed",
	Expanded:  "expanded",
	Chat:      "chat",
	Theater:   "theater",
}

// Presets lists every preset in declaration order.
func Presets() []Preset {
	return []Preset{Collapsed, Expanded, Chat, Theater}
}

// Valid reports whether p is one of the declared presets.
func (p Preset) Valid() bool {
	_, ok := presetSizes[p]
	return ok
}

// Size returns the window size for the preset.
func (p Preset) Size() types.Size {
	return presetSizes[p]
}

func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("preset(%d)", int(p))
}

// MarshalText encodes the preset by name. Unknown presets are an error.
func (p Preset) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPreset, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts any name ParsePreset accepts.
func (p *Preset) UnmarshalText(text []byte) error {
	parsed, err := ParsePreset(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePreset maps a case-insensitive preset name to its value.
func ParsePreset(name string) (Preset, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for p, n := range presetNames {
		if n == needle {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Panel is the sub-view shown inside the expanded menu.
type Panel string

const (
	PanelNone       Panel = ""
	PanelSettings   Panel = "settings"
	PanelAutomation Panel = "automation"
	PanelChat       Panel = "chat"
)

// ParsePanel maps a case-insensitive panel name to its value. The empty
// name means no panel.
func ParsePanel(name string) (Panel, error) {
	switch p := Panel(strings.ToLower(strings.TrimSpace(name))); p {
	case PanelNone, PanelSettings, PanelAutomation, PanelChat:
		return p, nil
	default:
		return PanelNone, fmt.Errorf("unknown panel: %q", name)
	}
}
