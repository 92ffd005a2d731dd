// Package automation runs the quick actions offered in the widget's
// automation panel.
package automation

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownAction = errors.New("unknown automation action")

// Commands understood by a Runner or handled by the dispatcher itself.
const (
	CommandOpenApp          = "open_app"
	CommandScreenshot       = "screenshot"
	CommandClipboardManager = "clipboard_manager"
	CommandDictation        = "dictation"
	CommandTranslate        = "translate"
	CommandSummarize        = "summarize"
)

type Action struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Shortcut    string   `json:"shortcut,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Command     string   `json:"command"`
	Params      string   `json:"params,omitempty"`
	// HideWidget hides the widget once the action succeeds.
	HideWidget bool `json:"hide_widget,omitempty"`
}

var catalog = []Action{
	{
		ID:          "cursor",
		Title:       "Open Cursor",
		Description: "Launch Cursor code editor",
		Shortcut:    "⌘ + Space",
		Keywords:    []string{"cursor", "code", "editor", "ide"},
		Command:     CommandOpenApp,
		Params:      "Cursor",
		HideWidget:  true,
	},
	{
		ID:          "screenshot",
		Title:       "Take Screenshot",
		Description: "Capture screen area",
		Shortcut:    "⌘ + Shift + 4",
		Keywords:    []string{"screenshot", "capture", "screen", "image"},
		Command:     CommandScreenshot,
		Params:      "selection",
	},
	{
		ID:          "clipboard",
		Title:       "Smart Clipboard",
		Description: "AI-powered clipboard manager",
		Shortcut:    "⌘ + Shift + V",
		Keywords:    []string{"clipboard", "copy", "paste", "manager"},
		Command:     CommandClipboardManager,
		Params:      "toggle",
	},
	{
		ID:          "dictation",
		Title:       "Voice Dictation",
		Description: "Convert speech to text",
		Shortcut:    "Fn Fn",
		Keywords:    []string{"voice", "dictation", "speech", "text"},
		Command:     CommandDictation,
		Params:      "start",
	},
	{
		ID:          "translate",
		Title:       "Quick Translate",
		Description: "Translate selected text",
		Shortcut:    "⌘ + T",
		Keywords:    []string{"translate", "language", "text"},
		Command:     CommandTranslate,
		Params:      "selection",
	},
	{
		ID:          "summarize",
		Title:       "AI Summarize",
		Description: "Summarize selected text",
		Shortcut:    "⌘ + S",
		Keywords:    []string{"summarize", "ai", "text"},
		Command:     CommandSummarize,
		Params:      "selection",
	},
}

// Actions returns the catalog in display order.
func Actions() []Action {
	out := make([]Action, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id string) (Action, error) {
	for _, a := range catalog {
		if a.ID == id {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %s", ErrUnknownAction, id)
}

// FilterActions keeps actions whose title, description or any keyword
// contains the query, case-insensitively. Unlike menu search the query
// is not split into words.
func FilterActions(query string) []Action {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Action, 0, len(catalog))
	for _, a := range catalog {
		if q == "" || actionMatches(a, q) {
			out = append(out, a)
		}
	}
	return out
}

func actionMatches(a Action, q string) bool {
	if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	for _, k := range a.Keywords {
		if strings.Contains(strings.ToLower(k), q) {
			return true
		}
	}
	return false
}
