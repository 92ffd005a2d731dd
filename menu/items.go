// Package menu holds the expanded widget's menu and its search ranking.
package menu

import (
	"errors"
	"fmt"
)

// Intent is what activating a menu item asks the widget to do.
type Intent string

const (
	IntentNone           Intent = "none"
	IntentOpenChat       Intent = "open_chat"
	IntentOpenSettings   Intent = "open_settings"
	IntentOpenAutomation Intent = "open_automation"
)

var ErrUnknownItem = errors.New("unknown menu item")

type Item struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Intent      Intent   `json:"intent"`
	Beta        bool     `json:"beta,omitempty"`
}

var defaultItems = []Item{
	{
		ID:          "ai-chat",
		Label:       "LeoAI",
		Description: "Smart conversational AI",
		Keywords:    []string{"ai", "chat", "assistant", "help", "leo"},
		Intent:      IntentOpenChat,
		Beta:        true,
	},
	{
		ID:          "vision",
		Label:       "Vision",
		Description: "Visual recognition & analysis",
		Keywords:    []string{"vision", "image", "recognition", "visual", "camera"},
		Intent:      IntentNone,
	},
	{
		ID:          "voice",
		Label:       "Voice",
		Description: "Voice commands & dictation",
		Keywords:    []string{"voice", "speech", "audio", "microphone", "dictation"},
		Intent:      IntentNone,
	},
	{
		ID:          "create",
		Label:       "Instant Summarize",
		Description: "AI content generation",
		Keywords:    []string{"create", "generate", "content", "creative"},
		Intent:      IntentNone,
	},
	{
		ID:          "automate",
		Label:       "Automate",
		Description: "Smart task automation",
		Keywords:    []string{"automate", "automation", "task", "bot"},
		Intent:      IntentOpenAutomation,
	},
	{
		ID:          "settings",
		Label:       "Settings",
		Description: "Customize AI behavior",
		Keywords:    []string{"settings", "config", "preferences", "customize"},
		Intent:      IntentOpenSettings,
	},
}

// Items returns a copy of the menu in display order.
func Items() []Item {
	out := make([]Item, len(defaultItems))
	copy(out, defaultItems)
	return out
}

// Activate resolves the intent of the item with the given id.
func Activate(id string) (Item, error) {
	for _, item := range defaultItems {
		if item.ID == id {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
}
