package commands

import (
	"context"
	"fmt"

	"github.com/leoassist/leo/automation"
	"github.com/leoassist/leo/chat"
	"github.com/leoassist/leo/config"
	"github.com/leoassist/leo/host"
	"github.com/leoassist/leo/settings"
	"github.com/leoassist/leo/utils"
	"github.com/leoassist/leo/widget"
)

// Runtime is the set of long-lived components behind the daemon.
type Runtime struct {
	Config     *config.Config
	Window     *widget.Controller
	Settings   *settings.Store
	Chat       *chat.Session
	Automation *automation.Dispatcher
}

// NewRuntime builds every component from cfg. A missing API key is not
// fatal: chat replies fall back to the error message until one is set.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	settingsPath := cfg.SettingsFile
	if settingsPath == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		settingsPath = p
	}
	store := settings.NewStore(settingsPath)

	bridge, err := host.New(cfg.Window.Bridge, cfg.Window.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create window bridge: %w", err)
	}
	utils.Verbose("Using %T for window control", bridge)

	controller, err := widget.New(widget.Options{
		Bridge:         bridge,
		Store:          store,
		Scheduler:      widget.NewTimerScheduler(cfg.Window.FrameInterval.Duration),
		ClickThreshold: cfg.Window.ClickThreshold.Duration,
		ReflowDelay:    cfg.Window.ReflowDelay.Duration,
	})
	if err != nil {
		return nil, err
	}

	var completer chat.Completer
	apiKey, source, err := settings.APIKey()
	if err != nil {
		utils.Warn("Chat is disabled: %v", err)
	} else {
		client, err := chat.NewGeminiClient(ctx, apiKey, cfg.Chat.Model, cfg.Chat.Timeout.Duration)
		if err != nil {
			utils.Warn("Chat is disabled: %v", err)
		} else {
			utils.Verbose("Chat using %s with API key from %s", client.Model(), source)
			completer = client
		}
	}

	session := chat.NewSession(completer, chat.SessionOptions{
		RequestsPerMinute: cfg.Chat.RequestsPerMinute,
		Burst:             cfg.Chat.Burst,
	})

	dispatcher := automation.NewDispatcher(automation.NewOSRunner(), completer, automation.SystemClipboard(), controller)

	return &Runtime{
		Config:     cfg,
		Window:     controller,
		Settings:   store,
		Chat:       session,
		Automation: dispatcher,
	}, nil
}

// Close stops the window controller.
func (rt *Runtime) Close() error {
	return rt.Window.Close()
}
