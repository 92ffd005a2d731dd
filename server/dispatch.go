package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leoassist/leo/commands"
	"github.com/leoassist/leo/types"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

var errMethodNotFound = errors.New("method not found")

// paramsError marks a request whose params could not be decoded or were
// incomplete.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// longRunning methods get an extended write deadline.
var longRunning = map[string]bool{
	"chat.send":      true,
	"automation.run": true,
}

// ordered methods are handled inline on a WebSocket connection so pointer
// and drag updates reach the controller in arrival order. Everything else
// runs concurrently, which lets the controller drop a transition that
// arrives while another is in flight.
var ordered = map[string]bool{
	"window." + commands.IntentPointerDown: true,
	"window." + commands.IntentDragBegin:   true,
	"window." + commands.IntentDragUpdate:  true,
	"window." + commands.IntentDragEnd:     true,
	"window." + commands.IntentNativeDrag:  true,
}

// methodRegistry maps method names to handlers. It is shared by the
// HTTP and WebSocket transports.
func (s *Server) methodRegistry() map[string]HandlerFunc {
	registry := map[string]HandlerFunc{
		"window.state":            handleWindowState,
		"window.transition":       windowHandler(commands.IntentTransition),
		"window.panel_open":       windowHandler(commands.IntentPanelOpen),
		"window.drag_begin":       windowHandler(commands.IntentDragBegin),
		"window.drag_update":      windowHandler(commands.IntentDragUpdate),
		"window.click":            handleWindowClick,
		"menu.search":             handleMenuSearch,
		"menu.activate":           handleMenuActivate,
		"automation.list":         handleAutomationList,
		"automation.run":          handleAutomationRun,
		"automation.script":       handleAutomationScript,
		"automation.type_text":    handleAutomationTypeText,
		"automation.click_button": handleAutomationClickButton,
		"apps.list":               handleAppsList,
		"apps.active":             handleAppsActive,
		"settings.get":            handleSettingsGet,
		"settings.set":            s.handleSettingsSet,
		"chat.send":               handleChatSend,
		"chat.history":            handleChatHistory,
		"chat.clear":              handleChatClear,
		"server.shutdown":         s.handleShutdown,
	}

	// intents that take no params
	for _, intent := range []string{
		commands.IntentExpand,
		commands.IntentCollapse,
		commands.IntentChatOpen,
		commands.IntentChatClose,
		commands.IntentChatBack,
		commands.IntentTheater,
		commands.IntentPanelClose,
		commands.IntentPointerDown,
		commands.IntentDragEnd,
		commands.IntentNativeDrag,
		commands.IntentShow,
		commands.IntentHide,
	} {
		registry["window."+intent] = windowHandler(intent)
	}

	return registry
}

// Methods lists the registered method names.
func (s *Server) Methods() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	return names
}

// Execute dispatches a method call using the registry
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.methods[method]
	if !exists {
		return nil, fmt.Errorf("%w: %s", errMethodNotFound, method)
	}
	return handler(ctx, params)
}

// decodeParams unmarshals optional params into v.
func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("invalid parameters: %v. Expected fields: %s", err, fields)
	}
	return nil
}

func unwrap(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

type WindowParams struct {
	Preset      string `json:"preset"`
	X           *int   `json:"x"`
	Y           *int   `json:"y"`
	Panel       string `json:"panel"`
	ForceReflow bool   `json:"forceReflow"`
}

func (p WindowParams) position() *types.Position {
	if p.X == nil || p.Y == nil {
		return nil
	}
	return &types.Position{X: *p.X, Y: *p.Y}
}

func handleWindowState(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.WindowStateCommand())
}

func windowHandler(intent string) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p WindowParams
		if err := decodeParams(params, &p, "preset, x, y, panel, forceReflow"); err != nil {
			return nil, err
		}

		req := commands.WindowIntentRequest{
			Intent:      intent,
			Preset:      p.Preset,
			Position:    p.position(),
			Panel:       p.Panel,
			ForceReflow: p.ForceReflow,
		}

		switch intent {
		case commands.IntentTransition:
			if req.Preset == "" {
				return nil, invalidParams("'preset' is required")
			}
		case commands.IntentDragBegin, commands.IntentDragUpdate:
			if req.Position == nil {
				return nil, invalidParams("'x' and 'y' are required")
			}
		case commands.IntentPanelOpen:
			if req.Panel == "" {
				return nil, invalidParams("'panel' is required")
			}
		}

		return unwrap(commands.WindowIntentCommand(ctx, req))
	}
}

func handleWindowClick(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.WindowIntentCommand(ctx, commands.WindowIntentRequest{Intent: commands.IntentClick}))
}

type MenuParams struct {
	Query string `json:"query"`
	ID    string `json:"id"`
}

func handleMenuSearch(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p MenuParams
	if err := decodeParams(params, &p, "query"); err != nil {
		return nil, err
	}
	return unwrap(commands.MenuSearchCommand(p.Query))
}

func handleMenuActivate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p MenuParams
	if err := decodeParams(params, &p, "id"); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, invalidParams("'id' is required")
	}
	return unwrap(commands.MenuActivateCommand(ctx, p.ID))
}

type AutomationParams struct {
	Query  string `json:"query"`
	ID     string `json:"id"`
	Script string `json:"script"`
	Text   string `json:"text"`
	Button string `json:"button"`
}

func handleAutomationList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AutomationParams
	if err := decodeParams(params, &p, "query"); err != nil {
		return nil, err
	}
	return unwrap(commands.AutomationListCommand(p.Query))
}

func handleAutomationRun(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AutomationParams
	if err := decodeParams(params, &p, "id"); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, invalidParams("'id' is required")
	}
	return unwrap(commands.AutomationRunCommand(ctx, p.ID))
}

func handleAutomationScript(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AutomationParams
	if err := decodeParams(params, &p, "script"); err != nil {
		return nil, err
	}
	if p.Script == "" {
		return nil, invalidParams("'script' is required")
	}
	return unwrap(commands.AutomationScriptCommand(ctx, commands.AutomationDirectRequest{Script: p.Script}))
}

func handleAutomationTypeText(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AutomationParams
	if err := decodeParams(params, &p, "text"); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, invalidParams("'text' is required")
	}
	return unwrap(commands.AutomationTypeTextCommand(ctx, commands.AutomationDirectRequest{Text: p.Text}))
}

func handleAutomationClickButton(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p AutomationParams
	if err := decodeParams(params, &p, "button"); err != nil {
		return nil, err
	}
	if p.Button == "" {
		return nil, invalidParams("'button' is required")
	}
	return unwrap(commands.AutomationClickButtonCommand(ctx, commands.AutomationDirectRequest{Button: p.Button}))
}

func handleAppsList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.AppsListCommand(ctx))
}

func handleAppsActive(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.AppsActiveCommand(ctx))
}

func handleSettingsGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.SettingsGetCommand())
}

func (s *Server) handleSettingsSet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, invalidParams("'params' is required with fields: key, value")
	}
	var req commands.SettingsSetRequest
	if err := decodeParams(params, &req, "key, value"); err != nil {
		return nil, err
	}
	if req.Key == "" {
		return nil, invalidParams("'key' is required")
	}

	result, err := unwrap(commands.SettingsSetCommand(req))
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast("settings.changed", result)
	return result, nil
}

type ChatParams struct {
	Text string `json:"text"`
}

func handleChatSend(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ChatParams
	if err := decodeParams(params, &p, "text"); err != nil {
		return nil, err
	}
	return unwrap(commands.ChatSendCommand(ctx, p.Text))
}

func handleChatHistory(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.ChatHistoryCommand())
}

func handleChatClear(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(commands.ChatClearCommand())
}

func (s *Server) handleShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	s.requestShutdown()
	return okResponse, nil
}
