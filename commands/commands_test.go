package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/leoassist/leo/automation"
	"github.com/leoassist/leo/chat"
	"github.com/leoassist/leo/config"
	"github.com/leoassist/leo/host"
	"github.com/leoassist/leo/menu"
	"github.com/leoassist/leo/settings"
	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, command, params string) (string, error) {
	return command + ":" + params, nil
}
func (stubRunner) RunScript(_ context.Context, script string) (string, error) { return script, nil }
func (stubRunner) TypeText(_ context.Context, text string) (string, error)    { return text, nil }
func (stubRunner) ClickButton(context.Context, string) (string, error) {
	return "", errors.New("no button")
}

// withRuntime installs a headless runtime for the duration of the test.
func withRuntime(t *testing.T, completer chat.Completer) *Runtime {
	t.Helper()

	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.ini"))
	controller, err := widget.New(widget.Options{
		Bridge:      host.NewHeadlessBridge(),
		Store:       store,
		ReflowDelay: 1,
	})
	require.NoError(t, err)

	rt := &Runtime{
		Config:     config.Default(),
		Window:     controller,
		Settings:   store,
		Chat:       chat.NewSession(completer, chat.SessionOptions{}),
		Automation: automation.NewDispatcher(stubRunner{}, completer, nil, controller),
	}
	SetRuntime(rt)
	t.Cleanup(func() {
		SetRuntime(nil)
		_ = rt.Close()
	})
	return rt
}

func TestCommands_WithoutRuntime(t *testing.T) {
	SetRuntime(nil)
	for _, resp := range []*CommandResponse{
		WindowStateCommand(),
		WindowIntentCommand(context.Background(), WindowIntentRequest{Intent: IntentExpand}),
		ChatHistoryCommand(),
		AutomationRunCommand(context.Background(), "cursor"),
	} {
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, ErrNoRuntime.Error(), resp.Error)
	}
}

func TestWindowIntentCommand_ExpandCollapse(t *testing.T) {
	withRuntime(t, nil)
	ctx := context.Background()

	resp := WindowIntentCommand(ctx, WindowIntentRequest{Intent: IntentExpand})
	require.Equal(t, "ok", resp.Status, resp.Error)
	state := resp.Data.(widget.State)
	assert.Equal(t, widget.Expanded, state.Preset)
	assert.Equal(t, types.Position{X: -85, Y: -35}, state.Position)

	resp = WindowIntentCommand(ctx, WindowIntentRequest{Intent: IntentCollapse})
	require.Equal(t, "ok", resp.Status, resp.Error)
	state = resp.Data.(widget.State)
	assert.Equal(t, widget.Collapsed, state.Preset)
	assert.Equal(t, widget.DefaultPosition, state.Position)
}

func TestWindowIntentCommand_Validation(t *testing.T) {
	withRuntime(t, nil)
	ctx := context.Background()

	tests := []WindowIntentRequest{
		{},
		{Intent: "fly"},
		{Intent: IntentTransition, Preset: "huge"},
		{Intent: IntentDragBegin},
		{Intent: IntentDragUpdate, Position: &types.Position{X: 1, Y: 1}},
		{Intent: IntentPanelOpen, Panel: "nope"},
		{Intent: IntentChatOpen},
	}
	for _, req := range tests {
		resp := WindowIntentCommand(ctx, req)
		assert.Equal(t, "error", resp.Status, "intent %q should fail", req.Intent)
	}
}

func TestWindowIntentCommand_TransitionWithPosition(t *testing.T) {
	withRuntime(t, nil)
	resp := WindowIntentCommand(context.Background(), WindowIntentRequest{
		Intent:   IntentTransition,
		Preset:   "chat",
		Position: &types.Position{X: 400, Y: 300},
	})
	require.Equal(t, "ok", resp.Status, resp.Error)
	state := resp.Data.(widget.State)
	assert.Equal(t, widget.Chat, state.Preset)
	assert.Equal(t, types.Position{X: 400, Y: 300}, state.Position)
}

func TestWindowIntentCommand_DragSequence(t *testing.T) {
	rt := withRuntime(t, nil)
	ctx := context.Background()

	resp := WindowIntentCommand(ctx, WindowIntentRequest{Intent: IntentDragBegin, Position: &types.Position{X: 25, Y: 105}})
	require.Equal(t, "ok", resp.Status, resp.Error)
	resp = WindowIntentCommand(ctx, WindowIntentRequest{Intent: IntentDragUpdate, Position: &types.Position{X: 125, Y: 205}})
	require.Equal(t, "ok", resp.Status, resp.Error)
	resp = WindowIntentCommand(ctx, WindowIntentRequest{Intent: IntentDragEnd})
	require.Equal(t, "ok", resp.Status, resp.Error)

	assert.Equal(t, types.Position{X: 120, Y: 200}, rt.Window.Snapshot().Position)
	saved, ok, err := rt.Settings.LoadPosition()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, types.Position{X: 120, Y: 200}, saved)
}

func TestMenuActivateCommand(t *testing.T) {
	rt := withRuntime(t, nil)
	ctx := context.Background()

	resp := MenuActivateCommand(ctx, "vision")
	require.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Data.(MenuActivateResponse).State)

	require.NoError(t, rt.Window.Expand(ctx))
	resp = MenuActivateCommand(ctx, "settings")
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, widget.PanelSettings, resp.Data.(MenuActivateResponse).State.Panel)

	rt.Window.ClosePanel()
	resp = MenuActivateCommand(ctx, "ai-chat")
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, widget.Chat, resp.Data.(MenuActivateResponse).State.Preset)

	resp = MenuActivateCommand(ctx, "bogus")
	assert.Equal(t, "error", resp.Status)
}

func TestMenuSearchCommand(t *testing.T) {
	resp := MenuSearchCommand("voice dict")
	require.Equal(t, "ok", resp.Status)
	items := resp.Data.([]menu.Item)
	require.Len(t, items, 1)
	assert.Equal(t, "voice", items[0].ID)
}

func TestChatCommands(t *testing.T) {
	withRuntime(t, chat.CompleterFunc(func(context.Context, []chat.Message, string) (string, error) {
		return "", errors.New("offline")
	}))
	ctx := context.Background()

	resp := ChatSendCommand(ctx, "   ")
	assert.Equal(t, "error", resp.Status)

	resp = ChatSendCommand(ctx, "hello")
	require.Equal(t, "ok", resp.Status)
	sent := resp.Data.(ChatSendResponse)
	assert.True(t, sent.Failed)
	assert.False(t, sent.Typing)
	assert.Equal(t, chat.FallbackMessage, sent.Reply.Content)

	history := ChatHistoryCommand().Data.([]chat.Message)
	assert.Len(t, history, 3)

	cleared := ChatClearCommand().Data.([]chat.Message)
	assert.Len(t, cleared, 1)
}

func TestAutomationCommands(t *testing.T) {
	rt := withRuntime(t, nil)
	ctx := context.Background()

	resp := AutomationRunCommand(ctx, "cursor")
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, "open_app:Cursor", resp.Data.(automation.Result).Output)
	assert.False(t, rt.Window.Snapshot().Visible, "cursor action hides the widget")

	resp = AutomationListCommand("text")
	assert.Len(t, resp.Data.([]automation.Action), 3)

	resp = AutomationTypeTextCommand(ctx, AutomationDirectRequest{Text: "hi"})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]string{"output": "hi"}, resp.Data)

	assert.Equal(t, "error", AutomationTypeTextCommand(ctx, AutomationDirectRequest{}).Status)
	assert.Equal(t, "error", AutomationScriptCommand(ctx, AutomationDirectRequest{}).Status)
	assert.Equal(t, "error", AutomationClickButtonCommand(ctx, AutomationDirectRequest{Button: "OK"}).Status)
}

func TestSettingsCommands(t *testing.T) {
	withRuntime(t, nil)

	resp := SettingsSetCommand(SettingsSetRequest{Key: "theme.appearance", Value: "dark"})
	require.Equal(t, "ok", resp.Status, resp.Error)

	got := SettingsGetCommand().Data.(settings.Settings)
	assert.Equal(t, "dark", got.Theme.Appearance)

	resp = SettingsSetCommand(SettingsSetRequest{Key: "theme.appearance", Value: "neon"})
	assert.Equal(t, "error", resp.Status)
}

func TestAPIKeyCommands(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	status := APIKeyStatusCommand().Data.(APIKeyStatus)
	assert.False(t, status.Configured)

	require.Equal(t, "ok", APIKeySetCommand("k").Status)
	status = APIKeyStatusCommand().Data.(APIKeyStatus)
	assert.True(t, status.Configured)
	assert.Equal(t, "keyring", status.Source)

	status = APIKeyClearCommand().Data.(APIKeyStatus)
	assert.False(t, status.Configured)

	assert.Equal(t, "error", APIKeySetCommand("").Status)
}

func TestDoctorCommand(t *testing.T) {
	keyring.MockInit()
	resp := DoctorCommand("test")
	require.Equal(t, "ok", resp.Status)
	info := resp.Data.(DoctorInfo)
	assert.Equal(t, "test", info.LeoVersion)
	assert.NotEmpty(t, info.ConfigPath)
}
