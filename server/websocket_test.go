package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leoassist/leo/host"
	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, enableCORS bool) (*Server, string) {
	t.Helper()
	s, ts := newTestServer(t, Options{CORS: enableCORS})
	return s, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func connectWebSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "should connect to WebSocket")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendJSONRPCRequest(t *testing.T, conn *websocket.Conn, req JSONRPCRequest) {
	t.Helper()
	err := conn.WriteJSON(req)
	require.NoError(t, err, "should send request")
}

// wsMessage covers both responses and notifications.
type wsMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   map[string]any  `json:"error"`
	ID      interface{}     `json:"id"`
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg), "should read message")
	return msg
}

// readResponse skips notifications until a response arrives.
func readResponse(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Method == "" {
			return msg
		}
	}
}

// readNotification skips other traffic until method arrives.
func readNotification(t *testing.T, conn *websocket.Conn, method string) wsMessage {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Method == method {
			return msg
		}
	}
}

func TestWebSocket_ValidRequest(t *testing.T) {
	_, wsURL := setupTestServer(t, false)
	conn := connectWebSocket(t, wsURL)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "menu.search",
		Params:  json.RawMessage(`{"query":"settings"}`),
		ID:      1,
	})
	resp := readResponse(t, conn)

	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, 1, int(resp.ID.(float64)))
	assert.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), `"id":"settings"`)
}

func TestWebSocket_Errors(t *testing.T) {
	_, wsURL := setupTestServer(t, false)
	conn := connectWebSocket(t, wsURL)

	tests := []struct {
		name    string
		payload string
		code    int
	}{
		{"parse error", `not json`, ErrCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"window.state","id":1}`, ErrCodeInvalidRequest},
		{"missing id", `{"jsonrpc":"2.0","method":"window.state"}`, ErrCodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":2}`, ErrCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","method":"io_tap","id":3}`, ErrCodeMethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))
			resp := readResponse(t, conn)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, int(resp.Error["code"].(float64)))
		})
	}

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte(`{}`)))
	resp := readResponse(t, conn)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidRequest, int(resp.Error["code"].(float64)))
}

func TestWebSocket_RejectsCrossOrigin(t *testing.T) {
	_, wsURL := setupTestServer(t, false)

	header := http.Header{}
	header.Set("Origin", "http://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocket_AllowsCrossOriginWithCORS(t *testing.T) {
	_, wsURL := setupTestServer(t, true)

	header := http.Header{}
	header.Set("Origin", "http://localhost:3000")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestWebSocket_WindowStateNotifications(t *testing.T) {
	rt := installRuntime(t, nil)
	s, wsURL := setupTestServer(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = s.relayWindowState(ctx, rt.Window) }()

	conn := connectWebSocket(t, wsURL)
	require.Eventually(t, func() bool { return s.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "window.expand", ID: 7})

	// snapshots are coalesced, so wait for the settled state
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		note := readNotification(t, conn, "window.state")
		var state struct {
			Preset        string `json:"preset"`
			Transitioning bool   `json:"transitioning"`
		}
		require.NoError(t, json.Unmarshal(note.Params, &state))
		if state.Preset == "expanded" && !state.Transitioning {
			return
		}
	}
	t.Fatal("never saw the expanded state")
}

func TestWebSocket_SettingsChangedNotification(t *testing.T) {
	installRuntime(t, nil)
	s, wsURL := setupTestServer(t, false)
	conn := connectWebSocket(t, wsURL)
	require.Eventually(t, func() bool { return s.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "settings.set",
		Params:  json.RawMessage(`{"key":"general.update_channel","value":"beta"}`),
		ID:      1,
	})

	note := readNotification(t, conn, "settings.changed")
	assert.Contains(t, string(note.Params), `"update_channel":"beta"`)
}

func TestHub_CloseAll(t *testing.T) {
	s, wsURL := setupTestServer(t, false)
	conn := connectWebSocket(t, wsURL)
	require.Eventually(t, func() bool { return s.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)

	s.Hub().CloseAll()
	assert.Equal(t, 0, s.Hub().Len())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

// gatedBridge holds SetSize until release is closed.
type gatedBridge struct {
	*host.HeadlessBridge
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBridge) SetSize(ctx context.Context, size types.Size) error {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.HeadlessBridge.SetSize(ctx, size)
}

func TestWebSocket_DropsTransitionWhileInFlight(t *testing.T) {
	bridge := &gatedBridge{
		HeadlessBridge: host.NewHeadlessBridge(),
		entered:        make(chan struct{}, 2),
		release:        make(chan struct{}),
	}
	rt := installRuntimeWithBridge(t, nil, bridge)
	_, wsURL := setupTestServer(t, false)
	conn := connectWebSocket(t, wsURL)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "window.expand", ID: 1})
	select {
	case <-bridge.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("expand never reached the host")
	}

	// the reader is not blocked by the in-flight expand
	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "window.collapse", ID: 2})
	dropped := readResponse(t, conn)
	assert.Equal(t, 2, int(dropped.ID.(float64)))
	require.NotNil(t, dropped.Error)
	assert.Contains(t, dropped.Error["data"], "transition already in progress")

	close(bridge.release)
	applied := readResponse(t, conn)
	assert.Equal(t, 1, int(applied.ID.(float64)))
	assert.Nil(t, applied.Error)

	assert.Equal(t, widget.Expanded, rt.Window.Snapshot().Preset)
	assert.Len(t, bridge.entered, 0, "the dropped collapse never touched the host")
}

func TestWebSocket_DragUpdatesStayOrdered(t *testing.T) {
	rt := installRuntime(t, nil)
	_, wsURL := setupTestServer(t, false)
	conn := connectWebSocket(t, wsURL)

	sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "window.drag_begin", Params: json.RawMessage(`{"x":20,"y":100}`), ID: 1})
	for i := 1; i <= 20; i++ {
		params := json.RawMessage(fmt.Sprintf(`{"x":%d,"y":%d}`, 20+i, 100+i))
		sendJSONRPCRequest(t, conn, JSONRPCRequest{JSONRPC: "2.0", Method: "window.drag_update", Params: params, ID: 1 + i})
	}

	for want := 1; want <= 21; want++ {
		resp := readResponse(t, conn)
		assert.Equal(t, want, int(resp.ID.(float64)))
		assert.Nil(t, resp.Error)
	}
	assert.Equal(t, types.Position{X: 40, Y: 120}, rt.Window.Snapshot().Position)
}
