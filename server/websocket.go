package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leoassist/leo/utils"
)

const wsWriteTimeout = 5 * time.Second

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub tracks open WebSocket connections and fans out notifications.
type Hub struct {
	mu    sync.Mutex
	conns map[*wsConnection]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*wsConnection]struct{})}
}

func (h *Hub) add(c *wsConnection) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *wsConnection) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) snapshot() []*wsConnection {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*wsConnection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

// Broadcast sends a notification to every connected client. Clients that
// fail to receive it are dropped.
func (h *Hub) Broadcast(method string, params interface{}) {
	note := JSONRPCNotification{JSONRPC: "2.0", Method: method, Params: params}
	for _, c := range h.snapshot() {
		if err := c.sendJSON(note); err != nil {
			utils.Verbose("Dropping WebSocket client after failed %s notification: %v", method, err)
			h.remove(c)
			_ = c.conn.Close()
		}
	}
}

// CloseAll sends a close frame to every client and forgets them.
func (h *Hub) CloseAll() {
	for _, c := range h.snapshot() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
		h.remove(c)
	}
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := newUpgrader(s.opts.CORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{conn: conn}
	s.hub.add(wsConn)
	defer s.hub.remove(wsConn)

	// requests outlive the upgrade request's context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var inflight sync.WaitGroup

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}

		if messageType != websocket.TextMessage {
			_ = wsConn.sendError(nil, ErrCodeInvalidRequest, "Invalid Request", "only text messages accepted for requests")
			continue
		}

		s.dispatchWS(ctx, wsConn, message, &inflight)
	}

	cancel()
	inflight.Wait()
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

// dispatchWS handles pointer and drag requests in arrival order and runs
// every other request on its own goroutine tracked by inflight.
func (s *Server) dispatchWS(ctx context.Context, wsConn *wsConnection, message []byte, inflight *sync.WaitGroup) {
	var peek struct {
		Method string `json:"method"`
	}
	if json.Unmarshal(message, &peek) == nil && !ordered[peek.Method] {
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			s.handleWSMessage(ctx, wsConn, message)
		}()
		return
	}
	s.handleWSMessage(ctx, wsConn, message)
}

func (s *Server) handleWSMessage(ctx context.Context, wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		_ = wsConn.sendError(nil, ErrCodeParseError, "Parse error", "expecting jsonrpc payload")
		return
	}

	if req.JSONRPC != "2.0" {
		_ = wsConn.sendError(req.ID, ErrCodeInvalidRequest, "Invalid Request", "'jsonrpc' must be '2.0'")
		return
	}

	if req.ID == nil {
		_ = wsConn.sendError(nil, ErrCodeInvalidRequest, "Invalid Request", "'id' field is required")
		return
	}

	if req.Method == "" {
		_ = wsConn.sendError(req.ID, ErrCodeInvalidRequest, "Invalid Request", "'method' is required")
		return
	}

	utils.Info("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, err := s.Execute(ctx, req.Method, req.Params)
	if err != nil {
		code, message := errorCode(err)
		data := err.Error()
		if errors.Is(err, errMethodNotFound) {
			data = req.Method + " not found"
		}
		metricRequests.WithLabelValues(req.Method, "ws", "error").Inc()
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		_ = wsConn.sendError(req.ID, code, message, data)
		return
	}

	metricRequests.WithLabelValues(req.Method, "ws", "ok").Inc()
	_ = wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	_ = wsc.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return wsc.conn.WriteJSON(v)
}
