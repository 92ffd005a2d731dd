package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leoassist/leo/apps"
	"github.com/leoassist/leo/commands"
	"github.com/leoassist/leo/settings"
	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
	"github.com/leoassist/leo/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second

	// longCallTimeout covers model round trips and interactive captures
	longCallTimeout = 2 * time.Minute
)

var okResponse = map[string]interface{}{"status": "ok"}

var metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "leo_rpc_requests_total",
	Help: "JSON-RPC requests by method, transport and result.",
}, []string{"method", "transport", "result"})

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// JSONRPCNotification is pushed to WebSocket clients without an id.
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Options configures the daemon's HTTP surface and background watchers.
type Options struct {
	Addr string
	CORS bool
	// AppPollInterval enables the active application watcher when positive.
	AppPollInterval time.Duration
	// WidgetTitle is ignored by the active application watcher.
	WidgetTitle string
	// WatchSettings reloads and broadcasts external settings edits.
	WatchSettings bool
}

type Server struct {
	opts     Options
	hub      *Hub
	methods  map[string]HandlerFunc
	shutdown chan struct{}
	once     sync.Once
}

func New(opts Options) *Server {
	s := &Server{
		opts:     opts,
		hub:      NewHub(),
		shutdown: make(chan struct{}),
	}
	s.methods = s.methodRegistry()
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// requestShutdown is idempotent.
func (s *Server) requestShutdown() {
	s.once.Do(func() { close(s.shutdown) })
}

// ShutdownRequested is closed once a client asks the server to stop.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdown
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP routes: /rpc, /ws and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", s.handleJSONRPC)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())

	if s.opts.CORS {
		return corsMiddleware(mux)
	}
	return mux
}

// NormalizeAddr turns a bare port into ":port".
func NormalizeAddr(addr string) (string, error) {
	// if host is missing, default to all interfaces
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

// StartServer runs a server with opts until ctx is done or a client
// calls server.shutdown.
func StartServer(ctx context.Context, opts Options) error {
	return New(opts).Serve(ctx)
}

func (s *Server) Serve(ctx context.Context) error {
	addr, err := NormalizeAddr(s.opts.Addr)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	rt := commands.GetRuntime()
	if rt != nil {
		g.Go(func() error {
			return s.relayWindowState(gctx, rt.Window)
		})

		if s.opts.AppPollInterval > 0 {
			watcher := apps.NewWatcher(s.opts.AppPollInterval, s.opts.WidgetTitle)
			g.Go(func() error {
				return watcher.Run(gctx, func(app types.AppInfo) {
					s.hub.Broadcast("apps.active", app)
				})
			})
		}
		if s.opts.WatchSettings {
			g.Go(func() error {
				err := rt.Settings.Watch(gctx, func(updated settings.Settings) {
					s.hub.Broadcast("settings.changed", updated)
				})
				if err != nil {
					// external edits are only picked up on the next load
					utils.Warn("Settings watcher stopped: %v", err)
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		utils.Info("Starting server on http://%s...", httpServer.Addr)
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.shutdown:
			utils.Info("Shutdown requested by client")
		}
		// stop the watchers as well
		cancel()

		s.hub.CloseAll()
		shutdownCtx, done := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer done()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// relayWindowState broadcasts controller snapshots until ctx is done.
// Subscribers must not block, so only the newest pending snapshot is kept
// and sent from this goroutine.
func (s *Server) relayWindowState(ctx context.Context, w *widget.Controller) error {
	var (
		mu     sync.Mutex
		latest *widget.State
	)
	signal := make(chan struct{}, 1)

	unsubscribe := w.Subscribe(func(state widget.State) {
		mu.Lock()
		latest = &state
		mu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-signal:
			mu.Lock()
			state := latest
			latest = nil
			mu.Unlock()
			if state != nil {
				s.hub.Broadcast("window.state", *state)
			}
		}
	}
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, "Parse error", "expecting jsonrpc payload")
		return
	}

	if req.JSONRPC != "2.0" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, "Invalid Request", "'jsonrpc' must be '2.0'")
		return
	}

	if req.ID == nil {
		sendJSONRPCError(w, nil, ErrCodeInvalidRequest, "Invalid Request", "'id' field is required")
		return
	}

	if req.Method == "" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, "Invalid Request", "'method' is required")
		return
	}

	utils.Info("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	if longRunning[req.Method] {
		_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(longCallTimeout))
	}

	result, err := s.Execute(r.Context(), req.Method, req.Params)
	if err != nil {
		code, message := errorCode(err)
		metricRequests.WithLabelValues(req.Method, "http", "error").Inc()
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		sendJSONRPCError(w, req.ID, code, message, err.Error())
		return
	}

	metricRequests.WithLabelValues(req.Method, "http", "ok").Inc()
	sendJSONRPCResponse(w, req.ID, result)
}

// errorCode maps handler errors onto JSON-RPC error codes.
func errorCode(err error) (int, string) {
	var pe *paramsError
	switch {
	case errors.Is(err, errMethodNotFound):
		return ErrCodeMethodNotFound, "Method not found"
	case errors.As(err, &pe):
		return ErrCodeInvalidParams, "Invalid params"
	default:
		return ErrCodeServerError, "Server error"
	}
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
