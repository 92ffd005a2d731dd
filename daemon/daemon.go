package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/leoassist/leo/server"
	"github.com/sevlyar/go-daemon"
)

const (
	// DaemonEnvVar is the environment variable that marks a daemon child process
	DaemonEnvVar = "LEO_DAEMON_CHILD"

	// DefaultCallTimeout bounds a single JSON-RPC round trip.
	DefaultCallTimeout = 2 * time.Minute
)

var ErrNotRunning = errors.New("server is not running")

// RPCError is a JSON-RPC error object returned by the server.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Data)
	}
	return e.Message
}

// Daemonize detaches the process and returns the child process handle
// If the returned process is nil, this is the child process
// If the returned process is non-nil, this is the parent process
func Daemonize() (*os.Process, error) {
	// no PID file needed
	// we don't want log file, server handles its own logging
	ctx := &daemon.Context{
		PidFileName: "",
		PidFilePerm: 0,
		LogFileName: "",
		LogFilePerm: 0,
		WorkDir:     "/",
		Umask:       027,
		Args:        os.Args,
		Env:         append(os.Environ(), fmt.Sprintf("%s=1", DaemonEnvVar)),
	}

	child, err := ctx.Reborn()
	if err != nil {
		return nil, fmt.Errorf("failed to daemonize: %w", err)
	}

	return child, nil
}

// IsChild returns true if this is the daemon child process
func IsChild() bool {
	return os.Getenv(DaemonEnvVar) == "1"
}

// BaseURL turns a listen address into the URL a local client dials.
func BaseURL(addr string) string {
	// if no colon, assume it's a bare port number
	if !strings.Contains(addr, ":") {
		if _, err := strconv.Atoi(addr); err == nil {
			addr = ":" + addr
		}
	}

	// if address starts with colon, prepend localhost
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	return "http://" + addr
}

// Client calls a running server over HTTP JSON-RPC.
type Client struct {
	baseURL string
	http    *http.Client
	nextID  int
}

func NewClient(addr string) *Client {
	return &Client{
		baseURL: BaseURL(addr),
		http:    &http.Client{Timeout: DefaultCallTimeout},
	}
}

// Call invokes method with params and decodes the result into result
// when it is non-nil.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	c.nextID++
	reqBody := struct {
		JSONRPC string      `json:"jsonrpc"`
		Method  string      `json:"method"`
		Params  interface{} `json:"params,omitempty"`
		ID      int         `json:"id"`
	}{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(err.Error(), "connection refused") {
			return fmt.Errorf("%w on %s", ErrNotRunning, c.baseURL)
		}
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	// check response
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned error: %s", resp.Status)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

// Call is a one-shot helper around Client.Call.
func Call(ctx context.Context, addr, method string, params interface{}, result interface{}) error {
	return NewClient(addr).Call(ctx, method, params, result)
}

// KillServer connects to the server and sends a shutdown command via JSON-RPC
func KillServer(addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Call(ctx, addr, "server.shutdown", nil, nil)
}

// IsRunning reports whether a server answers on addr.
func IsRunning(ctx context.Context, addr string) bool {
	var state json.RawMessage
	err := Call(ctx, addr, "window.state", nil, &state)
	var rpcErr *RPCError
	return err == nil || errors.As(err, &rpcErr)
}

// errorCodes are re-exported so callers can branch on them.
const (
	ErrCodeMethodNotFound = server.ErrCodeMethodNotFound
	ErrCodeInvalidParams  = server.ErrCodeInvalidParams
	ErrCodeServerError    = server.ErrCodeServerError
)
