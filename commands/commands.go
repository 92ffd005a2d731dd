package commands

import (
	"errors"

	"github.com/leoassist/leo/utils"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

var ErrNoRuntime = errors.New("widget runtime is not running (start it with 'leo server start')")

// widgetRuntime holds the live widget components. It is set once when the
// server starts via SetRuntime; commands that need window or chat state
// fail with ErrNoRuntime without it.
var widgetRuntime *Runtime

// shutdownHook collects cleanup for SIGINT/SIGTERM and server.shutdown.
var shutdownHook = utils.NewShutdownHook()

// SetRuntime sets the global runtime used by window, chat and automation
// commands.
func SetRuntime(rt *Runtime) {
	widgetRuntime = rt
}

// GetRuntime returns the current runtime, or nil before SetRuntime.
func GetRuntime() *Runtime {
	return widgetRuntime
}

// SetShutdownHook replaces the process-wide shutdown hook.
func SetShutdownHook(hook *utils.ShutdownHook) {
	shutdownHook = hook
}

func GetShutdownHook() *utils.ShutdownHook {
	return shutdownHook
}

func requireRuntime() (*Runtime, error) {
	if widgetRuntime == nil {
		return nil, ErrNoRuntime
	}
	return widgetRuntime, nil
}
