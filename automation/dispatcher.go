package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/leoassist/leo/chat"
	"github.com/leoassist/leo/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "leo_automation_runs_total",
	Help: "Automation actions run, by action and result.",
}, []string{"action", "result"})

var ErrEmptySelection = errors.New("clipboard has no text to work on")

const (
	translatePrompt = "Translate the following text to English. Reply with the translation only.\n\n"
	summarizePrompt = "Summarize the following text in a few sentences.\n\n"
)

// Result is the outcome of one action run. Err is the error text, empty
// on success.
type Result struct {
	ActionID string `json:"action_id"`
	Output   string `json:"output,omitempty"`
	Err      string `json:"error,omitempty"`
}

// WindowHider hides the widget after actions that hand focus to
// another application.
type WindowHider interface {
	SetVisible(ctx context.Context, visible bool) error
}

type Dispatcher struct {
	runner    Runner
	completer chat.Completer
	clipboard Clipboard
	window    WindowHider
	busy      atomic.Int32
}

// NewDispatcher wires the action runner. completer and window may be nil;
// AI actions then fail and nothing is hidden.
func NewDispatcher(runner Runner, completer chat.Completer, clip Clipboard, window WindowHider) *Dispatcher {
	if clip == nil {
		clip = systemClipboard{}
	}
	return &Dispatcher{runner: runner, completer: completer, clipboard: clip, window: window}
}

// Busy reports whether any action is running.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load() > 0
}

func (d *Dispatcher) Runner() Runner {
	return d.runner
}

// Run executes the action with the given id. Failures are logged and
// returned both in the Result and as the error.
func (d *Dispatcher) Run(ctx context.Context, id string) (Result, error) {
	action, err := Lookup(id)
	if err != nil {
		return Result{ActionID: id, Err: err.Error()}, err
	}

	d.busy.Add(1)
	defer d.busy.Add(-1)

	output, err := d.execute(ctx, action)
	if err != nil {
		metricRuns.WithLabelValues(action.ID, "error").Inc()
		utils.Error("Automation action %s failed: %v", action.ID, err)
		return Result{ActionID: action.ID, Err: err.Error()}, err
	}
	metricRuns.WithLabelValues(action.ID, "ok").Inc()

	if action.HideWidget && d.window != nil {
		if err := d.window.SetVisible(ctx, false); err != nil {
			utils.Warn("Failed to hide widget after %s: %v", action.ID, err)
		}
	}
	return Result{ActionID: action.ID, Output: output}, nil
}

func (d *Dispatcher) execute(ctx context.Context, action Action) (string, error) {
	switch action.Command {
	case CommandTranslate:
		return d.transformSelection(ctx, translatePrompt)
	case CommandSummarize:
		return d.transformSelection(ctx, summarizePrompt)
	default:
		if d.runner == nil {
			return "", ErrUnsupported
		}
		return d.runner.Run(ctx, action.Command, action.Params)
	}
}

// transformSelection sends the clipboard text through the model and
// puts the answer back on the clipboard.
func (d *Dispatcher) transformSelection(ctx context.Context, prompt string) (string, error) {
	if d.completer == nil {
		return "", errors.New("no chat model configured")
	}

	text, err := d.clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySelection
	}

	reply, err := d.completer.Complete(ctx, nil, prompt+text)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)

	if err := d.clipboard.WriteAll(reply); err != nil {
		utils.Warn("Failed to copy result to clipboard: %v", err)
	}
	return reply, nil
}
