package commands

import (
	"context"
	"fmt"

	"github.com/leoassist/leo/automation"
)

func AutomationListCommand(query string) *CommandResponse {
	return NewSuccessResponse(automation.FilterActions(query))
}

func AutomationRunCommand(ctx context.Context, id string) *CommandResponse {
	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}
	result, err := rt.Automation.Run(ctx, id)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(result)
}

// AutomationDirectRequest drives the runner without a catalog action.
type AutomationDirectRequest struct {
	Script string `json:"script,omitempty"`
	Text   string `json:"text,omitempty"`
	Button string `json:"button,omitempty"`
}

func AutomationScriptCommand(ctx context.Context, req AutomationDirectRequest) *CommandResponse {
	if req.Script == "" {
		return NewErrorResponse(fmt.Errorf("'script' is required"))
	}
	return runDirect(func(r automation.Runner) (string, error) {
		return r.RunScript(ctx, req.Script)
	})
}

func AutomationTypeTextCommand(ctx context.Context, req AutomationDirectRequest) *CommandResponse {
	if req.Text == "" {
		return NewErrorResponse(fmt.Errorf("'text' is required"))
	}
	return runDirect(func(r automation.Runner) (string, error) {
		return r.TypeText(ctx, req.Text)
	})
}

func AutomationClickButtonCommand(ctx context.Context, req AutomationDirectRequest) *CommandResponse {
	if req.Button == "" {
		return NewErrorResponse(fmt.Errorf("'button' is required"))
	}
	return runDirect(func(r automation.Runner) (string, error) {
		return r.ClickButton(ctx, req.Button)
	})
}

// runDirect uses the daemon's runner when available so tests and the
// daemon share one configuration, and a fresh OS runner otherwise.
func runDirect(fn func(automation.Runner) (string, error)) *CommandResponse {
	var runner automation.Runner
	if rt := GetRuntime(); rt != nil && rt.Automation.Runner() != nil {
		runner = rt.Automation.Runner()
	} else {
		runner = automation.NewOSRunner()
	}

	output, err := fn(runner)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(map[string]string{"output": output})
}
