package commands

import (
	"context"
	"fmt"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/widget"
)

// Window intents accepted by WindowIntentCommand.
const (
	IntentExpand      = "expand"
	IntentCollapse    = "collapse"
	IntentTransition  = "transition"
	IntentChatOpen    = "chat_open"
	IntentChatClose   = "chat_close"
	IntentChatBack    = "chat_back"
	IntentTheater     = "theater"
	IntentPanelOpen   = "panel_open"
	IntentPanelClose  = "panel_close"
	IntentPointerDown = "pointer_down"
	IntentClick       = "click"
	IntentDragBegin   = "drag_begin"
	IntentDragUpdate  = "drag_update"
	IntentDragEnd     = "drag_end"
	IntentNativeDrag  = "native_drag"
	IntentShow        = "show"
	IntentHide        = "hide"
)

type WindowIntentRequest struct {
	Intent      string          `json:"intent"`
	Preset      string          `json:"preset,omitempty"`
	Position    *types.Position `json:"position,omitempty"`
	Panel       string          `json:"panel,omitempty"`
	ForceReflow bool            `json:"forceReflow,omitempty"`
}

type ClickResponse struct {
	Toggled bool         `json:"toggled"`
	State   widget.State `json:"state"`
}

func WindowStateCommand() *CommandResponse {
	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(rt.Window.Snapshot())
}

// WindowIntentCommand applies one intent to the widget and returns the
// resulting state.
func WindowIntentCommand(ctx context.Context, req WindowIntentRequest) *CommandResponse {
	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}
	w := rt.Window

	switch req.Intent {
	case IntentExpand:
		err = w.Expand(ctx)
	case IntentCollapse:
		err = w.Collapse(ctx)
	case IntentTransition:
		err = transition(ctx, w, req)
	case IntentChatOpen:
		err = w.OpenChat(ctx)
	case IntentChatClose:
		err = w.CloseChat(ctx)
	case IntentChatBack:
		err = w.BackFromChat(ctx)
	case IntentTheater:
		err = w.ToggleTheater(ctx)
	case IntentPanelOpen:
		var panel widget.Panel
		panel, err = widget.ParsePanel(req.Panel)
		if err == nil {
			err = w.OpenPanel(panel)
		}
	case IntentPanelClose:
		w.ClosePanel()
	case IntentPointerDown:
		w.PointerDown()
	case IntentClick:
		toggled, err := w.HandleClick(ctx)
		if err != nil {
			return NewErrorResponse(err)
		}
		return NewSuccessResponse(ClickResponse{Toggled: toggled, State: w.Snapshot()})
	case IntentDragBegin:
		if req.Position == nil {
			return NewErrorResponse(fmt.Errorf("'position' is required for %s", req.Intent))
		}
		err = w.BeginDrag(*req.Position)
	case IntentDragUpdate:
		if req.Position == nil {
			return NewErrorResponse(fmt.Errorf("'position' is required for %s", req.Intent))
		}
		if _, ok := w.UpdateDrag(*req.Position); !ok {
			err = fmt.Errorf("no drag in progress")
		}
	case IntentDragEnd:
		w.EndDrag(ctx)
	case IntentNativeDrag:
		err = w.StartNativeDrag(ctx)
	case IntentShow:
		err = w.SetVisible(ctx, true)
	case IntentHide:
		err = w.SetVisible(ctx, false)
	case "":
		err = fmt.Errorf("'intent' is required")
	default:
		err = fmt.Errorf("unknown window intent: %s", req.Intent)
	}

	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(w.Snapshot())
}

func transition(ctx context.Context, w *widget.Controller, req WindowIntentRequest) error {
	preset, err := widget.ParsePreset(req.Preset)
	if err != nil {
		return err
	}
	return w.RequestTransition(ctx, widget.TransitionRequest{
		Preset:      preset,
		Position:    req.Position,
		ForceReflow: req.ForceReflow,
	})
}
