package commands

import (
	"context"

	"github.com/leoassist/leo/menu"
	"github.com/leoassist/leo/widget"
)

type MenuActivateResponse struct {
	Item  menu.Item     `json:"item"`
	State *widget.State `json:"state,omitempty"`
}

func MenuSearchCommand(query string) *CommandResponse {
	return NewSuccessResponse(menu.Search(query))
}

// MenuActivateCommand runs the intent behind a menu item. Items without
// an intent are reported back unchanged.
func MenuActivateCommand(ctx context.Context, id string) *CommandResponse {
	item, err := menu.Activate(id)
	if err != nil {
		return NewErrorResponse(err)
	}
	if item.Intent == menu.IntentNone {
		return NewSuccessResponse(MenuActivateResponse{Item: item})
	}

	rt, err := requireRuntime()
	if err != nil {
		return NewErrorResponse(err)
	}

	switch item.Intent {
	case menu.IntentOpenChat:
		err = rt.Window.OpenChat(ctx)
	case menu.IntentOpenSettings:
		err = rt.Window.OpenPanel(widget.PanelSettings)
	case menu.IntentOpenAutomation:
		err = rt.Window.OpenPanel(widget.PanelAutomation)
	}
	if err != nil {
		return NewErrorResponse(err)
	}

	state := rt.Window.Snapshot()
	return NewSuccessResponse(MenuActivateResponse{Item: item, State: &state})
}
