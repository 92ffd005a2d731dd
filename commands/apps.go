package commands

import (
	"context"
	"fmt"

	"github.com/leoassist/leo/apps"
)

func AppsListCommand(ctx context.Context) *CommandResponse {
	list, err := apps.ListRunning(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error listing apps: %w", err))
	}
	return NewSuccessResponse(list)
}

func AppsActiveCommand(ctx context.Context) *CommandResponse {
	app, err := apps.ActiveApp(ctx)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(app)
}
