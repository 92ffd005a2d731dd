package apps

import (
	"context"
	"time"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
)

// Watcher polls the frontmost application and reports changes.
type Watcher struct {
	interval time.Duration
	probe    func(ctx context.Context) (types.AppInfo, error)
	ignore   string
}

// NewWatcher polls every interval. Activations of the application named
// ignore (the widget itself) are not reported.
func NewWatcher(interval time.Duration, ignore string) *Watcher {
	return &Watcher{interval: interval, probe: ActiveApp, ignore: ignore}
}

// Run blocks until ctx is done, calling fn for each new frontmost app.
func (w *Watcher) Run(ctx context.Context, fn func(types.AppInfo)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last types.AppInfo
	var failing bool
	for {
		app, err := w.probe(ctx)
		switch {
		case err != nil:
			if !failing {
				utils.Verbose("active app probe failed: %v", err)
			}
			failing = true
		case app.Name == w.ignore:
			failing = false
		case app.PID != last.PID || app.Name != last.Name:
			failing = false
			last = app
			fn(app)
		default:
			failing = false
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
