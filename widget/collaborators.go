package widget

import (
	"context"
	"time"

	"github.com/leoassist/leo/types"
)

// Bridge is the host windowing runtime. Every call may block and may fail.
type Bridge interface {
	SetSize(ctx context.Context, size types.Size) error
	SetPosition(ctx context.Context, pos types.Position) error
	SetVisible(ctx context.Context, visible bool) error
	// StartDrag hands the pointer to an OS-level window drag.
	StartDrag(ctx context.Context) error
}

// PositionStore persists the last known widget position.
type PositionStore interface {
	LoadPosition() (types.Position, bool, error)
	SavePosition(pos types.Position) error
}

// FrameScheduler runs fn on the next display frame. The returned function
// cancels fn if it has not started yet.
type FrameScheduler interface {
	Schedule(fn func()) (cancel func())
}

// Clock returns the current time.
type Clock func() time.Time

type timerScheduler struct {
	interval time.Duration
}

// NewTimerScheduler returns a FrameScheduler that fires after one frame
// interval using time.AfterFunc.
func NewTimerScheduler(interval time.Duration) FrameScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return timerScheduler{interval: interval}
}

func (s timerScheduler) Schedule(fn func()) func() {
	t := time.AfterFunc(s.interval, fn)
	return func() { t.Stop() }
}
