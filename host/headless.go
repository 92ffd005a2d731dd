package host

import (
	"context"
	"sync"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
)

// HeadlessBridge keeps window geometry in memory. It is used when no
// window system is reachable and by the daemon's --bridge none mode.
type HeadlessBridge struct {
	mu      sync.Mutex
	rect    types.Rect
	visible bool
}

func NewHeadlessBridge() *HeadlessBridge {
	return &HeadlessBridge{visible: true}
}

func (b *HeadlessBridge) SetSize(_ context.Context, size types.Size) error {
	b.mu.Lock()
	b.rect.Size = size
	b.mu.Unlock()
	utils.Verbose("headless: size %s", size)
	return nil
}

func (b *HeadlessBridge) SetPosition(_ context.Context, pos types.Position) error {
	b.mu.Lock()
	b.rect.Position = pos
	b.mu.Unlock()
	utils.Verbose("headless: position %s", pos)
	return nil
}

func (b *HeadlessBridge) SetVisible(_ context.Context, visible bool) error {
	b.mu.Lock()
	b.visible = visible
	b.mu.Unlock()
	return nil
}

func (b *HeadlessBridge) StartDrag(context.Context) error {
	return nil
}

// Geometry returns the last size and position set.
func (b *HeadlessBridge) Geometry() (types.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rect, b.visible
}
