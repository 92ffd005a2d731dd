package widget

import (
	"context"
	"fmt"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
)

// PointerDown records the start of a gesture on the widget button.
func (c *Controller) PointerDown() {
	c.mu.Lock()
	c.dragStart = c.now()
	c.moved = false
	c.mu.Unlock()
}

// BeginDrag starts a manual drag at pointer. It is rejected unless the
// widget is collapsed and no transition is running.
func (c *Controller) BeginDrag(pointer types.Position) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.preset != Collapsed || c.transitioning.Load() {
		preset := c.preset
		c.mu.Unlock()
		return fmt.Errorf("%w (preset %s)", ErrDragNotAllowed, preset)
	}

	c.dragOffset = pointer.Sub(c.pos)
	c.dragStart = c.now()
	c.moved = false
	c.dragging = true
	c.mu.Unlock()

	c.notify()
	return nil
}

// UpdateDrag moves the widget so the pointer keeps its grab offset. The
// local position changes immediately; the host move is coalesced to one
// call per frame, with later positions overwriting the pending one.
// It reports false when no drag is active or a transition is running.
func (c *Controller) UpdateDrag(pointer types.Position) (types.Position, bool) {
	c.mu.Lock()
	if !c.dragging || c.preset != Collapsed || c.transitioning.Load() {
		pos := c.pos
		c.mu.Unlock()
		return pos, false
	}

	target := pointer.Sub(c.dragOffset)
	if target != c.pos {
		c.moved = true
	}
	c.pos = target
	c.pending = &target
	if c.frameCancel == nil {
		c.frameCancel = c.scheduler.Schedule(c.runFrame)
	}
	c.mu.Unlock()

	c.notify()
	return target, true
}

// runFrame consumes the pending slot and issues a single host move. The
// target is dropped when the drag ended or a transition took over.
func (c *Controller) runFrame() {
	c.hostMu.Lock()
	defer c.hostMu.Unlock()

	c.mu.Lock()
	target := c.pending
	c.pending = nil
	c.frameCancel = nil
	live := c.dragging && !c.closed && !c.transitioning.Load()
	c.mu.Unlock()

	if target == nil || !live {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), hostCallTimeout)
	defer cancel()

	metricDragMoves.Inc()
	if err := c.bridge.SetPosition(ctx, *target); err != nil {
		utils.Error("Failed to move window to %s during drag: %v", *target, err)
	}
}

func (c *Controller) cancelFrameLocked() {
	if c.frameCancel != nil {
		c.frameCancel()
		c.frameCancel = nil
	}
}

// EndDrag finishes a drag: it flushes any pending move, persists the final
// position and re-asserts visibility, since hosts occasionally hide the
// window on a fast release.
func (c *Controller) EndDrag(ctx context.Context) {
	c.hostMu.Lock()
	defer c.hostMu.Unlock()

	c.mu.Lock()
	wasDragging := c.dragging
	moved := c.moved
	c.dragging = false
	c.cancelFrameLocked()
	pending := c.pending
	c.pending = nil
	pos := c.pos
	c.mu.Unlock()

	if !wasDragging {
		return
	}

	if pending != nil {
		metricDragMoves.Inc()
		if err := c.bridge.SetPosition(ctx, *pending); err != nil {
			utils.Error("Failed to move window to %s at drag end: %v", *pending, err)
		}
	}
	if moved {
		c.persist(pos)
	}

	if err := c.bridge.SetVisible(ctx, true); err != nil {
		utils.Warn("Failed to re-assert window visibility after drag: %v", err)
	} else {
		c.mu.Lock()
		c.visible = true
		c.mu.Unlock()
	}

	c.notify()
}

// StartNativeDrag hands the drag to the OS window manager.
func (c *Controller) StartNativeDrag(ctx context.Context) error {
	c.mu.Lock()
	allowed := c.preset == Collapsed && !c.transitioning.Load()
	c.dragStart = c.now()
	c.mu.Unlock()

	if !allowed {
		return ErrDragNotAllowed
	}
	if err := c.bridge.StartDrag(ctx); err != nil {
		utils.Error("Failed to start native window drag: %v", err)
		return err
	}
	return nil
}

// HandleClick toggles between expanded and collapsed when the gesture was
// a quick tap: shorter than the click threshold, without drag motion, and
// with no drag or transition active. It reports whether a toggle ran.
func (c *Controller) HandleClick(ctx context.Context) (bool, error) {
	c.mu.Lock()
	elapsed := c.now().Sub(c.dragStart)
	quick := !c.dragStart.IsZero() && elapsed < c.clickThreshold
	eligible := quick && !c.dragging && !c.moved && !c.transitioning.Load()
	preset := c.preset
	c.mu.Unlock()

	if !eligible {
		utils.Verbose("Ignoring click after %v (treated as drag)", elapsed)
		return false, nil
	}

	if preset == Collapsed {
		return true, c.Expand(ctx)
	}
	return true, c.Collapse(ctx)
}
