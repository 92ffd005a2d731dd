package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
)

const (
	// DefaultFrameInterval is one display frame at 60Hz.
	DefaultFrameInterval = 16 * time.Millisecond
	// DefaultClickThreshold separates a click from a drag.
	DefaultClickThreshold = 200 * time.Millisecond
	// hostCallTimeout bounds host calls issued outside a request context
	hostCallTimeout = 5 * time.Second
)

// DefaultPosition is used when no persisted position is available.
var DefaultPosition = types.Position{X: 20, Y: 100}

var (
	ErrTransitionInProgress = errors.New("transition already in progress")
	ErrUnknownPreset        = errors.New("unknown preset")
	ErrDragNotAllowed       = errors.New("drag is only allowed while collapsed and idle")
	ErrInvalidIntent        = errors.New("intent not valid in current preset")
	ErrClosed               = errors.New("controller closed")
)

// TransitionRequest describes a change of preset and optionally position.
type TransitionRequest struct {
	Preset   Preset          `json:"preset"`
	Position *types.Position `json:"position,omitempty"`
	// ForceReflow toggles visibility after resizing to defeat compositor
	// redraw artifacts, mostly when shrinking.
	ForceReflow bool `json:"forceReflow,omitempty"`
}

// State is a snapshot of the controller.
type State struct {
	Position      types.Position `json:"position"`
	Size          types.Size     `json:"size"`
	Preset        Preset         `json:"preset"`
	Panel         Panel          `json:"panel"`
	Transitioning bool           `json:"transitioning"`
	Dragging      bool           `json:"dragging"`
	Visible       bool           `json:"visible"`
}

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Bridge          Bridge
	Store           PositionStore
	Scheduler       FrameScheduler
	Clock           Clock
	DefaultPosition *types.Position
	ClickThreshold  time.Duration
	ReflowDelay     time.Duration
}

// Controller owns the widget's logical position and preset and serializes
// transitions against the host bridge. One Controller per widget window.
type Controller struct {
	bridge         Bridge
	store          PositionStore
	scheduler      FrameScheduler
	now            Clock
	clickThreshold time.Duration
	reflowDelay    time.Duration

	// transitioning is the only lock between transitions: a request that
	// loses the swap is dropped, never queued
	transitioning atomic.Bool

	// hostMu orders drag frame moves against transition host calls
	hostMu sync.Mutex

	mu          sync.Mutex
	pos         types.Position
	preset      Preset
	panel       Panel
	visible     bool
	dragging    bool
	moved       bool
	dragOffset  types.Position
	dragStart   time.Time
	pending     *types.Position
	frameCancel func()
	closed      bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New creates a controller in (Collapsed, Idle), restoring the persisted
// position when the store has one.
func New(opts Options) (*Controller, error) {
	if opts.Bridge == nil {
		return nil, fmt.Errorf("widget: bridge is required")
	}

	c := &Controller{
		bridge:         opts.Bridge,
		store:          opts.Store,
		scheduler:      opts.Scheduler,
		now:            opts.Clock,
		clickThreshold: opts.ClickThreshold,
		reflowDelay:    opts.ReflowDelay,
		preset:         Collapsed,
		visible:        true,
		pos:            DefaultPosition,
		subs:           make(map[int]func(State)),
	}
	if c.scheduler == nil {
		c.scheduler = NewTimerScheduler(DefaultFrameInterval)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.clickThreshold <= 0 {
		c.clickThreshold = DefaultClickThreshold
	}
	if c.reflowDelay <= 0 {
		c.reflowDelay = DefaultFrameInterval
	}
	if opts.DefaultPosition != nil {
		c.pos = *opts.DefaultPosition
	}

	if c.store != nil {
		pos, ok, err := c.store.LoadPosition()
		switch {
		case err != nil:
			utils.Warn("Failed to load saved window position, using default: %v", err)
		case ok:
			c.pos = pos
		}
	}

	return c, nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	return State{
		Position:      c.pos,
		Size:          c.preset.Size(),
		Preset:        c.preset,
		Panel:         c.panel,
		Transitioning: c.transitioning.Load(),
		Dragging:      c.dragging,
		Visible:       c.visible,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that changed the state and must not block.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) notify() {
	state := c.Snapshot()

	c.subMu.Lock()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// RequestTransition resizes (and optionally moves) the window to req.
// A request arriving while another transition is in flight is dropped and
// reports ErrTransitionInProgress without touching the host. Host failures
// are logged and returned; the controller always returns to idle.
func (c *Controller) RequestTransition(ctx context.Context, req TransitionRequest) error {
	if !req.Preset.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPreset, int(req.Preset))
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if !c.transitioning.CompareAndSwap(false, true) {
		metricTransitionsDropped.Inc()
		utils.Verbose("Dropping transition to %s: another transition is in flight", req.Preset)
		return ErrTransitionInProgress
	}
	c.notify()

	c.hostMu.Lock()
	defer func() {
		c.hostMu.Unlock()
		c.transitioning.Store(false)
		c.notify()
	}()

	if pending := c.stopDrag(); pending != nil && req.Position == nil {
		req.Position = pending
	}

	if err := c.apply(ctx, req); err != nil {
		metricTransitions.WithLabelValues(req.Preset.String(), "failed").Inc()
		utils.Error("Failed to transition window to %s: %v", req.Preset, err)
		return err
	}

	metricTransitions.WithLabelValues(req.Preset.String(), "applied").Inc()
	return nil
}

// stopDrag ends any manual drag and drops its scheduled frame. It returns
// the move the frame had not issued yet.
func (c *Controller) stopDrag() *types.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.pending
	c.dragging = false
	c.pending = nil
	c.cancelFrameLocked()
	return pending
}

// apply issues resize, then move, then the position update, so observers
// never see a new position with an old size. The preset is committed as
// soon as the host has the new size; a failed reflow is only logged.
func (c *Controller) apply(ctx context.Context, req TransitionRequest) error {
	if err := c.bridge.SetSize(ctx, req.Preset.Size()); err != nil {
		return fmt.Errorf("resize to %s: %w", req.Preset.Size(), err)
	}

	if req.Position == nil {
		c.mu.Lock()
		c.preset = req.Preset
		c.mu.Unlock()
	} else {
		target := *req.Position
		if err := c.bridge.SetPosition(ctx, target); err != nil {
			c.mu.Lock()
			c.preset = req.Preset
			c.mu.Unlock()
			return fmt.Errorf("move to %s: %w", target, err)
		}
		c.mu.Lock()
		c.pos = target
		c.preset = req.Preset
		c.mu.Unlock()
		c.persist(target)
	}

	if req.ForceReflow {
		if err := c.reflow(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			utils.Warn("Failed to reflow window after transition to %s: %v", req.Preset, err)
		}
	}
	return nil
}

func (c *Controller) reflow(ctx context.Context) error {
	if err := c.bridge.SetVisible(ctx, false); err != nil {
		return fmt.Errorf("reflow hide: %w", err)
	}

	select {
	case <-time.After(c.reflowDelay):
	case <-ctx.Done():
		// never leave the widget hidden
		showCtx, cancel := context.WithTimeout(context.Background(), hostCallTimeout)
		defer cancel()
		_ = c.bridge.SetVisible(showCtx, true)
		return ctx.Err()
	}

	if err := c.bridge.SetVisible(ctx, true); err != nil {
		return fmt.Errorf("reflow show: %w", err)
	}

	c.mu.Lock()
	c.visible = true
	c.mu.Unlock()
	return nil
}

func (c *Controller) persist(pos types.Position) {
	if c.store == nil {
		return
	}
	if err := c.store.SavePosition(pos); err != nil {
		utils.Warn("Failed to save window position %s: %v", pos, err)
	}
}

// transitionTo moves to preset keeping the visual center fixed.
func (c *Controller) transitionTo(ctx context.Context, to Preset, forceReflow bool) error {
	c.mu.Lock()
	from, pos := c.preset, c.pos
	c.mu.Unlock()

	target := CenterPreserving(pos, from, to)
	return c.RequestTransition(ctx, TransitionRequest{
		Preset:      to,
		Position:    &target,
		ForceReflow: forceReflow,
	})
}

func (c *Controller) currentPreset() Preset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preset
}

// idlePreset is currentPreset for intents that transition. While a
// transition is in flight the preset is stale, so the intent is dropped.
func (c *Controller) idlePreset() (Preset, error) {
	if c.transitioning.Load() {
		metricTransitionsDropped.Inc()
		return 0, ErrTransitionInProgress
	}
	return c.currentPreset(), nil
}

// Expand opens the menu from the collapsed button.
func (c *Controller) Expand(ctx context.Context) error {
	preset, err := c.idlePreset()
	if err != nil {
		return err
	}
	if preset != Collapsed {
		return nil
	}
	return c.transitionTo(ctx, Expanded, false)
}

// Collapse shrinks any preset back to the button and closes open panels.
func (c *Controller) Collapse(ctx context.Context) error {
	preset, err := c.idlePreset()
	if err != nil {
		return err
	}
	if preset == Collapsed {
		return nil
	}
	if err := c.transitionTo(ctx, Collapsed, true); err != nil {
		return err
	}
	c.setPanel(PanelNone)
	return nil
}

// OpenChat grows the expanded menu into the chat panel.
func (c *Controller) OpenChat(ctx context.Context) error {
	preset, err := c.idlePreset()
	if err != nil {
		return err
	}
	switch preset {
	case Chat, Theater:
		return nil
	case Collapsed:
		return fmt.Errorf("%w: open chat from collapsed", ErrInvalidIntent)
	}
	if err := c.transitionTo(ctx, Chat, false); err != nil {
		return err
	}
	c.setPanel(PanelChat)
	return nil
}

// CloseChat leaves chat or theater and collapses the widget.
func (c *Controller) CloseChat(ctx context.Context) error {
	preset, err := c.idlePreset()
	if err != nil {
		return err
	}
	switch preset {
	case Chat, Theater:
		return c.Collapse(ctx)
	}
	return nil
}

// BackFromChat returns from chat or theater to the expanded menu.
func (c *Controller) BackFromChat(ctx context.Context) error {
	preset, err := c.idlePreset()
	if err != nil {
		return err
	}
	switch preset {
	case Chat, Theater:
	default:
		return nil
	}
	if err := c.transitionTo(ctx, Expanded, true); err != nil {
		return err
	}
	c.setPanel(PanelNone)
	return nil
}

// ToggleTheater switches between the chat and theater presets.
func (c *Controller) ToggleTheater(ctx context.Context) error {
	preset, err := c.idlePreset()
	if err != nil {
		return err
	}
	switch preset {
	case Chat:
		return c.transitionTo(ctx, Theater, false)
	case Theater:
		return c.transitionTo(ctx, Chat, true)
	default:
		return fmt.Errorf("%w: theater requires the chat panel", ErrInvalidIntent)
	}
}

// OpenPanel shows a sub-view inside the expanded menu. The chat panel has
// its own preset; use OpenChat for it.
func (c *Controller) OpenPanel(p Panel) error {
	if p == PanelChat {
		return fmt.Errorf("%w: use OpenChat for the chat panel", ErrInvalidIntent)
	}
	if c.currentPreset() != Expanded {
		return fmt.Errorf("%w: panels need the expanded menu", ErrInvalidIntent)
	}
	c.setPanel(p)
	return nil
}

func (c *Controller) ClosePanel() {
	if c.currentPreset() == Expanded {
		c.setPanel(PanelNone)
	}
}

func (c *Controller) setPanel(p Panel) {
	c.mu.Lock()
	changed := c.panel != p
	c.panel = p
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// SetVisible shows or hides the widget window.
func (c *Controller) SetVisible(ctx context.Context, visible bool) error {
	if err := c.bridge.SetVisible(ctx, visible); err != nil {
		utils.Error("Failed to set window visibility to %v: %v", visible, err)
		return err
	}
	c.mu.Lock()
	c.visible = visible
	c.mu.Unlock()
	c.notify()
	return nil
}

// Close cancels any scheduled frame callback and drops drag state so no
// callback touches the controller afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	c.dragging = false
	c.pending = nil
	c.cancelFrameLocked()
	c.mu.Unlock()

	c.subMu.Lock()
	c.subs = make(map[int]func(State))
	c.subMu.Unlock()
	return nil
}
