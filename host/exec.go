package host

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/leoassist/leo/types"
	"github.com/leoassist/leo/utils"
)

var ErrUnsupportedPlatform = errors.New("window control is not supported on this platform")

// ExecBridge controls the widget window through xdotool on Linux and
// System Events scripting on macOS. The window is found by title.
type ExecBridge struct {
	title string
	goos  string
	run   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewExecBridge(windowTitle string) (*ExecBridge, error) {
	switch runtime.GOOS {
	case "darwin", "linux":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
	}
	return &ExecBridge{title: windowTitle, goos: runtime.GOOS, run: runCommand}, nil
}

// runCommand executes the tool and folds its output into the error.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func (b *ExecBridge) xdotool(ctx context.Context, args ...string) error {
	full := append([]string{"search", "--name", "^" + b.title + "$"}, args...)
	_, err := b.run(ctx, "xdotool", full...)
	return err
}

func (b *ExecBridge) systemEvents(ctx context.Context, body string) error {
	script := fmt.Sprintf(`tell application "System Events" to tell (first window of (first process whose name is %q))
	%s
end tell`, b.title, body)
	_, err := b.run(ctx, "osascript", "-e", script)
	return err
}

func (b *ExecBridge) SetSize(ctx context.Context, size types.Size) error {
	utils.Verbose("host: resize %q to %s", b.title, size)
	if b.goos == "darwin" {
		return b.systemEvents(ctx, fmt.Sprintf("set size to {%d, %d}", size.Width, size.Height))
	}
	return b.xdotool(ctx, "windowsize", "%@", strconv.Itoa(size.Width), strconv.Itoa(size.Height))
}

func (b *ExecBridge) SetPosition(ctx context.Context, pos types.Position) error {
	utils.Verbose("host: move %q to %s", b.title, pos)
	if b.goos == "darwin" {
		return b.systemEvents(ctx, fmt.Sprintf("set position to {%d, %d}", pos.X, pos.Y))
	}
	// negative coordinates are valid on multi-monitor layouts
	return b.xdotool(ctx, "windowmove", "%@", "--", strconv.Itoa(pos.X), strconv.Itoa(pos.Y))
}

func (b *ExecBridge) SetVisible(ctx context.Context, visible bool) error {
	utils.Verbose("host: set %q visible=%v", b.title, visible)
	if b.goos == "darwin" {
		script := fmt.Sprintf(`tell application "System Events" to set visible of (first process whose name is %q) to %v`, b.title, visible)
		_, err := b.run(ctx, "osascript", "-e", script)
		return err
	}
	if visible {
		return b.xdotool(ctx, "windowmap", "%@")
	}
	return b.xdotool(ctx, "windowunmap", "%@")
}

// StartDrag is only meaningful for the host shell, which owns the pointer;
// on Linux we emulate it with a move-to-pointer via xdotool.
func (b *ExecBridge) StartDrag(ctx context.Context) error {
	if b.goos == "darwin" {
		return fmt.Errorf("%w: native drag must be started by the webview shell", ErrUnsupportedPlatform)
	}
	out, err := b.run(ctx, "xdotool", "getmouselocation", "--shell")
	if err != nil {
		return err
	}
	pos, err := parseMouseLocation(string(out))
	if err != nil {
		return err
	}
	return b.SetPosition(ctx, pos)
}

// parseMouseLocation reads the X= and Y= lines of xdotool --shell output.
func parseMouseLocation(out string) (types.Position, error) {
	var pos types.Position
	var seen int
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch key {
		case "X":
			pos.X = n
			seen++
		case "Y":
			pos.Y = n
			seen++
		}
	}
	if seen != 2 {
		return pos, fmt.Errorf("unexpected xdotool output: %q", out)
	}
	return pos, nil
}
