package apps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/leoassist/leo/types"
)

var ErrNoActiveApp = errors.New("no active application")

const frontmostScript = `tell application "System Events" to get unix id of first process whose frontmost is true`

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ActiveApp returns the frontmost application.
func ActiveApp(ctx context.Context) (types.AppInfo, error) {
	pid, err := frontmostPID(ctx, runOutput, runtime.GOOS)
	if err != nil {
		return types.AppInfo{}, err
	}
	return resolvePID(ctx, pid, runtime.GOOS)
}

func frontmostPID(ctx context.Context, run commandRunner, goos string) (int32, error) {
	var out []byte
	var err error

	switch goos {
	case "darwin":
		out, err = run(ctx, "osascript", "-e", frontmostScript)
	case "linux":
		out, err = run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	default:
		return 0, fmt.Errorf("active application lookup is not supported on %s", goos)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoActiveApp, err)
	}

	pid, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 32)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: unexpected pid %q", ErrNoActiveApp, strings.TrimSpace(string(out)))
	}
	return int32(pid), nil
}
