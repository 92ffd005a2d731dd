// Package host drives the widget's native window. The exec bridge shells
// out to platform tools; the headless bridge only tracks geometry.
package host

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"

	"github.com/leoassist/leo/widget"
)

const DefaultWindowTitle = "leo"

// New returns the bridge named by kind: "exec", "none" or "auto". Auto
// picks exec when the platform tools are installed, headless otherwise.
func New(kind, windowTitle string) (widget.Bridge, error) {
	if windowTitle == "" {
		windowTitle = DefaultWindowTitle
	}

	switch kind {
	case "exec":
		return NewExecBridge(windowTitle)
	case "none", "headless":
		return NewHeadlessBridge(), nil
	case "", "auto":
		if len(RequiredTools()) > 0 && len(MissingTools()) == 0 {
			return NewExecBridge(windowTitle)
		}
		return NewHeadlessBridge(), nil
	default:
		return nil, fmt.Errorf("unknown bridge %q (expected auto, exec or none)", kind)
	}
}

// RequiredTools lists the executables the exec bridge needs on this OS.
func RequiredTools() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"osascript"}
	case "linux":
		return []string{"xdotool"}
	default:
		return nil
	}
}

// Lookup reports the resolved path of every required tool, empty when
// the tool is missing.
func Lookup() map[string]string {
	found := make(map[string]string)
	for _, tool := range RequiredTools() {
		path, _ := exec.LookPath(tool)
		found[tool] = path
	}
	return found
}

// MissingTools returns the required tools that are not installed.
func MissingTools() []string {
	var missing []string
	for tool, path := range Lookup() {
		if path == "" {
			missing = append(missing, tool)
		}
	}
	sort.Strings(missing)
	return missing
}
