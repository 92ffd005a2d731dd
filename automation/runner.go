package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/leoassist/leo/utils"
)

var ErrUnsupported = errors.New("automation is not supported on this platform")

// Runner executes OS-level automation commands.
type Runner interface {
	Run(ctx context.Context, command, params string) (string, error)
	RunScript(ctx context.Context, script string) (string, error)
	TypeText(ctx context.Context, text string) (string, error)
	ClickButton(ctx context.Context, name string) (string, error)
}

// OSRunner drives the desktop with osascript on macOS and xdotool on
// Linux.
type OSRunner struct {
	goos string
	// JPEGQuality re-encodes screenshots as JPEG when positive.
	JPEGQuality   int
	ScreenshotDir string
	exec          func(ctx context.Context, name string, args ...string) ([]byte, error)
	start         func(name string, args ...string) error
	readClipboard func() (string, error)
	now           func() time.Time
}

func NewOSRunner() *OSRunner {
	return &OSRunner{
		goos:          runtime.GOOS,
		ScreenshotDir: os.TempDir(),
		exec:          execOutput,
		start:         startDetached,
		readClipboard: systemClipboard{}.ReadAll,
		now:           time.Now,
	}
}

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed: %w\n%s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// startDetached launches a program that should outlive the daemon.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	utils.ConfigureDetachedProcAttr(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func (r *OSRunner) Run(ctx context.Context, command, params string) (string, error) {
	switch command {
	case CommandOpenApp:
		return r.openApp(ctx, params)
	case CommandScreenshot:
		return r.screenshot(ctx, params)
	case CommandClipboardManager:
		return r.clipboard()
	case CommandDictation:
		return r.dictation(ctx)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, command)
	}
}

func (r *OSRunner) RunScript(ctx context.Context, script string) (string, error) {
	if r.goos != "darwin" {
		return "", fmt.Errorf("%w: AppleScript requires macOS", ErrUnsupported)
	}
	out, err := r.exec(ctx, "osascript", "-e", script)
	return strings.TrimSpace(string(out)), err
}

func (r *OSRunner) TypeText(ctx context.Context, text string) (string, error) {
	switch r.goos {
	case "darwin":
		return r.RunScript(ctx, fmt.Sprintf(`tell application "System Events" to keystroke %s`, appleScriptString(text)))
	case "linux":
		out, err := r.exec(ctx, "xdotool", "type", "--", text)
		return strings.TrimSpace(string(out)), err
	default:
		return "", ErrUnsupported
	}
}

func (r *OSRunner) ClickButton(ctx context.Context, name string) (string, error) {
	return r.RunScript(ctx, fmt.Sprintf(`tell application "System Events" to click button %s of front window`, appleScriptString(name)))
}

func (r *OSRunner) openApp(ctx context.Context, app string) (string, error) {
	if app == "" {
		return "", errors.New("open_app requires an application name")
	}
	switch r.goos {
	case "darwin":
		return r.RunScript(ctx, fmt.Sprintf(`tell application %s to activate`, appleScriptString(app)))
	case "linux":
		binary := strings.ToLower(strings.ReplaceAll(app, " ", "-"))
		if err := r.start(binary); err != nil {
			return "", err
		}
		return fmt.Sprintf("started %s", binary), nil
	default:
		return "", ErrUnsupported
	}
}

// screenshot captures an interactive selection into ScreenshotDir and
// returns the file path.
func (r *OSRunner) screenshot(ctx context.Context, mode string) (string, error) {
	path := filepath.Join(r.ScreenshotDir, fmt.Sprintf("leo-screenshot-%s.png", r.now().Format("20060102-150405")))

	var err error
	switch r.goos {
	case "darwin":
		args := []string{path}
		if mode == "selection" {
			args = []string{"-i", path}
		}
		_, err = r.exec(ctx, "screencapture", args...)
	case "linux":
		args := []string{"-f", path}
		if mode == "selection" {
			args = []string{"-a", "-f", path}
		}
		_, err = r.exec(ctx, "gnome-screenshot", args...)
	default:
		return "", ErrUnsupported
	}
	if err != nil {
		return "", err
	}

	if r.JPEGQuality <= 0 {
		return path, nil
	}
	return reencodeJPEG(path, r.JPEGQuality)
}

func reencodeJPEG(pngPath string, quality int) (string, error) {
	data, err := os.ReadFile(pngPath)
	if err != nil {
		// interactive capture cancelled by the user leaves no file
		return "", fmt.Errorf("screenshot not saved: %w", err)
	}
	jpegData, err := utils.ConvertPngToJpeg(data, quality)
	if err != nil {
		return "", fmt.Errorf("failed to convert screenshot: %w", err)
	}

	jpegPath := strings.TrimSuffix(pngPath, ".png") + ".jpg"
	if err := os.WriteFile(jpegPath, jpegData, 0o644); err != nil {
		return "", err
	}
	_ = os.Remove(pngPath)
	return jpegPath, nil
}

func (r *OSRunner) clipboard() (string, error) {
	text, err := r.readClipboard()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

func (r *OSRunner) dictation(ctx context.Context) (string, error) {
	if r.goos != "darwin" {
		return "", fmt.Errorf("%w: dictation requires macOS", ErrUnsupported)
	}
	// pressing Fn twice toggles system dictation
	return r.RunScript(ctx, `tell application "System Events"
	key code 63
	delay 0.1
	key code 63
end tell`)
}
