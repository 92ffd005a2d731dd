package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/leoassist/leo/config"
	"github.com/leoassist/leo/host"
	"github.com/leoassist/leo/settings"
)

type DoctorInfo struct {
	LeoVersion      string            `json:"leo_version"`
	OS              string            `json:"os"`
	OSVersion       string            `json:"os_version"`
	Display         string            `json:"display,omitempty"`
	HostTools       map[string]string `json:"host_tools"`
	MissingTools    []string          `json:"missing_tools,omitempty"`
	ScreenshotTool  string            `json:"screenshot_tool,omitempty"`
	ClipboardTool   string            `json:"clipboard_tool,omitempty"`
	ConfigPath      string            `json:"config_path"`
	SettingsPath    string            `json:"settings_path,omitempty"`
	APIKeySource    string            `json:"api_key_source"`
	AccessibilityOK *bool             `json:"accessibility_ok,omitempty"`
}

// firstInPath returns the first of names found in PATH.
func firstInPath(names ...string) string {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func getScreenshotTool() string {
	if runtime.GOOS == "darwin" {
		return firstInPath("screencapture")
	}
	return firstInPath("gnome-screenshot")
}

func getClipboardTool() string {
	switch runtime.GOOS {
	case "darwin":
		return firstInPath("pbpaste")
	case "linux":
		return firstInPath("xclip", "xsel", "wl-paste")
	default:
		return ""
	}
}

// getAccessibilityEnabled checks that System Events scripting is
// permitted, which window control and automation rely on.
func getAccessibilityEnabled() *bool {
	if runtime.GOOS != "darwin" {
		return nil
	}

	cmd := exec.Command("osascript", "-e", `tell application "System Events" to get UI elements enabled`)
	output, err := cmd.CombinedOutput()
	if err != nil {
		enabled := false
		return &enabled
	}

	enabled := strings.TrimSpace(string(output)) == "true"
	return &enabled
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		cmd := exec.Command("sw_vers", "-productVersion")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		// try reading /etc/os-release
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

// DoctorCommand performs system diagnostics and returns information about the environment
func DoctorCommand(version string) *CommandResponse {
	_, source, _ := settings.APIKey()

	info := DoctorInfo{
		LeoVersion:     version,
		OS:             runtime.GOOS,
		OSVersion:      getOSVersion(),
		HostTools:      host.Lookup(),
		MissingTools:   host.MissingTools(),
		ScreenshotTool: getScreenshotTool(),
		ClipboardTool:  getClipboardTool(),
		ConfigPath:     config.Path(),
		APIKeySource:   string(source),
	}

	if runtime.GOOS == "linux" {
		info.Display = os.Getenv("DISPLAY")
	}
	if path, err := settings.DefaultPath(); err == nil {
		info.SettingsPath = path
	}
	if runtime.GOOS == "darwin" {
		info.AccessibilityOK = getAccessibilityEnabled()
	}

	return NewSuccessResponse(info)
}
