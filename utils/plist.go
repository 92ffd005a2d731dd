package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// BundleInfo is the subset of an application's Info.plist we care about.
type BundleInfo struct {
	Name        string `plist:"CFBundleName"`
	DisplayName string `plist:"CFBundleDisplayName"`
	Identifier  string `plist:"CFBundleIdentifier"`
	Executable  string `plist:"CFBundleExecutable"`
	Version     string `plist:"CFBundleShortVersionString"`
}

// Title prefers the display name, then the bundle name.
func (b BundleInfo) Title() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return b.Name
}

// DecodePlist decodes XML, binary or OpenStep plist data into v.
func DecodePlist(data []byte, v interface{}) error {
	if _, err := plist.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode plist: %w", err)
	}
	return nil
}

// ReadBundleInfo reads Contents/Info.plist of the .app bundle at appPath.
func ReadBundleInfo(appPath string) (BundleInfo, error) {
	var info BundleInfo
	data, err := os.ReadFile(filepath.Join(appPath, "Contents", "Info.plist"))
	if err != nil {
		return info, err
	}
	err = DecodePlist(data, &info)
	return info, err
}

// BundlePath returns the enclosing .app directory of an executable path,
// or "" when the executable is not inside a bundle.
func BundlePath(executable string) string {
	idx := strings.Index(executable, ".app/")
	if idx < 0 {
		if strings.HasSuffix(executable, ".app") {
			return executable
		}
		return ""
	}
	return executable[:idx+len(".app")]
}
