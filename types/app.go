package types

// AppInfo describes a running desktop application.
type AppInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	PID  int32  `json:"pid"`
	// BundleID is only known on macOS.
	BundleID string `json:"bundleId,omitempty"`
}
