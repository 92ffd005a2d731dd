package cli

import "github.com/leoassist/leo/config"

var (
	verbose    bool
	jsonLogs   bool
	configPath string

	// loaded in PersistentPreRunE
	cfg = config.Default()

	// address used by commands that talk to a running server
	serverAddr string

	// for window command
	windowPreset      string
	windowX           int
	windowY           int
	windowPanel       string
	windowForceReflow bool

	// for automation list
	automationQuery string
)

// targetAddr resolves the server address for client commands.
func targetAddr() string {
	if serverAddr != "" {
		return serverAddr
	}
	return cfg.Server.Listen
}
