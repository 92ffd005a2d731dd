package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the Gemini API key",
	Long:  `Stores the Gemini API key in the system keyring. GOOGLE_API_KEY or GEMINI_API_KEY are used when no key is stored.`,
}

var apikeySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key in the keyring",
	Long:  `Stores the API key. Without an argument the key is read from stdin.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read key from stdin: %w", err)
			}
			key = line
		}

		return printResponse(commands.APIKeySetCommand(strings.TrimSpace(key)))
	},
}

var apikeyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.APIKeyClearCommand())
	},
}

var apikeyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a key is configured and where it comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.APIKeyStatusCommand())
	},
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeySetCmd, apikeyClearCmd, apikeyStatusCmd)
}
