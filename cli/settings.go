package cli

import (
	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change widget preferences",
	Long:  `Reads and writes settings.ini. A running server picks up changes automatically.`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.SettingsGetCommand())
	},
}

var settingsSetCmd = &cobra.Command{
	Use:     "set [group.name] [value]",
	Short:   "Change one setting",
	Example: `  leo settings set theme.accent_color blue`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.SettingsSetCommand(commands.SettingsSetRequest{Key: args[0], Value: args[1]}))
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}
