package cli

import (
	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Inspect running desktop applications",
	Long:  `Lists running applications and reports the frontmost one.`,
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List running applications",
	Long:  `Lists running applications, one entry per name, sorted alphabetically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.AppsListCommand(cmd.Context()))
	},
}

var appsActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the frontmost application",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.AppsActiveCommand(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)

	// add apps subcommands
	appsCmd.AddCommand(appsListCmd)
	appsCmd.AddCommand(appsActiveCmd)
}
