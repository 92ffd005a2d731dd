package cli

import (
	"strings"

	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var automationCmd = &cobra.Command{
	Use:   "automation",
	Short: "Quick actions: screenshots, clipboard, dictation, translate, summarize",
}

var automationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quick actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.AutomationListCommand(automationQuery))
	},
}

var automationRunCmd = &cobra.Command{
	Use:   "run [id]",
	Short: "Run a quick action on the running server",
	Long:  `Runs the action through the server so it can hide the widget and reuse its chat model.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer(cmd, "automation.run", map[string]string{"id": args[0]})
	},
}

var automationScriptCmd = &cobra.Command{
	Use:   "script [source...]",
	Short: "Run an AppleScript snippet (macOS)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.AutomationScriptCommand(cmd.Context(), commands.AutomationDirectRequest{Script: strings.Join(args, " ")}))
	},
}

var automationTypeCmd = &cobra.Command{
	Use:   "type [text...]",
	Short: "Type text into the focused application",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.AutomationTypeTextCommand(cmd.Context(), commands.AutomationDirectRequest{Text: strings.Join(args, " ")}))
	},
}

var automationClickCmd = &cobra.Command{
	Use:   "click [button]",
	Short: "Click a named button in the frontmost window (macOS)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.AutomationClickButtonCommand(cmd.Context(), commands.AutomationDirectRequest{Button: args[0]}))
	},
}

func init() {
	rootCmd.AddCommand(automationCmd)
	automationCmd.AddCommand(automationListCmd, automationRunCmd, automationScriptCmd, automationTypeCmd, automationClickCmd)

	automationListCmd.Flags().StringVarP(&automationQuery, "query", "q", "", "filter actions by title, description or keyword")
}
