package cli

import (
	"fmt"
	"strings"

	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var windowIntents = []string{
	"state",
	commands.IntentExpand,
	commands.IntentCollapse,
	commands.IntentTransition,
	commands.IntentChatOpen,
	commands.IntentChatClose,
	commands.IntentChatBack,
	commands.IntentTheater,
	commands.IntentPanelOpen,
	commands.IntentPanelClose,
	commands.IntentPointerDown,
	commands.IntentClick,
	commands.IntentDragBegin,
	commands.IntentDragUpdate,
	commands.IntentDragEnd,
	commands.IntentNativeDrag,
	commands.IntentShow,
	commands.IntentHide,
}

var windowCmd = &cobra.Command{
	Use:   "window [intent]",
	Short: "Drive the widget window on a running server",
	Long: `Sends one window intent to the running server and prints the resulting state.

Intents: ` + strings.Join(windowIntents, ", ") + `.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: windowIntents,
	RunE: func(cmd *cobra.Command, args []string) error {
		intent := args[0]
		params := map[string]interface{}{}

		if windowPreset != "" {
			params["preset"] = windowPreset
		}
		if windowPanel != "" {
			params["panel"] = windowPanel
		}
		if windowForceReflow {
			params["forceReflow"] = true
		}

		xSet, ySet := cmd.Flags().Changed("x"), cmd.Flags().Changed("y")
		if xSet != ySet {
			return printResponse(commands.NewErrorResponse(fmt.Errorf("--x and --y must be given together")))
		}
		if xSet {
			params["x"] = windowX
			params["y"] = windowY
		}

		return callServer(cmd, "window."+intent, params)
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)

	windowCmd.Flags().StringVar(&windowPreset, "preset", "", "target preset for transition: collapsed, expanded, chat or theater")
	windowCmd.Flags().IntVar(&windowX, "x", 0, "x coordinate (transition target or pointer position)")
	windowCmd.Flags().IntVar(&windowY, "y", 0, "y coordinate (transition target or pointer position)")
	windowCmd.Flags().StringVar(&windowPanel, "panel", "", "panel for panel_open: settings or automation")
	windowCmd.Flags().BoolVar(&windowForceReflow, "force-reflow", false, "nudge the window to force a layout pass after transition")
}
