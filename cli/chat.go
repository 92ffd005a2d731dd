package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant on the running server",
}

var chatSendCmd = &cobra.Command{
	Use:   "send [message...]",
	Short: "Send a message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer(cmd, "chat.send", map[string]string{"text": strings.Join(args, " ")})
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer(cmd, "chat.history", nil)
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Start a new conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer(cmd, "chat.clear", nil)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatSendCmd, chatHistoryCmd, chatClearCmd)
}
