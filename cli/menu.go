package cli

import (
	"strings"

	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Search and activate widget menu items",
}

var menuSearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Rank menu items against a query",
	Long:  `Filters menu items by every query word and sorts them by relevance. An empty query lists all items.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.MenuSearchCommand(strings.Join(args, " ")))
	},
}

var menuActivateCmd = &cobra.Command{
	Use:   "activate [id]",
	Short: "Activate a menu item on the running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer(cmd, "menu.activate", map[string]string{"id": args[0]})
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.AddCommand(menuSearchCmd, menuActivateCmd)
}
