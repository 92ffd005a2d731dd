package cli

import (
	"github.com/leoassist/leo/commands"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Reports host tools, permissions and config locations for troubleshooting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.DoctorCommand(GetVersion()))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
