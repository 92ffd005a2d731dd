package cli

import (
	"encoding/json"

	"github.com/leoassist/leo/commands"
	"github.com/leoassist/leo/daemon"
	"github.com/spf13/cobra"
)

// callServer forwards method to the running server and prints the result
// in the same envelope local commands use.
func callServer(cmd *cobra.Command, method string, params interface{}) error {
	var result json.RawMessage
	if err := daemon.Call(cmd.Context(), targetAddr(), method, params, &result); err != nil {
		return printResponse(commands.NewErrorResponse(err))
	}
	return printResponse(commands.NewSuccessResponse(result))
}
