package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leoassist/leo/cli"
	"github.com/leoassist/leo/commands"
	"github.com/leoassist/leo/utils"
)

func main() {
	// shutdown hooks run on signal and on normal server exit
	hook := utils.NewShutdownHook()
	commands.SetShutdownHook(hook)

	// setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx)
	if ctx.Err() != nil {
		// interrupted: release the window before exiting
		if herr := hook.Shutdown(); herr != nil {
			utils.Error("Shutdown: %v", herr)
		}
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
