package cli

import (
	"fmt"

	"github.com/leoassist/leo/commands"
	"github.com/leoassist/leo/daemon"
	"github.com/leoassist/leo/server"
	"github.com/leoassist/leo/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the leo server that owns the widget window.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the leo server",
	Long:  `Starts the widget runtime and serves JSON-RPC on /rpc and /ws.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := cmd.Flag("listen").Value.String()
		if listenAddr == "" {
			listenAddr = cfg.Server.Listen
		}
		listenAddr, err := server.NormalizeAddr(listenAddr)
		if err != nil {
			return err
		}

		// GetBool/GetString cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		isDaemon, _ := cmd.Flags().GetBool("daemon")
		if bridge, _ := cmd.Flags().GetString("bridge"); bridge != "" {
			cfg.Window.Bridge = bridge
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if !daemon.IsChild() {
			if err := utils.CheckListenAddress(listenAddr); err != nil {
				return err
			}
		}

		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		ctx := cmd.Context()
		rt, err := commands.NewRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		commands.SetRuntime(rt)
		commands.GetShutdownHook().Register("widget runtime", rt.Close)
		defer func() {
			if err := commands.GetShutdownHook().Shutdown(); err != nil {
				utils.Error("Shutdown: %v", err)
			}
		}()

		return server.StartServer(ctx, server.Options{
			Addr:            listenAddr,
			CORS:            enableCORS || cfg.Server.CORS,
			AppPollInterval: cfg.Apps.PollInterval.Duration,
			WidgetTitle:     cfg.Window.Title,
			WatchSettings:   true,
		})
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized leo server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = targetAddr()
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12050' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().String("bridge", "", "Window bridge: auto, exec or none (overrides config)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default: the configured listen address)")
}
