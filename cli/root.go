package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/leoassist/leo/commands"
	"github.com/leoassist/leo/config"
	"github.com/leoassist/leo/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// GetVersion returns the build version reported by --version and doctor.
func GetVersion() string {
	return version
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leo",
	Short: "A floating assistant widget for the desktop",
	Long:  `Runs and controls the leo assistive widget: window presets, menu search, automation shortcuts and chat.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// loadConfig reads the TOML config once and applies logging options.
func loadConfig() error {
	path := configPath
	if path == "" {
		path = config.Path()
	}

	loaded, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}
	cfg = loaded

	utils.SetJSON(jsonLogs || cfg.LogJSON)
	utils.Verbose("Loaded config from %s", path)
	return nil
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: $XDG_CONFIG_HOME/leo/config.toml)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", fmt.Sprintf("address of a running leo server (default: %s)", config.DefaultListenAddress))
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.ExecuteContext(ctx)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints response and turns an error status into an error.
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
