package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roboyoz/hotline/internal/config"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roboyoz",
		Short: "RoboYoz - interview hotline",
		Long: `RoboYoz is a phone hotline that interviews callers.

It serves the telephony webhooks that drive each call, records callers'
answers one question at a time, and provides tools to check the message
catalog, simulate a call and export the recordings.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Config file (default: "+config.FileName+" found from the working directory up)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newMessagesCommand())
	cmd.AddCommand(newTokenCommand())
	cmd.AddCommand(newLookupCommand())
	cmd.AddCommand(newDownloadCommand())
	cmd.AddCommand(newDialCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads --config when given and otherwise searches upward from the
// working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(wd)
}
