package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrodao/govledger/internal/version"
	"github.com/petrodao/govledger/server"
)

const programName = "govledgerd"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func commonRun(cfg *server.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug || cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", programName, version.GetVersionString())
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Governance-gated revenue ledger daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun()
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
