package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"procurement/internal/platform/config"
	"procurement/internal/platform/logger"
)

var (
	configFile string
	debug      bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "procurement",
		Short:         "Public procurement registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
				return err
			}
			if debug {
				cfg.LogLevel = "debug"
			}
			slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))
			cmd.SetContext(config.WithContext(cmd.Context(), cfg))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")

	root.AddCommand(newServeCommand(), newTokenCommand())
	return root
}
