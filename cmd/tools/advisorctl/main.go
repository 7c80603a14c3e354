package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := newRootCmd()
	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "advisorctl",
		Short:         "Inspect and maintain the advisor's classifiers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return logger.InitLogger(cfg.Log.Level, cfg.Log.File)
		},
	}

	rootCmd.AddCommand(
		classifyCmd(),
		cleanCmd(),
		trainCmd(),
		speakCmd(),
	)
	return rootCmd
}
