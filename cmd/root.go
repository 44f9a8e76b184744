package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gallery.GO/config"
	"gallery.GO/core/logger"
)

var rootCmd = &cobra.Command{
	Use:           "gallery",
	Short:         "Color-aware product gallery tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(c *cobra.Command, args []string) {
		setupLogger(config.LoadAppConfig())
	},
}

// setupLogger installs the process logger described by cfg.
func setupLogger(cfg *config.Config) {
	logger.SetDefault(logger.New(logger.Options{
		ServiceName: cfg.AppName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		Output:      os.Stderr,
	}))
}

// Execute applies registered commands and runs the CLI. SIGINT/SIGTERM
// cancel the command context; a failed command exits non-zero.
func Execute() {
	Apply()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Default().Error(context.Background(), "command failed", err)
		os.Exit(1)
	}
}
