// Package cli wires configuration, storage and services into cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"payway-adapter/config"
	"payway-adapter/pkg/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "payway-adapter",
		Short:         "PayWay payment gateway adapter",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(checkoutCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadApp reads configuration, installs the logger and builds the App.
func loadApp(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	return NewApp(ctx, cfg, logger.Log)
}
