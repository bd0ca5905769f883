package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/cartsync/internal/cli"
	"github.com/aretw0/cartsync/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cartsync",
	Short: "cartsync keeps a storefront checkout in sync with a local cart",
	Long: `cartsync resumes or creates a remote checkout at startup, persists its identity,
and serializes every cart mutation against the storefront backend.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the cartsync config file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle tracing")
}

// loadConfig reads the config named by --config and builds the logger.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, bool, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, false, err
	}
	logger, err := cli.NewLogger(cfg.Log.Level, debug)
	if err != nil {
		return config.Config{}, nil, false, err
	}
	return cfg, logger, debug, nil
}

// buildApp loads config and wires an unstarted cart.
func buildApp(ctx context.Context, cmd *cobra.Command, opts cli.BuildOptions) (*cli.App, error) {
	cfg, logger, debug, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts.Debug = opts.Debug || debug
	return cli.Build(ctx, cfg, logger, opts)
}
