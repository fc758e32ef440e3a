package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akimpr/roomrelay-server/internal/app"
	"github.com/akimpr/roomrelay-server/internal/config"
	"github.com/akimpr/roomrelay-server/internal/log"
)

func main() {
	var (
		addr       string
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "roomrelay-server",
		Short:         "In-memory chat room relay over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			logger = log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)

			logger.Info().Str("addr", cfg.Addr).Str("config", path).Msg("starting roomrelay server")
			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	rootCmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		logger := log.New("error")
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}
