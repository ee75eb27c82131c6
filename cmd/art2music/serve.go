package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/art2music-api/internal/config"
	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/server"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Configuration is read from the environment
and an optional .env file.

Example:
  art2music serve --port 8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}

			if err := logger.Init(cfg.Environment); err != nil {
				return err
			}
			defer logger.Sync()

			flush := server.InitSentry(cfg, version)
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg, version)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default: $PORT or 8080)")
	return cmd
}
