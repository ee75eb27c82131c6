package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/art2music-api/internal/config"
	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/server"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()

	if err := logger.Init(cfg.Environment); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("No .env file found, using environment variables", nil)
	}

	flush := server.InitSentry(cfg, GetVersion())
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, GetVersion()); err != nil {
		logger.Error("Server stopped", err, nil)
		flush()
		logger.Sync()
		os.Exit(1)
	}
}
