package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"statbook/internal/config"
	"statbook/internal/logging"
	"statbook/ui"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(appConfig.Log, os.Stderr, "statbook")
	if envErr != nil {
		logger.Debug("no .env file found, using system environment variables")
	}

	server, err := ui.NewServer(appConfig)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
