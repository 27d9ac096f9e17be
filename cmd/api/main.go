package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderwalk/internal/app"
	"orderwalk/internal/types"
	"orderwalk/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	logger := utils.NewLogger(os.Stderr, false)

	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort, ok := types.EnvString("API_PORT"); ok {
		serverPort = envPort
		logger.Infof("Using port from environment variable API_PORT: %s", serverPort)
	}

	config := types.DefaultConfig()
	if err := types.ApplyEnv(config); err != nil {
		logger.Fatalf("Invalid environment: %v", err)
	}
	config.ConfirmStart = false

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, config, logger, utils.AlwaysConfirm)
	if err != nil {
		logger.Fatalf("Failed to initialise: %v", err)
	}
	defer a.Close()

	server := NewServer(ctx, a, logger)
	httpServer := &http.Server{
		Addr:              ":" + serverPort,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Infof("Starting API server on port %s", serverPort)
	logger.Info("Available endpoints:")
	logger.Info("  POST /crawl    - Start a walk in the background")
	logger.Info("  GET  /state    - Crawl state and last walk")
	logger.Info("  GET  /failures - Snapshots of unparsed order cards")
	logger.Info("  GET  /health   - Health check")
	logger.Info("  GET  /metrics  - Prometheus metrics")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("API server stopped: %v", err)
	}
	server.Wait()
}
