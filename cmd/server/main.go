// The server command runs the API as a plain HTTP server for local
// development, typically against DynamoDB Local.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/app"
	"github.com/volchd/projects-api/internal/config"
	"github.com/volchd/projects-api/internal/handlers"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// No API Gateway in front here, so identity comes from the X-User-ID
	// header with a configured fallback.
	container, err := app.New(ctx, cfg, handlers.HeaderIdentity(cfg.DefaultUserID))
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      container.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("starting server",
			zap.String("address", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
			zap.Bool("offline_storage", cfg.IsOffline),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("server shutdown error", zap.Error(err))
	}

	_ = container.Logger.Sync()
}
