package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/noorhashem/devflow-backend/internal/config"
	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/server"
)

func main() {
	logg, err := logger.New(config.GetEnv("APP_ENV", "dev"))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	srv, err := server.New(logg)
	if err != nil {
		logg.Fatal("failed to initialize server", "error", err)
	}

	httpServer := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logg.Info("server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("http shutdown failed", "error", err)
	}

	if err := srv.Close(); err != nil {
		logg.Error("close failed", "error", err)
	}
}
