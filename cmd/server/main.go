package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alanyang/agentpages/internal/config"
	"github.com/alanyang/agentpages/internal/logging"
	"github.com/alanyang/agentpages/internal/wire"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("agentpages server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(os.Stdout, logging.FormatJSON, config.ParseLevel(cfg.LogLevel)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := wire.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP + MCP server listening", "addr", app.Server.Addr, "base_url", cfg.PublicBaseURL)
		err := app.Server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case runErr = <-serveErr:
	}

	// Listeners and the WS hub stop with ctx; in-flight requests get shutdownTimeout.
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	app.Close(shutdownCtx)

	slog.Info("agentpages server stopped")
	return runErr
}
