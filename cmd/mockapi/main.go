// Package main serves the in-memory EventDeck backend used for local
// development and the client's end-to-end tests.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/di"
	"github.com/eventdeck/eventdeck-client/internal/di/providers"
	"github.com/eventdeck/eventdeck-client/internal/logger"
)

func main() {
	cfg, _, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The backend keeps its state in memory; it never opens the mirror.
	cfg.Mirror.InMemory = true

	injector := di.NewContainer(cfg)

	log := do.MustInvoke[*logger.Logger](injector)
	srv, err := do.Invoke[*providers.MockAPIHandle](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create mock API: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Mock API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down mock API gracefully...")
	case err := <-errCh:
		log.Error("Mock API failed", "error", err)
	}

	// The DI container shuts the HTTP server down with a timeout.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Mock API stopped")
}
