package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/mockapi"
	"github.com/eventdeck/eventdeck-client/internal/seed"
)

// MockAPIHandle wraps the mock backend and its http.Server with Shutdownable.
type MockAPIHandle struct {
	*http.Server
	Backend *mockapi.Server
}

// Shutdown implements do.Shutdownable.
func (h *MockAPIHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideMockAPIServer provides the mock backend HTTP server. It is not
// listening until ListenAndServe is called.
func ProvideMockAPIServer(i do.Injector) (*MockAPIHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	data := do.MustInvoke[*seed.Data](i)

	backend, err := mockapi.New(mockapi.Options{
		Seed:        data,
		TokenSecret: cfg.MockAPI.TokenSecret,
		TokenTTL:    cfg.MockAPI.TokenTTL,
		Logger:      log.WithComponent("mockapi").Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create mock api: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.MockAPI.Port,
		Handler:      backend,
		ReadTimeout:  cfg.MockAPI.ReadTimeout,
		WriteTimeout: cfg.MockAPI.WriteTimeout,
		IdleTimeout:  cfg.MockAPI.IdleTimeout,
	}

	return &MockAPIHandle{Server: srv, Backend: backend}, nil
}
