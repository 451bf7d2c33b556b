// Package di provides dependency injection configuration for the EventDeck client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/admin"
	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/di/providers"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
	"github.com/eventdeck/eventdeck-client/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// Services are built lazily on first invocation.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSeed)

	// Persistence and notifications
	do.Provide(injector, providers.ProvideNotifyManager)
	do.Provide(injector, providers.ProvideMirror)

	// Remote access and identity
	do.Provide(injector, providers.ProvideRemoteClient)
	do.Provide(injector, providers.ProvideSession)

	// State and views
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideProjector)

	// Business services
	do.Provide(injector, providers.ProvideAdminService)
	do.Provide(injector, providers.ProvideValidator)

	// Mock backend
	do.Provide(injector, providers.ProvideMockAPIServer)

	return injector
}

// Bootstrap initializes the client services and returns once the session
// is restored and the projector is running.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*session.Session](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*store.Store](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ProjectorHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*admin.Service](injector); err != nil {
		return err
	}
	return nil
}
