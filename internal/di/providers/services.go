package providers

import (
	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/admin"
	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/remote"
	"github.com/eventdeck/eventdeck-client/internal/seed"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
	"github.com/eventdeck/eventdeck-client/internal/validation"
)

// RemoteClientHandle wraps the backend client with shutdown capability.
type RemoteClientHandle struct {
	*remote.Client
}

// Shutdown implements do.Shutdownable.
func (h *RemoteClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRemoteClient provides the rate-limited backend client. Auth is
// attached by ProvideSession.
func ProvideRemoteClient(i do.Injector) (*RemoteClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := remote.New(remote.Options{
		BaseURL:           cfg.API.BaseURL,
		ActuatorURL:       cfg.API.ActuatorURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}, log.WithComponent("remote").Logger)

	return &RemoteClientHandle{Client: client}, nil
}

// ProvideAdminService provides the admin user list and dashboard service.
func ProvideAdminService(i do.Injector) (*admin.Service, error) {
	client := do.MustInvoke[*RemoteClientHandle](i)
	st := do.MustInvoke[*store.Store](i)
	data := do.MustInvoke[*seed.Data](i)
	log := do.MustInvoke[*logger.Logger](i)

	// The session attaches auth to the client.
	_ = do.MustInvoke[*session.Session](i)

	return admin.NewService(client.Client, st, data.Users, log.WithComponent("admin").Logger), nil
}

// ProvideValidator provides the form validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
