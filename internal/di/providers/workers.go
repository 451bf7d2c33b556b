package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
	"github.com/eventdeck/eventdeck-client/internal/views"
)

// ProjectorHandle wraps the derived-view projector with shutdown capability.
type ProjectorHandle struct {
	*views.Projector
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *ProjectorHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideProjector provides the projector and starts it following store and
// session changes.
func ProvideProjector(i do.Injector) (*ProjectorHandle, error) {
	st := do.MustInvoke[*store.Store](i)
	sess := do.MustInvoke[*session.Session](i)
	notifyHandle := do.MustInvoke[*NotifyManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	projector := views.NewProjector(st, sess, notifyHandle.Manager, log.WithComponent("views").Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		projector.Run(ctx)
	}()

	log.Debug("Projector started")

	return &ProjectorHandle{Projector: projector, cancel: cancel, done: done}, nil
}
