package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/mirror"
	"github.com/eventdeck/eventdeck-client/internal/notify"
	"github.com/eventdeck/eventdeck-client/internal/seed"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
)

// NotifyManagerHandle wraps the notify manager with its context for lifecycle management.
type NotifyManagerHandle struct {
	*notify.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *NotifyManagerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Manager.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideNotifyManager provides the change notification manager.
func ProvideNotifyManager(i do.Injector) (*NotifyManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := notify.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Debug("Notify manager started")

	return &NotifyManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// MirrorHandle wraps the offline mirror with shutdown capability.
type MirrorHandle struct {
	*mirror.DB
}

// Shutdown implements do.Shutdownable.
func (h *MirrorHandle) Shutdown() error {
	return h.Close()
}

// ProvideMirror provides the persisted offline mirror.
func ProvideMirror(i do.Injector) (*MirrorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := mirror.Open(cfg.Mirror.Path, cfg.Mirror.InMemory, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Debug("Mirror opened", "path", cfg.Mirror.Path, "in_memory", cfg.Mirror.InMemory)

	return &MirrorHandle{DB: db}, nil
}

// ProvideSeed provides the bundled sample dataset.
func ProvideSeed(i do.Injector) (*seed.Data, error) {
	return seed.Load()
}

// ProvideStore provides the reconciliation store. Its fallback mirror is
// loaded from the persisted mirror, which is seeded from the bundled dataset
// on first use.
func ProvideStore(i do.Injector) (*store.Store, error) {
	log := do.MustInvoke[*logger.Logger](i)
	mirrorHandle := do.MustInvoke[*MirrorHandle](i)
	notifyHandle := do.MustInvoke[*NotifyManagerHandle](i)
	client := do.MustInvoke[*RemoteClientHandle](i)
	sess := do.MustInvoke[*session.Session](i)
	data := do.MustInvoke[*seed.Data](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	events, tasks, ok, err := mirrorHandle.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mirror: %w", err)
	}
	if !ok {
		events, tasks = data.Events, data.Tasks
		if err := mirrorHandle.Seed(ctx, events, tasks); err != nil {
			return nil, fmt.Errorf("seed mirror: %w", err)
		}
		log.Info("Offline mirror seeded", "events", len(events), "tasks", len(tasks))
	}

	st := store.New(store.Deps{
		Events:        client.Client,
		Tasks:         client.Client,
		Users:         client.Client,
		Identity:      sess,
		Emitter:       notifyHandle.Manager,
		Logger:        log.WithComponent("store").Logger,
		FallbackUsers: data.Summaries(),
	})
	st.LoadFallback(events, tasks)
	st.AttachMirror(mirrorHandle.EventSink(), mirrorHandle.TaskSink())

	return st, nil
}
