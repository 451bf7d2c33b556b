package views

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// Input is everything the views are derived from.
type Input struct {
	Events []domain.Event
	Tasks  []domain.Task
	UserID domain.EntityID
	Now    time.Time
}

// Snapshot holds every derived view computed from one Input.
type Snapshot struct {
	ComputedAt           time.Time       `json:"computedAt"`
	Upcoming             []domain.Event  `json:"upcoming"`
	Passed               []domain.Event  `json:"passed"`
	InComingYear         []domain.Event  `json:"inComingYear"`
	ByMonth              map[string]int  `json:"byMonth"`
	NearingDueTasks      []DueTask       `json:"nearingDueTasks"`
	Stats                Stats           `json:"stats"`
	UnfinishedTaskCount  int             `json:"unfinishedTaskCount"`
	TasksUrgencySeverity domain.Severity `json:"tasksUrgencySeverity"`
}

// Compute derives every view from in.
func Compute(in Input) Snapshot {
	return Snapshot{
		ComputedAt:           in.Now,
		Upcoming:             Upcoming(in.Events, in.Now),
		Passed:               Passed(in.Events, in.Now),
		InComingYear:         InComingYear(in.Events, in.Now),
		ByMonth:              ByMonth(in.Events, in.Now.Location()),
		NearingDueTasks:      NearingDueTasks(in.Events, in.Tasks, in.Now),
		Stats:                ComputeStats(in.Events, in.Tasks),
		UnfinishedTaskCount:  UnfinishedTaskCount(in.Tasks, in.UserID),
		TasksUrgencySeverity: UserTasksUrgency(in.Tasks, in.UserID, in.Now),
	}
}

// Source exposes the live collections.
type Source interface {
	Events() []domain.Event
	Tasks() []domain.Task
}

// Identity exposes the signed-in user.
type Identity interface {
	CurrentUser() (domain.UserSummary, bool)
}

// triggers are the change events that invalidate a snapshot. Opening an
// event detail does not touch the live collections.
var triggers = []notify.EventType{
	notify.EventEventsLoaded,
	notify.EventTasksLoaded,
	notify.EventEventCreated,
	notify.EventEventUpdated,
	notify.EventEventDeleted,
	notify.EventTaskChanged,
	notify.EventTaskDeleted,
	notify.EventParticipantAdded,
	notify.EventParticipantRemoved,
	notify.EventSessionChanged,
}

// Projector keeps a Snapshot current by recomputing it whenever the store
// or the session reports a change.
type Projector struct {
	source   Source
	identity Identity
	manager  *notify.Manager
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []func(Snapshot)
}

// NewProjector creates a Projector. Call Run to start following changes.
func NewProjector(source Source, identity Identity, manager *notify.Manager, log *slog.Logger) *Projector {
	return &Projector{
		source:   source,
		identity: identity,
		manager:  manager,
		logger:   logger.OrDiscard(log),
		now:      time.Now,
	}
}

// OnChange registers fn to be called with every new snapshot.
func (p *Projector) OnChange(fn func(Snapshot)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Snapshot returns the latest computed views.
func (p *Projector) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Refresh recomputes the snapshot from the current source and identity.
func (p *Projector) Refresh() Snapshot {
	in := Input{
		Events: p.source.Events(),
		Tasks:  p.source.Tasks(),
		Now:    p.now(),
	}
	if p.identity != nil {
		if u, ok := p.identity.CurrentUser(); ok {
			in.UserID = u.ID
		}
	}
	snap := Compute(in)

	p.mu.Lock()
	p.snapshot = snap
	listeners := append([]func(Snapshot){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// Run computes an initial snapshot, then recomputes on every change event
// until ctx is cancelled or the manager shuts down.
func (p *Projector) Run(ctx context.Context) {
	sub := p.manager.Subscribe(triggers...)
	defer p.manager.Unsubscribe(sub.ID)

	p.Refresh()
	p.logger.Debug("projector started", slog.String("subscriber_id", sub.ID))

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			snap := p.Refresh()
			p.logger.Debug("views recomputed",
				slog.String("trigger", string(event.Type)),
				slog.Int("upcoming", len(snap.Upcoming)),
				slog.Int("unfinished_tasks", snap.UnfinishedTaskCount))

		case <-sub.Done:
			return

		case <-ctx.Done():
			return
		}
	}
}
