// Package store is the reconciliation layer between the remote API and the
// in-memory projection of events, tasks and participants.
//
// Every mutation tries the backend first. On success the server's canonical
// result is merged into the live collection, the open event detail and the
// fallback mirror; on failure an equivalent local mutation is applied so that
// state keeps following user intent while offline.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/id"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// EventAPI is the remote surface for events and participants.
type EventAPI interface {
	ListEvents(ctx context.Context) ([]domain.EventPayload, error)
	GetEvent(ctx context.Context, eventID domain.EntityID) (domain.EventPayload, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (domain.EventPayload, error)
	UpdateEvent(ctx context.Context, eventID domain.EntityID, in domain.EventInput) (domain.EventPayload, error)
	DeleteEvent(ctx context.Context, eventID domain.EntityID) error
	AddParticipant(ctx context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) (domain.Participant, error)
	RemoveParticipant(ctx context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) error
}

// TaskAPI is the remote surface for tasks. ListTasks with a zero eventID
// lists the caller's tasks across events.
type TaskAPI interface {
	ListTasks(ctx context.Context, eventID domain.EntityID) ([]domain.Task, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID domain.EntityID, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID domain.EntityID) error
	ToggleTask(ctx context.Context, taskID domain.EntityID) (domain.Task, error)
	AssignTask(ctx context.Context, taskID, userID domain.EntityID, description string) (domain.Task, error)
}

// UserDirectory lists users for display-field hydration.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)
}

// Identity exposes the signed-in user. It may become absent at any time.
type Identity interface {
	CurrentUser() (domain.UserSummary, bool)
}

// Emitter receives change notifications.
type Emitter interface {
	Emit(event notify.Event)
}

type noopEmitter struct{}

func (noopEmitter) Emit(notify.Event) {}

// Deps are the collaborators of a Store.
type Deps struct {
	Events   EventAPI
	Tasks    TaskAPI
	Users    UserDirectory
	Identity Identity
	Emitter  Emitter
	Logger   *slog.Logger

	// FallbackUsers answers directory lookups when Users is unreachable.
	FallbackUsers []domain.UserSummary

	// NewID and Now default to prefixed NanoIDs and time.Now.
	NewID id.Generator
	Now   func() time.Time
}

// Store owns the live and fallback collections and the open event detail.
//
// The mutex is never held across a remote call, so optimistic state is
// observable while a request is in flight. Concurrent operations on the same
// entity are not ordered; the last write wins.
type Store struct {
	eventsAPI EventAPI
	tasksAPI  TaskAPI
	users     UserDirectory
	identity  Identity
	emitter   Emitter
	logger    *slog.Logger

	fallbackUsers []domain.UserSummary
	newID         id.Generator
	now           func() time.Time

	mu      sync.RWMutex
	events  *Repository[domain.Event]
	tasks   *Repository[domain.Task]
	current *domain.Event
	loading int
}

// New creates a Store with empty collections.
func New(d Deps) *Store {
	s := &Store{
		eventsAPI:     d.Events,
		tasksAPI:      d.Tasks,
		users:         d.Users,
		identity:      d.Identity,
		emitter:       d.Emitter,
		logger:        logger.OrDiscard(d.Logger),
		fallbackUsers: d.FallbackUsers,
		newID:         d.NewID,
		now:           d.Now,
		events:        NewRepository[domain.Event](),
		tasks:         NewRepository[domain.Task](),
	}
	if s.emitter == nil {
		s.emitter = noopEmitter{}
	}
	if s.newID == nil {
		s.newID = id.MustGenerate
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// LoadFallback seeds the fallback mirror. Attached sinks are not notified.
func (s *Store) LoadFallback(events []domain.Event, tasks []domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events.Replace(Fallback, events)
	s.tasks.Replace(Fallback, tasks)
}

// AttachMirror persists every later write to the fallback partition.
func (s *Store) AttachMirror(events Sink[domain.Event], tasks Sink[domain.Task]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events.Attach(Fallback, events)
	s.tasks.Attach(Fallback, tasks)
}

// Events returns the live event collection.
func (s *Store) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.List(Live)
}

// Tasks returns the live task collection.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.List(Live)
}

// FallbackEvents returns the fallback event mirror.
func (s *Store) FallbackEvents() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.List(Fallback)
}

// FallbackTasks returns the fallback task mirror.
func (s *Store) FallbackTasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.List(Fallback)
}

// CurrentEvent returns the open event detail, if any.
func (s *Store) CurrentEvent() (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Event{}, false
	}
	return s.current.Clone(), true
}

// CloseEvent forgets the open event detail.
func (s *Store) CloseEvent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Loading reports whether any operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

func (s *Store) track() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}
}

func (s *Store) currentUser() (domain.UserSummary, bool) {
	if s.identity == nil {
		return domain.UserSummary{}, false
	}
	u, ok := s.identity.CurrentUser()
	if !ok || u.ID.IsZero() {
		return domain.UserSummary{}, false
	}
	return u, true
}

// isCurrent reports whether eventID is the open detail. Caller holds mu.
func (s *Store) isCurrent(eventID domain.EntityID) bool {
	return s.current != nil && s.current.ID.Equal(eventID)
}

// findTask looks taskID up in the live collection, then the open detail.
// Caller holds mu.
func (s *Store) findTask(taskID domain.EntityID) (domain.Task, bool) {
	if t, ok := s.tasks.Get(Live, taskID); ok {
		return t, true
	}
	if s.current != nil {
		if i := domain.FindTask(s.current.Tasks, taskID); i >= 0 {
			return s.current.Tasks[i].Clone(), true
		}
	}
	return domain.Task{}, false
}

// lookupUser resolves a directory entry, falling back to the seeded users
// when the directory is unreachable.
func (s *Store) lookupUser(ctx context.Context, userID domain.EntityID) (domain.UserSummary, bool) {
	if s.users != nil {
		users, err := s.users.ListUsers(ctx)
		if err == nil {
			return domain.FindUser(users, userID)
		}
		s.logger.Debug("user directory unavailable, using fallback users",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
	return domain.FindUser(s.fallbackUsers, userID)
}

func (s *Store) emit(t notify.EventType, entityID, eventID domain.EntityID) {
	s.emitter.Emit(notify.ForEvent(t, entityID.String(), eventID.String()))
}

func (s *Store) warnFallback(op string, err error, attrs ...any) {
	args := append([]any{slog.String("op", op), slog.String("error", err.Error())}, attrs...)
	s.logger.Warn("remote call failed, applying local fallback", args...)
}

func boolDelta(b bool) int {
	if b {
		return 1
	}
	return 0
}
