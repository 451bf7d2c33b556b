package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/id"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

var errOutage = domainerrors.Unavailable("backend unreachable")

// fakeAPI answers with the configured functions and fails every call whose
// function is nil, so the zero value models a total outage.
type fakeAPI struct {
	listEvents        func() ([]domain.EventPayload, error)
	getEvent          func(eventID domain.EntityID) (domain.EventPayload, error)
	createEvent       func(in domain.EventInput) (domain.EventPayload, error)
	updateEvent       func(eventID domain.EntityID, in domain.EventInput) (domain.EventPayload, error)
	deleteEvent       func(eventID domain.EntityID) error
	addParticipant    func(eventID, userID domain.EntityID, role domain.ParticipantRole) (domain.Participant, error)
	removeParticipant func(eventID, userID domain.EntityID, role domain.ParticipantRole) error

	listTasks  func(eventID domain.EntityID) ([]domain.Task, error)
	createTask func(in domain.TaskInput) (domain.Task, error)
	updateTask func(taskID domain.EntityID, patch domain.TaskPatch) (domain.Task, error)
	deleteTask func(taskID domain.EntityID) error
	toggleTask func(taskID domain.EntityID) (domain.Task, error)
	assignTask func(taskID, userID domain.EntityID, description string) (domain.Task, error)

	listUsers func() ([]domain.UserSummary, error)
}

func (f *fakeAPI) ListEvents(context.Context) ([]domain.EventPayload, error) {
	if f.listEvents == nil {
		return nil, errOutage
	}
	return f.listEvents()
}

func (f *fakeAPI) GetEvent(_ context.Context, eventID domain.EntityID) (domain.EventPayload, error) {
	if f.getEvent == nil {
		return domain.EventPayload{}, errOutage
	}
	return f.getEvent(eventID)
}

func (f *fakeAPI) CreateEvent(_ context.Context, in domain.EventInput) (domain.EventPayload, error) {
	if f.createEvent == nil {
		return domain.EventPayload{}, errOutage
	}
	return f.createEvent(in)
}

func (f *fakeAPI) UpdateEvent(_ context.Context, eventID domain.EntityID, in domain.EventInput) (domain.EventPayload, error) {
	if f.updateEvent == nil {
		return domain.EventPayload{}, errOutage
	}
	return f.updateEvent(eventID, in)
}

func (f *fakeAPI) DeleteEvent(_ context.Context, eventID domain.EntityID) error {
	if f.deleteEvent == nil {
		return errOutage
	}
	return f.deleteEvent(eventID)
}

func (f *fakeAPI) AddParticipant(_ context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) (domain.Participant, error) {
	if f.addParticipant == nil {
		return domain.Participant{}, errOutage
	}
	return f.addParticipant(eventID, userID, role)
}

func (f *fakeAPI) RemoveParticipant(_ context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) error {
	if f.removeParticipant == nil {
		return errOutage
	}
	return f.removeParticipant(eventID, userID, role)
}

func (f *fakeAPI) ListTasks(_ context.Context, eventID domain.EntityID) ([]domain.Task, error) {
	if f.listTasks == nil {
		return nil, errOutage
	}
	return f.listTasks(eventID)
}

func (f *fakeAPI) CreateTask(_ context.Context, in domain.TaskInput) (domain.Task, error) {
	if f.createTask == nil {
		return domain.Task{}, errOutage
	}
	return f.createTask(in)
}

func (f *fakeAPI) UpdateTask(_ context.Context, taskID domain.EntityID, patch domain.TaskPatch) (domain.Task, error) {
	if f.updateTask == nil {
		return domain.Task{}, errOutage
	}
	return f.updateTask(taskID, patch)
}

func (f *fakeAPI) DeleteTask(_ context.Context, taskID domain.EntityID) error {
	if f.deleteTask == nil {
		return errOutage
	}
	return f.deleteTask(taskID)
}

func (f *fakeAPI) ToggleTask(_ context.Context, taskID domain.EntityID) (domain.Task, error) {
	if f.toggleTask == nil {
		return domain.Task{}, errOutage
	}
	return f.toggleTask(taskID)
}

func (f *fakeAPI) AssignTask(_ context.Context, taskID, userID domain.EntityID, description string) (domain.Task, error) {
	if f.assignTask == nil {
		return domain.Task{}, errOutage
	}
	return f.assignTask(taskID, userID, description)
}

func (f *fakeAPI) ListUsers(context.Context) ([]domain.UserSummary, error) {
	if f.listUsers == nil {
		return nil, errOutage
	}
	return f.listUsers()
}

type fakeIdentity struct {
	mu   sync.Mutex
	user *domain.UserSummary
}

func (f *fakeIdentity) CurrentUser() (domain.UserSummary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return domain.UserSummary{}, false
	}
	return *f.user, true
}

func (f *fakeIdentity) set(u *domain.UserSummary) {
	f.mu.Lock()
	f.user = u
	f.mu.Unlock()
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingEmitter) Emit(e notify.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingEmitter) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

var (
	alice = domain.UserSummary{ID: "1", Username: "alice", Avatar: "a.png", Email: "alice@x"}
	bob   = domain.UserSummary{ID: "2", Username: "bob", Avatar: "b.png", Email: "bob@x"}
	carla = domain.UserSummary{ID: "3", Username: "carla", Avatar: "c.png", Email: "carla@x"}
)

type testEnv struct {
	api      *fakeAPI
	identity *fakeIdentity
	emitter  *recordingEmitter
	store    *Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	api := &fakeAPI{}
	identity := &fakeIdentity{}
	identity.set(&alice)
	emitter := &recordingEmitter{}

	s := New(Deps{
		Events:        api,
		Tasks:         api,
		Users:         api,
		Identity:      identity,
		Emitter:       emitter,
		FallbackUsers: []domain.UserSummary{alice, bob, carla},
		NewID:         id.Sequence(),
		Now: func() time.Time {
			return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		},
	})

	return &testEnv{api: api, identity: identity, emitter: emitter, store: s}
}

// seedEvent returns a detail with the given tasks and consistent counts.
func seedEvent(eventID domain.EntityID, organizers, members []domain.UserSummary, tasks ...domain.Task) domain.Event {
	e := domain.Event{
		ID:         eventID,
		Title:      "event " + eventID.String(),
		Date:       "2026-06-01T10:00:00",
		Organizers: []domain.Participant{},
		Members:    []domain.Participant{},
		Tasks:      []domain.Task{},
	}
	for _, u := range organizers {
		e.AddParticipant(domain.ParticipantFromUser(u, domain.RoleOrganizer), domain.RoleOrganizer)
	}
	for _, u := range members {
		e.AddParticipant(domain.ParticipantFromUser(u, domain.RoleMember), domain.RoleMember)
	}
	for _, t := range tasks {
		t.EventID = eventID
		e.Tasks = append(e.Tasks, t)
		e.TaskCount++
		e.CompletedTaskCount += boolDelta(t.Completed)
	}
	e.ParticipantCount = len(e.Organizers) + len(e.Members)
	e.RecomputeUnfinished()
	return e
}

func ptr[T any](v T) *T {
	return &v
}

func assertInvariant(t *testing.T, events []domain.Event) {
	t.Helper()
	for _, e := range events {
		if e.HasUnfinishedTasks != (e.TaskCount > e.CompletedTaskCount) {
			t.Errorf("event %s: hasUnfinishedTasks=%v with %d/%d", e.ID, e.HasUnfinishedTasks, e.CompletedTaskCount, e.TaskCount)
		}
	}
}
