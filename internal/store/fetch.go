package store

import (
	"context"
	"log/slog"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// FetchEvents replaces the live event collection with the server list, or
// with the fallback events the current user takes part in. It never fails.
func (s *Store) FetchEvents(ctx context.Context) []domain.Event {
	defer s.track()()

	payloads, err := s.eventsAPI.ListEvents(ctx)
	user, hasUser := s.currentUser()

	s.mu.Lock()
	if err != nil {
		s.warnFallback("fetch_events", err)
		list := s.events.Filter(Fallback, func(e domain.Event) bool {
			return !hasUser || e.IsParticipant(user.ID)
		})
		for i := range list {
			list[i].RecomputeUnfinished()
		}
		s.events.Replace(Live, list)
	} else {
		list := make([]domain.Event, len(payloads))
		for i, p := range payloads {
			list[i] = p.Normalize()
		}
		s.events.Replace(Live, list)
	}
	out := s.events.List(Live)
	s.mu.Unlock()

	s.emit(notify.EventEventsLoaded, "", "")
	return out
}

// FetchTasks replaces the live task collection with the server list, or with
// the fallback tasks assigned to the current user. It never fails.
func (s *Store) FetchTasks(ctx context.Context) []domain.Task {
	defer s.track()()

	tasks, err := s.tasksAPI.ListTasks(ctx, "")
	user, hasUser := s.currentUser()

	s.mu.Lock()
	if err != nil {
		s.warnFallback("fetch_tasks", err)
		s.tasks.Replace(Live, s.tasks.Filter(Fallback, func(t domain.Task) bool {
			return !hasUser || t.AssignedToID.Equal(user.ID)
		}))
	} else {
		for i := range tasks {
			tasks[i].Normalize()
		}
		s.tasks.Replace(Live, tasks)
	}
	out := s.tasks.List(Live)
	s.mu.Unlock()

	s.emit(notify.EventTasksLoaded, "", "")
	return out
}

// FetchEventByID opens the detail of eventID. When the backend omits the
// task list it is fetched separately, falling back to the mirror. When the
// event itself cannot be fetched the mirror copy is opened, or nothing.
func (s *Store) FetchEventByID(ctx context.Context, eventID domain.EntityID) (domain.Event, bool) {
	defer s.track()()

	p, err := s.eventsAPI.GetEvent(ctx, eventID)
	if err != nil {
		s.warnFallback("fetch_event", err, slog.String("event_id", eventID.String()))

		s.mu.Lock()
		if e, ok := s.events.Get(Fallback, eventID); ok {
			s.current = &e
		} else {
			s.current = nil
		}
		s.mu.Unlock()

		s.emit(notify.EventEventOpened, eventID, eventID)
		return s.CurrentEvent()
	}

	detail := p.Normalize()
	if len(detail.Tasks) == 0 {
		detail.Tasks = s.eventTasks(ctx, eventID)
		if p.TaskCount == nil {
			detail.TaskCount = len(detail.Tasks)
		}
		if p.CompletedTaskCount == nil {
			detail.CompletedTaskCount = 0
			for _, t := range detail.Tasks {
				detail.CompletedTaskCount += boolDelta(t.Completed)
			}
		}
		detail.RecomputeUnfinished()
	}
	if detail.Organizers == nil {
		detail.Organizers = []domain.Participant{}
	}
	if detail.Members == nil {
		detail.Members = []domain.Participant{}
	}

	s.mu.Lock()
	s.current = &detail
	s.mu.Unlock()

	s.emit(notify.EventEventOpened, eventID, eventID)
	return s.CurrentEvent()
}

func (s *Store) eventTasks(ctx context.Context, eventID domain.EntityID) []domain.Task {
	tasks, err := s.tasksAPI.ListTasks(ctx, eventID)
	if err != nil {
		s.warnFallback("fetch_event_tasks", err, slog.String("event_id", eventID.String()))

		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.tasks.Filter(Fallback, func(t domain.Task) bool {
			return t.EventID.Equal(eventID)
		})
	}

	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		t.Normalize()
		if t.EventID.IsZero() {
			t.EventID = eventID
		}
		out[i] = t
	}
	return out
}
