package mockapi

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "List events",
		Description: "Events the caller takes part in; every event for administrators",
		Tags:        []string{"Events"},
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-event",
		Method:      http.MethodGet,
		Path:        "/api/events/{id}",
		Summary:     "Get event detail",
		Tags:        []string{"Events"},
	}, s.handleGetEvent)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-event",
		Method:        http.MethodPost,
		Path:          "/api/events",
		Summary:       "Create event",
		Description:   "Creates an event and enrolls the caller as organizer",
		Tags:          []string{"Events"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-event",
		Method:      http.MethodPut,
		Path:        "/api/events/{id}",
		Summary:     "Update event",
		Tags:        []string{"Events"},
	}, s.handleUpdateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-event",
		Method:        http.MethodDelete,
		Path:          "/api/events/{id}",
		Summary:       "Delete event",
		Description:   "Deletes an event with its tasks",
		Tags:          []string{"Events"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteEvent)
}

// === DTOs ===

// EventIDInput identifies an event.
type EventIDInput struct {
	ID string `path:"id" doc:"Event ID"`
}

// EventOutput wraps one event.
type EventOutput struct {
	Body domain.EventPayload
}

// EventsOutput wraps the event list.
type EventsOutput struct {
	Body []domain.EventPayload
}

// CreateEventInput wraps the creation request.
type CreateEventInput struct {
	Body domain.EventInput
}

// UpdateEventInput wraps the update request.
type UpdateEventInput struct {
	ID   string `path:"id" doc:"Event ID"`
	Body domain.EventInput
}

// === Handlers ===

func (s *Server) handleListEvents(ctx context.Context, _ *struct{}) (*EventsOutput, error) {
	claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	userID := domain.EntityID(claims.Subject)
	admin := slices.Contains(claims.Authorities, domain.AuthorityAdmin)
	omitCounts := s.echoMode().OmitListCounts

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := []domain.EventPayload{}
	for _, r := range s.data.events {
		if !admin && !r.isParticipant(userID) {
			continue
		}
		p := s.data.summary(r)
		if omitCounts {
			p.ParticipantCount, p.TaskCount, p.CompletedTaskCount, p.HasUnfinishedTasks = nil, nil, nil, nil
		}
		out = append(out, p)
	}
	return &EventsOutput{Body: out}, nil
}

func (s *Server) handleGetEvent(ctx context.Context, input *EventIDInput) (*EventOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	r, err := s.data.record(domain.EntityID(input.ID))
	if err != nil {
		return nil, err
	}
	return &EventOutput{Body: s.data.detail(r)}, nil
}

func (s *Server) handleCreateEvent(ctx context.Context, input *CreateEventInput) (*EventOutput, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	in := input.Body
	if in.Title == "" || in.Date == "" {
		return nil, domainerrors.Validation("title and date are required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	now := s.data.stamp()
	addr := in.Address()
	addr.ID = s.data.newID()
	r := &record{event: domain.Event{
		ID:           s.data.newID(),
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		LocationName: in.LocationName,
		Address:      &addr,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	if r.event.LocationName == "" {
		r.event.LocationName = domain.LocationPlaceholder
	}
	if !s.echoMode().SkipCreatorEnrollment {
		r.organizers = []domain.EntityID{userID}
	}
	s.data.events = append(s.data.events, r)

	return &EventOutput{Body: s.data.detail(r)}, nil
}

func (s *Server) handleUpdateEvent(ctx context.Context, input *UpdateEventInput) (*EventOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	r, err := s.data.record(domain.EntityID(input.ID))
	if err != nil {
		return nil, err
	}
	r.event.ApplyInput(input.Body)
	r.event.UpdatedAt = s.data.stamp()
	return &EventOutput{Body: s.data.detail(r)}, nil
}

func (s *Server) handleDeleteEvent(ctx context.Context, input *EventIDInput) (*struct{}, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	id := domain.EntityID(input.ID)
	if _, err := s.data.record(id); err != nil {
		return nil, err
	}
	s.data.events = slices.DeleteFunc(s.data.events, func(r *record) bool { return r.event.ID.Equal(id) })
	s.data.tasks = slices.DeleteFunc(s.data.tasks, func(t domain.Task) bool { return t.EventID.Equal(id) })
	return nil, nil
}
