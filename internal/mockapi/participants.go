package mockapi

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

func (s *Server) registerParticipantRoutes() {
	for _, route := range []struct {
		list string
		role domain.ParticipantRole
	}{
		{"members", domain.RoleMember},
		{"organizers", domain.RoleOrganizer},
	} {
		huma.Register(s.api, huma.Operation{
			OperationID: "list-" + route.list,
			Method:      http.MethodGet,
			Path:        "/api/events/{id}/" + route.list,
			Summary:     "List event " + route.list,
			Tags:        []string{"Participants"},
		}, s.listParticipants(route.role))

		huma.Register(s.api, huma.Operation{
			OperationID: "add-" + route.list,
			Method:      http.MethodPost,
			Path:        "/api/events/{id}/" + route.list + "/{userId}",
			Summary:     "Add event " + route.list,
			Tags:        []string{"Participants"},
		}, s.addParticipant(route.role))

		huma.Register(s.api, huma.Operation{
			OperationID:   "remove-" + route.list,
			Method:        http.MethodDelete,
			Path:          "/api/events/{id}/" + route.list + "/{userId}",
			Summary:       "Remove event " + route.list,
			Tags:          []string{"Participants"},
			DefaultStatus: http.StatusNoContent,
		}, s.removeParticipant(route.role))
	}
}

// ParticipantInput identifies a user within an event.
type ParticipantInput struct {
	ID     string `path:"id" doc:"Event ID"`
	UserID string `path:"userId" doc:"User ID"`
}

// ParticipantOutput wraps one participant.
type ParticipantOutput struct {
	Body domain.Participant
}

// ParticipantsOutput wraps a participant list.
type ParticipantsOutput struct {
	Body []domain.Participant
}

func (r *record) roleList(role domain.ParticipantRole) *[]domain.EntityID {
	if role == domain.RoleOrganizer {
		return &r.organizers
	}
	return &r.members
}

func (s *Server) listParticipants(role domain.ParticipantRole) func(context.Context, *EventIDInput) (*ParticipantsOutput, error) {
	return func(ctx context.Context, input *EventIDInput) (*ParticipantsOutput, error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}

		s.data.mu.RLock()
		defer s.data.mu.RUnlock()
		r, err := s.data.record(domain.EntityID(input.ID))
		if err != nil {
			return nil, err
		}
		return &ParticipantsOutput{Body: s.data.participants(*r.roleList(role), role)}, nil
	}
}

func (s *Server) addParticipant(role domain.ParticipantRole) func(context.Context, *ParticipantInput) (*ParticipantOutput, error) {
	return func(ctx context.Context, input *ParticipantInput) (*ParticipantOutput, error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}

		s.data.mu.Lock()
		defer s.data.mu.Unlock()

		r, err := s.data.record(domain.EntityID(input.ID))
		if err != nil {
			return nil, err
		}
		userID := domain.EntityID(input.UserID)
		a, ok := s.data.account(userID)
		if !ok {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		list := r.roleList(role)
		if slices.ContainsFunc(*list, userID.Equal) {
			return nil, domainerrors.Conflict("user already has this role")
		}
		*list = append(*list, a.user.ID)
		return &ParticipantOutput{Body: domain.ParticipantFromUser(a.user.Summary(), role)}, nil
	}
}

func (s *Server) removeParticipant(role domain.ParticipantRole) func(context.Context, *ParticipantInput) (*struct{}, error) {
	return func(ctx context.Context, input *ParticipantInput) (*struct{}, error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}

		s.data.mu.Lock()
		defer s.data.mu.Unlock()

		r, err := s.data.record(domain.EntityID(input.ID))
		if err != nil {
			return nil, err
		}
		userID := domain.EntityID(input.UserID)
		list := r.roleList(role)
		if !slices.ContainsFunc(*list, userID.Equal) {
			return nil, domainerrors.NotFoundf("user %s is not a participant", userID)
		}
		*list = slices.DeleteFunc(*list, userID.Equal)
		return nil, nil
	}
}
