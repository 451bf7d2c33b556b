package remote

import (
	"context"
	"net/http"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// ListEvents returns the events visible to the caller.
func (c *Client) ListEvents(ctx context.Context) ([]domain.EventPayload, error) {
	var out []domain.EventPayload
	if err := c.get(ctx, "list_events", "/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvent returns one event, usually in its detail shape.
func (c *Client) GetEvent(ctx context.Context, eventID domain.EntityID) (domain.EventPayload, error) {
	var out domain.EventPayload
	if err := c.get(ctx, "get_event", "/events/"+seg(eventID), nil, &out); err != nil {
		return domain.EventPayload{}, err
	}
	return out, nil
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, in domain.EventInput) (domain.EventPayload, error) {
	var out domain.EventPayload
	if err := c.send(ctx, "create_event", http.MethodPost, "/events", in, &out); err != nil {
		return domain.EventPayload{}, err
	}
	return out, nil
}

// UpdateEvent replaces the editable fields of an event.
func (c *Client) UpdateEvent(ctx context.Context, eventID domain.EntityID, in domain.EventInput) (domain.EventPayload, error) {
	var out domain.EventPayload
	if err := c.send(ctx, "update_event", http.MethodPut, "/events/"+seg(eventID), in, &out); err != nil {
		return domain.EventPayload{}, err
	}
	return out, nil
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, eventID domain.EntityID) error {
	return c.send(ctx, "delete_event", http.MethodDelete, "/events/"+seg(eventID), nil, nil)
}

// ListMembers returns the members of an event.
func (c *Client) ListMembers(ctx context.Context, eventID domain.EntityID) ([]domain.Participant, error) {
	var out []domain.Participant
	if err := c.get(ctx, "list_members", "/events/"+seg(eventID)+"/members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrganizers returns the organizers of an event.
func (c *Client) ListOrganizers(ctx context.Context, eventID domain.EntityID) ([]domain.Participant, error) {
	var out []domain.Participant
	if err := c.get(ctx, "list_organizers", "/events/"+seg(eventID)+"/organizers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func participantPath(eventID, userID domain.EntityID, role domain.ParticipantRole) string {
	list := "/members/"
	if role == domain.RoleOrganizer {
		list = "/organizers/"
	}
	return "/events/" + seg(eventID) + list + seg(userID)
}

// AddParticipant enrolls a user in an event under role.
func (c *Client) AddParticipant(ctx context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) (domain.Participant, error) {
	var out domain.Participant
	if err := c.send(ctx, "add_participant", http.MethodPost, participantPath(eventID, userID, role), nil, &out); err != nil {
		return domain.Participant{}, err
	}
	return out, nil
}

// RemoveParticipant drops a user's role in an event.
func (c *Client) RemoveParticipant(ctx context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) error {
	return c.send(ctx, "remove_participant", http.MethodDelete, participantPath(eventID, userID, role), nil, nil)
}
