package store

import (
	"context"
	"log/slog"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/id"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// UntitledEvent names events synthesized without a title.
const UntitledEvent = "Untitled Event"

// CreateEvent creates an event and makes sure its creator is an organizer.
//
// When the backend is unreachable the event is synthesized locally with the
// creator as sole organizer and added to both the live collection and the
// fallback mirror. Without a signed-in user there is nobody to attribute the
// event to and the remote error is returned.
func (s *Store) CreateEvent(ctx context.Context, in domain.EventInput) (domain.Event, error) {
	defer s.track()()

	user, hasUser := s.currentUser()

	p, err := s.eventsAPI.CreateEvent(ctx, in)
	if err != nil {
		if !hasUser {
			return domain.Event{}, err
		}
		s.warnFallback("create_event", err)
		return s.synthesizeEvent(in, user), nil
	}

	if hasUser && !p.HasOrganizer(user.ID) {
		s.enrollCreator(ctx, &p, user)
	}

	event := p.Normalize()

	s.mu.Lock()
	s.events.Upsert(Live, event)
	s.mu.Unlock()

	s.logger.Debug("event created", slog.String("event_id", event.ID.String()))
	s.emit(notify.EventEventCreated, event.ID, event.ID)
	return event, nil
}

// enrollCreator adds user as organizer of the freshly created event and
// refreshes organizers and participant count from the backend. If the user
// still is not listed the record is patched locally.
func (s *Store) enrollCreator(ctx context.Context, p *domain.EventPayload, user domain.UserSummary) {
	if _, err := s.AddParticipant(ctx, p.ID, user.ID, domain.RoleOrganizer); err != nil {
		s.logger.Warn("could not enroll creator as organizer",
			slog.String("event_id", p.ID.String()),
			slog.String("error", err.Error()))
	} else if fresh, err := s.eventsAPI.GetEvent(ctx, p.ID); err != nil {
		s.logger.Warn("could not refresh created event",
			slog.String("event_id", p.ID.String()),
			slog.String("error", err.Error()))
	} else {
		p.Organizers = fresh.Organizers
		p.ParticipantCount = fresh.ParticipantCount
	}

	if !p.HasOrganizer(user.ID) {
		p.Organizers = append(p.Organizers, domain.ParticipantFromUser(user, domain.RoleOrganizer))
		if p.ParticipantCount != nil {
			n := *p.ParticipantCount + 1
			p.ParticipantCount = &n
		}
	}
}

func (s *Store) synthesizeEvent(in domain.EventInput, user domain.UserSummary) domain.Event {
	now := domain.FormatInstant(s.now())

	addr := in.Address()
	addr.ID = domain.NewEntityID(s.newID(id.PrefixAddress))

	event := domain.Event{
		ID:               domain.NewEntityID(s.newID(id.PrefixEvent)),
		Title:            in.Title,
		Description:      in.Description,
		Date:             in.Date,
		LocationName:     in.LocationName,
		Address:          &addr,
		Organizers:       []domain.Participant{domain.ParticipantFromUser(user, domain.RoleOrganizer)},
		Members:          []domain.Participant{},
		Tasks:            []domain.Task{},
		ParticipantCount: 1,
		CreatedAt:        now,
	}
	if event.Title == "" {
		event.Title = UntitledEvent
	}
	if event.Date == "" {
		event.Date = now
	}
	if event.LocationName == "" {
		event.LocationName = domain.LocationPlaceholder
	}
	event.RecomputeUnfinished()

	s.mu.Lock()
	s.events.Upsert(Both, event)
	s.mu.Unlock()

	s.emit(notify.EventEventCreated, event.ID, event.ID)
	return event.Clone()
}

// UpdateEvent updates eventID and merges the server's answer into the live
// record and the open detail, keeping counts the answer leaves out.
//
// When the backend fails the whitelisted input fields are applied directly
// to whichever collections hold the event; the error only propagates when
// none does.
func (s *Store) UpdateEvent(ctx context.Context, eventID domain.EntityID, in domain.EventInput) (domain.Event, error) {
	defer s.track()()

	p, err := s.eventsAPI.UpdateEvent(ctx, eventID, in)

	s.mu.Lock()
	if err == nil {
		if p.ID.IsZero() {
			p.ID = eventID
		}
		s.events.Update(Live, eventID, func(e *domain.Event) { e.Merge(p) })
		if s.isCurrent(eventID) {
			s.current.Merge(p)
		}
		event, ok := s.events.Get(Live, eventID)
		if !ok {
			event = p.Normalize()
		}
		s.mu.Unlock()

		s.emit(notify.EventEventUpdated, eventID, eventID)
		return event, nil
	}

	touched := s.events.Update(Both, eventID, func(e *domain.Event) { e.ApplyInput(in) })
	if s.isCurrent(eventID) {
		s.current.ApplyInput(in)
		touched++
	}
	if touched == 0 {
		s.mu.Unlock()
		return domain.Event{}, err
	}
	event, _, ok := s.events.Find(Both, eventID)
	if !ok {
		event = s.current.Clone()
	}
	s.mu.Unlock()

	s.warnFallback("update_event", err, slog.String("event_id", eventID.String()))
	s.emit(notify.EventEventUpdated, eventID, eventID)
	return event, nil
}

// DeleteEvent deletes eventID remotely, then from both collections, closing
// the detail if it was open. Failures propagate without local changes. Tasks
// of the event are left in place.
func (s *Store) DeleteEvent(ctx context.Context, eventID domain.EntityID) error {
	defer s.track()()

	if err := s.eventsAPI.DeleteEvent(ctx, eventID); err != nil {
		return err
	}

	s.mu.Lock()
	s.events.Remove(Both, eventID)
	if s.isCurrent(eventID) {
		s.current = nil
	}
	s.mu.Unlock()

	s.emit(notify.EventEventDeleted, eventID, eventID)
	return nil
}
