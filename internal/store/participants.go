package store

import (
	"context"
	"log/slog"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// AddParticipant enrolls userID in eventID under role. The participant id is
// forced to userID and display fields are hydrated from the user directory.
//
// When the backend fails the user is looked up in the directory and enrolled
// locally in the open detail and the fallback mirror; the error only
// propagates when the user is unknown.
func (s *Store) AddParticipant(ctx context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) (domain.Participant, error) {
	defer s.track()()

	p, err := s.eventsAPI.AddParticipant(ctx, eventID, userID, role)
	if err == nil {
		p.ID = userID
		p.Role = role
		if p.NeedsHydration() {
			if u, ok := s.lookupUser(ctx, userID); ok {
				p.Hydrate(u)
			}
		}

		s.mu.Lock()
		s.enroll(eventID, p, role, 0)
		s.mu.Unlock()

		s.emit(notify.EventParticipantAdded, userID, eventID)
		return p, nil
	}

	u, ok := s.lookupUser(ctx, userID)
	if !ok {
		return domain.Participant{}, err
	}
	s.warnFallback("add_participant", err,
		slog.String("event_id", eventID.String()),
		slog.String("user_id", userID.String()))

	p = domain.ParticipantFromUser(u, role)

	s.mu.Lock()
	s.enroll(eventID, p, role, Fallback)
	s.mu.Unlock()

	s.emit(notify.EventParticipantAdded, userID, eventID)
	return p, nil
}

// enroll adds p to the open detail and to the event in ps, then bumps the
// participant count unless every holder already listed p. Caller holds mu.
func (s *Store) enroll(eventID domain.EntityID, p domain.Participant, role domain.ParticipantRole, ps Partition) {
	holders, added := 0, 0
	if s.isCurrent(eventID) {
		holders++
		if s.current.AddParticipant(p, role) {
			added++
		}
	}
	s.events.Update(ps, eventID, func(e *domain.Event) {
		holders++
		if e.AddParticipant(p, role) {
			added++
		}
	})
	if holders == 0 || added > 0 {
		s.updateStats(eventID, 0, 0, 1)
	}
}

// RemoveParticipant drops userID's role in eventID. Local state is updated
// whatever the backend answers; failures are only logged.
func (s *Store) RemoveParticipant(ctx context.Context, eventID, userID domain.EntityID, role domain.ParticipantRole) {
	defer s.track()()

	err := s.eventsAPI.RemoveParticipant(ctx, eventID, userID, role)

	ps := Partition(0)
	if err != nil {
		s.warnFallback("remove_participant", err,
			slog.String("event_id", eventID.String()),
			slog.String("user_id", userID.String()))
		ps = Fallback
	}

	s.mu.Lock()
	holders, removed := 0, 0
	if s.isCurrent(eventID) {
		holders++
		if s.current.RemoveParticipant(userID, role) {
			removed++
		}
	}
	s.events.Update(ps, eventID, func(e *domain.Event) {
		holders++
		if e.RemoveParticipant(userID, role) {
			removed++
		}
	})
	if holders == 0 || removed > 0 {
		s.updateStats(eventID, 0, 0, -1)
	}
	s.mu.Unlock()

	s.emit(notify.EventParticipantRemoved, userID, eventID)
}
