package store

import (
	"context"
	"log/slog"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/id"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// ToggleTask sets the completion of taskID to target, or flips it when target
// is nil. The change and the event's completed count are applied before the
// remote call and rolled back if it fails. An unknown task is a no-op, and so
// is a target equal to the current state.
func (s *Store) ToggleTask(ctx context.Context, eventID, taskID domain.EntityID, target *bool) error {
	s.mu.Lock()
	task, ok := s.findTask(taskID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("toggle on unknown task ignored", slog.String("task_id", taskID.String()))
		return nil
	}

	prev := task.Completed
	next := !prev
	if target != nil {
		next = *target
	}
	if next == prev {
		s.mu.Unlock()
		return nil
	}

	delta := boolDelta(next) - boolDelta(prev)
	s.setCompleted(taskID, next)
	s.updateStats(eventID, 0, delta, 0)
	s.mu.Unlock()
	s.emit(notify.EventTaskChanged, taskID, eventID)

	if _, err := s.tasksAPI.ToggleTask(ctx, taskID); err != nil {
		s.mu.Lock()
		s.setCompleted(taskID, prev)
		s.updateStats(eventID, 0, -delta, 0)
		s.mu.Unlock()
		s.emit(notify.EventTaskChanged, taskID, eventID)

		s.logger.Warn("toggle failed, rolled back",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// setCompleted writes completion to the live task and the open detail.
// Caller holds mu.
func (s *Store) setCompleted(taskID domain.EntityID, completed bool) {
	s.tasks.Update(Live, taskID, func(t *domain.Task) { t.Completed = completed })
	if s.current != nil {
		if i := domain.FindTask(s.current.Tasks, taskID); i >= 0 {
			s.current.Tasks[i].Completed = completed
		}
	}
}

// AddTask creates a task under eventID. When the backend is unreachable the
// task is synthesized locally. Either way the event's task count grows by one.
func (s *Store) AddTask(ctx context.Context, eventID domain.EntityID, in domain.TaskInput) domain.Task {
	defer s.track()()

	in.EventID = eventID
	task, err := s.tasksAPI.CreateTask(ctx, in)
	if err != nil {
		s.warnFallback("add_task", err, slog.String("event_id", eventID.String()))
		task = domain.Task{
			ID:           domain.NewEntityID(s.newID(id.PrefixTask)),
			Description:  in.Description,
			DueDate:      in.DueDate,
			AssignedToID: in.AssignedToID,
			EventID:      eventID,
			CreatedAt:    domain.FormatInstant(s.now()),
		}
	}
	if task.EventID.IsZero() {
		task.EventID = eventID
	}

	task = s.SyncTask(ctx, task)

	s.mu.Lock()
	s.updateStats(eventID, 1, 0, 0)
	s.mu.Unlock()

	s.emit(notify.EventTaskChanged, task.ID, eventID)
	return task
}

// DeleteTask removes taskID remotely, then from every local collection, and
// decrements the event's counts. Failures propagate without local changes.
// An unknown task is a no-op.
func (s *Store) DeleteTask(ctx context.Context, taskID domain.EntityID) error {
	s.mu.RLock()
	task, ok := s.findTask(taskID)
	eventID := task.EventID
	if eventID.IsZero() && s.current != nil {
		eventID = s.current.ID
	}
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	defer s.track()()

	if err := s.tasksAPI.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks.Remove(Both, taskID)
	if s.current != nil && s.current.Tasks != nil {
		if i := domain.FindTask(s.current.Tasks, taskID); i >= 0 {
			s.current.Tasks = append(s.current.Tasks[:i:i], s.current.Tasks[i+1:]...)
		}
	}
	if !eventID.IsZero() {
		s.updateStats(eventID, -1, -boolDelta(task.Completed), 0)
	}
	s.mu.Unlock()

	s.emit(notify.EventTaskDeleted, taskID, eventID)
	return nil
}

// UpdateTask applies patch remotely and syncs the returned task. When the
// backend fails the patch is merged into the local copy instead; the error
// only propagates when no local copy exists.
func (s *Store) UpdateTask(ctx context.Context, taskID domain.EntityID, patch domain.TaskPatch) (domain.Task, error) {
	defer s.track()()

	task, err := s.tasksAPI.UpdateTask(ctx, taskID, patch)
	if err == nil {
		if task.ID.IsZero() {
			task.ID = taskID
		}
		task = s.SyncTask(ctx, task)
		s.emit(notify.EventTaskChanged, task.ID, task.EventID)
		return task, nil
	}

	s.mu.RLock()
	local, ok := s.findTask(taskID)
	s.mu.RUnlock()
	if !ok {
		return domain.Task{}, err
	}

	s.warnFallback("update_task", err, slog.String("task_id", taskID.String()))
	patch.Apply(&local)
	local = s.SyncTask(ctx, local)
	s.emit(notify.EventTaskChanged, local.ID, local.EventID)
	return local, nil
}

// AssignTask assigns taskID to userID (unassigns for a zero userID). The local
// assignment is applied even when the backend fails; only an unknown task is
// an error.
func (s *Store) AssignTask(ctx context.Context, taskID, userID domain.EntityID) error {
	s.mu.RLock()
	local, ok := s.findTask(taskID)
	s.mu.RUnlock()
	if !ok {
		return domainerrors.NotFoundf("task %s not found", taskID)
	}

	defer s.track()()

	task, err := s.tasksAPI.AssignTask(ctx, taskID, userID, local.Description)
	if err != nil {
		s.warnFallback("assign_task", err, slog.String("task_id", taskID.String()))
		task = local
	}
	if task.ID.IsZero() {
		task.ID = taskID
	}
	task.Normalize()
	if !task.AssignedToID.Equal(userID) {
		task.AssignedToID = userID
		task.AssignedToUsername = ""
	}

	task = s.SyncTask(ctx, task)
	s.emit(notify.EventTaskChanged, task.ID, task.EventID)
	return nil
}

// SyncTask normalizes a task from any source, re-derives the assignee's
// username and writes it through to the live collection, the open detail
// and the fallback mirror. It returns the synced task.
//
// The live collection appends the task only when it is assigned to the
// current user; the fallback mirror is only updated in place.
func (s *Store) SyncTask(ctx context.Context, task domain.Task) domain.Task {
	task = task.Clone()
	task.Normalize()

	s.mu.RLock()
	if existing, ok := s.findTask(task.ID); ok && task.EventID.IsZero() {
		task.EventID = existing.EventID
	}
	var (
		name  string
		found bool
	)
	if !task.AssignedToID.IsZero() && s.current != nil {
		if p, ok := s.current.FindParticipant(task.AssignedToID); ok {
			name, found = p.Username, true
		}
	}
	s.mu.RUnlock()

	switch {
	case task.AssignedToID.IsZero():
		task.AssignedToUsername = ""
	case found:
		task.AssignedToUsername = name
	default:
		if u, ok := s.lookupUser(ctx, task.AssignedToID); ok {
			task.AssignedToUsername = u.Username
		}
	}

	user, hasUser := s.currentUser()

	s.mu.Lock()
	defer s.mu.Unlock()

	merge := func(t *domain.Task) { t.MergeFrom(task) }

	if s.tasks.Update(Live, task.ID, merge) == 0 && hasUser && task.AssignedToID.Equal(user.ID) {
		s.tasks.Upsert(Live, task)
	}

	if s.isCurrent(task.EventID) {
		if i := domain.FindTask(s.current.Tasks, task.ID); i >= 0 {
			s.current.Tasks[i].MergeFrom(task)
		} else {
			s.current.Tasks = append(s.current.Tasks, task.Clone())
		}
	}

	s.tasks.Update(Fallback, task.ID, merge)

	if live, ok := s.tasks.Get(Live, task.ID); ok {
		return live
	}
	return task
}

// UpdateEventStats applies signed count deltas to eventID in the live
// collection, the fallback mirror and the open detail, skipping whichever
// does not hold the event.
func (s *Store) UpdateEventStats(eventID domain.EntityID, taskDiff, completedDiff, participantDiff int) {
	s.mu.Lock()
	s.updateStats(eventID, taskDiff, completedDiff, participantDiff)
	s.mu.Unlock()

	s.emit(notify.EventEventUpdated, eventID, eventID)
}

// updateStats is UpdateEventStats without locking. Caller holds mu.
func (s *Store) updateStats(eventID domain.EntityID, taskDiff, completedDiff, participantDiff int) {
	s.events.Update(Both, eventID, func(e *domain.Event) {
		e.AdjustCounts(taskDiff, completedDiff, participantDiff)
	})
	if s.isCurrent(eventID) {
		s.current.AdjustCounts(taskDiff, completedDiff, participantDiff)
	}
}
