package domain

// Task is a to-do item under an event.
//
// AssignedToUsername is denormalized for display and is always re-derived
// from AssignedToID; it is never authoritative.
type Task struct {
	ID                 EntityID `json:"id"`
	Description        string   `json:"description"`
	Completed          bool     `json:"completed"`
	DueDate            string   `json:"dueDate,omitempty"`
	AssignedToID       EntityID `json:"assignedToId,omitempty"`
	AssignedToUsername string   `json:"assignedToUsername,omitempty"`
	EventID            EntityID `json:"eventId,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updatedAt,omitempty"`

	// AssignedTo is set by detail payloads that nest the assignee instead of
	// flattening it. Normalize folds it into the flat fields.
	AssignedTo *UserSummary `json:"assignedTo,omitempty"`
}

// Key returns the task identifier.
func (t Task) Key() EntityID {
	return t.ID
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		t.AssignedTo = &a
	}
	return t
}

// Normalize folds a nested assignee into AssignedToID/AssignedToUsername.
func (t *Task) Normalize() {
	if t.AssignedTo == nil {
		return
	}
	if t.AssignedToID.IsZero() {
		t.AssignedToID = t.AssignedTo.ID
	}
	if t.AssignedToUsername == "" && t.AssignedTo.ID.Equal(t.AssignedToID) {
		t.AssignedToUsername = t.AssignedTo.Username
	}
	t.AssignedTo = nil
}

// MergeFrom overlays fields present in u onto t. Assignment and completion
// always follow u; text fields only when u carries them.
func (t *Task) MergeFrom(u Task) {
	if !u.ID.IsZero() {
		t.ID = u.ID
	}
	if u.Description != "" {
		t.Description = u.Description
	}
	t.Completed = u.Completed
	if u.DueDate != "" {
		t.DueDate = u.DueDate
	}
	t.AssignedToID = u.AssignedToID
	t.AssignedToUsername = u.AssignedToUsername
	if !u.EventID.IsZero() {
		t.EventID = u.EventID
	}
	if u.CreatedAt != "" {
		t.CreatedAt = u.CreatedAt
	}
	if u.UpdatedAt != "" {
		t.UpdatedAt = u.UpdatedAt
	}
}

// TaskInput is the body of a task creation request.
type TaskInput struct {
	Description  string   `json:"description"`
	DueDate      string   `json:"dueDate,omitempty"`
	AssignedToID EntityID `json:"assignedToId,omitempty"`
	EventID      EntityID `json:"eventId"`
}

// TaskPatch is a partial task update. Nil fields are left untouched; a
// non-nil empty AssignedToID unassigns the task.
type TaskPatch struct {
	Description  *string   `json:"description,omitempty"`
	Completed    *bool     `json:"completed,omitempty"`
	DueDate      *string   `json:"dueDate,omitempty"`
	AssignedToID *EntityID `json:"assignedToId,omitempty"`
}

// Apply merges the patch into t. Changing the assignee drops the stale
// username so it is re-derived.
func (p TaskPatch) Apply(t *Task) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.AssignedToID != nil && !p.AssignedToID.Equal(t.AssignedToID) {
		t.AssignedToID = *p.AssignedToID
		t.AssignedToUsername = ""
	}
}

// FindTask returns the index of the task with id in tasks, or -1.
func FindTask(tasks []Task, id EntityID) int {
	for i := range tasks {
		if tasks[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}
