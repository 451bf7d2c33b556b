package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/api/tasks",
		Summary:     "List tasks",
		Description: "Tasks of one event, or the caller's assigned tasks without eventId",
		Tags:        []string{"Tasks"},
	}, s.handleListTasks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/api/tasks/{id}",
		Summary:     "Get task",
		Tags:        []string{"Tasks"},
	}, s.handleGetTask)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/api/tasks",
		Summary:       "Create task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/api/tasks/{id}",
		Summary:     "Update task",
		Description: "Partial update. An explicit null assignedToId unassigns the task.",
		Tags:        []string{"Tasks"},
	}, s.handleUpdateTask)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/api/tasks/{id}",
		Summary:       "Delete task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggle-task",
		Method:      http.MethodPost,
		Path:        "/api/tasks/{id}/toggle",
		Summary:     "Toggle task completion",
		Tags:        []string{"Tasks"},
	}, s.handleToggleTask)
}

// === DTOs ===

// ListTasksInput filters the task list.
type ListTasksInput struct {
	EventID string `query:"eventId" doc:"Event ID; omitted lists the caller's assignments"`
}

// TaskIDInput identifies a task.
type TaskIDInput struct {
	ID string `path:"id" doc:"Task ID"`
}

// TaskOutput wraps one task.
type TaskOutput struct {
	Body domain.Task
}

// TasksOutput wraps a task list.
type TasksOutput struct {
	Body []domain.Task
}

// CreateTaskInput wraps the creation request.
type CreateTaskInput struct {
	Body domain.TaskInput
}

// UpdateTaskInput carries a partial update. The body is decoded by hand so
// that a null assignedToId can be told apart from an absent one.
type UpdateTaskInput struct {
	ID      string `path:"id" doc:"Task ID"`
	RawBody []byte `contentType:"application/json"`
}

// RawTaskOutput is the toggle response, which may be empty.
type RawTaskOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// === Handlers ===

func (s *Server) handleListTasks(ctx context.Context, input *ListTasksInput) (*TasksOutput, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if input.EventID != "" {
		eventID := domain.NewEntityID(input.EventID)
		if _, err := s.data.record(eventID); err != nil {
			return nil, err
		}
		return &TasksOutput{Body: s.data.tasksOf(eventID)}, nil
	}

	out := []domain.Task{}
	for _, t := range s.data.tasks {
		if t.AssignedToID.Equal(userID) {
			out = append(out, s.data.withUsername(t))
		}
	}
	return &TasksOutput{Body: out}, nil
}

func (s *Server) handleGetTask(ctx context.Context, input *TaskIDInput) (*TaskOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	i, err := s.data.taskIndex(domain.NewEntityID(input.ID))
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: s.data.withUsername(s.data.tasks[i])}, nil
}

func (s *Server) handleCreateTask(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	in := input.Body
	if in.Description == "" {
		return nil, domainerrors.Validation("description is required")
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, err := s.data.record(in.EventID); err != nil {
		return nil, err
	}
	if !in.AssignedToID.IsZero() {
		if _, ok := s.data.account(in.AssignedToID); !ok {
			return nil, domainerrors.NotFoundf("user %s not found", in.AssignedToID)
		}
	}

	now := s.data.stamp()
	t := domain.Task{
		ID:           s.data.newID(),
		Description:  in.Description,
		DueDate:      in.DueDate,
		AssignedToID: in.AssignedToID,
		EventID:      in.EventID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.data.tasks = append(s.data.tasks, t)
	return &TaskOutput{Body: s.taskResponse(t)}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	patch, err := decodePatch(input.RawBody)
	if err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	i, err := s.data.taskIndex(domain.NewEntityID(input.ID))
	if err != nil {
		return nil, err
	}
	if patch.AssignedToID != nil && !patch.AssignedToID.IsZero() {
		if _, ok := s.data.account(*patch.AssignedToID); !ok {
			return nil, domainerrors.NotFoundf("user %s not found", *patch.AssignedToID)
		}
	}
	if patch.Description != nil && *patch.Description == "" {
		return nil, domainerrors.Validation("description cannot be empty")
	}

	t := &s.data.tasks[i]
	patch.Apply(t)
	t.UpdatedAt = s.data.stamp()
	return &TaskOutput{Body: s.taskResponse(*t)}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, input *TaskIDInput) (*struct{}, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	id := domain.NewEntityID(input.ID)
	if _, err := s.data.taskIndex(id); err != nil {
		return nil, err
	}
	s.data.tasks = slices.DeleteFunc(s.data.tasks, func(t domain.Task) bool { return t.ID.Equal(id) })
	return nil, nil
}

func (s *Server) handleToggleTask(ctx context.Context, input *TaskIDInput) (*RawTaskOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	i, err := s.data.taskIndex(domain.NewEntityID(input.ID))
	if err != nil {
		return nil, err
	}
	t := &s.data.tasks[i]
	t.Completed = !t.Completed
	t.UpdatedAt = s.data.stamp()

	if s.echoMode().EmptyToggleBody {
		return &RawTaskOutput{}, nil
	}
	body, err := json.Marshal(s.taskResponse(*t))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode task")
	}
	return &RawTaskOutput{ContentType: "application/json", Body: body}, nil
}

func decodePatch(raw []byte) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return patch, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid task patch")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		if _, present := fields["assignedToId"]; present && patch.AssignedToID == nil {
			var none domain.EntityID
			patch.AssignedToID = &none
		}
	}
	return patch, nil
}

// taskResponse renders a task for a write response. Callers hold data.mu.
func (s *Server) taskResponse(t domain.Task) domain.Task {
	t = s.data.withUsername(t)
	if s.echoMode().OmitTaskUsername {
		t.AssignedToUsername = ""
	}
	return t
}
