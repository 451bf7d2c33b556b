package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// ListTasks returns the caller's tasks, or the tasks of eventID when set.
func (c *Client) ListTasks(ctx context.Context, eventID domain.EntityID) ([]domain.Task, error) {
	var query url.Values
	if !eventID.IsZero() {
		query = url.Values{"eventId": {eventID.String()}}
	}

	var out []domain.Task
	if err := c.get(ctx, "list_tasks", "/tasks", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, taskID domain.EntityID) (domain.Task, error) {
	var out domain.Task
	if err := c.get(ctx, "get_task", "/tasks/"+seg(taskID), nil, &out); err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

// CreateTask creates a task under in.EventID.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	var out domain.Task
	if err := c.send(ctx, "create_task", http.MethodPost, "/tasks", in, &out); err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, taskID domain.EntityID, patch domain.TaskPatch) (domain.Task, error) {
	var out domain.Task
	if err := c.send(ctx, "update_task", http.MethodPut, "/tasks/"+seg(taskID), patch, &out); err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID domain.EntityID) error {
	return c.send(ctx, "delete_task", http.MethodDelete, "/tasks/"+seg(taskID), nil, nil)
}

// ToggleTask flips a task's completion server-side. The backend may answer
// with an empty body, in which case the zero Task is returned.
func (c *Client) ToggleTask(ctx context.Context, taskID domain.EntityID) (domain.Task, error) {
	var out domain.Task
	if err := c.send(ctx, "toggle_task", http.MethodPost, "/tasks/"+seg(taskID)+"/toggle", nil, &out); err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

// AssignTask sets the assignee of a task. The description is resent because
// the backend treats the update as a replacement of both fields. A zero
// userID unassigns.
func (c *Client) AssignTask(ctx context.Context, taskID, userID domain.EntityID, description string) (domain.Task, error) {
	patch := domain.TaskPatch{AssignedToID: &userID, Description: &description}

	var out domain.Task
	if err := c.send(ctx, "assign_task", http.MethodPut, "/tasks/"+seg(taskID), patch, &out); err != nil {
		return domain.Task{}, err
	}
	return out, nil
}
