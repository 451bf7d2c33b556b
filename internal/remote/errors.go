package remote

import (
	"fmt"
)

// DefaultUnauthorizedMessage is passed to the unauthorized handler when the
// backend gives no reason.
const DefaultUnauthorizedMessage = "Session expired. Please login again."

// Error wraps a failed backend call with its context. Err is a coded domain
// error, so callers can match it with errors.Is against the errors package
// sentinels.
type Error struct {
	Op     string // Operation: "list_events", "toggle_task", ...
	Method string
	Path   string
	Status int // 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s [%s %s]: %d: %v", e.Op, e.Method, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("remote %s [%s %s]: %v", e.Op, e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, method, path string, status int, err error) error {
	return &Error{
		Op:     op,
		Method: method,
		Path:   path,
		Status: status,
		Err:    err,
	}
}

// errorBody covers the backend's {"message"} shape and RFC 9457 problem
// documents.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
}

func (b errorBody) text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.Detail != "":
		return b.Detail
	default:
		return b.Title
	}
}
