package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/store"
)

var (
	_ store.EventAPI      = (*Client)(nil)
	_ store.TaskAPI       = (*Client)(nil)
	_ store.UserDirectory = (*Client)(nil)
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:     server.URL + "/api",
		ActuatorURL: server.URL + "/actuator",
		HTTPClient:  server.Client(),
	}, nil)
	client.now = func() time.Time { return time.UnixMilli(1767225600000) }
	t.Cleanup(client.Close)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_GetSendsCacheBusting(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "1767225600000", r.URL.Query().Get("_t"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `[{"id": 1, "title": "a", "taskCount": 2}, {"id": "2", "title": "b"}]`)
	})
	client.SetAuth(staticToken("tok"), nil)

	events, err := client.ListEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EntityID("1"), events[0].ID)
	require.NotNil(t, events[0].TaskCount)
	assert.Equal(t, 2, *events[0].TaskCount)
	assert.Nil(t, events[1].TaskCount)
}

func TestClient_WritesDoNotCacheBust(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.URL.Query().Get("_t"))
		assert.Empty(t, r.Header.Get("Authorization"), "no token, no header")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in domain.TaskInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, domain.EntityID("9"), in.EventID)

		writeJSON(w, http.StatusCreated, domain.Task{ID: "t1", Description: in.Description, EventID: in.EventID})
	})

	task, err := client.CreateTask(context.Background(), domain.TaskInput{Description: "x", EventID: "9"})

	require.NoError(t, err)
	assert.Equal(t, domain.EntityID("t1"), task.ID)
}

func TestClient_ListTasksScopedByEvent(t *testing.T) {
	var got []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("eventId"))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := client.ListTasks(context.Background(), "")
	require.NoError(t, err)
	_, err = client.ListTasks(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "42"}, got)
}

func TestClient_ParticipantRouting(t *testing.T) {
	tests := []struct {
		role     domain.ParticipantRole
		wantPath string
	}{
		{domain.RoleOrganizer, "/api/events/5/organizers/7"},
		{domain.RoleMember, "/api/events/5/members/7"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			var paths []string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				paths = append(paths, r.Method+" "+r.URL.Path)
				if r.Method == http.MethodPost {
					writeJSON(w, http.StatusOK, domain.Participant{ID: "7", Username: "bob"})
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			p, err := client.AddParticipant(context.Background(), domain.NewEntityID(5), domain.NewEntityID(7), tt.role)
			require.NoError(t, err)
			assert.Equal(t, "bob", p.Username)
			require.NoError(t, client.RemoveParticipant(context.Background(), "5", "7", tt.role))

			assert.Equal(t, []string{"POST " + tt.wantPath, "DELETE " + tt.wantPath}, paths)
		})
	}
}

func TestClient_ToggleEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/3/toggle", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	task, err := client.ToggleTask(context.Background(), "3")

	require.NoError(t, err)
	assert.True(t, task.ID.IsZero())
}

func TestClient_AssignTaskSendsBothFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"assignedToId": "2", "description": "buy chairs"}`, string(body))
		writeJSON(w, http.StatusOK, domain.Task{ID: "3", AssignedToID: "2"})
	})

	task, err := client.AssignTask(context.Background(), "3", "2", "buy chairs")

	require.NoError(t, err)
	assert.Equal(t, domain.EntityID("2"), task.AssignedToID)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"not found", http.StatusNotFound, `{"message": "no such event"}`, domainerrors.ErrNotFound, "no such event"},
		{"validation", http.StatusBadRequest, `{"detail": "title required"}`, domainerrors.ErrValidation, "title required"},
		{"server error", http.StatusInternalServerError, `boom`, domainerrors.ErrInternal, "Internal Server Error"},
		{"unavailable", http.StatusServiceUnavailable, `{"title": "Service Unavailable"}`, domainerrors.ErrUnavailable, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.GetEvent(context.Background(), "1")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var remoteErr *Error
			require.True(t, errors.As(err, &remoteErr))
			assert.Equal(t, "get_event", remoteErr.Op)
			assert.Equal(t, tt.status, remoteErr.Status)
			assert.Equal(t, "/events/1", remoteErr.Path)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := New(Options{BaseURL: url + "/api", ActuatorURL: url + "/actuator", Timeout: time.Second}, nil)
	defer client.Close()

	_, err := client.ListEvents(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
	var remoteErr *Error
	require.True(t, errors.As(err, &remoteErr))
	assert.Zero(t, remoteErr.Status)
}

func TestClient_UnauthorizedInvokesHandler(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"server message", `{"message": "Token revoked"}`, "Token revoked"},
		{"default message", ``, DefaultUnauthorizedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, tt.body)
			})

			var calls atomic.Int32
			var got string
			client.SetAuth(staticToken("expired"), func(msg string) {
				calls.Add(1)
				got = msg
			})

			_, err := client.CurrentUser(context.Background())

			assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, tt.wantMsg, got)
		})
	}
}

func TestClient_Login(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, domain.Token{Token: "jwt"})
	})

	token, err := client.Login(context.Background(), domain.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)

	_, err = client.Login(context.Background(), domain.Credentials{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestClient_ActuatorMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/actuator/health":
			writeJSON(w, http.StatusOK, domain.Health{Status: "UP"})
		case "/actuator/metrics/http.server.requests":
			assert.Equal(t, "uri:/api/events", r.URL.Query().Get("tag"))
			writeJSON(w, http.StatusOK, domain.Metric{
				Name: "http.server.requests",
				Measurements: []domain.Measurement{
					{Statistic: "COUNT", Value: 12},
					{Statistic: "TOTAL_TIME", Value: 0.5},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UP", health.Status)

	m, err := client.RequestMetrics(context.Background(), "/api/events")
	require.NoError(t, err)
	assert.Equal(t, 12.0, m.Statistic("COUNT"))
	assert.Equal(t, 0.5, m.Statistic("TOTAL_TIME"))
}

func TestCall_Resource(t *testing.T) {
	tests := []struct {
		c    call
		want string
	}{
		{call{path: "/events/5/members/7"}, "events"},
		{call{path: "/tasks"}, "tasks"},
		{call{path: "/me"}, "me"},
		{call{path: "/health", actuator: true}, "actuator"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.resource())
	}
}
