package mockapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/mirror"
	"github.com/eventdeck/eventdeck-client/internal/mockapi"
	"github.com/eventdeck/eventdeck-client/internal/remote"
	"github.com/eventdeck/eventdeck-client/internal/seed"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
)

type stack struct {
	server  *mockapi.Server
	client  *remote.Client
	session *session.Session
	store   *store.Store
	mirror  *mirror.DB
}

// newStack wires the client packages against a mock backend the way the
// application does.
func newStack(t *testing.T) *stack {
	t.Helper()
	srv, ts := newTestServer(t)
	clock := func() time.Time { return testNow }

	db, err := mirror.Open("", true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	client := remote.New(remote.Options{
		BaseURL:           ts.URL + "/api",
		ActuatorURL:       ts.URL + "/actuator",
		HTTPClient:        ts.Client(),
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, nil)
	t.Cleanup(client.Close)

	sess := session.New(session.Options{API: client, Tokens: db, Now: clock})
	client.SetAuth(sess, sess.HandleUnauthorized)

	data := seed.MustLoad()
	require.NoError(t, db.Seed(context.Background(), data.Events, data.Tasks))
	events, tasks, ok, err := db.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	st := store.New(store.Deps{
		Events:        client,
		Tasks:         client,
		Users:         client,
		Identity:      sess,
		FallbackUsers: data.Summaries(),
		Now:           clock,
	})
	st.LoadFallback(events, tasks)
	st.AttachMirror(db.EventSink(), db.TaskSink())

	return &stack{server: srv, client: client, session: sess, store: st, mirror: db}
}

func (s *stack) login(t *testing.T, username string) {
	t.Helper()
	user, err := s.session.Login(context.Background(), domain.Credentials{
		Username: username,
		Password: username + "-pass",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, username, user.Username)
}

func TestStack_LoginPersistsToken(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	s.login(t, "alice")

	assert.True(t, s.session.IsAuthenticated())
	assert.True(t, s.session.IsAdmin())
	stored, err := s.mirror.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.session.Token(), stored)

	claims, err := s.session.Claims()
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	s.session.Logout(ctx, true)
	assert.False(t, s.session.IsAuthenticated())
	stored, err = s.mirror.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStack_RejectedTokenClearsSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.session.SetToken(ctx, "opaque-token"))
	require.True(t, s.session.IsAuthenticated())

	_, err := s.client.ListEvents(ctx)

	require.Error(t, err)
	assert.False(t, s.session.IsAuthenticated())
	assert.Empty(t, s.session.Token())
}

func TestStack_FetchAndFallback(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "bob")

	events := s.store.FetchEvents(ctx)
	require.Len(t, events, 2)

	tasks := s.store.FetchTasks(ctx)
	ids := make([]domain.EntityID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	assert.ElementsMatch(t, []domain.EntityID{"202", "205"}, ids)

	s.server.SetOutage(true)

	events = s.store.FetchEvents(ctx)
	require.Len(t, events, 2, "fallback keeps bob's events only")
	tasks = s.store.FetchTasks(ctx)
	assert.Len(t, tasks, 2)

	detail, ok := s.store.FetchEventByID(ctx, "101")
	require.True(t, ok)
	assert.Equal(t, "Spring Product Launch", detail.Title)
}

func TestStack_CreateEventEnrollsCreator(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "carla")
	s.server.SetEchoMode(mockapi.EchoMode{SkipCreatorEnrollment: true})

	event, err := s.store.CreateEvent(ctx, domain.EventInput{
		Title:        "Design Review",
		Description:  "Quarterly review of the design system.",
		Date:         "2026-05-04T10:00:00",
		LocationName: "Studio 3",
		City:         "Lyon",
	})
	require.NoError(t, err)

	assert.True(t, event.HasParticipant(domain.RoleOrganizer, "3"))
	assert.Equal(t, 1, event.ParticipantCount)

	remoteEvent, err := s.client.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, remoteEvent.HasOrganizer("3"), "creator was enrolled on the backend")
}

func TestStack_CreateEventOffline(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "alice")
	s.server.SetOutage(true)

	event, err := s.store.CreateEvent(ctx, domain.EventInput{Title: "Offline Drinks", Date: "2026-05-01T19:00:00"})
	require.NoError(t, err)
	assert.True(t, event.HasParticipant(domain.RoleOrganizer, "1"))

	mirrored, err := s.mirror.Events.Get(ctx, event.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Offline Drinks", mirrored.Title)
}

func TestStack_TaskLifecycle(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "alice")
	s.store.FetchTasks(ctx)
	s.server.SetEchoMode(mockapi.EchoMode{EmptyToggleBody: true, OmitTaskUsername: true})

	require.NoError(t, s.store.ToggleTask(ctx, "101", "203", nil))

	remoteTask, err := s.client.GetTask(ctx, "203")
	require.NoError(t, err)
	assert.True(t, remoteTask.Completed)

	detail, ok := s.store.FetchEventByID(ctx, "101")
	require.True(t, ok)
	assert.Equal(t, 2, detail.CompletedTaskCount)

	created := s.store.AddTask(ctx, "101", domain.TaskInput{
		Description:  "Book the caterer",
		DueDate:      "2026-04-10T12:00:00",
		AssignedToID: "2",
	})
	assert.Equal(t, "bob", created.AssignedToUsername, "username re-derived from the open event")
	current, ok := s.store.CurrentEvent()
	require.True(t, ok)
	assert.Equal(t, 4, current.TaskCount)

	require.NoError(t, s.store.AssignTask(ctx, created.ID, "3"))
	remoteTask, err = s.client.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntityID("3"), remoteTask.AssignedToID)

	require.NoError(t, s.store.DeleteTask(ctx, created.ID))
	_, err = s.client.GetTask(ctx, created.ID)
	assert.Error(t, err)
}
