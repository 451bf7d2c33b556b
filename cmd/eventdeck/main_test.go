package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/mockapi"
)

type cli struct {
	t      *testing.T
	global []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	backend, err := mockapi.New(mockapi.Options{TokenSecret: "cli-test"})
	require.NoError(t, err)
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	return &cli{t: t, global: []string{
		"--env-file", filepath.Join(dir, "missing.env"),
		"--log-level", "error",
		"--api-url", ts.URL + "/api",
		"--actuator-url", ts.URL + "/actuator",
		"--mirror-path", filepath.Join(dir, "mirror"),
	}}
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(append([]string{}, c.global...), args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	c := newCLI(t)

	code, _, stderr := c.run()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "commands:")

	code, _, stderr = c.run("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestRun_SessionSurvivesInvocations(t *testing.T) {
	c := newCLI(t)

	code, out, _ := c.run("whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Not signed in")

	code, out, stderr := c.run("login", "-u", "alice", "-p", "alice-pass")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Signed in as alice")

	code, out, _ = c.run("whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "alice (id 1)")
	assert.Contains(t, out, "admin")

	code, out, _ = c.run("logout")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Signed out")

	code, out, _ = c.run("whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Not signed in")
}

func TestRun_LoginValidation(t *testing.T) {
	c := newCLI(t)

	code, _, stderr := c.run("login", "-u", "alice")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "eventdeck login:")

	code, _, stderr = c.run("login", "-u", "alice", "-p", "wrong-pass")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestRun_EventsAndTasks(t *testing.T) {
	c := newCLI(t)
	code, _, stderr := c.run("login", "-u", "bob", "-p", "bob-pass")
	require.Equal(t, 0, code, stderr)

	code, out, _ := c.run("events")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Spring Product Launch")
	assert.Contains(t, out, "Team Offsite")
	assert.NotContains(t, out, "Year-End Party")

	code, out, _ = c.run("tasks")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Print badges")
	assert.Contains(t, out, "Plan the hiking route")
	assert.NotContains(t, out, "Book the venue")

	code, out, _ = c.run("event", "101")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Spring Product Launch (id 101)")
	assert.Contains(t, out, "Tasks (1/3 done)")
}

func TestRun_TaskCommands(t *testing.T) {
	c := newCLI(t)
	code, _, stderr := c.run("login", "-u", "alice", "-p", "alice-pass")
	require.Equal(t, 0, code, stderr)

	code, out, stderr := c.run("toggle", "101", "203", "--done")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Task 203 is done")

	code, out, _ = c.run("event", "101")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Tasks (2/3 done)")

	code, out, stderr = c.run("assign", "101", "203", "3")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "carla")

	code, _, stderr = c.run("toggle", "101", "203", "--done", "--open")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "exclusive")

	code, out, stderr = c.run("delete-task", "101", "203")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Deleted task 203")

	code, out, _ = c.run("event", "101")
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "Prepare the demo script")
}

func TestRun_AddTaskValidatesForm(t *testing.T) {
	c := newCLI(t)
	code, _, stderr := c.run("login", "-u", "alice", "-p", "alice-pass")
	require.Equal(t, 0, code, stderr)

	code, _, stderr = c.run("add-task", "101", "--description", "ok")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "eventdeck add-task:")

	code, out, stderr := c.run("add-task", "101",
		"--description", "Hire a photographer",
		"--assignee", "2",
		"--due", "2026-04-10T10:00:00Z")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "assigned to bob")
}

func TestRun_EventLifecycle(t *testing.T) {
	c := newCLI(t)
	code, _, stderr := c.run("login", "-u", "carla", "-p", "carla-pass")
	require.Equal(t, 0, code, stderr)

	code, out, stderr := c.run("create-event",
		"--title", "Board Game Night",
		"--description", "Snacks, strategy and friendly rivalry.",
		"--date", "2026-11-20T19:00:00Z",
		"--location", "Community Hall",
		"--street", "Main Street 1",
		"--city", "Springfield",
		"--zip", "12345",
		"--country", "USA")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Created event")

	// 104 has no address yet, so the form needs one.
	code, _, _ = c.run("update-event", "104", "--title", "Customer Workshop II")
	assert.Equal(t, 1, code)

	code, out, stderr = c.run("update-event", "104",
		"--title", "Customer Workshop II",
		"--location", "Harbour Loft",
		"--street", "Dock 2",
		"--city", "Hamburg",
		"--zip", "20457",
		"--country", "Germany")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Customer Workshop II")

	code, out, stderr = c.run("add-participant", "104", "2")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "as member")

	code, _, _ = c.run("add-participant", "104", "2", "--role", "guest")
	assert.Equal(t, 1, code)

	code, out, stderr = c.run("remove-participant", "104", "2")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Removed user 2")

	code, out, stderr = c.run("delete-event", "104")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Deleted event 104")
}

func TestRun_AdminCommands(t *testing.T) {
	c := newCLI(t)
	code, _, stderr := c.run("login", "-u", "alice", "-p", "alice-pass")
	require.Equal(t, 0, code, stderr)

	code, out, _ := c.run("users")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "carla")

	code, out, stderr = c.run("create-user", "--username", "erin", "--email", "erin@example.com", "--password", "erin-pass")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Created user erin")

	code, out, _ = c.run("admin-stats")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Status:       UP")
	assert.Contains(t, out, "Users: 5")

	code, out, _ = c.run("admin-stats", "--json")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"kpis"`)
}

func TestRun_ForbiddenHint(t *testing.T) {
	c := newCLI(t)
	code, _, stderr := c.run("login", "-u", "bob", "-p", "bob-pass")
	require.Equal(t, 0, code, stderr)

	code, _, stderr = c.run("create-user", "--username", "mallory", "--email", "m@example.com", "--password", "mallory-pass")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "needs an admin account")
}
