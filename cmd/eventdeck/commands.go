package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/samber/do/v2"

	"github.com/eventdeck/eventdeck-client/internal/admin"
	"github.com/eventdeck/eventdeck-client/internal/color"
	"github.com/eventdeck/eventdeck-client/internal/di/providers"
	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/session"
	"github.com/eventdeck/eventdeck-client/internal/store"
	"github.com/eventdeck/eventdeck-client/internal/validation"
	"github.com/eventdeck/eventdeck-client/internal/views"
)

// app is what every subcommand runs against.
type app struct {
	store     *store.Store
	session   *session.Session
	projector *views.Projector
	admin     *admin.Service
	validator *validation.Validator
	logger    *logger.Logger
	out       io.Writer
	paint     color.Painter
}

func newApp(injector do.Injector, out io.Writer) *app {
	return &app{
		store:     do.MustInvoke[*store.Store](injector),
		session:   do.MustInvoke[*session.Session](injector),
		projector: do.MustInvoke[*providers.ProjectorHandle](injector).Projector,
		admin:     do.MustInvoke[*admin.Service](injector),
		validator: do.MustInvoke[*validation.Validator](injector),
		logger:    do.MustInvoke[*logger.Logger](injector).WithComponent("cli"),
		out:       out,
		paint:     color.NewPainter(out),
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "sign in (-u user -p password)", runLogin},
	{"register", "create an account", runRegister},
	{"logout", "sign out and forget the stored token", runLogout},
	{"whoami", "show the signed-in account", runWhoami},
	{"events", "list your events", runEvents},
	{"event", "show one event: event <id>", runEvent},
	{"tasks", "list tasks assigned to you", runTasks},
	{"dashboard", "upcoming events, due tasks and totals", runDashboard},
	{"create-event", "create an event", runCreateEvent},
	{"update-event", "edit an event: update-event <id>", runUpdateEvent},
	{"delete-event", "delete an event: delete-event <id>", runDeleteEvent},
	{"add-task", "add a task: add-task <eventId>", runAddTask},
	{"toggle", "flip a task: toggle <eventId> <taskId> [--done|--open]", runToggle},
	{"assign", "reassign a task: assign <eventId> <taskId> <userId>", runAssign},
	{"delete-task", "delete a task: delete-task <eventId> <taskId>", runDeleteTask},
	{"add-participant", "enroll a user: add-participant <eventId> <userId>", runAddParticipant},
	{"remove-participant", "unenroll a user: remove-participant <eventId> <userId>", runRemoveParticipant},
	{"users", "list accounts (admin)", runUsers},
	{"create-user", "create an account (admin)", runCreateUser},
	{"update-user", "edit an account (admin): update-user <id>", runUpdateUser},
	{"delete-user", "delete an account (admin): delete-user <id>", runDeleteUser},
	{"admin-stats", "backend health, metrics and totals (admin)", runAdminStats},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// parseArgs parses fs from args, allowing flags after positional arguments,
// and returns the positionals. want is the exact positional count.
func parseArgs(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	if len(positional) != want {
		return nil, fmt.Errorf("expected %d argument(s), got %d", want, len(positional))
	}
	return positional, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func entityIDs(args []string) []domain.EntityID {
	ids := make([]domain.EntityID, len(args))
	for i, a := range args {
		ids[i] = domain.NewEntityID(a)
	}
	return ids
}

// loadUser fills in the account behind a restored token. Offline, the
// session keeps its token and commands fall back to the mirror.
func (a *app) loadUser(ctx context.Context) {
	if !a.session.IsAuthenticated() || a.session.IsUserLoaded() {
		return
	}
	if _, err := a.session.FetchUser(ctx); err != nil {
		a.logger.Warn("could not load account", "error", err)
	}
}

// openEvent makes eventID the current event so its tasks can be edited.
func (a *app) openEvent(ctx context.Context, eventID domain.EntityID) (domain.Event, error) {
	a.loadUser(ctx)
	ev, ok := a.store.FetchEventByID(ctx, eventID)
	if !ok {
		return domain.Event{}, fmt.Errorf("event %s not found", eventID)
	}
	return ev, nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	var form validation.LoginForm
	fs.StringVar(&form.Username, "u", "", "username")
	fs.StringVar(&form.Password, "p", "", "password")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}

	u, err := a.session.Login(ctx, form.Credentials())
	if err != nil {
		return err
	}
	if u == nil {
		return errors.New("backend did not accept the session")
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Username)
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	var form validation.RegisterForm
	fs.StringVar(&form.Username, "username", "", "username")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}

	u, err := a.session.Register(ctx, form.Registration())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s (id %s). Sign in with: eventdeck login -u %s\n", u.Username, u.ID, u.Username)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if _, err := parseArgs(newFlagSet("logout"), args, 0); err != nil {
		return err
	}
	a.session.Logout(ctx, true)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("whoami")
	asJSON := fs.Bool("json", false, "print JSON")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	u, err := a.session.FetchUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	if *asJSON {
		return writeJSON(a.out, u)
	}
	printUser(a.out, a.paint, *u)
	return nil
}

func runEvents(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("events")
	asJSON := fs.Bool("json", false, "print JSON")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	a.loadUser(ctx)

	events := a.store.FetchEvents(ctx)
	if *asJSON {
		return writeJSON(a.out, events)
	}
	printEvents(a.out, events)
	return nil
}

func runEvent(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("event")
	asJSON := fs.Bool("json", false, "print JSON")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	ev, err := a.openEvent(ctx, domain.NewEntityID(pos[0]))
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(a.out, ev)
	}
	printEventDetail(a.out, a.paint, ev)
	return nil
}

func runTasks(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("tasks")
	asJSON := fs.Bool("json", false, "print JSON")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	a.loadUser(ctx)

	tasks := a.store.FetchTasks(ctx)
	if *asJSON {
		return writeJSON(a.out, tasks)
	}
	printTasks(a.out, a.paint, tasks)
	return nil
}

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dashboard")
	asJSON := fs.Bool("json", false, "print JSON")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	a.loadUser(ctx)

	a.store.FetchEvents(ctx)
	a.store.FetchTasks(ctx)
	snap := a.projector.Refresh()
	if *asJSON {
		return writeJSON(a.out, snap)
	}
	printDashboard(a.out, a.paint, snap)
	return nil
}

// eventFlags binds the event form fields to fs.
func eventFlags(fs *flag.FlagSet, form *validation.EventForm) {
	fs.StringVar(&form.Title, "title", "", "event title")
	fs.StringVar(&form.Description, "description", "", "event description")
	fs.StringVar(&form.Date, "date", "", "start time, RFC 3339")
	fs.StringVar(&form.LocationName, "location", "", "venue name")
	fs.StringVar(&form.Street, "street", "", "street address")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.ZipCode, "zip", "", "postal code")
	fs.StringVar(&form.Country, "country", "", "country")
}

func runCreateEvent(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create-event")
	var form validation.EventForm
	eventFlags(fs, &form)
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}
	a.loadUser(ctx)

	ev, err := a.store.CreateEvent(ctx, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created event %s: %s\n", ev.ID, ev.Title)
	return nil
}

func runUpdateEvent(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("update-event")
	var form validation.EventForm
	eventFlags(fs, &form)
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	ev, err := a.openEvent(ctx, domain.NewEntityID(pos[0]))
	if err != nil {
		return err
	}
	fillEventForm(&form, ev)
	if err := a.validator.Validate(form); err != nil {
		return err
	}

	updated, err := a.store.UpdateEvent(ctx, ev.ID, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated event %s: %s\n", updated.ID, updated.Title)
	return nil
}

// fillEventForm keeps the stored value of every field left blank.
func fillEventForm(form *validation.EventForm, ev domain.Event) {
	keep := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	keep(&form.Title, ev.Title)
	keep(&form.Description, ev.Description)
	keep(&form.Date, ev.Date)
	if ev.Address != nil {
		keep(&form.LocationName, ev.Address.LocationName)
		keep(&form.Street, ev.Address.Street)
		keep(&form.City, ev.Address.City)
		keep(&form.ZipCode, ev.Address.ZipCode)
		keep(&form.Country, ev.Address.Country)
	}
	keep(&form.LocationName, ev.LocationName)
}

func runDeleteEvent(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("delete-event"), args, 1)
	if err != nil {
		return err
	}
	a.loadUser(ctx)

	id := domain.NewEntityID(pos[0])
	if err := a.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted event %s\n", id)
	return nil
}

func runAddTask(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add-task")
	var form validation.TaskForm
	var assignee string
	fs.StringVar(&form.Description, "description", "", "what needs doing")
	fs.StringVar(&assignee, "assignee", "", "user id of the assignee")
	fs.StringVar(&form.DueDate, "due", "", "due time, RFC 3339")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	form.AssignedToID = domain.NewEntityID(assignee)
	if err := a.validator.Validate(form); err != nil {
		return err
	}

	ev, err := a.openEvent(ctx, domain.NewEntityID(pos[0]))
	if err != nil {
		return err
	}
	task := a.store.AddTask(ctx, ev.ID, form.Input(ev.ID))
	fmt.Fprintf(a.out, "Added task %s to %s", task.ID, ev.Title)
	if task.AssignedToUsername != "" {
		fmt.Fprintf(a.out, " (assigned to %s)", task.AssignedToUsername)
	}
	fmt.Fprintln(a.out)
	return nil
}

func runToggle(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("toggle")
	done := fs.Bool("done", false, "mark completed")
	open := fs.Bool("open", false, "mark not completed")
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	if *done && *open {
		return errors.New("--done and --open are exclusive")
	}

	var target *bool
	switch {
	case *done:
		target = done
	case *open:
		v := false
		target = &v
	}

	ids := entityIDs(pos)
	if _, err := a.openEvent(ctx, ids[0]); err != nil {
		return err
	}
	if err := a.store.ToggleTask(ctx, ids[0], ids[1], target); err != nil {
		return err
	}

	task, ok := currentTask(a.store, ids[1])
	if !ok {
		return fmt.Errorf("task %s not found in event %s", ids[1], ids[0])
	}
	state := "open"
	if task.Completed {
		state = "done"
	}
	fmt.Fprintf(a.out, "Task %s is %s\n", task.ID, state)
	return nil
}

func currentTask(st *store.Store, taskID domain.EntityID) (domain.Task, bool) {
	ev, ok := st.CurrentEvent()
	if !ok {
		return domain.Task{}, false
	}
	for _, t := range ev.Tasks {
		if t.ID.Equal(taskID) {
			return t, true
		}
	}
	return domain.Task{}, false
}

func runAssign(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("assign"), args, 3)
	if err != nil {
		return err
	}

	ids := entityIDs(pos)
	if _, err := a.openEvent(ctx, ids[0]); err != nil {
		return err
	}
	if err := a.store.AssignTask(ctx, ids[1], ids[2]); err != nil {
		return err
	}

	if task, ok := currentTask(a.store, ids[1]); ok && task.AssignedToUsername != "" {
		fmt.Fprintf(a.out, "Task %s assigned to %s\n", task.ID, task.AssignedToUsername)
		return nil
	}
	fmt.Fprintf(a.out, "Task %s assigned to user %s\n", ids[1], ids[2])
	return nil
}

func runDeleteTask(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("delete-task"), args, 2)
	if err != nil {
		return err
	}

	ids := entityIDs(pos)
	if _, err := a.openEvent(ctx, ids[0]); err != nil {
		return err
	}
	if err := a.store.DeleteTask(ctx, ids[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted task %s\n", ids[1])
	return nil
}

func participantForm(name string, args []string) (validation.ParticipantForm, domain.EntityID, error) {
	fs := newFlagSet(name)
	role := fs.String("role", string(domain.RoleMember), "MEMBER or ORGANIZER")
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return validation.ParticipantForm{}, "", err
	}
	ids := entityIDs(pos)
	form := validation.ParticipantForm{
		UserID: ids[1],
		Role:   domain.ParticipantRole(strings.ToUpper(*role)),
	}
	return form, ids[0], nil
}

func runAddParticipant(ctx context.Context, a *app, args []string) error {
	form, eventID, err := participantForm("add-participant", args)
	if err != nil {
		return err
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}
	if _, err := a.openEvent(ctx, eventID); err != nil {
		return err
	}

	p, err := a.store.AddParticipant(ctx, eventID, form.UserID, form.Role)
	if err != nil {
		return err
	}
	name := p.Username
	if name == "" {
		name = "user " + p.ID.String()
	}
	fmt.Fprintf(a.out, "Added %s to event %s as %s\n", name, eventID, strings.ToLower(string(form.Role)))
	return nil
}

func runRemoveParticipant(ctx context.Context, a *app, args []string) error {
	form, eventID, err := participantForm("remove-participant", args)
	if err != nil {
		return err
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}
	if _, err := a.openEvent(ctx, eventID); err != nil {
		return err
	}

	a.store.RemoveParticipant(ctx, eventID, form.UserID, form.Role)
	fmt.Fprintf(a.out, "Removed user %s from event %s\n", form.UserID, eventID)
	return nil
}

func runUsers(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("users")
	asJSON := fs.Bool("json", false, "print JSON")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	users := a.admin.FetchUsers(ctx)
	if *asJSON {
		return writeJSON(a.out, users)
	}
	printUsers(a.out, users)
	return nil
}

// userFlags binds the account form to fs. Booleans are inverted so the
// defaults of a new account need no flags.
func userFlags(fs *flag.FlagSet, form *validation.UserForm) (isAdmin, disabled, locked *bool) {
	fs.StringVar(&form.Username, "username", "", "username")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.Password, "password", "", "password; empty keeps the current one")
	isAdmin = fs.Bool("admin", false, "grant ROLE_ADMIN")
	disabled = fs.Bool("disabled", false, "disable the account")
	locked = fs.Bool("locked", false, "lock the account")
	return isAdmin, disabled, locked
}

func applyUserFlags(form *validation.UserForm, isAdmin, disabled, locked bool) {
	form.ConfirmPassword = form.Password
	form.Authorities = []string{domain.AuthorityUser}
	if isAdmin {
		form.Authorities = append(form.Authorities, domain.AuthorityAdmin)
	}
	form.Enabled = !disabled
	form.AccountNonLocked = !locked
}

func runCreateUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create-user")
	form := validation.NewUserForm()
	isAdmin, disabled, locked := userFlags(fs, &form)
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	applyUserFlags(&form, *isAdmin, *disabled, *locked)
	if form.Password == "" {
		return errors.New("password is required for a new account")
	}
	if err := a.validator.Validate(form); err != nil {
		return err
	}

	u, err := a.admin.CreateUser(ctx, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created user %s (id %s)\n", u.Username, u.ID)
	return nil
}

func runUpdateUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("update-user")
	form := validation.NewUserForm()
	isAdmin, disabled, locked := userFlags(fs, &form)
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	id := domain.NewEntityID(pos[0])

	var current *domain.UserDetail
	for _, u := range a.admin.FetchUsers(ctx) {
		if u.ID.Equal(id) {
			current = &u
			break
		}
	}
	if current == nil {
		return fmt.Errorf("user %s not found", id)
	}
	if form.Username == "" {
		form.Username = current.Username
	}
	if form.Email == "" {
		form.Email = current.Email
	}
	applyUserFlags(&form, *isAdmin, *disabled, *locked)
	if err := a.validator.Validate(form); err != nil {
		return err
	}

	u, err := a.admin.UpdateUser(ctx, id, form.Input())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated user %s\n", u.Username)
	return nil
}

func runDeleteUser(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlagSet("delete-user"), args, 1)
	if err != nil {
		return err
	}

	id := domain.NewEntityID(pos[0])
	if err := a.admin.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted user %s\n", id)
	return nil
}

func runAdminStats(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("admin-stats")
	asJSON := fs.Bool("json", false, "print JSON")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	stats := a.admin.FetchStats(ctx)
	if *asJSON {
		return writeJSON(a.out, stats)
	}
	printStats(a.out, stats)
	return nil
}
