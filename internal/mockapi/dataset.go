package mockapi

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/auth"
	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/seed"
)

type account struct {
	user         domain.UserDetail
	passwordHash string
}

type record struct {
	event      domain.Event
	organizers []domain.EntityID
	members    []domain.EntityID
}

// dataset is the backend state. Events are stored without their detail
// arrays; tasks and participants live in their own tables and are joined
// on read.
type dataset struct {
	mu       sync.RWMutex
	accounts []*account
	events   []*record
	tasks    []domain.Task
	nextID   int
	now      func() time.Time
}

func newDataset(data *seed.Data, params auth.Params, now func() time.Time) (*dataset, error) {
	d := &dataset{now: now}

	creds := data.Credentials()
	for _, u := range data.Users {
		hash, err := auth.HashPassword(creds[u.Username], params)
		if err != nil {
			return nil, err
		}
		d.accounts = append(d.accounts, &account{user: u, passwordHash: hash})
		d.bump(u.ID)
	}

	for _, e := range data.Events {
		r := &record{}
		for _, p := range e.Organizers {
			r.organizers = append(r.organizers, p.ID)
		}
		for _, p := range e.Members {
			r.members = append(r.members, p.ID)
		}
		e.Organizers, e.Members, e.Tasks = nil, nil, nil
		r.event = e
		d.events = append(d.events, r)
		d.bump(e.ID)
	}

	for _, t := range data.Tasks {
		d.tasks = append(d.tasks, t.Clone())
		d.bump(t.ID)
	}
	return d, nil
}

// bump keeps generated ids above every numeric seed id.
func (d *dataset) bump(id domain.EntityID) {
	if n, err := strconv.Atoi(id.String()); err == nil && n >= d.nextID {
		d.nextID = n + 1
	}
}

func (d *dataset) newID() domain.EntityID {
	id := domain.NewEntityID(d.nextID)
	d.nextID++
	return id
}

func (d *dataset) stamp() string {
	return domain.FormatInstant(d.now())
}

func (d *dataset) account(id domain.EntityID) (*account, bool) {
	for _, a := range d.accounts {
		if a.user.ID.Equal(id) {
			return a, true
		}
	}
	return nil, false
}

func (d *dataset) accountByName(username string) (*account, bool) {
	for _, a := range d.accounts {
		if a.user.Username == username {
			return a, true
		}
	}
	return nil, false
}

func (d *dataset) record(id domain.EntityID) (*record, error) {
	for _, r := range d.events {
		if r.event.ID.Equal(id) {
			return r, nil
		}
	}
	return nil, domainerrors.NotFoundf("event %s not found", id)
}

func (d *dataset) taskIndex(id domain.EntityID) (int, error) {
	if i := domain.FindTask(d.tasks, id); i >= 0 {
		return i, nil
	}
	return -1, domainerrors.NotFoundf("task %s not found", id)
}

func (r *record) isParticipant(id domain.EntityID) bool {
	return slices.ContainsFunc(r.organizers, id.Equal) || slices.ContainsFunc(r.members, id.Equal)
}

func (d *dataset) participants(ids []domain.EntityID, role domain.ParticipantRole) []domain.Participant {
	out := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		p := domain.Participant{ID: id, Role: role}
		if a, ok := d.account(id); ok {
			p = domain.ParticipantFromUser(a.user.Summary(), role)
		}
		out = append(out, p)
	}
	return out
}

// withUsername fills the denormalized assignee name.
func (d *dataset) withUsername(t domain.Task) domain.Task {
	t.AssignedToUsername = ""
	if a, ok := d.account(t.AssignedToID); ok {
		t.AssignedToUsername = a.user.Username
	}
	return t
}

func (d *dataset) tasksOf(eventID domain.EntityID) []domain.Task {
	out := []domain.Task{}
	for _, t := range d.tasks {
		if t.EventID.Equal(eventID) {
			out = append(out, d.withUsername(t))
		}
	}
	return out
}

// summary renders the list shape of r: counts, no arrays.
func (d *dataset) summary(r *record) domain.EventPayload {
	e := r.event.Clone()
	tasks := d.tasksOf(e.ID)
	e.TaskCount = len(tasks)
	e.CompletedTaskCount = 0
	for _, t := range tasks {
		if t.Completed {
			e.CompletedTaskCount++
		}
	}
	e.ParticipantCount = len(r.organizers) + len(r.members)
	e.RecomputeUnfinished()
	return e.Payload()
}

// detail renders the detail shape of r.
func (d *dataset) detail(r *record) domain.EventPayload {
	p := d.summary(r)
	p.Organizers = d.participants(r.organizers, domain.RoleOrganizer)
	p.Members = d.participants(r.members, domain.RoleMember)
	p.Tasks = d.tasksOf(r.event.ID)
	return p
}
