// Package views derives dashboard views from the store's collections.
//
// Every function here is pure: inputs are passed explicitly, never mutated,
// and results are fresh slices. Dates are parsed with domain.ParseInstant;
// zone-less dates are read in now's location. A record whose date cannot be
// parsed never falls inside a window.
package views

import (
	"slices"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// UnknownEventTitle labels a nearing-due task whose event is not loaded.
const UnknownEventTitle = "Unknown Event"

const (
	comingYearDays = 365
	nearingDueDays = 7
)

// DueTask pairs a task with the title of its event.
type DueTask struct {
	EventTitle string          `json:"eventTitle"`
	EventID    domain.EntityID `json:"eventId"`
	Task       domain.Task     `json:"task"`
}

// ParticipantCount is one row of the participants-per-event chart.
type ParticipantCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Stats are the dashboard totals.
type Stats struct {
	TotalEvents          int                `json:"totalEvents"`
	TotalTasks           int                `json:"totalTasks"`
	CompletedTasks       int                `json:"completedTasks"`
	ParticipantsPerEvent []ParticipantCount `json:"participantsPerEvent"`
}

type datedEvent struct {
	event domain.Event
	at    time.Time
}

// dated parses each event date, dropping events whose date is unreadable.
func dated(events []domain.Event, loc *time.Location) []datedEvent {
	out := make([]datedEvent, 0, len(events))
	for _, e := range events {
		if at, ok := domain.ParseInstant(e.Date, loc); ok {
			out = append(out, datedEvent{event: e, at: at})
		}
	}
	return out
}

func collect(in []datedEvent, keep func(time.Time) bool, descending bool) []domain.Event {
	matched := make([]datedEvent, 0, len(in))
	for _, d := range in {
		if keep(d.at) {
			matched = append(matched, d)
		}
	}
	slices.SortStableFunc(matched, func(a, b datedEvent) int {
		if descending {
			return b.at.Compare(a.at)
		}
		return a.at.Compare(b.at)
	})

	out := make([]domain.Event, len(matched))
	for i, d := range matched {
		out[i] = d.event.Clone()
	}
	return out
}

// Upcoming returns events dated today or later, earliest first.
func Upcoming(events []domain.Event, now time.Time) []domain.Event {
	today := domain.StartOfDay(now)
	return collect(dated(events, now.Location()), func(at time.Time) bool {
		return !at.Before(today)
	}, false)
}

// Passed returns events dated before today, latest first.
func Passed(events []domain.Event, now time.Time) []domain.Event {
	today := domain.StartOfDay(now)
	return collect(dated(events, now.Location()), func(at time.Time) bool {
		return at.Before(today)
	}, true)
}

// InComingYear returns events strictly between now and now plus 365 days,
// earliest first.
func InComingYear(events []domain.Event, now time.Time) []domain.Event {
	horizon := now.AddDate(0, 0, comingYearDays)
	return collect(dated(events, now.Location()), func(at time.Time) bool {
		return at.After(now) && at.Before(horizon)
	}, false)
}

// ByMonth counts events per "YYYY-MM" of their date in loc.
func ByMonth(events []domain.Event, loc *time.Location) map[string]int {
	if loc == nil {
		loc = time.Local
	}
	months := make(map[string]int)
	for _, d := range dated(events, loc) {
		months[d.at.In(loc).Format("2006-01")]++
	}
	return months
}

// NearingDueTasks returns incomplete tasks due strictly between now and a
// week from now, soonest first.
func NearingDueTasks(events []domain.Event, tasks []domain.Task, now time.Time) []DueTask {
	horizon := now.AddDate(0, 0, nearingDueDays)

	type dueTask struct {
		DueTask
		due time.Time
	}
	var matched []dueTask
	for _, t := range tasks {
		if t.Completed || t.DueDate == "" {
			continue
		}
		due, ok := domain.ParseInstant(t.DueDate, now.Location())
		if !ok || !due.After(now) || !due.Before(horizon) {
			continue
		}

		title := UnknownEventTitle
		if i := domain.FindEvent(events, t.EventID); i >= 0 && events[i].Title != "" {
			title = events[i].Title
		}
		matched = append(matched, dueTask{
			DueTask: DueTask{EventTitle: title, EventID: t.EventID, Task: t.Clone()},
			due:     due,
		})
	}

	slices.SortStableFunc(matched, func(a, b dueTask) int {
		return a.due.Compare(b.due)
	})

	out := make([]DueTask, len(matched))
	for i, m := range matched {
		out[i] = m.DueTask
	}
	return out
}

// ComputeStats returns totals over events and tasks.
func ComputeStats(events []domain.Event, tasks []domain.Task) Stats {
	s := Stats{
		TotalEvents:          len(events),
		TotalTasks:           len(tasks),
		ParticipantsPerEvent: make([]ParticipantCount, len(events)),
	}
	for _, t := range tasks {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	for i, e := range events {
		s.ParticipantsPerEvent[i] = ParticipantCount{Title: e.Title, Count: e.ParticipantCount}
	}
	return s
}

// openTasksOf returns the incomplete tasks assigned to userID.
func openTasksOf(tasks []domain.Task, userID domain.EntityID) []domain.Task {
	if userID.IsZero() {
		return nil
	}
	var out []domain.Task
	for _, t := range tasks {
		if !t.Completed && t.AssignedToID.Equal(userID) {
			out = append(out, t)
		}
	}
	return out
}

// UnfinishedTaskCount counts incomplete tasks assigned to userID. A zero
// userID counts nothing.
func UnfinishedTaskCount(tasks []domain.Task, userID domain.EntityID) int {
	return len(openTasksOf(tasks, userID))
}

// severityRank orders severities from least to most urgent.
var severityRank = map[domain.Severity]int{
	domain.SeveritySecondary: 0,
	domain.SeverityInfo:      1,
	domain.SeverityWarn:      2,
	domain.SeverityDanger:    3,
}

// UserTasksUrgency returns the worst urgency among userID's incomplete
// tasks, or secondary when there is no user or nothing left to do.
func UserTasksUrgency(tasks []domain.Task, userID domain.EntityID, now time.Time) domain.Severity {
	open := openTasksOf(tasks, userID)
	if len(open) == 0 {
		return domain.SeveritySecondary
	}

	worst := domain.SeverityInfo
	for _, t := range open {
		s := UrgencySeverity(t.DueDate, now)
		if severityRank[s] > severityRank[worst] {
			worst = s
		}
	}
	return worst
}
