package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/eventdeck/eventdeck-client/internal/admin"
	"github.com/eventdeck/eventdeck-client/internal/color"
	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/views"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func location(ev domain.Event) string {
	if ev.Address != nil && ev.Address.LocationName != "" {
		return ev.Address.LocationName
	}
	return dash(ev.LocationName)
}

func printEvents(w io.Writer, events []domain.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tLOCATION\tPEOPLE\tTASKS")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d/%d\n",
			ev.ID, dash(ev.Date), ev.Title, location(ev),
			ev.ParticipantCount, ev.CompletedTaskCount, ev.TaskCount)
	}
	tw.Flush()
}

func printEventDetail(w io.Writer, p color.Painter, ev domain.Event) {
	fmt.Fprintf(w, "%s (id %s)\n", ev.Title, ev.ID)
	fmt.Fprintf(w, "Date:      %s\n", dash(ev.Date))
	fmt.Fprintf(w, "Location:  %s\n", location(ev))
	if a := ev.Address; a != nil && a.Street != "" {
		fmt.Fprintf(w, "Address:   %s, %s %s, %s\n", a.Street, a.ZipCode, a.City, a.Country)
	}
	if ev.Description != "" {
		fmt.Fprintf(w, "\n%s\n", ev.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Organizers: %s\n", participantNames(p, ev.Organizers))
	fmt.Fprintf(w, "Members:    %s\n", participantNames(p, ev.Members))

	fmt.Fprintf(w, "\nTasks (%d/%d done)\n", ev.CompletedTaskCount, ev.TaskCount)
	if len(ev.Tasks) > 0 {
		printTasks(w, p, ev.Tasks)
	}
}

func participantNames(p color.Painter, ps []domain.Participant) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, len(ps))
	for i, part := range ps {
		name := part.Username
		if name == "" {
			name = "#" + part.ID.String()
		}
		names[i] = p.Paint(color.ForUser(part.ID), name)
	}
	return strings.Join(names, ", ")
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// printTasks keeps the assignee last; escape sequences would skew the
// tabwriter columns after it.
func printTasks(w io.Writer, p color.Painter, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\t\tDESCRIPTION\tDUE\tEVENT\tASSIGNEE")
	for _, t := range tasks {
		assignee := dash(t.AssignedToUsername)
		if t.AssignedToUsername != "" {
			assignee = p.Paint(color.ForUser(t.AssignedToID), assignee)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, checkbox(t.Completed), t.Description, dash(t.DueDate),
			dash(t.EventID.String()), assignee)
	}
	tw.Flush()
}

func printDashboard(w io.Writer, p color.Painter, snap views.Snapshot) {
	s := snap.Stats
	severity := p.Paint(color.ForSeverity(snap.TasksUrgencySeverity), string(snap.TasksUrgencySeverity))
	fmt.Fprintf(w, "Events: %d   Tasks: %d/%d done   Unfinished assigned to you: %d (%s)\n",
		s.TotalEvents, s.CompletedTasks, s.TotalTasks, snap.UnfinishedTaskCount, severity)

	fmt.Fprintln(w, "\nUpcoming")
	printEvents(w, snap.Upcoming)

	fmt.Fprintln(w, "\nDue soon")
	if len(snap.NearingDueTasks) == 0 {
		fmt.Fprintln(w, "Nothing due")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "DUE\tTASK\tEVENT\tURGENCY")
		for _, d := range snap.NearingDueTasks {
			sev := views.UrgencySeverity(d.Task.DueDate, snap.ComputedAt)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Task.DueDate, d.Task.Description, d.EventTitle,
				p.Paint(color.ForSeverity(sev), string(sev)))
		}
		tw.Flush()
	}

	if len(snap.ByMonth) > 0 {
		fmt.Fprintln(w, "\nNext twelve months")
		months := make([]string, 0, len(snap.ByMonth))
		for m := range snap.ByMonth {
			months = append(months, m)
		}
		slices.Sort(months)
		tw := newTable(w)
		for _, m := range months {
			fmt.Fprintf(tw, "%s\t%s\n", m, strings.Repeat("#", snap.ByMonth[m]))
		}
		tw.Flush()
	}
}

func roles(u domain.UserDetail) string {
	if u.IsAdmin() {
		return "admin"
	}
	return "user"
}

func printUser(w io.Writer, p color.Painter, u domain.UserDetail) {
	fmt.Fprintf(w, "%s (id %s)\n", p.Paint(color.ForUser(u.ID), u.Username), u.ID)
	fmt.Fprintf(w, "Email:      %s\n", dash(u.Email))
	fmt.Fprintf(w, "Role:       %s\n", roles(u))
	fmt.Fprintf(w, "Last login: %s\n", dash(u.LastLogin))
}

func printUsers(w io.Writer, users []domain.UserDetail) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tENABLED\tLOCKED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
			u.ID, u.Username, dash(u.Email), roles(u), u.Enabled, !u.AccountNonLocked)
	}
	tw.Flush()
}

func printStats(w io.Writer, s admin.Stats) {
	fmt.Fprintf(w, "Status:       %s\n", dash(s.Health.Status))
	fmt.Fprintf(w, "Uptime:       %s\n", admin.FormatUptime(s.Metrics.Uptime))
	fmt.Fprintf(w, "CPU:          process %.1f%%, system %.1f%%\n",
		s.Metrics.ProcessCPUUsage*100, s.Metrics.SystemCPUUsage*100)
	fmt.Fprintf(w, "Memory:       %s of %s (%d%%)\n",
		admin.FormatBytes(s.Metrics.MemoryUsed), admin.FormatBytes(s.Metrics.MemoryMax), s.MemoryUsagePercent())

	k := s.KPIs
	fmt.Fprintf(w, "\nUsers: %d   Events: %d   Task completion: %d%%   Active organizers: %d\n",
		k.TotalUsers, k.TotalEvents, k.TaskCompletionRate, k.ActiveOrganizers)

	if len(s.TopEndpoints) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTop endpoints")
	tw := newTable(w)
	fmt.Fprintln(tw, "URI\tREQUESTS\tAVG MS")
	for _, e := range s.TopEndpoints {
		avg := 0.0
		if e.Count > 0 {
			avg = e.TotalTime / e.Count * 1000
		}
		fmt.Fprintf(tw, "%s\t%.0f\t%.1f\n", e.URI, e.Count, avg)
	}
	tw.Flush()
}
