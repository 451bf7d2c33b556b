package views

import (
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// Urgency thresholds, in whole days until the due date.
const (
	DangerDays = 2
	WarnDays   = 5
)

// UrgencySeverity classifies a due date relative to now: secondary when the
// date is missing, unreadable or already passed, danger under DangerDays
// whole days, warn under WarnDays, else info.
func UrgencySeverity(dueDate string, now time.Time) domain.Severity {
	due, ok := domain.ParseInstant(dueDate, now.Location())
	if !ok || due.Before(now) {
		return domain.SeveritySecondary
	}

	days := int(due.Sub(now) / (24 * time.Hour))
	switch {
	case days < DangerDays:
		return domain.SeverityDanger
	case days < WarnDays:
		return domain.SeverityWarn
	default:
		return domain.SeverityInfo
	}
}
