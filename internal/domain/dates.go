package domain

import (
	"strconv"
	"strings"
	"time"
)

// Severity classifies how urgent a task is.
type Severity string

const (
	SeverityDanger    Severity = "danger"
	SeverityWarn      Severity = "warn"
	SeverityInfo      Severity = "info"
	SeveritySecondary Severity = "secondary"
)

// ISOMillis is the layout used for timestamps the client synthesizes.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

// zone-less layouts are read in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses the date formats the backend emits:
//   - RFC3339 with or without fractional seconds
//   - local date-times without a zone, read in loc
//   - plain dates, taken as midnight in loc
//   - epoch milliseconds
//
// It reports false when s is empty or unparseable.
func ParseInstant(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).In(loc), true
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatInstant renders t the way synthesized records carry timestamps.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}
