package appointment

import (
	"strings"
	"time"
)

// Layouts without a zone are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// ParseDateTime accepts ISO 8601 timestamps with or without a zone, with a
// T or space separator, and bare dates. The result is UTC with microsecond
// precision.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	var firstErr error
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return normalize(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return normalize(t), nil
		}
	}
	return time.Time{}, firstErr
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// dayWindow returns the inclusive bounds used by the list date filter:
// midnight through 23:59:00 of t's UTC calendar day.
func dayWindow(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := time.Date(y, m, d, 23, 59, 0, 0, time.UTC)
	return start, end
}
