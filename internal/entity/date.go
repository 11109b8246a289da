package entity

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// InvalidDate is rendered in place of a date that does not parse.
const InvalidDate = "Invalid date"

var dueDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ParseDueDate accepts local wall-clock datetimes as stored by the front end
// and RFC3339 timestamps.
func ParseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

// Today is the UTC calendar date of now. dateAdded has always been recorded
// in UTC, so leads created around midnight keep the same date everywhere.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// FormatDisplayDate renders a stored calendar date for listings.
func FormatDisplayDate(s string) string {
	if s == "" {
		return "No date set"
	}
	t, err := ParseDate(s)
	if err != nil {
		return InvalidDate
	}
	return t.Format("January 2, 2006")
}

// FormatDisplayDateTime renders a task due date for listings.
func FormatDisplayDateTime(s string) string {
	t, err := ParseDueDate(s)
	if err != nil {
		return InvalidDate
	}
	return t.Format("Jan 2, 2006 - 3:04 PM")
}
