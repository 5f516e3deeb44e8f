package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date form CKAN and CSVW documents use.
const DateLayout = "2006-01-02"

// Date is a calendar date that marshals as YYYY-MM-DD.
// It also accepts the timestamp forms CKAN returns for resource fields,
// which carry no timezone information.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// UnmarshalJSON handles parsing of dates and timestamps without timezone
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		return nil
	}

	formats := []string{
		DateLayout,
		"2006-01-02T15:04:05.999999", // CKAN timestamp
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}

	var parseErr error
	for _, format := range formats {
		t, err := time.Parse(format, s)
		if err == nil {
			d.Time = t
			return nil
		}
		parseErr = err
	}

	return fmt.Errorf("unable to parse date %q: %w", s, parseErr)
}

// MarshalJSON writes the date as "YYYY-MM-DD", or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("\"%s\"", d.Time.Format(DateLayout))), nil
}
