package model

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the canonical on-disk date format
const DateLayout = "2006-01-02"

// lenientLayouts are tried in order when reading a date cell
var lenientLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"2006",
}

// Date is a calendar date that may be absent. The zero value is the
// null-date sentinel.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate wraps t as a valid date truncated to the day
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// DateOf builds a valid date from its parts
func DateOf(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDate parses a date cell leniently. ok is false when s is non-empty
// and matches none of the accepted layouts; the returned Date is then null.
func ParseDate(s string) (d Date, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, true
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), true
		}
	}
	return Date{}, false
}

// ParseStrictDate parses s as YYYY-MM-DD
func ParseStrictDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// String formats the date as YYYY-MM-DD, empty for the null sentinel
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Before reports whether d sorts before other. Null dates sort last.
func (d Date) Before(other Date) bool {
	switch {
	case !d.Valid:
		return false
	case !other.Valid:
		return true
	default:
		return d.Time.Before(other.Time)
	}
}

// MarshalJSON encodes the date as a string or null
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}
