package services

import (
	"bytes"
	"encoding/json"
	"time"
)

// Day is a calendar date. It decodes from "YYYY-MM-DD" (taken as UTC
// midnight) or from a full RFC 3339 timestamp, and encodes as "YYYY-MM-DD".
type Day struct{ time.Time }

// DayOf wraps t.
func DayOf(t time.Time) Day { return Day{t} }

// UnmarshalJSON implements json.Unmarshaler.
func (d *Day) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

func dayPtr(d *Day) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	return &d.Time
}
