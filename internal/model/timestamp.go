package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a point in time that tolerates the date shapes the portal emits:
// bare ISO dates, RFC 3339 and naive ISO datetimes without a zone.
type Timestamp struct {
	time.Time
}

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	dateLayout,
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp parses s using the accepted layouts. Zone-less values are UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised date %q", s)
}

// MustDate is a helper for fixtures: it parses a YYYY-MM-DD date and panics otherwise.
func MustDate(s string) Timestamp {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return Timestamp{Time: t}
}

// IsDateOnly reports whether the value sits at midnight UTC.
func (t Timestamp) IsDateOnly() bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

// String renders a date for display.
func (t Timestamp) String() string {
	if t.IsZero() {
		return "-"
	}
	if t.IsDateOnly() {
		return t.UTC().Format(dateLayout)
	}
	return t.Format("2006-01-02 15:04")
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.IsDateOnly() {
		return json.Marshal(t.UTC().Format(dateLayout))
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
