package manifest

import (
	"bytes"
	"fmt"
	"time"
)

// isoLayout matches the millisecond UTC timestamps written by JavaScript's
// Date.toISOString, which older manifests contain.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Time is a timestamp persisted as ISO-8601 UTC with milliseconds.
// Null and empty strings decode to the zero time.
type Time time.Time

func (t Time) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + tt.UTC().Format(isoLayout) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*t = Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	*t = Time(parsed.UTC())
	return nil
}

func (t Time) Time() time.Time {
	return time.Time(t)
}
