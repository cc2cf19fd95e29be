package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight. It
// serializes as a "15:04" string so working hours stay readable in JSON
// payloads and database columns.
type TimeOfDay int

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("schedule: invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("schedule: time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// TimeOfDayFrom extracts the clock component of an instant.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON renders the time as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window is the single open interval of a working day. A booking may start at
// any instant whose clock time falls in [Open, Close).
type Window struct {
	Open  TimeOfDay `json:"open"`
	Close TimeOfDay `json:"close"`
}

// NewWindow parses an open/close pair such as ("09:00", "18:00").
func NewWindow(open, close string) (Window, error) {
	o, err := ParseTimeOfDay(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseTimeOfDay(close)
	if err != nil {
		return Window{}, err
	}
	if c <= o {
		return Window{}, fmt.Errorf("schedule: window closes at %s before it opens at %s", c, o)
	}
	return Window{Open: o, Close: c}, nil
}

// Contains reports whether the clock time falls inside [Open, Close).
func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Open && t < w.Close
}

// WorkingHours maps weekdays to their open window. A day absent from the map
// is closed.
type WorkingHours map[time.Weekday]Window
