// file: internals/helpers/dbtime/tod.go
package dbtime

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Tod is a wall-clock time of day stored as minutes since midnight.
// Valid values are 00:00 .. 23:59.
type Tod int

const minutesPerDay = 24 * 60

// FromClock builds a Tod from hour and minute.
func FromClock(hour, minute int) (Tod, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("tod: %02d:%02d out of range", hour, minute)
	}
	return Tod(hour*60 + minute), nil
}

// Parse accepts "HH:mm" and, for values coming back from a Postgres TIME
// column, "HH:mm:ss" (seconds are dropped).
func Parse(s string) (Tod, error) {
	s = strings.TrimSpace(s)
	layout := "15:04"
	if len(s) == 8 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("tod: invalid time %q (want HH:mm)", s)
	}
	return Tod(t.Hour()*60 + t.Minute()), nil
}

// MustParse is Parse for literals; it panics on bad input.
func MustParse(s string) Tod {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tod) Minutes() int { return int(t) }
func (t Tod) Hour() int    { return int(t) / 60 }
func (t Tod) Minute() int  { return int(t) % 60 }

func (t Tod) Valid() bool { return t >= 0 && t < minutesPerDay }

func (t Tod) Before(o Tod) bool { return t < o }

// String renders HH:mm.
func (t Tod) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect. Ranges that only
// touch (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 Tod) bool {
	return s1 < e2 && e1 > s2
}

// Scan: accepts time.Time or "HH:mm[:ss]"
func (t *Tod) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = Tod(x.Hour()*60 + x.Minute())
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	case nil:
		*t = 0
		return nil
	default:
		return fmt.Errorf("tod: unsupported Scan type %T", v)
	}
}

func (t *Tod) parse(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value sends "HH:mm:00" so Postgres TIME understands it
func (t Tod) Value() (driver.Value, error) {
	return t.String() + ":00", nil
}

func (t Tod) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}
