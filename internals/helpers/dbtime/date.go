// file: internals/helpers/dbtime/date.go
package dbtime

import (
	"log"
	"strings"
	"time"
)

// DateLayout is the wire format for civil dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Civil dates are carried as time.Time at 00:00 UTC. Keeping every date in
// one zone makes day arithmetic free of DST jumps.

// ParseDate parses YYYY-MM-DD into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// DateOf drops the clock part of t, keeping the calendar day as seen in t's
// own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// At combines a civil date and a time of day into one instant on the civil
// timeline (UTC).
func At(date time.Time, tod Tod) time.Time {
	d := DateOf(date)
	return d.Add(time.Duration(tod.Minutes()) * time.Minute)
}

// AddDays moves a civil date by n days.
func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

// Weekday returns 0 (Sunday) .. 6 (Saturday).
func Weekday(d time.Time) int {
	return int(DateOf(d).Weekday())
}

// DayOfMonth returns 1..31.
func DayOfMonth(d time.Time) int {
	return DateOf(d).Day()
}

func IsWeekend(d time.Time) bool {
	wd := DateOf(d).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InRange reports whether d lies in [from, to], both inclusive.
func InRange(d, from, to time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(from)) && !d.After(DateOf(to))
}

// RangesIntersect reports whether [aFrom,aTo] and [bFrom,bTo] share a day.
func RangesIntersect(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !DateOf(aFrom).After(DateOf(bTo)) && !DateOf(bFrom).After(DateOf(aTo))
}

func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return DateOf(a)
	}
	return DateOf(b)
}

func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return DateOf(a)
	}
	return DateOf(b)
}

// Today returns the civil date of now as seen in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// InstantsOverlap reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching boundaries are not an overlap.
func InstantsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// LoadLocation resolves an IANA zone name.
// 1) the requested zone
// 2) fallback: Asia/Jakarta
// 3) last resort: UTC
func LoadLocation(name string) *time.Location {
	if s := strings.TrimSpace(name); s != "" {
		if loc, err := time.LoadLocation(s); err == nil {
			return loc
		}
		log.Printf("[WARN] unknown timezone %q, falling back", s)
	}
	if loc, err := time.LoadLocation("Asia/Jakarta"); err == nil {
		return loc
	}
	return time.UTC
}
