package dbtime

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestWeekdayAndDayOfMonth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		date    string
		weekday int
		dom     int
		weekend bool
	}{
		{"2024-03-01", 5, 1, false}, // Friday
		{"2024-03-02", 6, 2, true},
		{"2024-03-03", 0, 3, true},
		{"2024-03-04", 1, 4, false},
		{"2024-02-29", 4, 29, false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d := mustDate(t, tt.date)
			if got := Weekday(d); got != tt.weekday {
				t.Errorf("Weekday = %d, want %d", got, tt.weekday)
			}
			if got := DayOfMonth(d); got != tt.dom {
				t.Errorf("DayOfMonth = %d, want %d", got, tt.dom)
			}
			if got := IsWeekend(d); got != tt.weekend {
				t.Errorf("IsWeekend = %v, want %v", got, tt.weekend)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	t.Parallel()
	from := mustDate(t, "2024-03-01")
	to := mustDate(t, "2024-03-15")
	if !InRange(from, from, to) || !InRange(to, from, to) {
		t.Fatal("bounds must be inclusive")
	}
	if InRange(mustDate(t, "2024-02-29"), from, to) {
		t.Fatal("day before window reported in range")
	}
	if InRange(mustDate(t, "2024-03-16"), from, to) {
		t.Fatal("day after window reported in range")
	}
}

func TestAtAndInstantsOverlap(t *testing.T) {
	t.Parallel()
	d := mustDate(t, "2024-03-04")
	start := At(d, MustParse("09:30"))
	if start.Hour() != 9 || start.Minute() != 30 || start.Day() != 4 {
		t.Fatalf("At = %v", start)
	}
	aStart, aEnd := At(d, MustParse("09:00")), At(d, MustParse("10:00"))
	bStart, bEnd := At(d, MustParse("10:00")), At(d, MustParse("11:00"))
	if InstantsOverlap(aStart, aEnd, bStart, bEnd) {
		t.Fatal("touching intervals must not overlap")
	}
	multiEnd := At(AddDays(d, 1), MustParse("08:00"))
	next := AddDays(d, 1)
	if !InstantsOverlap(aStart, multiEnd, At(next, MustParse("07:00")), At(next, MustParse("07:30"))) {
		t.Fatal("multi-day interval must cover the next morning")
	}
}

func TestTodayUsesLocation(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+7", 7*3600)
	if got := FormatDate(Today(now, loc)); got != "2024-03-05" {
		t.Fatalf("Today in UTC+7 = %s", got)
	}
	if got := FormatDate(Today(now, nil)); got != "2024-03-04" {
		t.Fatalf("Today in UTC = %s", got)
	}
}
