package recurrence

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dbtime.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func slot(start, end string) TimeSlot {
	return TimeSlot{StartTime: dbtime.MustParse(start), EndTime: dbtime.MustParse(end)}
}

func ptr[T any](v T) *T { return &v }

func dates(occ []Occurrence) []string {
	out := make([]string, 0, len(occ))
	for _, o := range occ {
		out = append(out, dbtime.FormatDate(o.Date))
	}
	return out
}

func TestExpandWeeklyMondayWednesday(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:    PatternWeekly,
		StartDate:  date(t, "2024-03-01"),
		DaysOfWeek: []int{1, 3},
		Interval:   1,
		TimeSlots:  []TimeSlot{slot("09:00", "10:30")},
	}
	got, err := Expand(r, date(t, "2024-03-01"), date(t, "2024-03-15"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{"2024-03-04", "2024-03-06", "2024-03-11", "2024-03-13"}
	if !slices.Equal(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
	for _, o := range got {
		if o.StartTime.String() != "09:00" || o.EndTime.String() != "10:30" {
			t.Errorf("occurrence %s has wrong times", o)
		}
	}
}

func TestExpandWeeklyFourWeeks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		days []int
	}{
		{"one day", []int{2}},
		{"three days", []int{1, 3, 5}},
		{"every day", []int{0, 1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 2024-03-04 is a Monday: four full Monday..Sunday weeks.
			r := Rule{
				Pattern:    PatternWeekly,
				StartDate:  date(t, "2024-03-04"),
				DaysOfWeek: tt.days,
				TimeSlots:  []TimeSlot{slot("08:00", "09:00")},
			}
			got, err := Expand(r, date(t, "2024-03-04"), date(t, "2024-03-31"))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.days)*4 {
				t.Fatalf("got %d occurrences, want %d", len(got), len(tt.days)*4)
			}
		})
	}
}

func TestExpandWeeklyInterval(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:    PatternWeekly,
		StartDate:  date(t, "2024-03-04"),
		DaysOfWeek: []int{1},
		Interval:   2,
		TimeSlots:  []TimeSlot{slot("09:00", "10:00")},
	}
	got, err := Expand(r, date(t, "2024-03-01"), date(t, "2024-04-30"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-04", "2024-03-18", "2024-04-01", "2024-04-15", "2024-04-29"}
	if !slices.Equal(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
}

func TestExpandDailyOccurrenceCap(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:     PatternDaily,
		StartDate:   date(t, "2024-03-01"),
		Occurrences: ptr(5),
		TimeSlots:   []TimeSlot{slot("09:00", "10:00")},
	}
	for _, to := range []string{"2024-03-31", "2025-12-31", "2030-01-01"} {
		got, err := Expand(r, date(t, "2024-01-01"), date(t, to))
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"}
		if !slices.Equal(dates(got), want) {
			t.Fatalf("window to %s: dates = %v, want %v", to, dates(got), want)
		}
	}
}

func TestExpandCapCountsDatesNotSlots(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:     PatternDaily,
		StartDate:   date(t, "2024-03-01"),
		Occurrences: ptr(2),
		TimeSlots:   []TimeSlot{slot("09:00", "10:00"), slot("13:00", "14:00")},
	}
	got, err := Expand(r, date(t, "2024-03-01"), date(t, "2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d occurrences, want 4 (2 dates x 2 slots)", len(got))
	}
	if got[0].StartTime.String() != "09:00" || got[1].StartTime.String() != "13:00" {
		t.Fatalf("slots not in declared order: %v", got)
	}
}

func TestExpandCapIsStableAcrossWindows(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:     PatternDaily,
		StartDate:   date(t, "2024-03-01"),
		Occurrences: ptr(5),
		TimeSlots:   []TimeSlot{slot("09:00", "10:00")},
	}
	got, err := Expand(r, date(t, "2024-03-04"), date(t, "2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-04", "2024-03-05"}
	if !slices.Equal(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
}

func TestExpandEndDateBeforeCap(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:     PatternDaily,
		StartDate:   date(t, "2024-03-01"),
		EndDate:     ptr(date(t, "2024-03-03")),
		Occurrences: ptr(10),
		TimeSlots:   []TimeSlot{slot("09:00", "10:00")},
	}
	got, err := Expand(r, date(t, "2024-03-01"), date(t, "2024-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 dates ending 2024-03-03", dates(got))
	}
}

func TestExpandDailyInterval(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:   PatternDaily,
		StartDate: date(t, "2024-03-01"),
		Interval:  3,
		TimeSlots: []TimeSlot{slot("09:00", "10:00")},
	}
	got, err := Expand(r, date(t, "2024-03-02"), date(t, "2024-03-12"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-04", "2024-03-07", "2024-03-10"}
	if !slices.Equal(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
}

func TestExpandMonthly(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:     PatternMonthly,
		StartDate:   date(t, "2024-01-01"),
		DaysOfMonth: []int{15, 31},
		Interval:    1,
		TimeSlots:   []TimeSlot{slot("18:00", "19:00")},
	}
	got, err := Expand(r, date(t, "2024-01-01"), date(t, "2024-04-30"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-01-15", "2024-01-31", "2024-02-15", "2024-03-15", "2024-03-31", "2024-04-15"}
	if !slices.Equal(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
}

func TestExpandMonthlyInterval(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:     PatternMonthly,
		StartDate:   date(t, "2024-01-20"),
		DaysOfMonth: []int{15},
		Interval:    2,
		TimeSlots:   []TimeSlot{slot("18:00", "19:00")},
	}
	got, err := Expand(r, date(t, "2024-01-01"), date(t, "2024-08-31"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-15", "2024-05-15", "2024-07-15"}
	if !slices.Equal(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
}

func TestExpandCustom(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		rule      Rule
		from, to  string
		wantDates []string
	}{
		{
			name:      "no lists matches every date",
			rule:      Rule{Pattern: PatternCustom},
			from:      "2024-03-01",
			to:        "2024-03-03",
			wantDates: []string{"2024-03-01", "2024-03-02", "2024-03-03"},
		},
		{
			name:      "weekday OR day of month",
			rule:      Rule{Pattern: PatternCustom, DaysOfWeek: []int{2}, DaysOfMonth: []int{1}},
			from:      "2024-03-01",
			to:        "2024-03-14",
			wantDates: []string{"2024-03-01", "2024-03-05", "2024-03-12"},
		},
		{
			name:      "only day of month",
			rule:      Rule{Pattern: PatternCustom, DaysOfMonth: []int{10, 20}},
			from:      "2024-03-01",
			to:        "2024-03-31",
			wantDates: []string{"2024-03-10", "2024-03-20"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.rule
			r.StartDate = date(t, tt.from)
			r.TimeSlots = []TimeSlot{slot("10:00", "11:00")}
			got, err := Expand(r, date(t, tt.from), date(t, tt.to))
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(dates(got), tt.wantDates) {
				t.Fatalf("dates = %v, want %v", dates(got), tt.wantDates)
			}
		})
	}
}

func TestExpandNeverReturnsExcludedOrWeekend(t *testing.T) {
	t.Parallel()
	excl := []time.Time{date(t, "2024-03-05"), date(t, "2024-03-12")}
	patterns := []Rule{
		{Pattern: PatternDaily},
		{Pattern: PatternWeekly, DaysOfWeek: []int{0, 2, 6}},
		{Pattern: PatternMonthly, DaysOfMonth: []int{2, 3, 5, 12}},
		{Pattern: PatternCustom},
	}
	for _, base := range patterns {
		t.Run(string(base.Pattern), func(t *testing.T) {
			r := base
			r.StartDate = date(t, "2024-03-01")
			r.ExclusionDates = excl
			r.ExcludeWeekends = true
			r.TimeSlots = []TimeSlot{slot("09:00", "10:00")}
			got, err := Expand(r, date(t, "2024-03-01"), date(t, "2024-04-30"))
			if err != nil {
				t.Fatal(err)
			}
			for _, o := range got {
				if dbtime.IsWeekend(o.Date) {
					t.Errorf("weekend date %s returned", dbtime.FormatDate(o.Date))
				}
				for _, e := range excl {
					if o.Date.Equal(e) {
						t.Errorf("excluded date %s returned", dbtime.FormatDate(o.Date))
					}
				}
			}
		})
	}
}

func TestExpandWindowOutsideSeries(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:   PatternDaily,
		StartDate: date(t, "2024-03-10"),
		EndDate:   ptr(date(t, "2024-03-20")),
		TimeSlots: []TimeSlot{slot("09:00", "10:00")},
	}
	for _, w := range [][2]string{{"2024-03-01", "2024-03-09"}, {"2024-03-21", "2024-03-31"}, {"2024-03-15", "2024-03-10"}} {
		got, err := Expand(r, date(t, w[0]), date(t, w[1]))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("window %v: got %v, want none", w, dates(got))
		}
	}
}

func TestAllIsRestartable(t *testing.T) {
	t.Parallel()
	r := Rule{
		Pattern:    PatternWeekly,
		StartDate:  date(t, "2024-03-01"),
		DaysOfWeek: []int{1},
		TimeSlots:  []TimeSlot{slot("09:00", "10:00")},
	}
	seq := r.All(date(t, "2024-03-01"), date(t, "2024-03-31"))
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 4 || !slices.Equal(first, second) {
		t.Fatalf("sequence not restartable: %v vs %v", first, second)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	good := []TimeSlot{slot("09:00", "10:00")}
	tests := []struct {
		name      string
		rule      Rule
		wantField string
	}{
		{"weekly without days", Rule{Pattern: PatternWeekly, TimeSlots: good}, "days_of_week"},
		{"monthly without days", Rule{Pattern: PatternMonthly, TimeSlots: good}, "day_of_month"},
		{"unknown pattern", Rule{Pattern: "yearly", TimeSlots: good}, "pattern"},
		{"inverted slot", Rule{Pattern: PatternDaily, TimeSlots: []TimeSlot{slot("10:00", "09:00")}}, "time_slots[0]"},
		{"empty slot", Rule{Pattern: PatternDaily, TimeSlots: []TimeSlot{slot("10:00", "10:00")}}, "time_slots[0]"},
		{"no slots", Rule{Pattern: PatternDaily}, "time_slots"},
		{"overlapping slots", Rule{Pattern: PatternDaily, TimeSlots: []TimeSlot{slot("09:00", "10:00"), slot("09:30", "10:30")}}, "time_slots[1]"},
		{"repeated slot", Rule{Pattern: PatternDaily, TimeSlots: []TimeSlot{slot("09:00", "10:00"), slot("13:00", "14:00"), slot("09:00", "10:00")}}, "time_slots[2]"},
		{"negative interval", Rule{Pattern: PatternDaily, Interval: -1, TimeSlots: good}, "interval"},
		{"weekday out of range", Rule{Pattern: PatternWeekly, DaysOfWeek: []int{7}, TimeSlots: good}, "days_of_week"},
		{"zero occurrences", Rule{Pattern: PatternDaily, Occurrences: ptr(0), TimeSlots: good}, "occurrences"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			var ire *schederr.InvalidRecurrenceError
			if !errors.As(err, &ire) {
				t.Fatalf("Validate() = %v, want InvalidRecurrenceError", err)
			}
			if _, ok := ire.Fields[tt.wantField]; !ok {
				t.Fatalf("fields = %v, want key %q", ire.Fields, tt.wantField)
			}
			if _, err := Expand(tt.rule, time.Now(), time.Now()); err == nil {
				t.Fatal("Expand accepted an invalid rule")
			}
		})
	}

	ok := Rule{Pattern: PatternDaily, TimeSlots: good}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	adjacent := Rule{Pattern: PatternDaily, TimeSlots: []TimeSlot{slot("09:00", "10:00"), slot("10:00", "11:00")}}
	if err := adjacent.Validate(); err != nil {
		t.Fatalf("adjacent slots rejected: %v", err)
	}
}
