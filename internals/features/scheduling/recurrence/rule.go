// Package recurrence expands recurrence rules into concrete dated occurrences.
package recurrence

import (
	"fmt"
	"time"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Enum
========================= */

type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternCustom  Pattern = "custom"
)

func (p Pattern) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternCustom:
		return true
	}
	return false
}

/* =========================
   Types
========================= */

// TimeSlot is one start/end pair run on every matching date.
type TimeSlot struct {
	StartTime dbtime.Tod `json:"start_time"`
	EndTime   dbtime.Tod `json:"end_time"`
}

// Rule describes which dates a recurring class runs on and at what times.
//
// StartDate anchors interval counting and the occurrence cap. EndDate is a
// hard, inclusive ceiling; Occurrences caps the number of matched dates
// (not date x slot pairs). Whichever limit is hit first ends the series.
type Rule struct {
	Pattern         Pattern
	StartDate       time.Time
	DaysOfWeek      []int // 0 = Sunday .. 6 = Saturday
	DaysOfMonth     []int // 1..31
	Interval        int   // 0 means unset and behaves as 1
	TimeSlots       []TimeSlot
	EndDate         *time.Time
	Occurrences     *int
	ExclusionDates  []time.Time
	ExcludeWeekends bool
}

// Occurrence is one concrete (date, start, end) produced by expansion.
type Occurrence struct {
	Date      time.Time
	StartTime dbtime.Tod
	EndTime   dbtime.Tod
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%s %s-%s", dbtime.FormatDate(o.Date), o.StartTime, o.EndTime)
}

/* =========================
   Validation
========================= */

// Validate checks the rule and returns *schederr.InvalidRecurrenceError
// listing every offending field.
func (r Rule) Validate() error {
	f := schederr.FieldErrors{}

	if !r.Pattern.Valid() {
		f.Add("pattern", "must be one of daily, weekly, monthly, custom")
	}
	if r.Pattern == PatternWeekly && len(r.DaysOfWeek) == 0 {
		f.Add("days_of_week", "required for weekly pattern")
	}
	if r.Pattern == PatternMonthly && len(r.DaysOfMonth) == 0 {
		f.Add("day_of_month", "required for monthly pattern")
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			f.Add("days_of_week", fmt.Sprintf("%d is not a weekday (0-6)", d))
		}
	}
	for _, d := range r.DaysOfMonth {
		if d < 1 || d > 31 {
			f.Add("day_of_month", fmt.Sprintf("%d is not a day of month (1-31)", d))
		}
	}
	if r.Interval < 0 {
		f.Add("interval", "must be at least 1")
	}
	if len(r.TimeSlots) == 0 {
		f.Add("time_slots", "at least one time slot is required")
	}
	for i, s := range r.TimeSlots {
		key := fmt.Sprintf("time_slots[%d]", i)
		if !s.StartTime.Valid() || !s.EndTime.Valid() {
			f.Add(key, "time out of range")
			continue
		}
		if !s.StartTime.Before(s.EndTime) {
			f.Add(key, "start_time must be before end_time")
			continue
		}
		for j, prev := range r.TimeSlots[:i] {
			if prev.StartTime.Before(s.EndTime) && s.StartTime.Before(prev.EndTime) {
				f.Add(key, fmt.Sprintf("overlaps time_slots[%d]", j))
				break
			}
		}
	}
	if r.EndDate != nil && !r.StartDate.IsZero() && dbtime.DateOf(*r.EndDate).Before(dbtime.DateOf(r.StartDate)) {
		f.Add("end_date", "must not be before start_date")
	}
	if r.Occurrences != nil && *r.Occurrences < 1 {
		f.Add("occurrences", "must be at least 1")
	}

	if f.Empty() {
		return nil
	}
	return &schederr.InvalidRecurrenceError{Fields: f}
}

func (r Rule) interval() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

// Bounded reports whether the series ends on its own.
func (r Rule) Bounded() bool {
	return r.EndDate != nil || r.Occurrences != nil
}
