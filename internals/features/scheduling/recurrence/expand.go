package recurrence

import (
	"iter"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Expand validates r and returns its occurrences within [from, to] (inclusive
// civil dates), ordered by date and then by declared slot order.
func Expand(r Rule, from, to time.Time) ([]Occurrence, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return slices.Collect(r.All(from, to)), nil
}

// All yields the occurrences of a validated rule within [from, to]. Each call
// restarts from the series anchor, so the sequence can be ranged over again.
func (r Rule) All(from, to time.Time) iter.Seq[Occurrence] {
	return func(yield func(Occurrence) bool) {
		for d := range r.Dates(from, to) {
			for _, s := range r.TimeSlots {
				if !yield(Occurrence{Date: d, StartTime: s.StartTime, EndTime: s.EndTime}) {
					return
				}
			}
		}
	}
}

// Dates yields the matched dates of a validated rule within [from, to].
//
// Interval counting and the occurrence cap run from StartDate (or from, when
// StartDate is zero), so dates before the window still consume the cap.
func (r Rule) Dates(from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		from = dbtime.DateOf(from)
		ceiling := dbtime.DateOf(to)
		if r.EndDate != nil {
			ceiling = dbtime.MinDate(ceiling, *r.EndDate)
		}
		anchor := from
		if !r.StartDate.IsZero() {
			anchor = dbtime.DateOf(r.StartDate)
		}
		if ceiling.Before(from) || ceiling.Before(anchor) {
			return
		}

		excluded := make(map[string]struct{}, len(r.ExclusionDates))
		for _, d := range r.ExclusionDates {
			excluded[dbtime.FormatDate(d)] = struct{}{}
		}

		next := r.candidates(anchor)
		matched := 0
		for {
			d, ok := next()
			if !ok {
				return
			}
			d = dbtime.DateOf(d)
			if d.After(ceiling) {
				return
			}
			if !r.accept(d, excluded) {
				continue
			}
			matched++
			if r.Occurrences != nil && matched > *r.Occurrences {
				return
			}
			if d.Before(from) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// candidates returns an unbounded generator of pattern dates from anchor on.
// daily/weekly/monthly delegate to rrule; custom walks every day and lets
// accept apply the list filters.
func (r Rule) candidates(anchor time.Time) func() (time.Time, bool) {
	if r.Pattern == PatternCustom {
		d := anchor
		return func() (time.Time, bool) {
			cur := d
			d = dbtime.AddDays(d, 1)
			return cur, true
		}
	}

	opt := rrule.ROption{
		Dtstart:  anchor,
		Interval: r.interval(),
		Wkst:     rrule.MO,
	}
	switch r.Pattern {
	case PatternDaily:
		opt.Freq = rrule.DAILY
	case PatternWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = toRRuleWeekdays(r.DaysOfWeek)
	case PatternMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = slices.Clone(r.DaysOfMonth)
	}
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return func() (time.Time, bool) { return time.Time{}, false }
	}
	return rr.Iterator()
}

// accept applies the custom list match and the post-filters.
func (r Rule) accept(d time.Time, excluded map[string]struct{}) bool {
	if r.Pattern == PatternCustom && !r.matchCustom(d) {
		return false
	}
	if r.ExcludeWeekends && dbtime.IsWeekend(d) {
		return false
	}
	if _, skip := excluded[dbtime.FormatDate(d)]; skip {
		return false
	}
	return true
}

// matchCustom: no lists means every date; otherwise weekday OR day-of-month.
func (r Rule) matchCustom(d time.Time) bool {
	if len(r.DaysOfWeek) == 0 && len(r.DaysOfMonth) == 0 {
		return true
	}
	return slices.Contains(r.DaysOfWeek, dbtime.Weekday(d)) ||
		slices.Contains(r.DaysOfMonth, dbtime.DayOfMonth(d))
}

func toRRuleWeekdays(days []int) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	seen := [7]bool{}
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, rruleWeekdays[d])
	}
	return out
}
