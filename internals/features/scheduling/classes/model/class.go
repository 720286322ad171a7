// file: internals/features/scheduling/classes/model/class.go
package model

import (
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Enum
========================= */

type ClassType string

const (
	ClassTypeSingle    ClassType = "single"
	ClassTypeRecurring ClassType = "recurring"
)

/* =========================
   Schedule (tagged variant)
========================= */

// Schedule is either a SingleSchedule or a RecurringSchedule. The set is
// closed: no other package can add a variant.
type Schedule interface {
	Type() ClassType
	isSchedule()
}

// SingleSchedule is a one-off class. EndDate nil means same day.
type SingleSchedule struct {
	StartDate time.Time
	EndDate   *time.Time
	StartTime dbtime.Tod
	EndTime   dbtime.Tod
}

func (SingleSchedule) Type() ClassType { return ClassTypeSingle }
func (SingleSchedule) isSchedule()     {}

// LastDate returns EndDate, defaulting to StartDate.
func (s SingleSchedule) LastDate() time.Time {
	if s.EndDate != nil {
		return dbtime.DateOf(*s.EndDate)
	}
	return dbtime.DateOf(s.StartDate)
}

type RecurringSchedule struct {
	Rule recurrence.Rule
}

func (RecurringSchedule) Type() ClassType { return ClassTypeRecurring }
func (RecurringSchedule) isSchedule()     {}

/* =========================
   Slot
========================= */

// SlotKey identifies one occurrence of a class independent of later edits.
type SlotKey struct {
	Date      string // YYYY-MM-DD
	StartTime dbtime.Tod
	EndTime   dbtime.Tod
}

// Slot is one occurrence of a class. EndDate differs from Date only for a
// multi-day single class.
type Slot struct {
	Date      time.Time
	EndDate   time.Time
	StartTime dbtime.Tod
	EndTime   dbtime.Tod
}

func (s Slot) Key() SlotKey {
	return SlotKey{Date: dbtime.FormatDate(s.Date), StartTime: s.StartTime, EndTime: s.EndTime}
}

func (s Slot) StartAt() time.Time { return dbtime.At(s.Date, s.StartTime) }
func (s Slot) EndAt() time.Time   { return dbtime.At(s.EndDate, s.EndTime) }

/* =========================
   DateRange
========================= */

// DateRange is an inclusive span of civil dates.
type DateRange struct {
	From    time.Time
	Through time.Time
}

func (r DateRange) Contains(d time.Time) bool {
	return dbtime.InRange(d, r.From, r.Through)
}

// Union spans r and [from, to]. The two must touch or overlap.
func (r DateRange) Union(from, to time.Time) DateRange {
	return DateRange{From: dbtime.MinDate(r.From, from), Through: dbtime.MaxDate(r.Through, to)}
}

/* =========================
   Class
========================= */

// InstanceSummary is one entry of Class.GeneratedInstances.
type InstanceSummary struct {
	InstanceID uuid.UUID `json:"instance_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Status     string    `json:"status"`
}

// Class is the authoritative schedule definition.
type Class struct {
	ID           uuid.UUID
	Name         string
	CourseCode   *string
	Description  *string
	InstructorID uuid.UUID
	RoomTypeID   uuid.UUID
	RoomID       *uuid.UUID

	Schedule Schedule

	GeneratedInstances []InstanceSummary
	IsActive           bool

	// Materialized is the span of dates whose instances are authoritative.
	// Inside it the expansion is never shown, only stored instances.
	Materialized *DateRange

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Class) Type() ClassType {
	if c.Schedule == nil {
		return ""
	}
	return c.Schedule.Type()
}

// Validate checks the class definition. Recurrence problems come back as
// *schederr.InvalidRecurrenceError, everything else as *schederr.ValidationError.
func (c Class) Validate() error {
	f := schederr.FieldErrors{}
	if c.Name == "" {
		f.Add("name", "required")
	}
	if c.InstructorID == uuid.Nil {
		f.Add("instructor_id", "required")
	}
	if c.RoomTypeID == uuid.Nil {
		f.Add("room_type_id", "required")
	}

	switch s := c.Schedule.(type) {
	case SingleSchedule:
		if s.StartDate.IsZero() {
			f.Add("start_date", "required")
		}
		if s.EndDate != nil && s.LastDate().Before(dbtime.DateOf(s.StartDate)) {
			f.Add("end_date", "must not be before start_date")
		}
		if !s.StartTime.Valid() || !s.EndTime.Valid() {
			f.Add("start_time", "time out of range")
		} else if !s.StartTime.Before(s.EndTime) {
			f.Add("end_time", "start_time must be before end_time")
		}
	case RecurringSchedule:
		var rec *schederr.InvalidRecurrenceError
		if err := s.Rule.Validate(); err != nil && !errors.As(err, &rec) {
			return err
		}
		if s.Rule.StartDate.IsZero() {
			if rec == nil {
				rec = &schederr.InvalidRecurrenceError{Fields: schederr.FieldErrors{}}
			}
			rec.Fields.Add("start_date", "required")
		}
		if rec != nil {
			for k, msgs := range f {
				rec.Fields[k] = append(rec.Fields[k], msgs...)
			}
			return rec
		}
	default:
		f.Add("class_type", "must be single or recurring")
	}

	if f.Empty() {
		return nil
	}
	return &schederr.ValidationError{Fields: f}
}

// SeriesStart is the first date the class can occur on.
func (c Class) SeriesStart() time.Time {
	switch s := c.Schedule.(type) {
	case SingleSchedule:
		return dbtime.DateOf(s.StartDate)
	case RecurringSchedule:
		return dbtime.DateOf(s.Rule.StartDate)
	}
	return time.Time{}
}

// SeriesEnd returns the last possible date, or false when the series is
// open ended (a recurring rule capped only by occurrences counts as open).
func (c Class) SeriesEnd() (time.Time, bool) {
	switch s := c.Schedule.(type) {
	case SingleSchedule:
		return s.LastDate(), true
	case RecurringSchedule:
		if s.Rule.EndDate != nil {
			return dbtime.DateOf(*s.Rule.EndDate), true
		}
	}
	return time.Time{}, false
}

// Slots yields the class occurrences touching [from, to]. A single class
// yields its one slot when its date span intersects the window.
func (c Class) Slots(from, to time.Time) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		switch s := c.Schedule.(type) {
		case SingleSchedule:
			if !dbtime.RangesIntersect(s.StartDate, s.LastDate(), from, to) || dbtime.DateOf(to).Before(dbtime.DateOf(from)) {
				return
			}
			yield(Slot{
				Date:      dbtime.DateOf(s.StartDate),
				EndDate:   s.LastDate(),
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
			})
		case RecurringSchedule:
			for o := range s.Rule.All(from, to) {
				if !yield(Slot{Date: o.Date, EndDate: o.Date, StartTime: o.StartTime, EndTime: o.EndTime}) {
					return
				}
			}
		}
	}
}
