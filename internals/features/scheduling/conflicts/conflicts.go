// Package conflicts decides whether a proposed booking overlaps an existing
// instructor or room booking. Finding a conflict is a result, not an error.
package conflicts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/occurrences"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Types
========================= */

type Type string

const (
	TypeInstructor Type = "instructor"
	TypeRoom       Type = "room"
)

// Subject is a proposed booking. EndDate nil means the same day as Date.
type Subject struct {
	InstructorID uuid.UUID
	RoomID       *uuid.UUID
	Date         time.Time
	EndDate      *time.Time
	StartTime    dbtime.Tod
	EndTime      dbtime.Tod
}

func (s Subject) lastDate() time.Time {
	if s.EndDate != nil {
		return dbtime.DateOf(*s.EndDate)
	}
	return dbtime.DateOf(s.Date)
}

func (s Subject) startAt() time.Time { return dbtime.At(s.Date, s.StartTime) }
func (s Subject) endAt() time.Time   { return dbtime.At(s.lastDate(), s.EndTime) }

// Options lets an update ignore its own prior state.
type Options struct {
	ExcludeClassID    *uuid.UUID
	ExcludeInstanceID *uuid.UUID
}

// ConflictInfo describes one colliding existing booking. CandidateDate is
// the date of the proposed occurrence that collided (set by CheckClass).
type ConflictInfo struct {
	ClassID       uuid.UUID  `json:"class_id"`
	ClassName     string     `json:"class_name"`
	InstanceID    *uuid.UUID `json:"instance_id,omitempty"`
	Date          string     `json:"date"`
	StartTime     dbtime.Tod `json:"start_time"`
	EndTime       dbtime.Tod `json:"end_time"`
	ConflictType  Type       `json:"conflict_type"`
	CandidateDate string     `json:"candidate_date,omitempty"`
}

type Result struct {
	HasConflict bool           `json:"has_conflict"`
	Conflicts   []ConflictInfo `json:"conflicts"`
}

func newResult(c []ConflictInfo) Result {
	if c == nil {
		c = []ConflictInfo{}
	}
	return Result{HasConflict: len(c) > 0, Conflicts: c}
}

/* =========================
   ConflictDetectedError
========================= */

// ConflictDetectedError is raised by callers that refuse to book over a
// conflict. The detector itself never returns it.
type ConflictDetectedError struct {
	Conflicts []ConflictInfo
}

func (e *ConflictDetectedError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		return fmt.Sprintf("%s conflict with %q on %s %s-%s", c.ConflictType, c.ClassName, c.Date, c.StartTime, c.EndTime)
	}
	return fmt.Sprintf("%d scheduling conflicts", len(e.Conflicts))
}

/* =========================
   Pure check
========================= */

// Overlaps is the half-open interval rule on minutes since midnight:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 and e1 > s2.
func Overlaps(s1, e1, s2, e2 dbtime.Tod) bool {
	return dbtime.Overlaps(s1, e1, s2, e2)
}

// Find compares s against existing bookings. Cancelled bookings and the
// excluded class/instance are ignored. The instructor check always runs;
// the room check runs only when s has a room. One booking sharing both
// instructor and room yields two entries.
func Find(s Subject, existing []occurrences.Booking, opt Options) []ConflictInfo {
	var out []ConflictInfo
	start, end := s.startAt(), s.endAt()
	for _, b := range existing {
		if !b.Blocking() {
			continue
		}
		if opt.ExcludeClassID != nil && *opt.ExcludeClassID == b.ClassID {
			continue
		}
		if opt.ExcludeInstanceID != nil && b.InstanceID != nil && *opt.ExcludeInstanceID == *b.InstanceID {
			continue
		}
		if !dbtime.InstantsOverlap(start, end, b.StartAt(), b.EndAt()) {
			continue
		}
		if b.InstructorID == s.InstructorID {
			out = append(out, info(b, TypeInstructor))
		}
		if s.RoomID != nil && b.RoomID != nil && *s.RoomID == *b.RoomID {
			out = append(out, info(b, TypeRoom))
		}
	}
	return out
}

func info(b occurrences.Booking, t Type) ConflictInfo {
	return ConflictInfo{
		ClassID:      b.ClassID,
		ClassName:    b.ClassName,
		InstanceID:   b.InstanceID,
		Date:         dbtime.FormatDate(b.Date),
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		ConflictType: t,
	}
}

/* =========================
   Detector
========================= */

// Detector runs Find against bookings loaded from storage. It is read only.
type Detector struct {
	Source occurrences.Loader
}

func NewDetector(src occurrences.Loader) *Detector {
	return &Detector{Source: src}
}

// Check runs the instructor and room checks for one subject.
func (d *Detector) Check(ctx context.Context, s Subject, opt Options) (Result, error) {
	return d.CheckMany(ctx, []Subject{s}, opt)
}

// CheckMany checks several subjects with a single load covering all of them.
// With more than one subject every entry carries its CandidateDate.
func (d *Detector) CheckMany(ctx context.Context, subjects []Subject, opt Options) (Result, error) {
	if len(subjects) == 0 {
		return newResult(nil), nil
	}

	from, to := dbtime.DateOf(subjects[0].Date), subjects[0].lastDate()
	instructors := map[uuid.UUID]struct{}{}
	rooms := map[uuid.UUID]struct{}{}
	for _, s := range subjects {
		from = dbtime.MinDate(from, s.Date)
		to = dbtime.MaxDate(to, s.lastDate())
		instructors[s.InstructorID] = struct{}{}
		if s.RoomID != nil {
			rooms[*s.RoomID] = struct{}{}
		}
	}

	f := occurrences.Filter{
		From:              from,
		To:                to,
		ExcludeClassID:    opt.ExcludeClassID,
		ExcludeInstanceID: opt.ExcludeInstanceID,
	}
	// A candidate class has one instructor and at most one room; narrow the
	// load only in that common case.
	if len(instructors) == 1 && len(rooms) <= 1 {
		for id := range instructors {
			f.InstructorID = &id
		}
		for id := range rooms {
			f.RoomID = &id
		}
	}

	bookings, err := occurrences.Query(ctx, d.Source, f)
	if err != nil {
		return Result{}, err
	}

	byDay := indexByDay(bookings)
	var out []ConflictInfo
	for _, s := range subjects {
		found := Find(s, byDay.candidatesFor(s), opt)
		if len(subjects) > 1 {
			for i := range found {
				found[i].CandidateDate = dbtime.FormatDate(s.Date)
			}
		}
		out = append(out, found...)
	}
	return newResult(out), nil
}

// CheckClass checks every occurrence of c within [from, to] separately, the
// class's own prior state excluded.
func (d *Detector) CheckClass(ctx context.Context, c classmodel.Class, from, to time.Time) (Result, error) {
	var subjects []Subject
	for slot := range c.Slots(from, to) {
		end := slot.EndDate
		subjects = append(subjects, Subject{
			InstructorID: c.InstructorID,
			RoomID:       c.RoomID,
			Date:         slot.Date,
			EndDate:      &end,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
		})
	}
	opt := Options{}
	if c.ID != uuid.Nil {
		id := c.ID
		opt.ExcludeClassID = &id
	}
	return d.CheckMany(ctx, subjects, opt)
}

/* =========================
   Index
========================= */

// dayIndex buckets bookings by every civil date they span.
type dayIndex struct {
	days     map[string][]int
	bookings []occurrences.Booking
}

func indexByDay(bookings []occurrences.Booking) dayIndex {
	idx := dayIndex{days: map[string][]int{}, bookings: bookings}
	for i, b := range bookings {
		for d := dbtime.DateOf(b.Date); !d.After(b.EndDate); d = dbtime.AddDays(d, 1) {
			k := dbtime.FormatDate(d)
			idx.days[k] = append(idx.days[k], i)
		}
	}
	return idx
}

// candidatesFor returns the bookings sharing at least one date with s.
func (idx dayIndex) candidatesFor(s Subject) []occurrences.Booking {
	seen := map[int]struct{}{}
	var out []occurrences.Booking
	for d := dbtime.DateOf(s.Date); !d.After(s.lastDate()); d = dbtime.AddDays(d, 1) {
		for _, i := range idx.days[dbtime.FormatDate(d)] {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			out = append(out, idx.bookings[i])
		}
	}
	return out
}
