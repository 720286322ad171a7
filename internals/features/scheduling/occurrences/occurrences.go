// Package occurrences resolves what is actually booked: class expansions
// overlaid by the materialized instance records that replace them.
package occurrences

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Filter
========================= */

// Filter narrows bookings to a window and, optionally, to an instructor
// and/or room. When both ids are set a booking matches if either does.
type Filter struct {
	From time.Time
	To   time.Time

	InstructorID *uuid.UUID
	RoomID       *uuid.UUID

	ExcludeClassID    *uuid.UUID
	ExcludeInstanceID *uuid.UUID
}

func (f Filter) matches(instructorID uuid.UUID, roomID *uuid.UUID) bool {
	if f.InstructorID == nil && f.RoomID == nil {
		return true
	}
	if f.InstructorID != nil && *f.InstructorID == instructorID {
		return true
	}
	return f.RoomID != nil && roomID != nil && *f.RoomID == *roomID
}

func (f Filter) excludesClass(id uuid.UUID) bool {
	return f.ExcludeClassID != nil && *f.ExcludeClassID == id
}

/* =========================
   Booking
========================= */

// Booking is one occupied (instructor, room, time span). InstanceID is nil
// for an occurrence that has not been materialized yet.
type Booking struct {
	ClassID      uuid.UUID
	ClassName    string
	InstanceID   *uuid.UUID
	InstructorID uuid.UUID
	RoomID       *uuid.UUID

	Date      time.Time
	EndDate   time.Time
	StartTime dbtime.Tod
	EndTime   dbtime.Tod

	Status instmodel.Status
	Notes  *string
}

func (b Booking) StartAt() time.Time { return dbtime.At(b.Date, b.StartTime) }
func (b Booking) EndAt() time.Time   { return dbtime.At(b.EndDate, b.EndTime) }

// Blocking is false for cancelled bookings.
func (b Booking) Blocking() bool { return b.Status != instmodel.StatusCancelled }

/* =========================
   Loader
========================= */

// Loader fetches the raw material for Resolve. It must return every active
// class that may occur in the window for the filter's instructor/room, every
// instance of those classes whose slot date falls in the window (so moved
// instances still shadow their original slot), and every instance of an
// active class whose effective dates touch the window for the filter.
type Loader interface {
	LoadBookable(ctx context.Context, f Filter) ([]classmodel.Class, []instmodel.ClassInstanceModel, error)
}

// Query loads and resolves bookings for f.
func Query(ctx context.Context, l Loader, f Filter) ([]Booking, error) {
	classes, instances, err := l.LoadBookable(ctx, f)
	if err != nil {
		return nil, err
	}
	return Resolve(classes, instances, f), nil
}

/* =========================
   Resolve
========================= */

// Resolve merges expansions and instances into bookings within f, ordered
// by start instant. An instance replaces the expanded slot with the same key,
// whatever its status, and an overridden instance also replaces any slot it
// covers. Dates inside a class's materialized range come from its instances
// only. Cancelled instances are returned with their status so callers can
// decide.
func Resolve(classes []classmodel.Class, instances []instmodel.ClassInstanceModel, f Filter) []Booking {
	names := make(map[uuid.UUID]string, len(classes))
	for _, c := range classes {
		names[c.ID] = c.Name
	}

	shadow := make(map[uuid.UUID]map[classmodel.SlotKey]struct{})
	overridden := make(map[uuid.UUID][]*instmodel.ClassInstanceModel)
	for i := range instances {
		in := &instances[i]
		keys := shadow[in.ClassInstanceClassID]
		if keys == nil {
			keys = map[classmodel.SlotKey]struct{}{}
			shadow[in.ClassInstanceClassID] = keys
		}
		keys[in.SlotKey()] = struct{}{}
		if in.ClassInstanceIsOverridden {
			overridden[in.ClassInstanceClassID] = append(overridden[in.ClassInstanceClassID], in)
		}
	}

	var out []Booking
	for i := range instances {
		in := &instances[i]
		if f.excludesClass(in.ClassInstanceClassID) {
			continue
		}
		if f.ExcludeInstanceID != nil && *f.ExcludeInstanceID == in.ClassInstanceID {
			continue
		}
		if !f.matches(in.ClassInstanceInstructorID, in.ClassInstanceRoomID) {
			continue
		}
		if !dbtime.RangesIntersect(in.ClassInstanceDate, in.ClassInstanceEndDate, f.From, f.To) {
			continue
		}
		id := in.ClassInstanceID
		out = append(out, Booking{
			ClassID:      in.ClassInstanceClassID,
			ClassName:    names[in.ClassInstanceClassID],
			InstanceID:   &id,
			InstructorID: in.ClassInstanceInstructorID,
			RoomID:       in.ClassInstanceRoomID,
			Date:         dbtime.DateOf(in.ClassInstanceDate),
			EndDate:      dbtime.DateOf(in.ClassInstanceEndDate),
			StartTime:    in.ClassInstanceStartTime,
			EndTime:      in.ClassInstanceEndTime,
			Status:       in.ClassInstanceStatus,
			Notes:        in.ClassInstanceNotes,
		})
	}

	for _, c := range classes {
		if !c.IsActive || f.excludesClass(c.ID) || !f.matches(c.InstructorID, c.RoomID) {
			continue
		}
		keys := shadow[c.ID]
	slots:
		for s := range c.Slots(f.From, f.To) {
			if c.Materialized != nil && c.Materialized.Contains(s.Date) {
				continue
			}
			if _, ok := keys[s.Key()]; ok {
				continue
			}
			for _, in := range overridden[c.ID] {
				if in.Covers(s) {
					continue slots
				}
			}
			out = append(out, Booking{
				ClassID:      c.ID,
				ClassName:    c.Name,
				InstructorID: c.InstructorID,
				RoomID:       c.RoomID,
				Date:         s.Date,
				EndDate:      s.EndDate,
				StartTime:    s.StartTime,
				EndTime:      s.EndTime,
				Status:       instmodel.StatusScheduled,
			})
		}
	}

	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b Booking) int {
	if c := a.StartAt().Compare(b.StartAt()); c != 0 {
		return c
	}
	if c := a.EndAt().Compare(b.EndAt()); c != 0 {
		return c
	}
	return strings.Compare(a.ClassName, b.ClassName)
}
