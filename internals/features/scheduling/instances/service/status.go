package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   UpdateStatus
========================= */

// StatusChange describes a manual status edit. InstanceID nil picks the
// most relevant instance of the class (see PickRelevant).
type StatusChange struct {
	Status     instmodel.Status
	InstanceID *uuid.UUID
	Notes      *string
}

// UpdateStatus sets the status of exactly one instance of classID and marks
// it overridden so re-expansion keeps it.
func (m *Materializer) UpdateStatus(ctx context.Context, classID uuid.UUID, ch StatusChange) (instmodel.ClassInstanceModel, error) {
	if !ch.Status.Valid() {
		return instmodel.ClassInstanceModel{}, schederr.Invalid("status", "must be one of scheduled, completed, cancelled, rescheduled")
	}

	var out instmodel.ClassInstanceModel
	err := m.Store.Transaction(ctx, func(ctx context.Context) error {
		if _, err := m.Store.LockClass(ctx, classID); err != nil {
			return err
		}

		var row instmodel.ClassInstanceModel
		if ch.InstanceID != nil {
			r, err := m.Store.GetInstance(ctx, *ch.InstanceID)
			if err != nil {
				return err
			}
			if r.ClassInstanceClassID != classID {
				return schederr.NotFound("class instance", *ch.InstanceID)
			}
			row = r
		} else {
			rows, err := m.Store.InstancesByClass(ctx, classID)
			if err != nil {
				return err
			}
			r, ok := PickRelevant(rows, m.today())
			if !ok {
				return &schederr.NotFoundError{Entity: "class instance", ID: "for class " + classID.String()}
			}
			row = r
		}

		row.ClassInstanceStatus = ch.Status
		if ch.Notes != nil {
			row.ClassInstanceNotes = trimPtr(ch.Notes)
		}
		row.ClassInstanceIsOverridden = true
		if err := m.Store.SaveInstance(ctx, &row); err != nil {
			return err
		}
		out = row
		return m.refreshSummary(ctx, classID)
	})
	if err != nil {
		return instmodel.ClassInstanceModel{}, err
	}
	m.invalidate(ctx)
	return out, nil
}

// PickRelevant chooses the instance a class-level status change applies to:
// the earliest instance dated today, else the earliest upcoming one, else
// the latest past one.
func PickRelevant(rows []instmodel.ClassInstanceModel, today time.Time) (instmodel.ClassInstanceModel, bool) {
	if len(rows) == 0 {
		return instmodel.ClassInstanceModel{}, false
	}
	sorted := append([]instmodel.ClassInstanceModel(nil), rows...)
	sortInstances(sorted)

	today = dbtime.DateOf(today)
	for _, r := range sorted {
		if !dbtime.DateOf(r.ClassInstanceDate).Before(today) {
			return r, true
		}
	}
	return sorted[len(sorted)-1], true
}

/* =========================
   Reschedule
========================= */

// Reschedule is a request to move one instance.
type Reschedule struct {
	Date      time.Time
	EndDate   *time.Time
	StartTime dbtime.Tod
	EndTime   dbtime.Tod
	RoomID    *uuid.UUID // nil keeps the current room
	Notes     *string
	Force     bool
}

func (r Reschedule) validate() error {
	f := schederr.FieldErrors{}
	if r.Date.IsZero() {
		f.Add("date", "required")
	}
	if r.EndDate != nil && dbtime.DateOf(*r.EndDate).Before(dbtime.DateOf(r.Date)) {
		f.Add("end_date", "must not be before date")
	}
	if !r.StartTime.Before(r.EndTime) {
		f.Add("end_time", "start_time must be before end_time")
	}
	if f.Empty() {
		return nil
	}
	return &schederr.ValidationError{Fields: f}
}

// Reschedule moves one instance to a new date/time (and optionally room).
// The slot key stays, so re-expansion still recognises the instance. The
// new slot is conflict checked with the instance itself excluded unless
// Force is set; a racing write is retried once.
func (m *Materializer) Reschedule(ctx context.Context, instanceID uuid.UUID, r Reschedule) (instmodel.ClassInstanceModel, error) {
	if err := r.validate(); err != nil {
		return instmodel.ClassInstanceModel{}, err
	}

	var out instmodel.ClassInstanceModel
	err := schederr.RetryConcurrent(func() error {
		return m.Store.Transaction(ctx, func(ctx context.Context) error {
			row, err := m.Store.GetInstance(ctx, instanceID)
			if err != nil {
				return err
			}
			if _, err := m.Store.LockClass(ctx, row.ClassInstanceClassID); err != nil {
				return err
			}

			room := row.ClassInstanceRoomID
			if r.RoomID != nil {
				id := *r.RoomID
				room = &id
			}

			if !r.Force && m.Conflicts != nil {
				res, err := m.Conflicts.Check(ctx, conflicts.Subject{
					InstructorID: row.ClassInstanceInstructorID,
					RoomID:       room,
					Date:         r.Date,
					EndDate:      r.EndDate,
					StartTime:    r.StartTime,
					EndTime:      r.EndTime,
				}, conflicts.Options{ExcludeInstanceID: &row.ClassInstanceID})
				if err != nil {
					return err
				}
				if res.HasConflict {
					return &conflicts.ConflictDetectedError{Conflicts: res.Conflicts}
				}
			}

			row.ClassInstanceDate = dbtime.DateOf(r.Date)
			row.ClassInstanceEndDate = row.ClassInstanceDate
			if r.EndDate != nil {
				row.ClassInstanceEndDate = dbtime.DateOf(*r.EndDate)
			}
			row.ClassInstanceStartTime = r.StartTime
			row.ClassInstanceEndTime = r.EndTime
			row.ClassInstanceRoomID = room
			row.ClassInstanceStatus = instmodel.StatusRescheduled
			row.ClassInstanceIsOverridden = true
			if r.Notes != nil {
				row.ClassInstanceNotes = trimPtr(r.Notes)
			}
			if err := m.Store.SaveInstance(ctx, &row); err != nil {
				return err
			}
			out = row
			return m.refreshSummary(ctx, row.ClassInstanceClassID)
		})
	})
	if err != nil {
		return instmodel.ClassInstanceModel{}, err
	}
	m.invalidate(ctx)
	return out, nil
}

/* =========================
   CancelFuture
========================= */

// CancelFuture cancels the class's scheduled, non-overridden instances dated
// on or after from. Used when a class is deactivated; history stays.
func (m *Materializer) CancelFuture(ctx context.Context, classID uuid.UUID, from time.Time) (int, error) {
	n := 0
	err := m.Store.Transaction(ctx, func(ctx context.Context) error {
		rows, err := m.Store.InstancesByClass(ctx, classID)
		if err != nil {
			return err
		}
		from = dbtime.DateOf(from)
		for i := range rows {
			row := &rows[i]
			if row.ClassInstanceIsOverridden || row.ClassInstanceStatus != instmodel.StatusScheduled {
				continue
			}
			if dbtime.DateOf(row.ClassInstanceDate).Before(from) {
				continue
			}
			row.ClassInstanceStatus = instmodel.StatusCancelled
			if err := m.Store.SaveInstance(ctx, row); err != nil {
				return err
			}
			n++
		}
		return m.saveSummary(ctx, classID, rows)
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.invalidate(ctx)
	}
	return n, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
