// file: internals/features/scheduling/instances/service/materializer.go
package service

import (
	"context"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Collaborators
========================= */

// Store is the storage the materializer writes through. Transaction carries
// the transaction in the returned context; nested calls join it.
type Store interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// LockClass loads an alive class and holds a row lock until the
	// transaction ends.
	LockClass(ctx context.Context, id uuid.UUID) (classmodel.Class, error)

	// InstancesByClass returns every alive instance of the class.
	InstancesByClass(ctx context.Context, classID uuid.UUID) ([]instmodel.ClassInstanceModel, error)
	GetInstance(ctx context.Context, id uuid.UUID) (instmodel.ClassInstanceModel, error)
	CreateInstances(ctx context.Context, rows []instmodel.ClassInstanceModel) error
	SaveInstance(ctx context.Context, row *instmodel.ClassInstanceModel) error
	DeleteInstances(ctx context.Context, ids []uuid.UUID) error

	SaveInstanceSummary(ctx context.Context, classID uuid.UUID, summary []classmodel.InstanceSummary) error
	SaveMaterializedRange(ctx context.Context, classID uuid.UUID, r classmodel.DateRange) error
}

// Checker is the part of the conflict detector reschedule needs.
type Checker interface {
	Check(ctx context.Context, s conflicts.Subject, opt conflicts.Options) (conflicts.Result, error)
}

// Invalidator drops cached reads after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

/* =========================
   Materializer
========================= */

type Materializer struct {
	Store     Store
	Conflicts Checker
	Cache     Invalidator

	Now      func() time.Time
	Location *time.Location
}

func NewMaterializer(store Store, checker Checker, cache Invalidator, loc *time.Location) *Materializer {
	return &Materializer{Store: store, Conflicts: checker, Cache: cache, Now: time.Now, Location: loc}
}

// Result reports what a materialization changed.
type Result struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Preserved int `json:"preserved"`

	Instances []instmodel.ClassInstanceModel `json:"instances"`
}

func (m *Materializer) today() time.Time {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return dbtime.Today(now(), m.Location)
}

func (m *Materializer) invalidate(ctx context.Context) {
	if m.Cache != nil {
		m.Cache.Invalidate(ctx)
	}
}

/* =========================
   Materialize
========================= */

// Materialize reconciles the instances of one class with its expansion over
// [from, to]. A single class always gets exactly its one instance and the
// window is ignored.
//
// Existing rows are matched by slot key. Rows without a manual override get
// their effective schedule refreshed; overridden rows are never touched.
// Rows whose key the class no longer produces are removed unless overridden.
// The window is first widened to reach every unmodified row from today on and
// to join the materialized range, so a changed definition never leaves rows
// of the old one behind. Everything runs in one transaction under the class
// lock.
func (m *Materializer) Materialize(ctx context.Context, classID uuid.UUID, from, to time.Time) (Result, error) {
	var res Result
	err := m.Store.Transaction(ctx, func(ctx context.Context) error {
		c, err := m.Store.LockClass(ctx, classID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return schederr.Invalid("class_id", "class is inactive")
		}
		res, err = m.reconcile(ctx, c, from, to)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	m.invalidate(ctx)
	return res, nil
}

func (m *Materializer) reconcile(ctx context.Context, c classmodel.Class, from, to time.Time) (Result, error) {
	var res Result

	one, single := c.Schedule.(classmodel.SingleSchedule)
	if single {
		from, to = one.StartDate, one.LastDate()
	}
	from, to = dbtime.DateOf(from), dbtime.DateOf(to)
	shownFrom, shownTo := from, to

	existing, err := m.Store.InstancesByClass(ctx, c.ID)
	if err != nil {
		return res, err
	}
	if !single {
		from, to = m.widen(c, existing, from, to)
	}

	byKey := make(map[classmodel.SlotKey]*instmodel.ClassInstanceModel, len(existing))
	for i := range existing {
		byKey[existing[i].SlotKey()] = &existing[i]
	}

	desired := map[classmodel.SlotKey]struct{}{}
	var fresh []instmodel.ClassInstanceModel
	for s := range c.Slots(from, to) {
		key := s.Key()
		if _, dup := desired[key]; dup {
			continue
		}
		desired[key] = struct{}{}

		row, ok := byKey[key]
		if !ok {
			if coveredByOverride(existing, s) {
				res.Preserved++
				continue
			}
			fresh = append(fresh, instmodel.FromSlot(c, s))
			continue
		}
		if row.ClassInstanceIsOverridden {
			res.Preserved++
			continue
		}
		before := *row
		instmodel.ApplySlot(row, c, s)
		if sameBooking(&before, row) {
			continue
		}
		if err := m.Store.SaveInstance(ctx, row); err != nil {
			return res, err
		}
		res.Updated++
	}

	var stale []uuid.UUID
	kept := existing[:0:0]
	for i := range existing {
		row := &existing[i]
		_, want := desired[row.SlotKey()]
		inWindow := single || dbtime.InRange(row.ClassInstanceSlotDate, from, to)
		if !want && inWindow && !row.ClassInstanceIsOverridden {
			stale = append(stale, row.ClassInstanceID)
			continue
		}
		kept = append(kept, *row)
	}
	if len(stale) > 0 {
		if err := m.Store.DeleteInstances(ctx, stale); err != nil {
			return res, err
		}
		res.Removed = len(stale)
	}

	if len(fresh) > 0 {
		if err := m.Store.CreateInstances(ctx, fresh); err != nil {
			return res, err
		}
		res.Created = len(fresh)
		kept = append(kept, fresh...)
	}

	if err := m.saveSummary(ctx, c.ID, kept); err != nil {
		return res, err
	}
	if !to.Before(from) {
		span := classmodel.DateRange{From: from, Through: to}
		if c.Materialized != nil && !single {
			span = c.Materialized.Union(from, to)
		}
		if err := m.Store.SaveMaterializedRange(ctx, c.ID, span); err != nil {
			return res, err
		}
	}

	for _, row := range kept {
		if dbtime.InRange(row.ClassInstanceSlotDate, shownFrom, shownTo) {
			res.Instances = append(res.Instances, row)
		}
	}
	sortInstances(res.Instances)

	if res.Created+res.Updated+res.Removed > 0 {
		log.Printf("[INFO] materialize class=%s window=%s..%s created=%d updated=%d removed=%d preserved=%d",
			c.ID, dbtime.FormatDate(from), dbtime.FormatDate(to), res.Created, res.Updated, res.Removed, res.Preserved)
	}
	return res, nil
}

// widen stretches [from, to] so it touches the class's materialized range
// and covers every unmodified row dated today or later.
func (m *Materializer) widen(c classmodel.Class, rows []instmodel.ClassInstanceModel, from, to time.Time) (time.Time, time.Time) {
	if r := c.Materialized; r != nil {
		if next := dbtime.AddDays(r.Through, 1); from.After(next) {
			from = next
		}
		if prev := dbtime.AddDays(r.From, -1); to.Before(prev) {
			to = prev
		}
		to = dbtime.MaxDate(to, r.Through)
	}
	today := m.today()
	for i := range rows {
		d := dbtime.DateOf(rows[i].ClassInstanceSlotDate)
		if rows[i].ClassInstanceIsOverridden || d.Before(today) {
			continue
		}
		from, to = dbtime.MinDate(from, d), dbtime.MaxDate(to, d)
	}
	return from, to
}

func coveredByOverride(rows []instmodel.ClassInstanceModel, s classmodel.Slot) bool {
	for i := range rows {
		if rows[i].Covers(s) {
			return true
		}
	}
	return false
}

func sameBooking(a, b *instmodel.ClassInstanceModel) bool {
	return a.ClassInstanceDate.Equal(b.ClassInstanceDate) &&
		a.ClassInstanceEndDate.Equal(b.ClassInstanceEndDate) &&
		a.ClassInstanceStartTime == b.ClassInstanceStartTime &&
		a.ClassInstanceEndTime == b.ClassInstanceEndTime &&
		a.ClassInstanceInstructorID == b.ClassInstanceInstructorID &&
		sameRoom(a.ClassInstanceRoomID, b.ClassInstanceRoomID)
}

func sameRoom(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sortInstances(rows []instmodel.ClassInstanceModel) {
	slices.SortFunc(rows, func(a, b instmodel.ClassInstanceModel) int {
		if c := a.StartAt().Compare(b.StartAt()); c != 0 {
			return c
		}
		if c := a.EndAt().Compare(b.EndAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ClassInstanceID.String(), b.ClassInstanceID.String())
	})
}

// saveSummary rewrites Class.GeneratedInstances from rows.
func (m *Materializer) saveSummary(ctx context.Context, classID uuid.UUID, rows []instmodel.ClassInstanceModel) error {
	sorted := slices.Clone(rows)
	sortInstances(sorted)
	summary := make([]classmodel.InstanceSummary, 0, len(sorted))
	for i := range sorted {
		summary = append(summary, sorted[i].Summary())
	}
	return m.Store.SaveInstanceSummary(ctx, classID, summary)
}

func (m *Materializer) refreshSummary(ctx context.Context, classID uuid.UUID) error {
	rows, err := m.Store.InstancesByClass(ctx, classID)
	if err != nil {
		return err
	}
	return m.saveSummary(ctx, classID, rows)
}
