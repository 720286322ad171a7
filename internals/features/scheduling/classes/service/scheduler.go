// file: internals/features/scheduling/classes/service/scheduler.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	instsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/occurrences"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Collaborators
========================= */

// Store is everything the scheduler persists through.
type Store interface {
	instsvc.Store
	occurrences.Loader

	// CreateClass inserts c and assigns its ID when unset.
	CreateClass(ctx context.Context, c *classmodel.Class) error
	UpdateClass(ctx context.Context, c classmodel.Class) error
	GetClass(ctx context.Context, id uuid.UUID) (classmodel.Class, error)
	ListClasses(ctx context.Context, q classmodel.ListQuery) ([]classmodel.Class, int64, error)
	SetClassActive(ctx context.Context, id uuid.UUID, active bool) error
	ActiveRecurringClassIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Directory resolves the entities a class refers to. Each method returns a
// *schederr.NotFoundError when the id is unknown or inactive.
type Directory interface {
	ActiveInstructor(ctx context.Context, id uuid.UUID) error
	ActiveRoomType(ctx context.Context, id uuid.UUID) error
	// ActiveRoom returns the room's type.
	ActiveRoom(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// Settings are the windows the scheduler works in.
type Settings struct {
	HorizonDays         int
	ConflictHorizonDays int
	MaxWindowDays       int
	Location            *time.Location
}

/* =========================
   Scheduler
========================= */

// Scheduler runs class writes as check-then-write transactions: validate,
// resolve references, detect conflicts, persist, materialize.
type Scheduler struct {
	Store        Store
	Directory    Directory
	Detector     *conflicts.Detector
	Materializer *instsvc.Materializer
	Cache        instsvc.Invalidator
	Settings     Settings

	Now func() time.Time
}

func New(store Store, dir Directory, cache instsvc.Invalidator, st Settings) *Scheduler {
	det := conflicts.NewDetector(store)
	return &Scheduler{
		Store:        store,
		Directory:    dir,
		Detector:     det,
		Materializer: instsvc.NewMaterializer(store, det, cache, st.Location),
		Cache:        cache,
		Settings:     st,
		Now:          time.Now,
	}
}

// Outcome is the result of a create or update.
type Outcome struct {
	Class        classmodel.Class
	Materialized instsvc.Result
	// Conflicts booked over with force.
	Conflicts []conflicts.ConflictInfo
}

func (s *Scheduler) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return dbtime.Today(now(), s.Settings.Location)
}

func (s *Scheduler) invalidate(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
}

/* =========================
   Windows
========================= */

// MaterializeWindow is [max(series start, today), min(series end, today+horizon)].
func (s *Scheduler) MaterializeWindow(c classmodel.Class) (time.Time, time.Time) {
	return s.window(c, s.Settings.HorizonDays)
}

// ConflictWindow is how far ahead a candidate class is checked. A single
// class is always checked over its own dates.
func (s *Scheduler) ConflictWindow(c classmodel.Class) (time.Time, time.Time) {
	if single, ok := c.Schedule.(classmodel.SingleSchedule); ok {
		return dbtime.DateOf(single.StartDate), single.LastDate()
	}
	return s.window(c, s.Settings.ConflictHorizonDays)
}

func (s *Scheduler) window(c classmodel.Class, days int) (time.Time, time.Time) {
	today := s.today()
	from := dbtime.MaxDate(c.SeriesStart(), today)
	to := dbtime.AddDays(today, days)
	if end, ok := c.SeriesEnd(); ok {
		to = dbtime.MinDate(to, end)
	}
	return from, to
}

/* =========================
   Create / Update
========================= */

// Create validates c, refuses it when it conflicts (unless force), stores it
// and materializes its instances, all in one transaction.
func (s *Scheduler) Create(ctx context.Context, c classmodel.Class, force bool) (Outcome, error) {
	c.IsActive = true
	c.GeneratedInstances = nil
	c.Materialized = nil
	if err := s.prepare(ctx, c); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err := schederr.RetryConcurrent(func() error {
		attempt := c
		attempt.ID = uuid.Nil
		return s.Store.Transaction(ctx, func(ctx context.Context) error {
			found, err := s.detect(ctx, attempt, force)
			if err != nil {
				return err
			}
			if err := s.Store.CreateClass(ctx, &attempt); err != nil {
				return err
			}
			return s.finish(ctx, &out, attempt, found)
		})
	})
	if err != nil {
		return Outcome{}, err
	}
	s.invalidate(ctx)
	log.Printf("[INFO] class created id=%s type=%s instances=%d", out.Class.ID, out.Class.Type(), out.Materialized.Created)
	return out, nil
}

// Update replaces the definition of class id. Its own prior occurrences are
// excluded from the conflict check; overridden instances survive.
func (s *Scheduler) Update(ctx context.Context, id uuid.UUID, c classmodel.Class, force bool) (Outcome, error) {
	c.ID = id
	if err := s.prepare(ctx, c); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err := schederr.RetryConcurrent(func() error {
		return s.Store.Transaction(ctx, func(ctx context.Context) error {
			existing, err := s.Store.LockClass(ctx, id)
			if err != nil {
				return err
			}
			next := c
			next.IsActive = existing.IsActive
			next.GeneratedInstances = existing.GeneratedInstances
			next.Materialized = existing.Materialized
			next.CreatedAt = existing.CreatedAt
			if !next.IsActive {
				return schederr.Invalid("class_id", "class is inactive")
			}

			found, err := s.detect(ctx, next, force)
			if err != nil {
				return err
			}
			if err := s.Store.UpdateClass(ctx, next); err != nil {
				return err
			}
			return s.finish(ctx, &out, next, found)
		})
	})
	if err != nil {
		return Outcome{}, err
	}
	s.invalidate(ctx)
	log.Printf("[INFO] class updated id=%s created=%d updated=%d removed=%d",
		id, out.Materialized.Created, out.Materialized.Updated, out.Materialized.Removed)
	return out, nil
}

func (s *Scheduler) detect(ctx context.Context, c classmodel.Class, force bool) ([]conflicts.ConflictInfo, error) {
	from, to := s.ConflictWindow(c)
	res, err := s.Detector.CheckClass(ctx, c, from, to)
	if err != nil {
		return nil, err
	}
	if res.HasConflict && !force {
		return nil, &conflicts.ConflictDetectedError{Conflicts: res.Conflicts}
	}
	if res.HasConflict {
		log.Printf("[WARN] class %q force-booked over %d conflict(s)", c.Name, len(res.Conflicts))
	}
	return res.Conflicts, nil
}

func (s *Scheduler) finish(ctx context.Context, out *Outcome, c classmodel.Class, found []conflicts.ConflictInfo) error {
	from, to := s.MaterializeWindow(c)
	res, err := s.Materializer.Materialize(ctx, c.ID, from, to)
	if err != nil {
		return err
	}
	fresh, err := s.Store.GetClass(ctx, c.ID)
	if err != nil {
		return err
	}
	*out = Outcome{Class: fresh, Materialized: res, Conflicts: found}
	return nil
}

// prepare validates the definition and resolves its references.
func (s *Scheduler) prepare(ctx context.Context, c classmodel.Class) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.Directory.ActiveInstructor(ctx, c.InstructorID); err != nil {
		return err
	}
	if err := s.Directory.ActiveRoomType(ctx, c.RoomTypeID); err != nil {
		return err
	}
	if c.RoomID != nil {
		typeID, err := s.Directory.ActiveRoom(ctx, *c.RoomID)
		if err != nil {
			return err
		}
		if typeID != c.RoomTypeID {
			return schederr.Invalid("room_id", "room does not belong to room_type_id")
		}
	}
	return nil
}

/* =========================
   Deactivate
========================= */

// Deactivate soft-deletes a class: it leaves conflict checks and its
// upcoming scheduled instances are cancelled. Returns how many were cancelled.
func (s *Scheduler) Deactivate(ctx context.Context, id uuid.UUID) (int, error) {
	n := 0
	err := s.Store.Transaction(ctx, func(ctx context.Context) error {
		c, err := s.Store.LockClass(ctx, id)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return nil
		}
		if err := s.Store.SetClassActive(ctx, id, false); err != nil {
			return err
		}
		n, err = s.Materializer.CancelFuture(ctx, id, s.today())
		return err
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	log.Printf("[INFO] class deactivated id=%s cancelled=%d", id, n)
	return n, nil
}

/* =========================
   Conflict queries
========================= */

// CheckConflicts resolves the subject's instructor and room, then runs the
// detector. Conflicts are a normal result.
func (s *Scheduler) CheckConflicts(ctx context.Context, subj conflicts.Subject, opt conflicts.Options) (conflicts.Result, error) {
	f := schederr.FieldErrors{}
	if subj.Date.IsZero() {
		f.Add("date", "required")
	}
	if subj.EndDate != nil && dbtime.DateOf(*subj.EndDate).Before(dbtime.DateOf(subj.Date)) {
		f.Add("end_date", "must not be before date")
	}
	if !subj.StartTime.Before(subj.EndTime) {
		f.Add("end_time", "start_time must be before end_time")
	}
	if !f.Empty() {
		return conflicts.Result{}, &schederr.ValidationError{Fields: f}
	}
	if err := s.Directory.ActiveInstructor(ctx, subj.InstructorID); err != nil {
		return conflicts.Result{}, err
	}
	if subj.RoomID != nil {
		if _, err := s.Directory.ActiveRoom(ctx, *subj.RoomID); err != nil {
			return conflicts.Result{}, err
		}
	}
	return s.Detector.Check(ctx, subj, opt)
}

// Preview checks a whole candidate class per expanded occurrence without
// storing anything. excludeID is the class being edited, if any.
func (s *Scheduler) Preview(ctx context.Context, c classmodel.Class, excludeID *uuid.UUID) (conflicts.Result, error) {
	if excludeID != nil {
		c.ID = *excludeID
	}
	if err := s.prepare(ctx, c); err != nil {
		return conflicts.Result{}, err
	}
	from, to := s.ConflictWindow(c)
	return s.Detector.CheckClass(ctx, c, from, to)
}

/* =========================
   Materialize / status
========================= */

// Materialize runs the materializer over an explicit window, or the default
// horizon window when from/to are nil. A default window that is already
// past the series end only refreshes the summary.
func (s *Scheduler) Materialize(ctx context.Context, id uuid.UUID, from, to *time.Time) (instsvc.Result, error) {
	c, err := s.Store.GetClass(ctx, id)
	if err != nil {
		return instsvc.Result{}, err
	}
	wf, wt := s.MaterializeWindow(c)
	if from != nil {
		wf = dbtime.DateOf(*from)
	}
	if to != nil {
		wt = dbtime.DateOf(*to)
	}
	if from != nil || to != nil {
		if err := s.checkWindow(wf, wt); err != nil {
			return instsvc.Result{}, err
		}
	}
	return s.Materializer.Materialize(ctx, id, wf, wt)
}

func (s *Scheduler) checkWindow(from, to time.Time) error {
	if to.Before(from) {
		return schederr.Invalid("to", "must not be before from")
	}
	if s.Settings.MaxWindowDays > 0 && to.Sub(from) > time.Duration(s.Settings.MaxWindowDays)*24*time.Hour {
		return schederr.Invalid("to", "window too large")
	}
	return nil
}

func (s *Scheduler) UpdateStatus(ctx context.Context, id uuid.UUID, ch instsvc.StatusChange) (instmodel.ClassInstanceModel, error) {
	return s.Materializer.UpdateStatus(ctx, id, ch)
}

func (s *Scheduler) Reschedule(ctx context.Context, instanceID uuid.UUID, r instsvc.Reschedule) (instmodel.ClassInstanceModel, error) {
	if r.RoomID != nil {
		if _, err := s.Directory.ActiveRoom(ctx, *r.RoomID); err != nil {
			return instmodel.ClassInstanceModel{}, err
		}
	}
	return s.Materializer.Reschedule(ctx, instanceID, r)
}

/* =========================
   Reads
========================= */

func (s *Scheduler) Get(ctx context.Context, id uuid.UUID) (classmodel.Class, error) {
	return s.Store.GetClass(ctx, id)
}

func (s *Scheduler) Instance(ctx context.Context, id uuid.UUID) (instmodel.ClassInstanceModel, error) {
	return s.Store.GetInstance(ctx, id)
}

func (s *Scheduler) List(ctx context.Context, q classmodel.ListQuery) ([]classmodel.Class, int64, error) {
	return s.Store.ListClasses(ctx, q)
}

// Instances lists the class's instances whose effective date lies in
// [from, to]; nil bounds are open.
func (s *Scheduler) Instances(ctx context.Context, id uuid.UUID, from, to *time.Time) ([]instmodel.ClassInstanceModel, error) {
	if _, err := s.Store.GetClass(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.Store.InstancesByClass(ctx, id)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if from != nil && dbtime.DateOf(r.ClassInstanceDate).Before(dbtime.DateOf(*from)) {
			continue
		}
		if to != nil && dbtime.DateOf(r.ClassInstanceDate).After(dbtime.DateOf(*to)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

/* =========================
   Horizon
========================= */

// ExtendHorizon materializes every active recurring class over its default
// window. A failing class is logged and skipped.
func (s *Scheduler) ExtendHorizon(ctx context.Context) (int, error) {
	ids, err := s.Store.ActiveRecurringClassIDs(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		res, err := s.Materialize(ctx, id, nil, nil)
		if err != nil {
			log.Printf("[WARN] horizon: class %s skipped: %v", id, err)
			continue
		}
		created += res.Created
	}
	return created, nil
}
