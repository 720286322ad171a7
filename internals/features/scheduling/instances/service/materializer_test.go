package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/repository/repotest"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

func day(s string) time.Time {
	d, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tod(s string) dbtime.Tod { return dbtime.MustParse(s) }

type fixture struct {
	store *repotest.Store
	cache *countingCache
	m     *Materializer
}

func newFixture(now string) fixture {
	store := repotest.New()
	cache := &countingCache{}
	m := NewMaterializer(store, conflicts.NewDetector(store), cache, time.UTC)
	m.Now = func() time.Time { return day(now).Add(8 * time.Hour) }
	return fixture{store: store, cache: cache, m: m}
}

func (f fixture) addClass(t *testing.T, c classmodel.Class) classmodel.Class {
	t.Helper()
	if c.InstructorID == uuid.Nil {
		c.InstructorID = f.store.AddInstructor("Ada")
	}
	if c.RoomTypeID == uuid.Nil {
		c.RoomTypeID = f.store.AddRoomType("Lab")
	}
	c.IsActive = true
	if err := f.store.CreateClass(context.Background(), &c); err != nil {
		t.Fatal(err)
	}
	return c
}

func weeklyClass(days ...int) classmodel.Class {
	return classmodel.Class{
		Name: "Robotics",
		Schedule: classmodel.RecurringSchedule{Rule: recurrence.Rule{
			Pattern:    recurrence.PatternWeekly,
			StartDate:  day("2024-03-01"),
			DaysOfWeek: days,
			TimeSlots:  []recurrence.TimeSlot{{StartTime: tod("09:00"), EndTime: tod("10:30")}},
		}},
	}
}

func TestMaterializeIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-01")
	c := f.addClass(t, weeklyClass(1, 3))
	ctx := context.Background()

	first, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if first.Created != 4 || len(first.Instances) != 4 {
		t.Fatalf("first run = %+v, want 4 created", first)
	}

	target := first.Instances[1]
	if _, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: instmodel.StatusCompleted, InstanceID: &target.ClassInstanceID}); err != nil {
		t.Fatal(err)
	}

	second, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-15"))
	if err != nil {
		t.Fatal(err)
	}
	if second.Created != 0 || second.Updated != 0 || second.Removed != 0 || second.Preserved != 1 {
		t.Fatalf("second run = %+v, want only 1 preserved", second)
	}

	rows := f.store.Instances()
	if len(rows) != 4 {
		t.Fatalf("got %d instances after two runs, want 4", len(rows))
	}
	for _, r := range rows {
		if r.ClassInstanceID == target.ClassInstanceID && r.ClassInstanceStatus != instmodel.StatusCompleted {
			t.Fatalf("manual status reset to %s", r.ClassInstanceStatus)
		}
	}

	got, _ := f.store.GetClass(ctx, c.ID)
	if len(got.GeneratedInstances) != 4 || got.GeneratedInstances[1].Status != "completed" {
		t.Fatalf("summary = %+v", got.GeneratedInstances)
	}
	if f.cache.n == 0 {
		t.Fatal("cache not invalidated")
	}
}

func TestMaterializeReconcilesChangedClass(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-01")
	ctx := context.Background()
	c := f.addClass(t, weeklyClass(1, 3))
	window := [2]time.Time{day("2024-03-01"), day("2024-03-15")}

	res, err := f.m.Materialize(ctx, c.ID, window[0], window[1])
	if err != nil {
		t.Fatal(err)
	}
	cancelled := res.Instances[0]
	if _, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: instmodel.StatusCancelled, InstanceID: &cancelled.ClassInstanceID}); err != nil {
		t.Fatal(err)
	}

	// Wednesdays only, and a room assigned.
	room := f.store.AddRoom("R1", c.RoomTypeID)
	c.RoomID = &room
	rule := c.Schedule.(classmodel.RecurringSchedule).Rule
	rule.DaysOfWeek = []int{3}
	c.Schedule = classmodel.RecurringSchedule{Rule: rule}
	if err := f.store.UpdateClass(ctx, c); err != nil {
		t.Fatal(err)
	}

	res, err = f.m.Materialize(ctx, c.ID, window[0], window[1])
	if err != nil {
		t.Fatal(err)
	}
	// Mar 11 removed; Mar 4 is overridden so it stays; Mar 6 and 13 get the room.
	if res.Removed != 1 || res.Updated != 2 || res.Created != 0 {
		t.Fatalf("reconcile = %+v, want removed 1, updated 2", res)
	}
	for _, r := range f.store.Instances() {
		if r.ClassInstanceID == cancelled.ClassInstanceID {
			if r.ClassInstanceStatus != instmodel.StatusCancelled || r.ClassInstanceRoomID != nil {
				t.Fatalf("overridden instance touched: %+v", r)
			}
			continue
		}
		if r.ClassInstanceRoomID == nil || *r.ClassInstanceRoomID != room {
			t.Fatalf("instance %s not moved to the new room", dbtime.FormatDate(r.ClassInstanceDate))
		}
	}
}

func TestMaterializeSingleClass(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-02-01")
	ctx := context.Background()
	c := f.addClass(t, classmodel.Class{
		Name:     "Seminar",
		Schedule: classmodel.SingleSchedule{StartDate: day("2024-03-01"), StartTime: tod("09:00"), EndTime: tod("10:00")},
	})

	for range 2 {
		if _, err := f.m.Materialize(ctx, c.ID, day("2030-01-01"), day("2030-01-31")); err != nil {
			t.Fatal(err)
		}
	}
	rows := f.store.Instances()
	if len(rows) != 1 {
		t.Fatalf("got %d instances, want exactly 1", len(rows))
	}
	r := rows[0]
	if dbtime.FormatDate(r.ClassInstanceDate) != "2024-03-01" || r.ClassInstanceStartTime.String() != "09:00" ||
		r.ClassInstanceEndTime.String() != "10:00" || r.ClassInstanceStatus != instmodel.StatusScheduled {
		t.Fatalf("instance = %+v", r)
	}
}

func TestMaterializeSingleClassMoved(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-02-01")
	ctx := context.Background()
	c := f.addClass(t, classmodel.Class{
		Name:     "Seminar",
		Schedule: classmodel.SingleSchedule{StartDate: day("2024-03-05"), StartTime: tod("09:00"), EndTime: tod("10:00")},
	})
	if _, err := f.m.Materialize(ctx, c.ID, time.Time{}, time.Time{}); err != nil {
		t.Fatal(err)
	}

	c.Schedule = classmodel.SingleSchedule{StartDate: day("2024-03-01"), StartTime: tod("09:00"), EndTime: tod("10:00")}
	if err := f.store.UpdateClass(ctx, c); err != nil {
		t.Fatal(err)
	}
	res, err := f.m.Materialize(ctx, c.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 || res.Removed != 1 {
		t.Fatalf("reconcile = %+v, want 1 created and 1 removed", res)
	}
	rows := f.store.Instances()
	if len(rows) != 1 || dbtime.FormatDate(rows[0].ClassInstanceDate) != "2024-03-01" {
		t.Fatalf("instances = %+v, want only 2024-03-01", rows)
	}
}

func TestMaterializeRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-01")
	c := f.addClass(t, weeklyClass(1))
	f.store.ConcurrentFailures = 1

	_, err := f.m.Materialize(context.Background(), c.ID, day("2024-03-01"), day("2024-03-31"))
	if !schederr.IsConcurrentBooking(err) {
		t.Fatalf("err = %v, want ConcurrentBookingError", err)
	}
	if n := len(f.store.Instances()); n != 0 {
		t.Fatalf("partial write left %d instances", n)
	}
}

func TestUpdateStatusPicksRelevantInstance(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		today string
		want  string
	}{
		{"today", "2024-03-06", "2024-03-06"},
		{"next upcoming", "2024-03-07", "2024-03-11"},
		{"latest past", "2024-04-01", "2024-03-13"},
		{"before series", "2024-02-01", "2024-03-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.today)
			ctx := context.Background()
			c := f.addClass(t, weeklyClass(1, 3))
			if _, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-15")); err != nil {
				t.Fatal(err)
			}
			got, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: instmodel.StatusCompleted})
			if err != nil {
				t.Fatal(err)
			}
			if d := dbtime.FormatDate(got.ClassInstanceDate); d != tt.want {
				t.Fatalf("picked %s, want %s", d, tt.want)
			}
			if !got.ClassInstanceIsOverridden {
				t.Fatal("status change must mark the instance overridden")
			}
		})
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-01")
	ctx := context.Background()
	c := f.addClass(t, weeklyClass(1))
	other := f.addClass(t, weeklyClass(2))

	if _, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: "done"}); err == nil {
		t.Error("unknown status accepted")
	}
	if _, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: instmodel.StatusCompleted}); !schederr.IsNotFound(err) {
		t.Errorf("no instances: err = %v, want NotFound", err)
	}
	if _, err := f.m.UpdateStatus(ctx, uuid.New(), StatusChange{Status: instmodel.StatusCompleted}); !schederr.IsNotFound(err) {
		t.Errorf("unknown class: err = %v, want NotFound", err)
	}

	res, err := f.m.Materialize(ctx, other.ID, day("2024-03-01"), day("2024-03-10"))
	if err != nil {
		t.Fatal(err)
	}
	foreign := res.Instances[0].ClassInstanceID
	if _, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: instmodel.StatusCompleted, InstanceID: &foreign}); !schederr.IsNotFound(err) {
		t.Errorf("instance of another class: err = %v, want NotFound", err)
	}
}

func TestReschedule(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-01")
	ctx := context.Background()
	c := f.addClass(t, weeklyClass(1))
	busy := f.addClass(t, classmodel.Class{
		Name:         "Busy",
		InstructorID: c.InstructorID,
		Schedule:     classmodel.SingleSchedule{StartDate: day("2024-03-05"), StartTime: tod("09:00"), EndTime: tod("10:00")},
	})
	if _, err := f.m.Materialize(ctx, busy.ID, time.Time{}, time.Time{}); err != nil {
		t.Fatal(err)
	}
	res, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	moving := res.Instances[0]

	_, err = f.m.Reschedule(ctx, moving.ClassInstanceID, Reschedule{Date: day("2024-03-05"), StartTime: tod("09:30"), EndTime: tod("11:00")})
	var cde *conflicts.ConflictDetectedError
	if !errors.As(err, &cde) || cde.Conflicts[0].ClassID != busy.ID {
		t.Fatalf("err = %v, want conflict with the busy class", err)
	}

	// Overlapping only its own old slot is fine.
	moved, err := f.m.Reschedule(ctx, moving.ClassInstanceID, Reschedule{Date: day("2024-03-04"), StartTime: tod("10:00"), EndTime: tod("11:30")})
	if err != nil {
		t.Fatal(err)
	}
	if moved.ClassInstanceStatus != instmodel.StatusRescheduled || moved.SlotKey() != moving.SlotKey() {
		t.Fatalf("moved = %+v", moved)
	}

	again, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if again.Created != 0 || again.Preserved != 1 {
		t.Fatalf("re-expansion after reschedule = %+v", again)
	}
}

func TestRescheduleRetriesConcurrentFailureOnce(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-01")
	ctx := context.Background()
	c := f.addClass(t, weeklyClass(1))
	res, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-10"))
	if err != nil {
		t.Fatal(err)
	}
	id := res.Instances[0].ClassInstanceID

	f.store.ConcurrentFailures = 1
	if _, err := f.m.Reschedule(ctx, id, Reschedule{Date: day("2024-03-05"), StartTime: tod("09:00"), EndTime: tod("10:00")}); err != nil {
		t.Fatalf("single race not retried: %v", err)
	}

	f.store.ConcurrentFailures = 2
	_, err = f.m.Reschedule(ctx, id, Reschedule{Date: day("2024-03-06"), StartTime: tod("09:00"), EndTime: tod("10:00")})
	if !schederr.IsConcurrentBooking(err) {
		t.Fatalf("err = %v, want ConcurrentBookingError after one retry", err)
	}
}

func TestCancelFuture(t *testing.T) {
	t.Parallel()
	f := newFixture("2024-03-10")
	ctx := context.Background()
	c := f.addClass(t, weeklyClass(1))
	res, err := f.m.Materialize(ctx, c.ID, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	done := res.Instances[2].ClassInstanceID // 2024-03-18
	if _, err := f.m.UpdateStatus(ctx, c.ID, StatusChange{Status: instmodel.StatusCompleted, InstanceID: &done}); err != nil {
		t.Fatal(err)
	}

	n, err := f.m.CancelFuture(ctx, c.ID, day("2024-03-10"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("cancelled %d, want 2 (Mar 11, Mar 25)", n)
	}
	for _, r := range f.store.Instances() {
		d := dbtime.FormatDate(r.ClassInstanceDate)
		switch {
		case d == "2024-03-04" && r.ClassInstanceStatus != instmodel.StatusScheduled:
			t.Errorf("past instance changed to %s", r.ClassInstanceStatus)
		case r.ClassInstanceID == done && r.ClassInstanceStatus != instmodel.StatusCompleted:
			t.Errorf("overridden instance changed to %s", r.ClassInstanceStatus)
		}
	}
}

func TestPickRelevantEmpty(t *testing.T) {
	t.Parallel()
	if _, ok := PickRelevant(nil, day("2024-03-01")); ok {
		t.Fatal("picked from nothing")
	}
}
