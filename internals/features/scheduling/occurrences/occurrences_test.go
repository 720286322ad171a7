package occurrences

import (
	"testing"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

func day(s string) time.Time {
	d, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mondays(instructor uuid.UUID, room *uuid.UUID) classmodel.Class {
	return classmodel.Class{
		ID:           uuid.New(),
		Name:         "Physics",
		InstructorID: instructor,
		RoomTypeID:   uuid.New(),
		RoomID:       room,
		IsActive:     true,
		Schedule: classmodel.RecurringSchedule{Rule: recurrence.Rule{
			Pattern:    recurrence.PatternWeekly,
			StartDate:  day("2024-03-04"),
			DaysOfWeek: []int{1},
			TimeSlots:  []recurrence.TimeSlot{{StartTime: dbtime.MustParse("09:00"), EndTime: dbtime.MustParse("10:00")}},
		}},
	}
}

func TestResolveExpandsUnmaterializedClasses(t *testing.T) {
	t.Parallel()
	c := mondays(uuid.New(), nil)
	got := Resolve([]classmodel.Class{c}, nil, Filter{From: day("2024-03-01"), To: day("2024-03-31")})
	if len(got) != 4 {
		t.Fatalf("got %d bookings, want 4 Mondays", len(got))
	}
	for _, b := range got {
		if b.InstanceID != nil || b.ClassName != "Physics" || !b.Blocking() {
			t.Errorf("unexpected booking %+v", b)
		}
	}
}

func TestResolveInstanceShadowsItsSlot(t *testing.T) {
	t.Parallel()
	room, other := uuid.New(), uuid.New()
	c := mondays(uuid.New(), &room)

	slots := 0
	var moved instmodel.ClassInstanceModel
	for s := range c.Slots(day("2024-03-11"), day("2024-03-11")) {
		moved = instmodel.FromSlot(c, s)
		slots++
	}
	if slots != 1 {
		t.Fatalf("expected one slot on 2024-03-11, got %d", slots)
	}
	moved.ClassInstanceID = uuid.New()
	moved.ClassInstanceDate = day("2024-03-12")
	moved.ClassInstanceEndDate = day("2024-03-12")
	moved.ClassInstanceRoomID = &other
	moved.ClassInstanceStatus = instmodel.StatusRescheduled

	window := Filter{From: day("2024-03-01"), To: day("2024-03-31")}

	all := Resolve([]classmodel.Class{c}, []instmodel.ClassInstanceModel{moved}, window)
	if len(all) != 4 {
		t.Fatalf("got %d bookings, want 4 (3 expanded + 1 moved)", len(all))
	}
	if dbtime.FormatDate(all[1].Date) != "2024-03-12" || all[1].InstanceID == nil {
		t.Fatalf("second booking = %+v, want moved instance on 2024-03-12", all[1])
	}

	inRoom := window
	inRoom.RoomID = &room
	if got := Resolve([]classmodel.Class{c}, []instmodel.ClassInstanceModel{moved}, inRoom); len(got) != 3 {
		t.Fatalf("room filter: got %d bookings, want 3 (moved slot must not reappear)", len(got))
	}

	inOther := window
	inOther.RoomID = &other
	if got := Resolve([]classmodel.Class{c}, []instmodel.ClassInstanceModel{moved}, inOther); len(got) != 1 {
		t.Fatalf("other room: got %d bookings, want 1", len(got))
	}
}

func TestResolveExclusions(t *testing.T) {
	t.Parallel()
	c := mondays(uuid.New(), nil)
	var in instmodel.ClassInstanceModel
	for s := range c.Slots(day("2024-03-04"), day("2024-03-04")) {
		in = instmodel.FromSlot(c, s)
	}
	in.ClassInstanceID = uuid.New()
	classes := []classmodel.Class{c}
	instances := []instmodel.ClassInstanceModel{in}

	byClass := Filter{From: day("2024-03-01"), To: day("2024-03-31"), ExcludeClassID: &c.ID}
	if got := Resolve(classes, instances, byClass); len(got) != 0 {
		t.Fatalf("excluded class still booked: %v", got)
	}

	byInstance := Filter{From: day("2024-03-01"), To: day("2024-03-31"), ExcludeInstanceID: &in.ClassInstanceID}
	if got := Resolve(classes, instances, byInstance); len(got) != 3 {
		t.Fatalf("excluded instance: got %d bookings, want 3", len(got))
	}

	c.IsActive = false
	if got := Resolve([]classmodel.Class{c}, nil, Filter{From: day("2024-03-01"), To: day("2024-03-31")}); len(got) != 0 {
		t.Fatalf("inactive class expanded: %v", got)
	}
}

func TestResolveMaterializedRangeUsesInstancesOnly(t *testing.T) {
	t.Parallel()
	c := mondays(uuid.New(), nil)
	var past instmodel.ClassInstanceModel
	for s := range c.Slots(day("2024-03-04"), day("2024-03-04")) {
		past = instmodel.FromSlot(c, s)
	}
	past.ClassInstanceID = uuid.New()
	past.ClassInstanceStatus = instmodel.StatusCompleted

	// The class moved to the afternoon after Mar 4 was held.
	rule := c.Schedule.(classmodel.RecurringSchedule).Rule
	rule.TimeSlots = []recurrence.TimeSlot{{StartTime: dbtime.MustParse("13:00"), EndTime: dbtime.MustParse("14:00")}}
	c.Schedule = classmodel.RecurringSchedule{Rule: rule}
	c.Materialized = &classmodel.DateRange{From: day("2024-03-01"), Through: day("2024-03-10")}

	got := Resolve([]classmodel.Class{c}, []instmodel.ClassInstanceModel{past}, Filter{From: day("2024-03-01"), To: day("2024-03-31")})
	if len(got) != 4 {
		t.Fatalf("got %d bookings, want 4 (1 held + 3 expanded)", len(got))
	}
	if got[0].InstanceID == nil || got[0].StartTime.String() != "09:00" {
		t.Fatalf("first booking = %+v, want the held 09:00 instance", got[0])
	}
	for _, b := range got[1:] {
		if b.InstanceID != nil || b.StartTime.String() != "13:00" {
			t.Errorf("later booking = %+v, want expanded 13:00", b)
		}
	}

	sameDay := Resolve([]classmodel.Class{c}, []instmodel.ClassInstanceModel{past}, Filter{From: day("2024-03-04"), To: day("2024-03-04")})
	if len(sameDay) != 1 {
		t.Fatalf("2024-03-04: got %d bookings, want only the held instance", len(sameDay))
	}
}
