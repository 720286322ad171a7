package model

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

func day(s string) time.Time {
	d, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func singleClass() Class {
	return Class{
		ID:           uuid.New(),
		Name:         "Algebra",
		InstructorID: uuid.New(),
		RoomTypeID:   uuid.New(),
		IsActive:     true,
		Schedule: SingleSchedule{
			StartDate: day("2024-03-01"),
			StartTime: dbtime.MustParse("09:00"),
			EndTime:   dbtime.MustParse("10:00"),
		},
	}
}

func TestSingleClassYieldsOneSlot(t *testing.T) {
	t.Parallel()
	c := singleClass()
	got := slices.Collect(c.Slots(day("2024-01-01"), day("2024-12-31")))
	if len(got) != 1 {
		t.Fatalf("got %d slots, want 1", len(got))
	}
	s := got[0]
	if dbtime.FormatDate(s.Date) != "2024-03-01" || dbtime.FormatDate(s.EndDate) != "2024-03-01" ||
		s.StartTime.String() != "09:00" || s.EndTime.String() != "10:00" {
		t.Fatalf("slot = %+v, want 2024-03-01 09:00-10:00", s)
	}
	if n := len(slices.Collect(c.Slots(day("2024-03-02"), day("2024-03-31")))); n != 0 {
		t.Fatalf("slot outside window returned (%d)", n)
	}
}

func TestMultiDaySingleSlotSpansDates(t *testing.T) {
	t.Parallel()
	c := singleClass()
	end := day("2024-03-03")
	s := c.Schedule.(SingleSchedule)
	s.EndDate = &end
	c.Schedule = s

	got := slices.Collect(c.Slots(day("2024-03-02"), day("2024-03-02")))
	if len(got) != 1 {
		t.Fatalf("window inside span: got %d slots, want 1", len(got))
	}
	if want := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC); !got[0].EndAt().Equal(want) {
		t.Fatalf("EndAt = %v, want %v", got[0].EndAt(), want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	inverted := singleClass()
	s := inverted.Schedule.(SingleSchedule)
	s.StartTime, s.EndTime = s.EndTime, s.StartTime
	inverted.Schedule = s

	noSchedule := singleClass()
	noSchedule.Schedule = nil

	badRule := singleClass()
	badRule.Name = ""
	badRule.Schedule = RecurringSchedule{Rule: recurrence.Rule{
		Pattern:   recurrence.PatternWeekly,
		StartDate: day("2024-03-01"),
		TimeSlots: []recurrence.TimeSlot{{StartTime: dbtime.MustParse("09:00"), EndTime: dbtime.MustParse("10:00")}},
	}}

	var ve *schederr.ValidationError
	if err := inverted.Validate(); !errors.As(err, &ve) || len(ve.Fields["end_time"]) == 0 {
		t.Errorf("inverted times: got %v", err)
	}
	if err := noSchedule.Validate(); !errors.As(err, &ve) || len(ve.Fields["class_type"]) == 0 {
		t.Errorf("missing schedule: got %v", err)
	}

	var ire *schederr.InvalidRecurrenceError
	err := badRule.Validate()
	if !errors.As(err, &ire) {
		t.Fatalf("bad rule: got %v, want InvalidRecurrenceError", err)
	}
	if len(ire.Fields["days_of_week"]) == 0 || len(ire.Fields["name"]) == 0 {
		t.Fatalf("fields = %v, want days_of_week and name", ire.Fields)
	}

	if err := singleClass().Validate(); err != nil {
		t.Fatalf("valid class rejected: %v", err)
	}
}

func TestRecurringRowRoundTrip(t *testing.T) {
	t.Parallel()
	end := day("2024-06-30")
	c := singleClass()
	c.Schedule = RecurringSchedule{Rule: recurrence.Rule{
		Pattern:        recurrence.PatternWeekly,
		StartDate:      day("2024-03-01"),
		DaysOfWeek:     []int{1, 3},
		Interval:       2,
		EndDate:        &end,
		ExclusionDates: []time.Time{day("2024-03-11")},
		TimeSlots: []recurrence.TimeSlot{
			{StartTime: dbtime.MustParse("09:00"), EndTime: dbtime.MustParse("10:30")},
			{StartTime: dbtime.MustParse("13:00"), EndTime: dbtime.MustParse("14:00")},
		},
	}}
	c.Materialized = &DateRange{From: day("2024-03-01"), Through: day("2024-03-31")}

	row, err := FromDomain(c)
	if err != nil {
		t.Fatal(err)
	}
	if row.ClassType != ClassTypeRecurring || row.ClassStartDate != nil {
		t.Fatalf("row carries wrong variant columns: %+v", row)
	}
	back, err := row.ToDomain()
	if err != nil {
		t.Fatal(err)
	}

	from, to := day("2024-03-01"), day("2024-06-30")
	want := slices.Collect(c.Slots(from, to))
	got := slices.Collect(back.Slots(from, to))
	if len(want) == 0 || !slices.Equal(got, want) {
		t.Fatalf("slots differ after round trip:\n got %v\nwant %v", got, want)
	}
	if back.GeneratedInstances == nil {
		t.Fatal("generated instances should decode to an empty list")
	}
	if back.Materialized == nil || !back.Materialized.Contains(day("2024-03-31")) || back.Materialized.Contains(day("2024-04-01")) {
		t.Fatalf("materialized range = %+v", back.Materialized)
	}
}
