package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/repository/repotest"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/cache"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

func day(s string) time.Time {
	d, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type setup struct {
	store *repotest.Store
	mem   *cache.Memory
	svc   *Service
	class classmodel.Class
	room  uuid.UUID
}

func newSetup(t *testing.T) setup {
	t.Helper()
	store := repotest.New()
	typ := store.AddRoomType("Lab")
	room := store.AddRoom("Lab 2", typ)
	c := classmodel.Class{
		Name:         "Electronics",
		InstructorID: store.AddInstructor("Hedy"),
		RoomTypeID:   typ,
		RoomID:       &room,
		IsActive:     true,
		Schedule: classmodel.RecurringSchedule{Rule: recurrence.Rule{
			Pattern:    recurrence.PatternWeekly,
			StartDate:  day("2024-03-01"),
			DaysOfWeek: []int{1, 3},
			TimeSlots:  []recurrence.TimeSlot{{StartTime: dbtime.MustParse("09:00"), EndTime: dbtime.MustParse("10:30")}},
		}},
	}
	if err := store.CreateClass(context.Background(), &c); err != nil {
		t.Fatal(err)
	}
	mem := cache.NewMemory()
	jakarta := time.FixedZone("WIB", 7*3600)
	return setup{store: store, mem: mem, svc: New(store, store, mem, time.Minute, 366, jakarta), class: c, room: room}
}

func TestOccurrencesInRange(t *testing.T) {
	t.Parallel()
	s := newSetup(t)
	cal, err := s.svc.OccurrencesInRange(context.Background(), Query{From: day("2024-03-01"), To: day("2024-03-15")})
	if err != nil {
		t.Fatal(err)
	}

	var days []string
	for d, views := range cal.All() {
		days = append(days, d)
		if len(views) != 1 {
			t.Fatalf("%s: %d views, want 1", d, len(views))
		}
		v := views[0]
		if v.StartTime != "09:00" || v.EndTime != "10:30" || v.Status != "scheduled" ||
			v.Instructor.Name != "Hedy" || v.Room == nil || v.Room.Name != "Lab 2" {
			t.Fatalf("%s: view = %+v", d, v)
		}
	}
	want := []string{"2024-03-04", "2024-03-06", "2024-03-11", "2024-03-13"}
	if !slices.Equal(days, want) {
		t.Fatalf("days = %v, want %v", days, want)
	}
}

func TestOccurrencesInRangeIsCachedUntilInvalidated(t *testing.T) {
	t.Parallel()
	s := newSetup(t)
	ctx := context.Background()
	q := Query{From: day("2024-03-01"), To: day("2024-03-15")}

	if _, err := s.svc.OccurrencesInRange(ctx, q); err != nil {
		t.Fatal(err)
	}
	if s.mem.Len() != 1 {
		t.Fatalf("cache holds %d entries, want 1", s.mem.Len())
	}

	// Materialize and cancel Mar 4 behind the cache's back.
	var row instmodel.ClassInstanceModel
	for slot := range s.class.Slots(day("2024-03-04"), day("2024-03-04")) {
		row = instmodel.FromSlot(s.class, slot)
	}
	row.ClassInstanceStatus = instmodel.StatusCancelled
	if err := s.store.CreateInstances(ctx, []instmodel.ClassInstanceModel{row}); err != nil {
		t.Fatal(err)
	}

	cached, _ := s.svc.OccurrencesInRange(ctx, q)
	if got := cached.Days["2024-03-04"][0].Status; got != "scheduled" {
		t.Fatalf("served %s, want the cached scheduled view", got)
	}

	s.svc.Invalidate(ctx)
	fresh, err := s.svc.OccurrencesInRange(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	v := fresh.Days["2024-03-04"][0]
	if v.Status != "cancelled" || v.InstanceID == nil {
		t.Fatalf("after invalidate view = %+v, want the cancelled instance", v)
	}
}

func TestOccurrencesInRangeFilters(t *testing.T) {
	t.Parallel()
	s := newSetup(t)
	ctx := context.Background()
	other := uuid.New()

	cal, err := s.svc.OccurrencesInRange(ctx, Query{From: day("2024-03-01"), To: day("2024-03-15"), RoomID: &other})
	if err != nil {
		t.Fatal(err)
	}
	if cal.Len() != 0 {
		t.Fatalf("unrelated room returned %d occurrences", cal.Len())
	}
	cal, err = s.svc.OccurrencesInRange(ctx, Query{From: day("2024-03-01"), To: day("2024-03-15"), RoomID: &s.room})
	if err != nil {
		t.Fatal(err)
	}
	if cal.Len() != 4 {
		t.Fatalf("room filter returned %d occurrences, want 4", cal.Len())
	}
}

func TestOccurrencesInRangeValidation(t *testing.T) {
	t.Parallel()
	s := newSetup(t)
	tests := []Query{
		{},
		{From: day("2024-03-15"), To: day("2024-03-01")},
		{From: day("2024-01-01"), To: day("2026-01-01")},
	}
	for _, q := range tests {
		_, err := s.svc.OccurrencesInRange(context.Background(), q)
		var ve *schederr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("query %+v: err = %v, want ValidationError", q, err)
		}
	}
}

func TestICS(t *testing.T) {
	t.Parallel()
	s := newSetup(t)
	ctx := context.Background()
	var row instmodel.ClassInstanceModel
	for slot := range s.class.Slots(day("2024-03-06"), day("2024-03-06")) {
		row = instmodel.FromSlot(s.class, slot)
	}
	row.ClassInstanceID = uuid.New()
	row.ClassInstanceStatus = instmodel.StatusCancelled
	if err := s.store.CreateInstances(ctx, []instmodel.ClassInstanceModel{row}); err != nil {
		t.Fatal(err)
	}

	out, err := s.svc.ICS(ctx, Query{From: day("2024-03-01"), To: day("2024-03-08")})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Electronics",
		"LOCATION:Lab 2",
		"STATUS:CANCELLED",
		"STATUS:CONFIRMED",
		"DTSTART:20240304T020000Z", // 09:00 WIB
		row.ClassInstanceID.String() + "@scheduling",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q", want)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("feed has %d events, want 2", n)
	}
}
