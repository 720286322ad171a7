// file: internals/features/scheduling/calendar/service/calendar.go
package service

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/occurrences"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/cache"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

// CachePrefix namespaces every cached calendar range.
const CachePrefix = "calendar:v1:"

/* =========================
   Collaborators
========================= */

// Directory resolves display names. Unknown ids are simply absent.
type Directory interface {
	InstructorNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	RoomNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

/* =========================
   Views
========================= */

type Ref struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OccurrenceView is one booking as the calendar renders it.
type OccurrenceView struct {
	ClassID    uuid.UUID  `json:"class_id"`
	ClassName  string     `json:"class_name"`
	InstanceID *uuid.UUID `json:"instance_id,omitempty"`
	Date       string     `json:"date"`
	EndDate    string     `json:"end_date,omitempty"`
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes,omitempty"`
	Instructor Ref        `json:"instructor"`
	Room       *Ref       `json:"room,omitempty"`
}

// Calendar maps YYYY-MM-DD to the occurrences starting that day.
type Calendar struct {
	From string                      `json:"from"`
	To   string                      `json:"to"`
	Days map[string][]OccurrenceView `json:"days"`
}

// All yields the days in date order. Each call starts over.
func (c Calendar) All() iter.Seq2[string, []OccurrenceView] {
	return func(yield func(string, []OccurrenceView) bool) {
		for _, d := range slices.Sorted(maps.Keys(c.Days)) {
			if !yield(d, c.Days[d]) {
				return
			}
		}
	}
}

// Len counts occurrences over all days.
func (c Calendar) Len() int {
	n := 0
	for _, v := range c.Days {
		n += len(v)
	}
	return n
}

/* =========================
   Service
========================= */

// Query selects a calendar range. InstructorID/RoomID narrow it (either
// matching is enough when both are set).
type Query struct {
	From         time.Time
	To           time.Time
	InstructorID *uuid.UUID
	RoomID       *uuid.UUID
}

func (q Query) key() string {
	id := func(p *uuid.UUID) string {
		if p == nil {
			return "-"
		}
		return p.String()
	}
	return fmt.Sprintf("%s%s:%s:%s:%s", CachePrefix, dbtime.FormatDate(q.From), dbtime.FormatDate(q.To), id(q.InstructorID), id(q.RoomID))
}

type Service struct {
	Loader        occurrences.Loader
	Directory     Directory
	Cache         cache.Store
	TTL           time.Duration
	MaxWindowDays int
	Location      *time.Location
}

func New(loader occurrences.Loader, dir Directory, c cache.Store, ttl time.Duration, maxWindowDays int, loc *time.Location) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Loader: loader, Directory: dir, Cache: c, TTL: ttl, MaxWindowDays: maxWindowDays, Location: loc}
}

// Invalidate drops every cached range. Called after any class or instance write.
func (s *Service) Invalidate(ctx context.Context) {
	cache.InvalidatePrefix(ctx, s.Cache, CachePrefix)
}

func (s *Service) validate(q Query) error {
	f := schederr.FieldErrors{}
	if q.From.IsZero() {
		f.Add("from", "required")
	}
	if q.To.IsZero() {
		f.Add("to", "required")
	}
	if !f.Empty() {
		return &schederr.ValidationError{Fields: f}
	}
	if dbtime.DateOf(q.To).Before(dbtime.DateOf(q.From)) {
		return schederr.Invalid("to", "must not be before from")
	}
	if s.MaxWindowDays > 0 && dbtime.DateOf(q.To).Sub(dbtime.DateOf(q.From)) > time.Duration(s.MaxWindowDays)*24*time.Hour {
		return schederr.Invalid("to", fmt.Sprintf("window larger than %d days", s.MaxWindowDays))
	}
	return nil
}

// OccurrencesInRange returns the date-keyed calendar for q, cached per range.
func (s *Service) OccurrencesInRange(ctx context.Context, q Query) (Calendar, error) {
	if err := s.validate(q); err != nil {
		return Calendar{}, err
	}
	q.From, q.To = dbtime.DateOf(q.From), dbtime.DateOf(q.To)

	key := q.key()
	if raw, ok, err := s.Cache.Get(ctx, key); err != nil {
		log.Printf("[WARN] calendar cache get: %v", err)
	} else if ok {
		var cal Calendar
		if err := sonic.Unmarshal(raw, &cal); err == nil {
			return cal, nil
		}
	}

	bookings, err := s.bookings(ctx, q)
	if err != nil {
		return Calendar{}, err
	}
	cal, err := s.build(ctx, q, bookings)
	if err != nil {
		return Calendar{}, err
	}

	if raw, err := sonic.Marshal(cal); err == nil {
		if err := s.Cache.Set(ctx, key, raw, s.TTL); err != nil {
			log.Printf("[WARN] calendar cache set: %v", err)
		}
	}
	return cal, nil
}

func (s *Service) bookings(ctx context.Context, q Query) ([]occurrences.Booking, error) {
	return occurrences.Query(ctx, s.Loader, occurrences.Filter{
		From:         q.From,
		To:           q.To,
		InstructorID: q.InstructorID,
		RoomID:       q.RoomID,
	})
}

func (s *Service) build(ctx context.Context, q Query, bookings []occurrences.Booking) (Calendar, error) {
	instructors, rooms := s.ids(bookings)
	iNames, err := s.Directory.InstructorNames(ctx, instructors)
	if err != nil {
		return Calendar{}, err
	}
	rNames, err := s.Directory.RoomNames(ctx, rooms)
	if err != nil {
		return Calendar{}, err
	}

	cal := Calendar{
		From: dbtime.FormatDate(q.From),
		To:   dbtime.FormatDate(q.To),
		Days: map[string][]OccurrenceView{},
	}
	for _, b := range bookings {
		// A multi-day booking that started before the window is listed on
		// the window's first day.
		d := dbtime.MaxDate(b.Date, q.From)
		key := dbtime.FormatDate(d)
		cal.Days[key] = append(cal.Days[key], view(b, iNames, rNames))
	}
	return cal, nil
}

func (s *Service) ids(bookings []occurrences.Booking) ([]uuid.UUID, []uuid.UUID) {
	is, rs := map[uuid.UUID]struct{}{}, map[uuid.UUID]struct{}{}
	for _, b := range bookings {
		is[b.InstructorID] = struct{}{}
		if b.RoomID != nil {
			rs[*b.RoomID] = struct{}{}
		}
	}
	return slices.Collect(maps.Keys(is)), slices.Collect(maps.Keys(rs))
}

func view(b occurrences.Booking, iNames, rNames map[uuid.UUID]string) OccurrenceView {
	v := OccurrenceView{
		ClassID:    b.ClassID,
		ClassName:  b.ClassName,
		InstanceID: b.InstanceID,
		Date:       dbtime.FormatDate(b.Date),
		StartTime:  b.StartTime.String(),
		EndTime:    b.EndTime.String(),
		Status:     string(b.Status),
		Notes:      b.Notes,
		Instructor: Ref{ID: b.InstructorID, Name: iNames[b.InstructorID]},
	}
	if !b.EndDate.Equal(b.Date) {
		v.EndDate = dbtime.FormatDate(b.EndDate)
	}
	if b.RoomID != nil {
		v.Room = &Ref{ID: *b.RoomID, Name: rNames[*b.RoomID]}
	}
	return v
}
