// Package repotest is an in-memory stand-in for the GORM repository, for
// tests that exercise the scheduling services without postgres.
package repotest

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/occurrences"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
)

type txKey struct{}

type entity struct {
	Name     string
	TypeID   uuid.UUID
	IsActive bool
}

type state struct {
	classes     map[uuid.UUID]classmodel.Class
	instances   map[uuid.UUID]instmodel.ClassInstanceModel
	instructors map[uuid.UUID]entity
	roomTypes   map[uuid.UUID]entity
	rooms       map[uuid.UUID]entity
}

func (s state) clone() state {
	return state{
		classes:     maps.Clone(s.classes),
		instances:   maps.Clone(s.instances),
		instructors: maps.Clone(s.instructors),
		roomTypes:   maps.Clone(s.roomTypes),
		rooms:       maps.Clone(s.rooms),
	}
}

// Store keeps everything in maps. Transactions are serialized and roll back
// by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	// ConcurrentFailures makes the next N instance writes fail with a
	// ConcurrentBookingError, as a racing insert would.
	ConcurrentFailures int

	Now func() time.Time
}

func New() *Store {
	return &Store{
		st: state{
			classes:     map[uuid.UUID]classmodel.Class{},
			instances:   map[uuid.UUID]instmodel.ClassInstanceModel{},
			instructors: map[uuid.UUID]entity{},
			roomTypes:   map[uuid.UUID]entity{},
			rooms:       map[uuid.UUID]entity{},
		},
		Now: time.Now,
	}
}

/* =========================
   Fixtures
========================= */

func (s *Store) AddInstructor(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.instructors[id] = entity{Name: name, IsActive: true}
	return id
}

func (s *Store) AddRoomType(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.roomTypes[id] = entity{Name: name, IsActive: true}
	return id
}

func (s *Store) AddRoom(name string, typeID uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.rooms[id] = entity{Name: name, TypeID: typeID, IsActive: true}
	return id
}

func (s *Store) DeactivateInstructor(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.st.instructors[id]
	e.IsActive = false
	s.st.instructors[id] = e
}

// Instances returns every alive instance, ordered by start.
func (s *Store) Instances() []instmodel.ClassInstanceModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedInstances(slices.Collect(maps.Values(s.st.instances)))
}

/* =========================
   Transaction
========================= */

func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

/* =========================
   Classes
========================= */

func (s *Store) CreateClass(_ context.Context, c *classmodel.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := s.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.GeneratedInstances == nil {
		c.GeneratedInstances = []classmodel.InstanceSummary{}
	}
	s.st.classes[c.ID] = *c
	return nil
}

func (s *Store) UpdateClass(_ context.Context, c classmodel.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.classes[c.ID]; !ok {
		return schederr.NotFound("class", c.ID)
	}
	c.UpdatedAt = s.Now()
	s.st.classes[c.ID] = c
	return nil
}

func (s *Store) GetClass(_ context.Context, id uuid.UUID) (classmodel.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.classes[id]
	if !ok {
		return classmodel.Class{}, schederr.NotFound("class", id)
	}
	return c, nil
}

func (s *Store) LockClass(ctx context.Context, id uuid.UUID) (classmodel.Class, error) {
	return s.GetClass(ctx, id)
}

func (s *Store) ListClasses(_ context.Context, q classmodel.ListQuery) ([]classmodel.Class, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []classmodel.Class
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	for _, c := range s.st.classes {
		if q.IsActive != nil && c.IsActive != *q.IsActive {
			continue
		}
		if q.Type != "" && c.Type() != q.Type {
			continue
		}
		if q.InstructorID != nil && c.InstructorID != *q.InstructorID {
			continue
		}
		if q.RoomID != nil && (c.RoomID == nil || *c.RoomID != *q.RoomID) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b classmodel.Class) int { return strings.Compare(a.Name, b.Name) })
	total := int64(len(out))
	if q.Offset > 0 {
		out = out[min(q.Offset, len(out)):]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (s *Store) SetClassActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.classes[id]
	if !ok {
		return schederr.NotFound("class", id)
	}
	c.IsActive = active
	s.st.classes[id] = c
	return nil
}

func (s *Store) ActiveRecurringClassIDs(context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, c := range s.st.classes {
		if c.IsActive && c.Type() == classmodel.ClassTypeRecurring {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids, nil
}

func (s *Store) SaveInstanceSummary(_ context.Context, classID uuid.UUID, summary []classmodel.InstanceSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.classes[classID]
	if !ok {
		return schederr.NotFound("class", classID)
	}
	c.GeneratedInstances = slices.Clone(summary)
	s.st.classes[classID] = c
	return nil
}

func (s *Store) SaveMaterializedRange(_ context.Context, classID uuid.UUID, r classmodel.DateRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.classes[classID]
	if !ok {
		return schederr.NotFound("class", classID)
	}
	c.Materialized = &r
	s.st.classes[classID] = c
	return nil
}

/* =========================
   Instances
========================= */

func (s *Store) InstancesByClass(_ context.Context, classID uuid.UUID) ([]instmodel.ClassInstanceModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []instmodel.ClassInstanceModel
	for _, in := range s.st.instances {
		if in.ClassInstanceClassID == classID {
			out = append(out, in)
		}
	}
	return sortedInstances(out), nil
}

func (s *Store) GetInstance(_ context.Context, id uuid.UUID) (instmodel.ClassInstanceModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.st.instances[id]
	if !ok {
		return instmodel.ClassInstanceModel{}, schederr.NotFound("class instance", id)
	}
	return in, nil
}

func (s *Store) CreateInstances(_ context.Context, rows []instmodel.ClassInstanceModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	staged := maps.Clone(s.st.instances)
	for i := range rows {
		if rows[i].ClassInstanceID == uuid.Nil {
			rows[i].ClassInstanceID = uuid.New()
		}
		if err := checkUnique(staged, rows[i]); err != nil {
			return err
		}
		staged[rows[i].ClassInstanceID] = rows[i]
	}
	s.st.instances = staged
	return nil
}

func (s *Store) SaveInstance(_ context.Context, row *instmodel.ClassInstanceModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.instances[row.ClassInstanceID]; !ok {
		return schederr.NotFound("class instance", row.ClassInstanceID)
	}
	if err := s.injected(); err != nil {
		return err
	}
	if err := checkUnique(s.st.instances, *row); err != nil {
		return err
	}
	row.ClassInstanceUpdatedAt = s.Now()
	s.st.instances[row.ClassInstanceID] = *row
	return nil
}

func (s *Store) DeleteInstances(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.st.instances, id)
	}
	return nil
}

func (s *Store) injected() error {
	if s.ConcurrentFailures > 0 {
		s.ConcurrentFailures--
		return &schederr.ConcurrentBookingError{Constraint: "injected"}
	}
	return nil
}

// checkUnique mirrors the partial unique indexes of the real schema.
func checkUnique(existing map[uuid.UUID]instmodel.ClassInstanceModel, row instmodel.ClassInstanceModel) error {
	for id, other := range existing {
		if id == row.ClassInstanceID {
			continue
		}
		if other.ClassInstanceClassID == row.ClassInstanceClassID && other.SlotKey() == row.SlotKey() {
			return &schederr.ConcurrentBookingError{Constraint: "uq_class_instances_slot"}
		}
		if !other.Blocking() || !row.Blocking() {
			continue
		}
		sameStart := other.ClassInstanceDate.Equal(row.ClassInstanceDate) && other.ClassInstanceStartTime == row.ClassInstanceStartTime
		if !sameStart {
			continue
		}
		if other.ClassInstanceInstructorID == row.ClassInstanceInstructorID {
			return &schederr.ConcurrentBookingError{Constraint: "uq_class_instances_instructor_start"}
		}
		if other.ClassInstanceRoomID != nil && row.ClassInstanceRoomID != nil && *other.ClassInstanceRoomID == *row.ClassInstanceRoomID {
			return &schederr.ConcurrentBookingError{Constraint: "uq_class_instances_room_start"}
		}
	}
	return nil
}

/* =========================
   occurrences.Loader
========================= */

// LoadBookable returns every active class and all of their instances;
// occurrences.Resolve does the narrowing.
func (s *Store) LoadBookable(_ context.Context, f occurrences.Filter) ([]classmodel.Class, []instmodel.ClassInstanceModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var classes []classmodel.Class
	for _, c := range s.st.classes {
		if c.IsActive {
			classes = append(classes, c)
		}
	}
	var instances []instmodel.ClassInstanceModel
	for _, in := range s.st.instances {
		if c, ok := s.st.classes[in.ClassInstanceClassID]; ok && c.IsActive {
			instances = append(instances, in)
		}
	}
	return classes, sortedInstances(instances), nil
}

/* =========================
   Directory
========================= */

func (s *Store) ActiveInstructor(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.st.instructors[id]; !ok || !e.IsActive {
		return schederr.NotFound("instructor", id)
	}
	return nil
}

func (s *Store) ActiveRoomType(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.st.roomTypes[id]; !ok || !e.IsActive {
		return schederr.NotFound("room type", id)
	}
	return nil
}

func (s *Store) ActiveRoom(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.rooms[id]
	if !ok || !e.IsActive {
		return uuid.Nil, schederr.NotFound("room", id)
	}
	return e.TypeID, nil
}

func (s *Store) InstructorNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.names(func(st *state) map[uuid.UUID]entity { return st.instructors }, ids), nil
}

func (s *Store) RoomNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.names(func(st *state) map[uuid.UUID]entity { return st.rooms }, ids), nil
}

func (s *Store) names(pick func(*state) map[uuid.UUID]entity, ids []uuid.UUID) map[uuid.UUID]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := pick(&s.st)
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if e, ok := src[id]; ok {
			out[id] = e.Name
		}
	}
	return out
}

func sortedInstances(rows []instmodel.ClassInstanceModel) []instmodel.ClassInstanceModel {
	slices.SortFunc(rows, func(a, b instmodel.ClassInstanceModel) int {
		if c := a.StartAt().Compare(b.StartAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ClassInstanceID.String(), b.ClassInstanceID.String())
	})
	return rows
}
