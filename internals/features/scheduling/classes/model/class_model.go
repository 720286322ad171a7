// file: internals/features/scheduling/classes/model/class_model.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Model: ClassModel
========================= */

// ClassModel is the flat row behind Class. Single and recurring columns
// share the table; only the ones matching class_type are filled.
type ClassModel struct {
	ClassID uuid.UUID `json:"class_id" gorm:"type:uuid;primaryKey;column:class_id"`

	ClassName        string  `json:"class_name"                  gorm:"type:varchar(160);not null;column:class_name"`
	ClassCourseCode  *string `json:"class_course_code,omitempty" gorm:"type:varchar(40);column:class_course_code;index"`
	ClassDescription *string `json:"class_description,omitempty" gorm:"type:text;column:class_description"`

	// Referensi
	ClassInstructorID uuid.UUID  `json:"class_instructor_id"       gorm:"type:uuid;not null;column:class_instructor_id;index"`
	ClassRoomTypeID   uuid.UUID  `json:"class_room_type_id"        gorm:"type:uuid;not null;column:class_room_type_id"`
	ClassRoomID       *uuid.UUID `json:"class_room_id,omitempty"   gorm:"type:uuid;column:class_room_id;index"`

	ClassType ClassType `json:"class_type" gorm:"type:varchar(16);not null;column:class_type"`

	// single
	ClassStartDate *time.Time  `json:"class_start_date,omitempty" gorm:"type:date;column:class_start_date"`
	ClassEndDate   *time.Time  `json:"class_end_date,omitempty"   gorm:"type:date;column:class_end_date"`
	ClassStartTime *dbtime.Tod `json:"class_start_time,omitempty" gorm:"type:time;column:class_start_time"`
	ClassEndTime   *dbtime.Tod `json:"class_end_time,omitempty"   gorm:"type:time;column:class_end_time"`

	// recurring
	ClassRecurrencePattern         *recurrence.Pattern `json:"class_recurrence_pattern,omitempty"        gorm:"type:varchar(16);column:class_recurrence_pattern"`
	ClassRecurrenceDaysOfWeek      pq.Int64Array       `json:"class_recurrence_days_of_week,omitempty"   gorm:"type:int[];column:class_recurrence_days_of_week"`
	ClassRecurrenceDaysOfMonth     pq.Int64Array       `json:"class_recurrence_days_of_month,omitempty"  gorm:"type:int[];column:class_recurrence_days_of_month"`
	ClassRecurrenceInterval        int                 `json:"class_recurrence_interval"                 gorm:"not null;default:1;column:class_recurrence_interval"`
	ClassRecurrenceTimeSlots       datatypes.JSON      `json:"class_recurrence_time_slots,omitempty"     gorm:"type:jsonb;column:class_recurrence_time_slots"`
	ClassRecurrenceStartDate       *time.Time          `json:"class_recurrence_start_date,omitempty"     gorm:"type:date;column:class_recurrence_start_date"`
	ClassRecurrenceEndDate         *time.Time          `json:"class_recurrence_end_date,omitempty"       gorm:"type:date;column:class_recurrence_end_date"`
	ClassRecurrenceOccurrences     *int                `json:"class_recurrence_occurrences,omitempty"    gorm:"column:class_recurrence_occurrences"`
	ClassRecurrenceExclusionDates  pq.StringArray      `json:"class_recurrence_exclusion_dates,omitempty" gorm:"type:text[];column:class_recurrence_exclusion_dates"`
	ClassRecurrenceExcludeWeekends bool                `json:"class_recurrence_exclude_weekends"         gorm:"not null;default:false;column:class_recurrence_exclude_weekends"`

	// Ringkasan instance hasil materialisasi
	ClassGeneratedInstances  datatypes.JSON `json:"class_generated_instances"            gorm:"type:jsonb;not null;default:'[]';column:class_generated_instances"`
	ClassMaterializedFrom    *time.Time     `json:"class_materialized_from,omitempty"    gorm:"type:date;column:class_materialized_from"`
	ClassMaterializedThrough *time.Time     `json:"class_materialized_through,omitempty" gorm:"type:date;column:class_materialized_through"`

	ClassIsActive bool `json:"class_is_active" gorm:"not null;default:true;column:class_is_active;index"`

	ClassCreatedAt time.Time      `json:"class_created_at"           gorm:"column:class_created_at;autoCreateTime"`
	ClassUpdatedAt time.Time      `json:"class_updated_at"           gorm:"column:class_updated_at;autoUpdateTime"`
	ClassDeletedAt gorm.DeletedAt `json:"class_deleted_at,omitempty" gorm:"column:class_deleted_at;index"`
}

func (ClassModel) TableName() string { return "classes" }

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	if len(m.ClassGeneratedInstances) == 0 {
		m.ClassGeneratedInstances = datatypes.JSON("[]")
	}
	return nil
}

/* =========================
   Mapping row <-> domain
========================= */

// ToDomain rebuilds the tagged variant from the flat row.
func (m *ClassModel) ToDomain() (Class, error) {
	c := Class{
		ID:           m.ClassID,
		Name:         m.ClassName,
		CourseCode:   m.ClassCourseCode,
		Description:  m.ClassDescription,
		InstructorID: m.ClassInstructorID,
		RoomTypeID:   m.ClassRoomTypeID,
		RoomID:       m.ClassRoomID,
		IsActive:     m.ClassIsActive,
		CreatedAt:    m.ClassCreatedAt,
		UpdatedAt:    m.ClassUpdatedAt,
	}

	switch m.ClassType {
	case ClassTypeSingle:
		if m.ClassStartDate == nil || m.ClassStartTime == nil || m.ClassEndTime == nil {
			return Class{}, fmt.Errorf("class %s: single schedule columns missing", m.ClassID)
		}
		s := SingleSchedule{
			StartDate: dbtime.DateOf(*m.ClassStartDate),
			StartTime: *m.ClassStartTime,
			EndTime:   *m.ClassEndTime,
		}
		if m.ClassEndDate != nil {
			d := dbtime.DateOf(*m.ClassEndDate)
			s.EndDate = &d
		}
		c.Schedule = s
	case ClassTypeRecurring:
		rule, err := m.rule()
		if err != nil {
			return Class{}, fmt.Errorf("class %s: %w", m.ClassID, err)
		}
		c.Schedule = RecurringSchedule{Rule: rule}
	default:
		return Class{}, fmt.Errorf("class %s: unknown class_type %q", m.ClassID, m.ClassType)
	}

	if m.ClassMaterializedFrom != nil && m.ClassMaterializedThrough != nil {
		c.Materialized = &DateRange{
			From:    dbtime.DateOf(*m.ClassMaterializedFrom),
			Through: dbtime.DateOf(*m.ClassMaterializedThrough),
		}
	}

	if len(m.ClassGeneratedInstances) > 0 {
		if err := json.Unmarshal(m.ClassGeneratedInstances, &c.GeneratedInstances); err != nil {
			return Class{}, fmt.Errorf("class %s: generated instances: %w", m.ClassID, err)
		}
	}
	return c, nil
}

func (m *ClassModel) rule() (recurrence.Rule, error) {
	if m.ClassRecurrencePattern == nil {
		return recurrence.Rule{}, fmt.Errorf("recurrence pattern missing")
	}
	r := recurrence.Rule{
		Pattern:         *m.ClassRecurrencePattern,
		DaysOfWeek:      toInts(m.ClassRecurrenceDaysOfWeek),
		DaysOfMonth:     toInts(m.ClassRecurrenceDaysOfMonth),
		Interval:        m.ClassRecurrenceInterval,
		Occurrences:     m.ClassRecurrenceOccurrences,
		ExcludeWeekends: m.ClassRecurrenceExcludeWeekends,
	}
	if m.ClassRecurrenceStartDate != nil {
		r.StartDate = dbtime.DateOf(*m.ClassRecurrenceStartDate)
	}
	if m.ClassRecurrenceEndDate != nil {
		d := dbtime.DateOf(*m.ClassRecurrenceEndDate)
		r.EndDate = &d
	}
	if len(m.ClassRecurrenceTimeSlots) > 0 {
		if err := json.Unmarshal(m.ClassRecurrenceTimeSlots, &r.TimeSlots); err != nil {
			return recurrence.Rule{}, fmt.Errorf("time slots: %w", err)
		}
	}
	for _, s := range m.ClassRecurrenceExclusionDates {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("exclusion date %q: %w", s, err)
		}
		r.ExclusionDates = append(r.ExclusionDates, d)
	}
	return r, nil
}

// FromDomain flattens c into a row. Columns of the other variant are nil.
func FromDomain(c Class) (ClassModel, error) {
	m := ClassModel{
		ClassID:                 c.ID,
		ClassName:               c.Name,
		ClassCourseCode:         c.CourseCode,
		ClassDescription:        c.Description,
		ClassInstructorID:       c.InstructorID,
		ClassRoomTypeID:         c.RoomTypeID,
		ClassRoomID:             c.RoomID,
		ClassType:               c.Type(),
		ClassIsActive:           c.IsActive,
		ClassCreatedAt:          c.CreatedAt,
		ClassUpdatedAt:          c.UpdatedAt,
		ClassRecurrenceInterval: 1,
	}

	switch s := c.Schedule.(type) {
	case SingleSchedule:
		start := dbtime.DateOf(s.StartDate)
		st, et := s.StartTime, s.EndTime
		m.ClassStartDate = &start
		if s.EndDate != nil {
			end := dbtime.DateOf(*s.EndDate)
			m.ClassEndDate = &end
		}
		m.ClassStartTime = &st
		m.ClassEndTime = &et
	case RecurringSchedule:
		r := s.Rule
		p := r.Pattern
		m.ClassRecurrencePattern = &p
		m.ClassRecurrenceDaysOfWeek = toInt64s(r.DaysOfWeek)
		m.ClassRecurrenceDaysOfMonth = toInt64s(r.DaysOfMonth)
		if r.Interval > 0 {
			m.ClassRecurrenceInterval = r.Interval
		}
		slots, err := json.Marshal(r.TimeSlots)
		if err != nil {
			return ClassModel{}, err
		}
		m.ClassRecurrenceTimeSlots = datatypes.JSON(slots)
		if !r.StartDate.IsZero() {
			d := dbtime.DateOf(r.StartDate)
			m.ClassRecurrenceStartDate = &d
		}
		if r.EndDate != nil {
			d := dbtime.DateOf(*r.EndDate)
			m.ClassRecurrenceEndDate = &d
		}
		m.ClassRecurrenceOccurrences = r.Occurrences
		m.ClassRecurrenceExcludeWeekends = r.ExcludeWeekends
		for _, d := range r.ExclusionDates {
			m.ClassRecurrenceExclusionDates = append(m.ClassRecurrenceExclusionDates, dbtime.FormatDate(d))
		}
	default:
		return ClassModel{}, fmt.Errorf("class %s: schedule not set", c.ID)
	}

	if r := c.Materialized; r != nil {
		from, through := dbtime.DateOf(r.From), dbtime.DateOf(r.Through)
		m.ClassMaterializedFrom = &from
		m.ClassMaterializedThrough = &through
	}

	summary := c.GeneratedInstances
	if summary == nil {
		summary = []InstanceSummary{}
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return ClassModel{}, err
	}
	m.ClassGeneratedInstances = datatypes.JSON(raw)
	return m, nil
}

func toInts(a pq.Int64Array) []int {
	if len(a) == 0 {
		return nil
	}
	out := make([]int, len(a))
	for i, v := range a {
		out[i] = int(v)
	}
	return out
}

func toInt64s(a []int) pq.Int64Array {
	if len(a) == 0 {
		return nil
	}
	out := make(pq.Int64Array, len(a))
	for i, v := range a {
		out[i] = int64(v)
	}
	return out
}
