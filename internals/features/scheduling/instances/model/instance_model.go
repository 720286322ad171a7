// file: internals/features/scheduling/instances/model/instance_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Enum
========================= */

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

/* =========================
   Model: ClassInstanceModel
========================= */

// ClassInstanceModel is one materialized occurrence.
//
// The slot_* columns are the occurrence key produced by expansion and never
// change. date/start/end are the effective booking and move on reschedule.
// IsOverridden marks a manual edit; re-expansion leaves such rows alone.
type ClassInstanceModel struct {
	ClassInstanceID      uuid.UUID `json:"class_instance_id"       gorm:"type:uuid;primaryKey;column:class_instance_id"`
	ClassInstanceClassID uuid.UUID `json:"class_instance_class_id" gorm:"type:uuid;not null;column:class_instance_class_id;index"`

	// Kunci okurensi (immutable)
	ClassInstanceSlotDate      time.Time  `json:"class_instance_slot_date"       gorm:"type:date;not null;column:class_instance_slot_date"`
	ClassInstanceSlotStartTime dbtime.Tod `json:"class_instance_slot_start_time" gorm:"type:time;not null;column:class_instance_slot_start_time"`
	ClassInstanceSlotEndTime   dbtime.Tod `json:"class_instance_slot_end_time"   gorm:"type:time;not null;column:class_instance_slot_end_time"`

	// Jadwal efektif
	ClassInstanceDate      time.Time  `json:"class_instance_date"       gorm:"type:date;not null;column:class_instance_date;index"`
	ClassInstanceEndDate   time.Time  `json:"class_instance_end_date"   gorm:"type:date;not null;column:class_instance_end_date"`
	ClassInstanceStartTime dbtime.Tod `json:"class_instance_start_time" gorm:"type:time;not null;column:class_instance_start_time"`
	ClassInstanceEndTime   dbtime.Tod `json:"class_instance_end_time"   gorm:"type:time;not null;column:class_instance_end_time"`

	ClassInstanceInstructorID uuid.UUID  `json:"class_instance_instructor_id"      gorm:"type:uuid;not null;column:class_instance_instructor_id;index"`
	ClassInstanceRoomID       *uuid.UUID `json:"class_instance_room_id,omitempty"  gorm:"type:uuid;column:class_instance_room_id;index"`

	ClassInstanceStatus       Status  `json:"class_instance_status"          gorm:"type:varchar(16);not null;default:'scheduled';column:class_instance_status"`
	ClassInstanceNotes        *string `json:"class_instance_notes,omitempty" gorm:"type:text;column:class_instance_notes"`
	ClassInstanceIsOverridden bool    `json:"class_instance_is_overridden"  gorm:"not null;default:false;column:class_instance_is_overridden"`

	ClassInstanceCreatedAt time.Time      `json:"class_instance_created_at"           gorm:"column:class_instance_created_at;autoCreateTime"`
	ClassInstanceUpdatedAt time.Time      `json:"class_instance_updated_at"           gorm:"column:class_instance_updated_at;autoUpdateTime"`
	ClassInstanceDeletedAt gorm.DeletedAt `json:"class_instance_deleted_at,omitempty" gorm:"column:class_instance_deleted_at;index"`
}

func (ClassInstanceModel) TableName() string { return "class_instances" }

func (m *ClassInstanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassInstanceID == uuid.Nil {
		m.ClassInstanceID = uuid.New()
	}
	return nil
}

/* =========================
   Helpers
========================= */

func (m *ClassInstanceModel) SlotKey() classmodel.SlotKey {
	return classmodel.SlotKey{
		Date:      dbtime.FormatDate(m.ClassInstanceSlotDate),
		StartTime: m.ClassInstanceSlotStartTime,
		EndTime:   m.ClassInstanceSlotEndTime,
	}
}

func (m *ClassInstanceModel) StartAt() time.Time {
	return dbtime.At(m.ClassInstanceDate, m.ClassInstanceStartTime)
}

func (m *ClassInstanceModel) EndAt() time.Time {
	return dbtime.At(m.ClassInstanceEndDate, m.ClassInstanceEndTime)
}

// Covers reports whether an overridden row stands in for slot s of its class
// although the keys differ: same slot date and overlapping slot times. This
// keeps a manually handled day from being booked twice after the class
// times change.
func (m *ClassInstanceModel) Covers(s classmodel.Slot) bool {
	if !m.ClassInstanceIsOverridden {
		return false
	}
	return dbtime.DateOf(m.ClassInstanceSlotDate).Equal(dbtime.DateOf(s.Date)) &&
		dbtime.Overlaps(m.ClassInstanceSlotStartTime, m.ClassInstanceSlotEndTime, s.StartTime, s.EndTime)
}

// Blocking reports whether the instance occupies its instructor and room.
func (m *ClassInstanceModel) Blocking() bool {
	return m.ClassInstanceStatus != StatusCancelled
}

// FromSlot builds a fresh scheduled instance for slot of class c.
func FromSlot(c classmodel.Class, s classmodel.Slot) ClassInstanceModel {
	m := ClassInstanceModel{
		ClassInstanceClassID:       c.ID,
		ClassInstanceSlotDate:      dbtime.DateOf(s.Date),
		ClassInstanceSlotStartTime: s.StartTime,
		ClassInstanceSlotEndTime:   s.EndTime,
		ClassInstanceStatus:        StatusScheduled,
	}
	ApplySlot(&m, c, s)
	return m
}

// ApplySlot refreshes the effective schedule and assignment from the class.
func ApplySlot(m *ClassInstanceModel, c classmodel.Class, s classmodel.Slot) {
	m.ClassInstanceDate = dbtime.DateOf(s.Date)
	m.ClassInstanceEndDate = dbtime.DateOf(s.EndDate)
	m.ClassInstanceStartTime = s.StartTime
	m.ClassInstanceEndTime = s.EndTime
	m.ClassInstanceInstructorID = c.InstructorID
	m.ClassInstanceRoomID = c.RoomID
}

// Summary renders the row as a generatedInstances entry.
func (m *ClassInstanceModel) Summary() classmodel.InstanceSummary {
	return classmodel.InstanceSummary{
		InstanceID: m.ClassInstanceID,
		Date:       dbtime.FormatDate(m.ClassInstanceDate),
		StartTime:  m.ClassInstanceStartTime.String(),
		EndTime:    m.ClassInstanceEndTime.String(),
		Status:     string(m.ClassInstanceStatus),
	}
}
