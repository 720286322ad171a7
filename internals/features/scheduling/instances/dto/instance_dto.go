// file: internals/features/scheduling/instances/dto/instance_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	instsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   Requests
========================= */

type UpdateStatusRequest struct {
	Status     string     `json:"status"      validate:"required,oneof=scheduled completed cancelled rescheduled"`
	InstanceID *uuid.UUID `json:"instance_id" validate:"omitempty"`
	Notes      *string    `json:"notes"       validate:"omitempty,max=2000"`
}

func (r UpdateStatusRequest) ToChange() instsvc.StatusChange {
	return instsvc.StatusChange{
		Status:     instmodel.Status(strings.ToLower(strings.TrimSpace(r.Status))),
		InstanceID: r.InstanceID,
		Notes:      r.Notes,
	}
}

type RescheduleRequest struct {
	Date      string     `json:"date"       validate:"required,datetime=2006-01-02"`
	EndDate   *string    `json:"end_date"   validate:"omitempty,datetime=2006-01-02"`
	StartTime string     `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string     `json:"end_time"   validate:"required,datetime=15:04"`
	RoomID    *uuid.UUID `json:"room_id"    validate:"omitempty"`
	Notes     *string    `json:"notes"      validate:"omitempty,max=2000"`
	Force     bool       `json:"force"`
}

func (r RescheduleRequest) ToReschedule() (instsvc.Reschedule, error) {
	p := parser{f: schederr.FieldErrors{}}
	out := instsvc.Reschedule{
		Date:      p.date("date", r.Date),
		EndDate:   p.datePtr("end_date", r.EndDate),
		StartTime: p.tod("start_time", r.StartTime),
		EndTime:   p.tod("end_time", r.EndTime),
		RoomID:    r.RoomID,
		Notes:     r.Notes,
		Force:     r.Force,
	}
	if !p.f.Empty() {
		return instsvc.Reschedule{}, &schederr.ValidationError{Fields: p.f}
	}
	return out, nil
}

/* =========================
   Response
========================= */

type InstanceResponse struct {
	InstanceID   uuid.UUID  `json:"instance_id"`
	ClassID      uuid.UUID  `json:"class_id"`
	SlotDate     string     `json:"slot_date"`
	SlotStart    string     `json:"slot_start_time"`
	SlotEnd      string     `json:"slot_end_time"`
	Date         string     `json:"date"`
	EndDate      string     `json:"end_date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	InstructorID uuid.UUID  `json:"instructor_id"`
	RoomID       *uuid.UUID `json:"room_id,omitempty"`
	Status       string     `json:"status"`
	Notes        *string    `json:"notes,omitempty"`
	IsOverridden bool       `json:"is_overridden"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func FromModel(m instmodel.ClassInstanceModel) InstanceResponse {
	return InstanceResponse{
		InstanceID:   m.ClassInstanceID,
		ClassID:      m.ClassInstanceClassID,
		SlotDate:     dbtime.FormatDate(m.ClassInstanceSlotDate),
		SlotStart:    m.ClassInstanceSlotStartTime.String(),
		SlotEnd:      m.ClassInstanceSlotEndTime.String(),
		Date:         dbtime.FormatDate(m.ClassInstanceDate),
		EndDate:      dbtime.FormatDate(m.ClassInstanceEndDate),
		StartTime:    m.ClassInstanceStartTime.String(),
		EndTime:      m.ClassInstanceEndTime.String(),
		InstructorID: m.ClassInstanceInstructorID,
		RoomID:       m.ClassInstanceRoomID,
		Status:       string(m.ClassInstanceStatus),
		Notes:        m.ClassInstanceNotes,
		IsOverridden: m.ClassInstanceIsOverridden,
		UpdatedAt:    m.ClassInstanceUpdatedAt,
	}
}

func FromModels(rows []instmodel.ClassInstanceModel) []InstanceResponse {
	out := make([]InstanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

/* =========================
   Parsing helpers
========================= */

type parser struct{ f schederr.FieldErrors }

func (p parser) date(field, s string) time.Time {
	d, err := dbtime.ParseDate(strings.TrimSpace(s))
	if err != nil {
		p.f.Add(field, "must be YYYY-MM-DD")
	}
	return d
}

func (p parser) datePtr(field string, s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d := p.date(field, *s)
	return &d
}

func (p parser) tod(field, s string) dbtime.Tod {
	t, err := dbtime.Parse(strings.TrimSpace(s))
	if err != nil {
		p.f.Add(field, "must be HH:mm")
	}
	return t
}
