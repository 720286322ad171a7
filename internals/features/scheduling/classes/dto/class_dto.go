// file: internals/features/scheduling/classes/dto/class_dto.go
package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/recurrence"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

/* =========================
   CREATE / UPDATE
========================= */

type TimeSlotRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time"   validate:"required,datetime=15:04"`
}

type RecurrenceRequest struct {
	Pattern         string            `json:"pattern"          validate:"required,oneof=daily weekly monthly custom"`
	DaysOfWeek      []int             `json:"days_of_week"     validate:"omitempty"`
	DayOfMonth      []int             `json:"day_of_month"     validate:"omitempty"`
	Interval        int               `json:"interval"`
	TimeSlots       []TimeSlotRequest `json:"time_slots"       validate:"omitempty,dive"`
	StartDate       string            `json:"start_date"       validate:"required,datetime=2006-01-02"`
	EndDate         *string           `json:"end_date"         validate:"omitempty,datetime=2006-01-02"`
	Occurrences     *int              `json:"occurrences"`
	ExclusionDates  []string          `json:"exclusion_dates"  validate:"omitempty,dive,datetime=2006-01-02"`
	ExcludeWeekends bool              `json:"exclude_weekends"`
}

// ClassRequest is the full class definition; PUT replaces every field.
type ClassRequest struct {
	Name         string     `json:"name"          validate:"required,max=160"`
	CourseCode   *string    `json:"course_code"   validate:"omitempty,max=40"`
	Description  *string    `json:"description"   validate:"omitempty"`
	InstructorID uuid.UUID  `json:"instructor_id" validate:"required"`
	RoomTypeID   uuid.UUID  `json:"room_type_id"  validate:"required"`
	RoomID       *uuid.UUID `json:"room_id"       validate:"omitempty"`

	ClassType string `json:"class_type" validate:"required,oneof=single recurring"`

	// single
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date"   validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time"   validate:"omitempty,datetime=15:04"`

	// recurring
	Recurrence *RecurrenceRequest `json:"recurrence" validate:"omitempty"`

	// book despite overlap conflicts
	Force bool `json:"force"`
}

func (r *ClassRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ClassType = strings.ToLower(strings.TrimSpace(r.ClassType))
	r.CourseCode = trimPtr(r.CourseCode)
	r.Description = trimPtr(r.Description)
	if r.Recurrence != nil {
		r.Recurrence.Pattern = strings.ToLower(strings.TrimSpace(r.Recurrence.Pattern))
	}
}

// ToDomain converts the request. Format problems come back as
// *schederr.ValidationError; semantic checks are left to Class.Validate.
func (r ClassRequest) ToDomain() (classmodel.Class, error) {
	p := parser{f: schederr.FieldErrors{}}
	c := classmodel.Class{
		Name:         r.Name,
		CourseCode:   r.CourseCode,
		Description:  r.Description,
		InstructorID: r.InstructorID,
		RoomTypeID:   r.RoomTypeID,
		RoomID:       r.RoomID,
		IsActive:     true,
	}

	switch classmodel.ClassType(r.ClassType) {
	case classmodel.ClassTypeSingle:
		s := classmodel.SingleSchedule{EndDate: p.datePtr("end_date", r.EndDate)}
		if r.StartDate != nil {
			s.StartDate = p.date("start_date", *r.StartDate)
		} else {
			p.f.Add("start_date", "required")
		}
		if r.StartTime != nil {
			s.StartTime = p.tod("start_time", *r.StartTime)
		} else {
			p.f.Add("start_time", "required")
		}
		if r.EndTime != nil {
			s.EndTime = p.tod("end_time", *r.EndTime)
		} else {
			p.f.Add("end_time", "required")
		}
		c.Schedule = s
	case classmodel.ClassTypeRecurring:
		if r.Recurrence == nil {
			p.f.Add("recurrence", "required")
			break
		}
		c.Schedule = classmodel.RecurringSchedule{Rule: r.Recurrence.toRule(p)}
	default:
		p.f.Add("class_type", "must be single or recurring")
	}

	if !p.f.Empty() {
		return classmodel.Class{}, &schederr.ValidationError{Fields: p.f}
	}
	return c, nil
}

func (r RecurrenceRequest) toRule(p parser) recurrence.Rule {
	rule := recurrence.Rule{
		Pattern:         recurrence.Pattern(r.Pattern),
		StartDate:       p.date("recurrence.start_date", r.StartDate),
		DaysOfWeek:      r.DaysOfWeek,
		DaysOfMonth:     r.DayOfMonth,
		Interval:        r.Interval,
		EndDate:         p.datePtr("recurrence.end_date", r.EndDate),
		Occurrences:     r.Occurrences,
		ExcludeWeekends: r.ExcludeWeekends,
	}
	for i, ts := range r.TimeSlots {
		key := "recurrence.time_slots[" + strconv.Itoa(i) + "]"
		rule.TimeSlots = append(rule.TimeSlots, recurrence.TimeSlot{
			StartTime: p.tod(key+".start_time", ts.StartTime),
			EndTime:   p.tod(key+".end_time", ts.EndTime),
		})
	}
	for _, s := range r.ExclusionDates {
		rule.ExclusionDates = append(rule.ExclusionDates, p.date("recurrence.exclusion_dates", s))
	}
	return rule
}

/* =========================
   CONFLICT CHECK / PREVIEW
========================= */

type ConflictCheckRequest struct {
	InstructorID      uuid.UUID  `json:"instructor_id"       validate:"required"`
	RoomID            *uuid.UUID `json:"room_id"             validate:"omitempty"`
	Date              string     `json:"date"                validate:"required,datetime=2006-01-02"`
	EndDate           *string    `json:"end_date"            validate:"omitempty,datetime=2006-01-02"`
	StartTime         string     `json:"start_time"          validate:"required,datetime=15:04"`
	EndTime           string     `json:"end_time"            validate:"required,datetime=15:04"`
	ExcludeClassID    *uuid.UUID `json:"exclude_class_id"    validate:"omitempty"`
	ExcludeInstanceID *uuid.UUID `json:"exclude_instance_id" validate:"omitempty"`
}

func (r ConflictCheckRequest) ToSubject() (conflicts.Subject, conflicts.Options, error) {
	p := parser{f: schederr.FieldErrors{}}
	subj := conflicts.Subject{
		InstructorID: r.InstructorID,
		RoomID:       r.RoomID,
		Date:         p.date("date", r.Date),
		EndDate:      p.datePtr("end_date", r.EndDate),
		StartTime:    p.tod("start_time", r.StartTime),
		EndTime:      p.tod("end_time", r.EndTime),
	}
	if !p.f.Empty() {
		return conflicts.Subject{}, conflicts.Options{}, &schederr.ValidationError{Fields: p.f}
	}
	return subj, conflicts.Options{ExcludeClassID: r.ExcludeClassID, ExcludeInstanceID: r.ExcludeInstanceID}, nil
}

type PreviewRequest struct {
	ClassRequest
	ExcludeClassID *uuid.UUID `json:"exclude_class_id" validate:"omitempty"`
}

/* =========================
   LIST QUERY
========================= */

type ListClassesQuery struct {
	Q            string `query:"q"`
	InstructorID string `query:"instructor_id"`
	RoomID       string `query:"room_id"`
	ClassType    string `query:"class_type"`
	IsActive     *bool  `query:"is_active"`
}

/* =========================
   RESPONSE
========================= */

type TimeSlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type RecurrenceResponse struct {
	Pattern         string             `json:"pattern"`
	DaysOfWeek      []int              `json:"days_of_week"`
	DayOfMonth      []int              `json:"day_of_month"`
	Interval        int                `json:"interval"`
	TimeSlots       []TimeSlotResponse `json:"time_slots"`
	StartDate       string             `json:"start_date"`
	EndDate         *string            `json:"end_date,omitempty"`
	Occurrences     *int               `json:"occurrences,omitempty"`
	ExclusionDates  []string           `json:"exclusion_dates"`
	ExcludeWeekends bool               `json:"exclude_weekends"`
}

type ClassResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	CourseCode   *string    `json:"course_code,omitempty"`
	Description  *string    `json:"description,omitempty"`
	InstructorID uuid.UUID  `json:"instructor_id"`
	RoomTypeID   uuid.UUID  `json:"room_type_id"`
	RoomID       *uuid.UUID `json:"room_id,omitempty"`
	ClassType    string     `json:"class_type"`

	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`

	Recurrence *RecurrenceResponse `json:"recurrence,omitempty"`

	GeneratedInstances  []classmodel.InstanceSummary `json:"generated_instances"`
	MaterializedFrom    *string                      `json:"materialized_from,omitempty"`
	MaterializedThrough *string                      `json:"materialized_through,omitempty"`
	IsActive            bool                         `json:"is_active"`
	CreatedAt           time.Time                    `json:"created_at"`
	UpdatedAt           time.Time                    `json:"updated_at"`
}

func FromClass(c classmodel.Class) ClassResponse {
	out := ClassResponse{
		ID:                 c.ID,
		Name:               c.Name,
		CourseCode:         c.CourseCode,
		Description:        c.Description,
		InstructorID:       c.InstructorID,
		RoomTypeID:         c.RoomTypeID,
		RoomID:             c.RoomID,
		ClassType:          string(c.Type()),
		GeneratedInstances: c.GeneratedInstances,
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if out.GeneratedInstances == nil {
		out.GeneratedInstances = []classmodel.InstanceSummary{}
	}
	if r := c.Materialized; r != nil {
		from, through := dbtime.FormatDate(r.From), dbtime.FormatDate(r.Through)
		out.MaterializedFrom, out.MaterializedThrough = &from, &through
	}

	switch s := c.Schedule.(type) {
	case classmodel.SingleSchedule:
		sd, ed := dbtime.FormatDate(s.StartDate), dbtime.FormatDate(s.LastDate())
		st, et := s.StartTime.String(), s.EndTime.String()
		out.StartDate, out.EndDate, out.StartTime, out.EndTime = &sd, &ed, &st, &et
	case classmodel.RecurringSchedule:
		r := s.Rule
		rr := &RecurrenceResponse{
			Pattern:         string(r.Pattern),
			DaysOfWeek:      nonNil(r.DaysOfWeek),
			DayOfMonth:      nonNil(r.DaysOfMonth),
			Interval:        max(r.Interval, 1),
			TimeSlots:       make([]TimeSlotResponse, 0, len(r.TimeSlots)),
			StartDate:       dbtime.FormatDate(r.StartDate),
			Occurrences:     r.Occurrences,
			ExclusionDates:  make([]string, 0, len(r.ExclusionDates)),
			ExcludeWeekends: r.ExcludeWeekends,
		}
		for _, ts := range r.TimeSlots {
			rr.TimeSlots = append(rr.TimeSlots, TimeSlotResponse{StartTime: ts.StartTime.String(), EndTime: ts.EndTime.String()})
		}
		if r.EndDate != nil {
			ed := dbtime.FormatDate(*r.EndDate)
			rr.EndDate = &ed
		}
		for _, d := range r.ExclusionDates {
			rr.ExclusionDates = append(rr.ExclusionDates, dbtime.FormatDate(d))
		}
		out.Recurrence = rr
	}
	return out
}

func FromClasses(rows []classmodel.Class) []ClassResponse {
	out := make([]ClassResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, FromClass(c))
	}
	return out
}

/* =========================
   Helpers
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

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func nonNil(a []int) []int {
	if a == nil {
		return []int{}
	}
	return a
}
