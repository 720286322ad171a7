// file: internals/features/scheduling/resources/dto/resource_dto.go
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/model"
)

/* =========================
   Instructor
========================= */

type CreateInstructorRequest struct {
	Name  string  `json:"name"  validate:"required,max=120"`
	Email *string `json:"email" validate:"omitempty,email,max=160"`
	Phone *string `json:"phone" validate:"omitempty,max=40"`
}

func (r CreateInstructorRequest) ToModel() model.InstructorModel {
	return model.InstructorModel{
		InstructorName:     strings.TrimSpace(r.Name),
		InstructorEmail:    lowerPtr(r.Email),
		InstructorPhone:    trimPtr(r.Phone),
		InstructorIsActive: true,
	}
}

type UpdateInstructorRequest struct {
	Name     *string `json:"name"      validate:"omitempty,max=120"`
	Email    *string `json:"email"     validate:"omitempty,email,max=160"`
	Phone    *string `json:"phone"     validate:"omitempty,max=40"`
	IsActive *bool   `json:"is_active" validate:"omitempty"`
}

func (r UpdateInstructorRequest) Apply(m *model.InstructorModel) {
	if v := trimPtr(r.Name); v != nil {
		m.InstructorName = *v
	}
	if r.Email != nil {
		m.InstructorEmail = lowerPtr(r.Email)
	}
	if r.Phone != nil {
		m.InstructorPhone = trimPtr(r.Phone)
	}
	if r.IsActive != nil {
		m.InstructorIsActive = *r.IsActive
	}
}

type InstructorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromInstructor(m model.InstructorModel) InstructorResponse {
	return InstructorResponse{
		ID:        m.InstructorID,
		Name:      m.InstructorName,
		Email:     m.InstructorEmail,
		Phone:     m.InstructorPhone,
		IsActive:  m.InstructorIsActive,
		CreatedAt: m.InstructorCreatedAt,
		UpdatedAt: m.InstructorUpdatedAt,
	}
}

/* =========================
   Room type
========================= */

type CreateRoomTypeRequest struct {
	Name        string  `json:"name"        validate:"required,max=80"`
	Description *string `json:"description" validate:"omitempty"`
}

func (r CreateRoomTypeRequest) ToModel() model.RoomTypeModel {
	return model.RoomTypeModel{
		RoomTypeName:        strings.TrimSpace(r.Name),
		RoomTypeDescription: trimPtr(r.Description),
		RoomTypeIsActive:    true,
	}
}

type UpdateRoomTypeRequest struct {
	Name        *string `json:"name"        validate:"omitempty,max=80"`
	Description *string `json:"description" validate:"omitempty"`
	IsActive    *bool   `json:"is_active"   validate:"omitempty"`
}

func (r UpdateRoomTypeRequest) Apply(m *model.RoomTypeModel) {
	if v := trimPtr(r.Name); v != nil {
		m.RoomTypeName = *v
	}
	if r.Description != nil {
		m.RoomTypeDescription = trimPtr(r.Description)
	}
	if r.IsActive != nil {
		m.RoomTypeIsActive = *r.IsActive
	}
}

type RoomTypeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
}

func FromRoomType(m model.RoomTypeModel) RoomTypeResponse {
	return RoomTypeResponse{
		ID:          m.RoomTypeID,
		Name:        m.RoomTypeName,
		Description: m.RoomTypeDescription,
		IsActive:    m.RoomTypeIsActive,
	}
}

/* =========================
   Room
========================= */

type CreateRoomRequest struct {
	RoomTypeID  uuid.UUID `json:"room_type_id" validate:"required"`
	Name        string    `json:"name"         validate:"required,max=120"`
	Code        *string   `json:"code"         validate:"omitempty,max=40"`
	Location    *string   `json:"location"     validate:"omitempty,max=500"`
	Capacity    *int      `json:"capacity"     validate:"omitempty,min=0"`
	Description *string   `json:"description"  validate:"omitempty"`
	IsVirtual   *bool     `json:"is_virtual"   validate:"omitempty"`
	Features    []string  `json:"features"     validate:"omitempty,dive,printascii"`
}

func (r CreateRoomRequest) ToModel() (model.RoomModel, error) {
	m := model.RoomModel{
		RoomTypeID:      r.RoomTypeID,
		RoomName:        strings.TrimSpace(r.Name),
		RoomCode:        trimPtr(r.Code),
		RoomLocation:    trimPtr(r.Location),
		RoomCapacity:    r.Capacity,
		RoomDescription: trimPtr(r.Description),
		RoomIsActive:    true,
	}
	if r.IsVirtual != nil {
		m.RoomIsVirtual = *r.IsVirtual
	}
	return m, setJSONFromStrings(&m.RoomFeatures, r.Features)
}

type UpdateRoomRequest struct {
	RoomTypeID  *uuid.UUID `json:"room_type_id" validate:"omitempty"`
	Name        *string    `json:"name"         validate:"omitempty,max=120"`
	Code        *string    `json:"code"         validate:"omitempty,max=40"`
	Location    *string    `json:"location"     validate:"omitempty,max=500"`
	Capacity    *int       `json:"capacity"     validate:"omitempty,min=0"`
	Description *string    `json:"description"  validate:"omitempty"`
	IsVirtual   *bool      `json:"is_virtual"   validate:"omitempty"`
	IsActive    *bool      `json:"is_active"    validate:"omitempty"`
	Features    *[]string  `json:"features"     validate:"omitempty,dive,printascii"`
}

func (r UpdateRoomRequest) Apply(m *model.RoomModel) error {
	if r.RoomTypeID != nil {
		m.RoomTypeID = *r.RoomTypeID
	}
	if v := trimPtr(r.Name); v != nil {
		m.RoomName = *v
	}
	if r.Code != nil {
		m.RoomCode = trimPtr(r.Code)
	}
	if r.Location != nil {
		m.RoomLocation = trimPtr(r.Location)
	}
	if r.Capacity != nil {
		m.RoomCapacity = r.Capacity
	}
	if r.Description != nil {
		m.RoomDescription = trimPtr(r.Description)
	}
	if r.IsVirtual != nil {
		m.RoomIsVirtual = *r.IsVirtual
	}
	if r.IsActive != nil {
		m.RoomIsActive = *r.IsActive
	}
	if r.Features != nil {
		return setJSONFromStrings(&m.RoomFeatures, *r.Features)
	}
	return nil
}

type RoomResponse struct {
	ID          uuid.UUID `json:"id"`
	RoomTypeID  uuid.UUID `json:"room_type_id"`
	Name        string    `json:"name"`
	Code        *string   `json:"code,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsVirtual   bool      `json:"is_virtual"`
	IsActive    bool      `json:"is_active"`
	Features    []string  `json:"features"`
}

func FromRoom(m model.RoomModel) RoomResponse {
	features := []string{}
	if len(m.RoomFeatures) > 0 {
		_ = json.Unmarshal(m.RoomFeatures, &features)
	}
	return RoomResponse{
		ID:          m.RoomID,
		RoomTypeID:  m.RoomTypeID,
		Name:        m.RoomName,
		Code:        m.RoomCode,
		Location:    m.RoomLocation,
		Capacity:    m.RoomCapacity,
		Description: m.RoomDescription,
		IsVirtual:   m.RoomIsVirtual,
		IsActive:    m.RoomIsActive,
		Features:    features,
	}
}

/* =========================
   Helpers
========================= */

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

func lowerPtr(s *string) *string {
	t := trimPtr(s)
	if t == nil {
		return nil
	}
	l := strings.ToLower(*t)
	return &l
}

func setJSONFromStrings(dst *datatypes.JSON, v []string) error {
	clean := make([]string, 0, len(v))
	for _, s := range v {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	*dst = datatypes.JSON(b)
	return nil
}
