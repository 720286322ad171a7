// file: internals/features/scheduling/resources/model/resource_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================
   Model: InstructorModel
========================= */

type InstructorModel struct {
	InstructorID uuid.UUID `json:"instructor_id" gorm:"type:uuid;primaryKey;column:instructor_id;default:gen_random_uuid()"`

	InstructorName  string  `json:"instructor_name"            gorm:"type:varchar(120);not null;column:instructor_name"`
	InstructorEmail *string `json:"instructor_email,omitempty" gorm:"type:varchar(160);column:instructor_email"`
	InstructorPhone *string `json:"instructor_phone,omitempty" gorm:"type:varchar(40);column:instructor_phone"`

	InstructorIsActive bool `json:"instructor_is_active" gorm:"not null;default:true;column:instructor_is_active"`

	InstructorCreatedAt time.Time      `json:"instructor_created_at"           gorm:"column:instructor_created_at;autoCreateTime"`
	InstructorUpdatedAt time.Time      `json:"instructor_updated_at"           gorm:"column:instructor_updated_at;autoUpdateTime"`
	InstructorDeletedAt gorm.DeletedAt `json:"instructor_deleted_at,omitempty" gorm:"column:instructor_deleted_at;index"`
}

func (InstructorModel) TableName() string { return "instructors" }

func (m *InstructorModel) BeforeCreate(tx *gorm.DB) error {
	if m.InstructorID == uuid.Nil {
		m.InstructorID = uuid.New()
	}
	return nil
}

/* =========================
   Model: RoomTypeModel
========================= */

type RoomTypeModel struct {
	RoomTypeID uuid.UUID `json:"room_type_id" gorm:"type:uuid;primaryKey;column:room_type_id;default:gen_random_uuid()"`

	RoomTypeName        string  `json:"room_type_name"                  gorm:"type:varchar(80);not null;column:room_type_name"`
	RoomTypeDescription *string `json:"room_type_description,omitempty" gorm:"type:text;column:room_type_description"`

	RoomTypeIsActive bool `json:"room_type_is_active" gorm:"not null;default:true;column:room_type_is_active"`

	RoomTypeCreatedAt time.Time      `json:"room_type_created_at"           gorm:"column:room_type_created_at;autoCreateTime"`
	RoomTypeUpdatedAt time.Time      `json:"room_type_updated_at"           gorm:"column:room_type_updated_at;autoUpdateTime"`
	RoomTypeDeletedAt gorm.DeletedAt `json:"room_type_deleted_at,omitempty" gorm:"column:room_type_deleted_at;index"`
}

func (RoomTypeModel) TableName() string { return "room_types" }

func (m *RoomTypeModel) BeforeCreate(tx *gorm.DB) error {
	if m.RoomTypeID == uuid.Nil {
		m.RoomTypeID = uuid.New()
	}
	return nil
}

/* =========================
   Model: RoomModel
========================= */

type RoomModel struct {
	RoomID     uuid.UUID `json:"room_id"      gorm:"type:uuid;primaryKey;column:room_id;default:gen_random_uuid()"`
	RoomTypeID uuid.UUID `json:"room_type_id" gorm:"type:uuid;not null;column:room_room_type_id;index"`

	RoomName        string  `json:"room_name"                  gorm:"type:varchar(120);not null;column:room_name"`
	RoomCode        *string `json:"room_code,omitempty"        gorm:"type:varchar(40);column:room_code"`
	RoomLocation    *string `json:"room_location,omitempty"    gorm:"type:text;column:room_location"`
	RoomCapacity    *int    `json:"room_capacity,omitempty"    gorm:"column:room_capacity"`
	RoomDescription *string `json:"room_description,omitempty" gorm:"type:text;column:room_description"`

	RoomIsVirtual bool `json:"room_is_virtual" gorm:"not null;default:false;column:room_is_virtual"`
	RoomIsActive  bool `json:"room_is_active"  gorm:"not null;default:true;column:room_is_active"`

	// ["projector","whiteboard",...]
	RoomFeatures datatypes.JSON `json:"room_features" gorm:"type:jsonb;not null;default:'[]';column:room_features"`

	RoomCreatedAt time.Time      `json:"room_created_at"           gorm:"column:room_created_at;autoCreateTime"`
	RoomUpdatedAt time.Time      `json:"room_updated_at"           gorm:"column:room_updated_at;autoUpdateTime"`
	RoomDeletedAt gorm.DeletedAt `json:"room_deleted_at,omitempty" gorm:"column:room_deleted_at;index"`
}

func (RoomModel) TableName() string { return "rooms" }

func (m *RoomModel) BeforeCreate(tx *gorm.DB) error {
	if m.RoomID == uuid.Nil {
		m.RoomID = uuid.New()
	}
	if len(m.RoomFeatures) == 0 {
		m.RoomFeatures = datatypes.JSON("[]")
	}
	return nil
}
