package model

import "github.com/google/uuid"

// ListQuery filters class listings. Q matches name, course code and
// description case-insensitively.
type ListQuery struct {
	Q            string
	InstructorID *uuid.UUID
	RoomID       *uuid.UUID
	Type         ClassType
	IsActive     *bool
	Limit        int
	Offset       int
}
