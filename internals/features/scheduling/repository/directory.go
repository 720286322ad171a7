package repository

import (
	"context"

	"github.com/google/uuid"

	resmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
)

/* =========================
   Directory (reference checks)
========================= */

func (s *Store) ActiveInstructor(ctx context.Context, id uuid.UUID) error {
	var n int64
	err := s.db(ctx).Model(&resmodel.InstructorModel{}).
		Where("instructor_id = ? AND instructor_is_active = ?", id, true).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return schederr.NotFound("instructor", id)
	}
	return nil
}

func (s *Store) ActiveRoomType(ctx context.Context, id uuid.UUID) error {
	var n int64
	err := s.db(ctx).Model(&resmodel.RoomTypeModel{}).
		Where("room_type_id = ? AND room_type_is_active = ?", id, true).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return schederr.NotFound("room type", id)
	}
	return nil
}

func (s *Store) ActiveRoom(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var m resmodel.RoomModel
	err := s.db(ctx).
		Select("room_id", "room_room_type_id").
		Where("room_id = ? AND room_is_active = ?", id, true).
		First(&m).Error
	if err != nil {
		return uuid.Nil, mapErr(err, "room", id)
	}
	return m.RoomTypeID, nil
}

/* =========================
   Names for calendar views
========================= */

func (s *Store) InstructorNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []resmodel.InstructorModel
	err := s.db(ctx).Unscoped().
		Select("instructor_id", "instructor_name").
		Where("instructor_id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.InstructorID] = r.InstructorName
	}
	return out, nil
}

func (s *Store) RoomNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []resmodel.RoomModel
	err := s.db(ctx).Unscoped().
		Select("room_id", "room_name").
		Where("room_id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.RoomID] = r.RoomName
	}
	return out, nil
}
