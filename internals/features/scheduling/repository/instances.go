package repository

import (
	"context"

	"github.com/google/uuid"

	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
)

const instanceOrder = "class_instance_date ASC, class_instance_start_time ASC, class_instance_id ASC"

func (s *Store) InstancesByClass(ctx context.Context, classID uuid.UUID) ([]instmodel.ClassInstanceModel, error) {
	var rows []instmodel.ClassInstanceModel
	err := s.db(ctx).
		Where("class_instance_class_id = ?", classID).
		Order(instanceOrder).
		Find(&rows).Error
	return rows, err
}

func (s *Store) GetInstance(ctx context.Context, id uuid.UUID) (instmodel.ClassInstanceModel, error) {
	var m instmodel.ClassInstanceModel
	if err := s.db(ctx).First(&m, "class_instance_id = ?", id).Error; err != nil {
		return instmodel.ClassInstanceModel{}, mapErr(err, "class instance", id)
	}
	return m, nil
}

// CreateInstances inserts rows in batches; generated ids are written back
// into the slice.
func (s *Store) CreateInstances(ctx context.Context, rows []instmodel.ClassInstanceModel) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return mapErr(err, "class instance", uuid.Nil)
	}
	return nil
}

func (s *Store) SaveInstance(ctx context.Context, row *instmodel.ClassInstanceModel) error {
	res := s.db(ctx).
		Model(&instmodel.ClassInstanceModel{}).
		Where("class_instance_id = ?", row.ClassInstanceID).
		Select("*").
		Omit("class_instance_id", "class_instance_class_id", "class_instance_created_at", "class_instance_deleted_at").
		Updates(row)
	if res.Error != nil {
		return mapErr(res.Error, "class instance", row.ClassInstanceID)
	}
	if res.RowsAffected == 0 {
		return schederr.NotFound("class instance", row.ClassInstanceID)
	}
	return nil
}

// DeleteInstances soft-deletes; the partial unique indexes only cover
// alive rows so the slot can be booked again.
func (s *Store) DeleteInstances(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db(ctx).
		Where("class_instance_id IN ?", ids).
		Delete(&instmodel.ClassInstanceModel{}).Error
}
