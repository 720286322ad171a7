package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
)

func (s *Store) CreateClass(ctx context.Context, c *classmodel.Class) error {
	m, err := classmodel.FromDomain(*c)
	if err != nil {
		return err
	}
	if err := s.db(ctx).Create(&m).Error; err != nil {
		return mapErr(err, "class", c.ID)
	}
	c.ID = m.ClassID
	c.CreatedAt, c.UpdatedAt = m.ClassCreatedAt, m.ClassUpdatedAt
	if c.GeneratedInstances == nil {
		c.GeneratedInstances = []classmodel.InstanceSummary{}
	}
	return nil
}

func (s *Store) UpdateClass(ctx context.Context, c classmodel.Class) error {
	m, err := classmodel.FromDomain(c)
	if err != nil {
		return err
	}
	res := s.db(ctx).
		Model(&classmodel.ClassModel{}).
		Where("class_id = ?", c.ID).
		Select("*").
		Omit("class_id", "class_created_at", "class_deleted_at").
		Updates(&m)
	if res.Error != nil {
		return mapErr(res.Error, "class", c.ID)
	}
	if res.RowsAffected == 0 {
		return schederr.NotFound("class", c.ID)
	}
	return nil
}

func (s *Store) GetClass(ctx context.Context, id uuid.UUID) (classmodel.Class, error) {
	var m classmodel.ClassModel
	if err := s.db(ctx).First(&m, "class_id = ?", id).Error; err != nil {
		return classmodel.Class{}, mapErr(err, "class", id)
	}
	return m.ToDomain()
}

// LockClass needs a transaction in ctx; outside one the lock is released
// as soon as the statement finishes.
func (s *Store) LockClass(ctx context.Context, id uuid.UUID) (classmodel.Class, error) {
	var m classmodel.ClassModel
	err := s.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "class_id = ?", id).Error
	if err != nil {
		return classmodel.Class{}, mapErr(err, "class", id)
	}
	return m.ToDomain()
}

func (s *Store) ListClasses(ctx context.Context, q classmodel.ListQuery) ([]classmodel.Class, int64, error) {
	tx := s.db(ctx).Model(&classmodel.ClassModel{})

	if needle := strings.TrimSpace(q.Q); needle != "" {
		like := "%" + needle + "%"
		tx = tx.Where("(class_name ILIKE ? OR class_course_code ILIKE ? OR class_description ILIKE ?)", like, like, like)
	}
	if q.InstructorID != nil {
		tx = tx.Where("class_instructor_id = ?", *q.InstructorID)
	}
	if q.RoomID != nil {
		tx = tx.Where("class_room_id = ?", *q.RoomID)
	}
	if q.Type != "" {
		tx = tx.Where("class_type = ?", q.Type)
	}
	if q.IsActive != nil {
		tx = tx.Where("class_is_active = ?", *q.IsActive)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order("class_name ASC").Order("class_id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []classmodel.ClassModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out, err := toDomain(rows)
	return out, total, err
}

func (s *Store) SetClassActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := s.db(ctx).
		Model(&classmodel.ClassModel{}).
		Where("class_id = ?", id).
		Update("class_is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return schederr.NotFound("class", id)
	}
	return nil
}

func (s *Store) ActiveRecurringClassIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db(ctx).
		Model(&classmodel.ClassModel{}).
		Where("class_is_active = ? AND class_type = ?", true, classmodel.ClassTypeRecurring).
		Order("class_id ASC").
		Pluck("class_id", &ids).Error
	return ids, err
}

func (s *Store) SaveInstanceSummary(ctx context.Context, classID uuid.UUID, summary []classmodel.InstanceSummary) error {
	if summary == nil {
		summary = []classmodel.InstanceSummary{}
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	res := s.db(ctx).
		Model(&classmodel.ClassModel{}).
		Where("class_id = ?", classID).
		Update("class_generated_instances", datatypes.JSON(raw))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return schederr.NotFound("class", classID)
	}
	return nil
}

func (s *Store) SaveMaterializedRange(ctx context.Context, classID uuid.UUID, r classmodel.DateRange) error {
	res := s.db(ctx).
		Model(&classmodel.ClassModel{}).
		Where("class_id = ?", classID).
		Updates(map[string]any{
			"class_materialized_from":    r.From,
			"class_materialized_through": r.Through,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return schederr.NotFound("class", classID)
	}
	return nil
}

func toDomain(rows []classmodel.ClassModel) ([]classmodel.Class, error) {
	out := make([]classmodel.Class, 0, len(rows))
	for i := range rows {
		c, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
