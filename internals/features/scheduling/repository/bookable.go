package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/occurrences"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

// LoadBookable fetches in three steps:
//  1. active classes whose series touches the window and that match the filter
//  2. instances of those classes keyed inside the window (single classes: all)
//  3. instances of any active class whose effective span touches the window
//     and that match the filter, plus their classes
func (s *Store) LoadBookable(ctx context.Context, f occurrences.Filter) ([]classmodel.Class, []instmodel.ClassInstanceModel, error) {
	db := s.db(ctx)
	from, to := dbtime.DateOf(f.From), dbtime.DateOf(f.To)

	// 1) classes
	var classRows []classmodel.ClassModel
	q := db.Where("class_is_active = ?", true).
		Where(`(
			(class_type = 'single' AND class_start_date <= ? AND COALESCE(class_end_date, class_start_date) >= ?)
			OR
			(class_type = 'recurring' AND class_recurrence_start_date <= ? AND (class_recurrence_end_date IS NULL OR class_recurrence_end_date >= ?))
		)`, to, from, to, from)
	q = matchFilter(q, f, "class_instructor_id", "class_room_id")
	if err := q.Find(&classRows).Error; err != nil {
		return nil, nil, err
	}
	classes, err := toDomain(classRows)
	if err != nil {
		return nil, nil, err
	}

	known := make(map[uuid.UUID]struct{}, len(classes))
	var singleIDs, recurringIDs []uuid.UUID
	for _, c := range classes {
		known[c.ID] = struct{}{}
		if c.Type() == classmodel.ClassTypeSingle {
			singleIDs = append(singleIDs, c.ID)
		} else {
			recurringIDs = append(recurringIDs, c.ID)
		}
	}

	seen := map[uuid.UUID]struct{}{}
	var instances []instmodel.ClassInstanceModel
	add := func(rows []instmodel.ClassInstanceModel) {
		for _, r := range rows {
			if _, dup := seen[r.ClassInstanceID]; dup {
				continue
			}
			seen[r.ClassInstanceID] = struct{}{}
			instances = append(instances, r)
		}
	}

	// 2) instances shadowing the expansions of step 1
	if len(singleIDs) > 0 {
		var rows []instmodel.ClassInstanceModel
		if err := db.Where("class_instance_class_id IN ?", singleIDs).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		add(rows)
	}
	if len(recurringIDs) > 0 {
		var rows []instmodel.ClassInstanceModel
		err := db.Where("class_instance_class_id IN ?", recurringIDs).
			Where("class_instance_slot_date BETWEEN ? AND ?", from, to).
			Find(&rows).Error
		if err != nil {
			return nil, nil, err
		}
		add(rows)
	}

	// 3) effective bookings in the window, wherever they were moved from
	var moved []instmodel.ClassInstanceModel
	q = db.Model(&instmodel.ClassInstanceModel{}).
		Select("class_instances.*").
		Joins("JOIN classes c ON c.class_id = class_instances.class_instance_class_id AND c.class_is_active = ? AND c.class_deleted_at IS NULL", true).
		Where("class_instances.class_instance_date <= ? AND class_instances.class_instance_end_date >= ?", to, from)
	q = matchFilter(q, f, "class_instances.class_instance_instructor_id", "class_instances.class_instance_room_id")
	if err := q.Find(&moved).Error; err != nil {
		return nil, nil, err
	}
	add(moved)

	var missing []uuid.UUID
	for _, in := range moved {
		if _, ok := known[in.ClassInstanceClassID]; !ok {
			known[in.ClassInstanceClassID] = struct{}{}
			missing = append(missing, in.ClassInstanceClassID)
		}
	}
	if len(missing) > 0 {
		var extra []classmodel.ClassModel
		if err := db.Where("class_id IN ?", missing).Find(&extra).Error; err != nil {
			return nil, nil, err
		}
		more, err := toDomain(extra)
		if err != nil {
			return nil, nil, err
		}
		classes = append(classes, more...)
	}

	return classes, instances, nil
}

// matchFilter applies the instructor-or-room narrowing of f.
func matchFilter(q *gorm.DB, f occurrences.Filter, instructorCol, roomCol string) *gorm.DB {
	switch {
	case f.InstructorID != nil && f.RoomID != nil:
		return q.Where("("+instructorCol+" = ? OR "+roomCol+" = ?)", *f.InstructorID, *f.RoomID)
	case f.InstructorID != nil:
		return q.Where(instructorCol+" = ?", *f.InstructorID)
	case f.RoomID != nil:
		return q.Where(roomCol+" = ?", *f.RoomID)
	}
	return q
}
