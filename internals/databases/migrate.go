package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	instmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/model"
	resmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/model"
)

// Partial unique indexes AutoMigrate cannot express. The booking ones are
// the storage backstop for concurrent writers that both passed the conflict
// check.
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_instructors_email
	   ON instructors (LOWER(instructor_email))
	   WHERE instructor_deleted_at IS NULL AND instructor_email IS NOT NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_class_instances_slot
	   ON class_instances (class_instance_class_id, class_instance_slot_date,
	                       class_instance_slot_start_time, class_instance_slot_end_time)
	   WHERE class_instance_deleted_at IS NULL`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_class_instances_instructor_start
	   ON class_instances (class_instance_instructor_id, class_instance_date, class_instance_start_time)
	   WHERE class_instance_deleted_at IS NULL AND class_instance_status <> 'cancelled'`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_class_instances_room_start
	   ON class_instances (class_instance_room_id, class_instance_date, class_instance_start_time)
	   WHERE class_instance_deleted_at IS NULL AND class_instance_status <> 'cancelled'
	     AND class_instance_room_id IS NOT NULL`,

	`CREATE INDEX IF NOT EXISTS ix_class_instances_date
	   ON class_instances (class_instance_date)
	   WHERE class_instance_deleted_at IS NULL`,
}

// Migrate creates or updates every scheduling table.
func Migrate(db *gorm.DB) error {
	log.Println("[INFO] AutoMigrate scheduling tables...")
	if err := db.AutoMigrate(
		&resmodel.InstructorModel{},
		&resmodel.RoomTypeModel{},
		&resmodel.RoomModel{},
		&classmodel.ClassModel{},
		&instmodel.ClassInstanceModel{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate index: %w", err)
		}
	}
	log.Println("✅ Migrasi selesai.")
	return nil
}
