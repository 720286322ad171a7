package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/model"
)

type InstructorSeed struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email"`
	Phone *string   `json:"phone"`
}

type RoomTypeSeed struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

type RoomSeed struct {
	ID         uuid.UUID `json:"id"`
	RoomTypeID uuid.UUID `json:"room_type_id"`
	Name       string    `json:"name"`
	Code       *string   `json:"code"`
	Location   *string   `json:"location"`
	Capacity   *int      `json:"capacity"`
	IsVirtual  bool      `json:"is_virtual"`
	Features   []string  `json:"features"`
}

type ResourceSeeds struct {
	Instructors []InstructorSeed `json:"instructors"`
	RoomTypes   []RoomTypeSeed   `json:"room_types"`
	Rooms       []RoomSeed       `json:"rooms"`
}

// Counts reports how many rows each table received.
type Counts struct {
	Instructors int64
	RoomTypes   int64
	Rooms       int64
}

func LoadResourceSeeds(filePath string) (ResourceSeeds, error) {
	var s ResourceSeeds
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return s, fmt.Errorf("baca %s: %w", filePath, err)
	}
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return s, nil
}

// RunAllSeeds inserts the seed rows; rows whose id already exists are skipped.
func RunAllSeeds(db *gorm.DB, filePath string) (Counts, error) {
	log.Println("📥 Membaca file:", filePath)
	s, err := LoadResourceSeeds(filePath)
	if err != nil {
		return Counts{}, err
	}

	var out Counts
	err = db.Transaction(func(tx *gorm.DB) error {
		skip := tx.Clauses(clause.OnConflict{DoNothing: true})

		instructors := make([]model.InstructorModel, 0, len(s.Instructors))
		for _, in := range s.Instructors {
			instructors = append(instructors, model.InstructorModel{
				InstructorID:       in.ID,
				InstructorName:     in.Name,
				InstructorEmail:    in.Email,
				InstructorPhone:    in.Phone,
				InstructorIsActive: true,
			})
		}
		if len(instructors) > 0 {
			res := skip.Create(&instructors)
			if res.Error != nil {
				return fmt.Errorf("seed instructors: %w", res.Error)
			}
			out.Instructors = res.RowsAffected
		}

		types := make([]model.RoomTypeModel, 0, len(s.RoomTypes))
		for _, rt := range s.RoomTypes {
			types = append(types, model.RoomTypeModel{
				RoomTypeID:          rt.ID,
				RoomTypeName:        rt.Name,
				RoomTypeDescription: rt.Description,
				RoomTypeIsActive:    true,
			})
		}
		if len(types) > 0 {
			res := skip.Create(&types)
			if res.Error != nil {
				return fmt.Errorf("seed room types: %w", res.Error)
			}
			out.RoomTypes = res.RowsAffected
		}

		rooms := make([]model.RoomModel, 0, len(s.Rooms))
		for _, r := range s.Rooms {
			features, err := sonic.Marshal(nonNil(r.Features))
			if err != nil {
				return err
			}
			rooms = append(rooms, model.RoomModel{
				RoomID:        r.ID,
				RoomTypeID:    r.RoomTypeID,
				RoomName:      r.Name,
				RoomCode:      r.Code,
				RoomLocation:  r.Location,
				RoomCapacity:  r.Capacity,
				RoomIsVirtual: r.IsVirtual,
				RoomIsActive:  true,
				RoomFeatures:  features,
			})
		}
		if len(rooms) > 0 {
			res := skip.Create(&rooms)
			if res.Error != nil {
				return fmt.Errorf("seed rooms: %w", res.Error)
			}
			out.Rooms = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}
	log.Printf("✅ Seed selesai: %d instructor, %d room type, %d room", out.Instructors, out.RoomTypes, out.Rooms)
	return out, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
