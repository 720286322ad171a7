// file: internals/features/scheduling/resources/controller/room_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/dto"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/model"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
)

/* ============================ ROOM TYPES ============================ */

// GET /room-types?q=
func (ctl *ResourceController) ListRoomTypes(c *fiber.Ctx) error {
	tx := ctl.DB.WithContext(helper.ReqCtx(c)).Model(&model.RoomTypeModel{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		tx = tx.Where("LOWER(room_type_name) LIKE ?", likePattern(q))
	}
	var rows []model.RoomTypeModel
	if err := tx.Order("room_type_name ASC").Find(&rows).Error; err != nil {
		return writeDBError(c, "room type", err)
	}
	out := make([]dto.RoomTypeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromRoomType(r))
	}
	return helper.JsonOK(c, "ok", out)
}

// POST /room-types
func (ctl *ResourceController) CreateRoomType(c *fiber.Ctx) error {
	var req dto.CreateRoomTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if ok, err := ctl.validate(c, &req); !ok {
		return err
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).Create(&m).Error; err != nil {
		return writeDBError(c, "room type", err)
	}
	return helper.JsonCreated(c, "room type dibuat", dto.FromRoomType(m))
}

// PATCH /room-types/:id
func (ctl *ResourceController) PatchRoomType(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.UpdateRoomTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if ok, err := ctl.validate(c, &req); !ok {
		return err
	}
	db := ctl.DB.WithContext(helper.ReqCtx(c))
	var m model.RoomTypeModel
	if err := db.First(&m, "room_type_id = ?", id).Error; err != nil {
		return writeDBError(c, "room type", err)
	}
	req.Apply(&m)
	if err := db.Save(&m).Error; err != nil {
		return writeDBError(c, "room type", err)
	}
	return helper.JsonUpdated(c, "room type diperbarui", dto.FromRoomType(m))
}

/* ============================ ROOMS ============================ */

// GET /rooms?q=&room_type_id=&is_active=&page=&per_page=
func (ctl *ResourceController) ListRooms(c *fiber.Ctx) error {
	typeID, err := helper.QueryUUID(c, "room_type_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "room_type_id tidak valid")
	}
	p := helper.ResolvePaging(c, 20, 200)

	tx := ctl.DB.WithContext(helper.ReqCtx(c)).Model(&model.RoomModel{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pat := likePattern(q)
		tx = tx.Where("LOWER(room_name) LIKE ? OR LOWER(COALESCE(room_code,'')) LIKE ? OR LOWER(COALESCE(room_location,'')) LIKE ?", pat, pat, pat)
	}
	if typeID != nil {
		tx = tx.Where("room_room_type_id = ?", *typeID)
	}
	if v := strings.TrimSpace(c.Query("is_active")); v != "" {
		tx = tx.Where("room_is_active = ?", v == "true" || v == "1")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return writeDBError(c, "room", err)
	}
	var rows []model.RoomModel
	if err := tx.Order("room_name ASC, room_id ASC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return writeDBError(c, "room", err)
	}
	out := make([]dto.RoomResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromRoom(r))
	}
	pg := helper.BuildPagination(total, p, len(out))
	return helper.JsonList(c, "ok", out, &pg)
}

// GET /rooms/:id
func (ctl *ResourceController) GetRoom(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var m model.RoomModel
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).First(&m, "room_id = ?", id).Error; err != nil {
		return writeDBError(c, "room", err)
	}
	return helper.JsonOK(c, "ok", dto.FromRoom(m))
}

// roomTypeExists guards room writes so a bad type is a 400, not a FK error.
func (ctl *ResourceController) roomTypeExists(c *fiber.Ctx, id uuid.UUID) (bool, error) {
	var n int64
	err := ctl.DB.WithContext(helper.ReqCtx(c)).Model(&model.RoomTypeModel{}).
		Where("room_type_id = ?", id).Count(&n).Error
	return n > 0, err
}

// POST /rooms
func (ctl *ResourceController) CreateRoom(c *fiber.Ctx) error {
	var req dto.CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if ok, err := ctl.validate(c, &req); !ok {
		return err
	}
	if ok, err := ctl.roomTypeExists(c, req.RoomTypeID); err != nil {
		return writeDBError(c, "room", err)
	} else if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "room_type_id tidak ditemukan")
	}
	m, err := req.ToModel()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "features tidak valid")
	}
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).Create(&m).Error; err != nil {
		return writeDBError(c, "room", err)
	}
	return helper.JsonCreated(c, "room dibuat", dto.FromRoom(m))
}

// PATCH /rooms/:id
func (ctl *ResourceController) PatchRoom(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.UpdateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if ok, err := ctl.validate(c, &req); !ok {
		return err
	}
	if req.RoomTypeID != nil {
		if ok, err := ctl.roomTypeExists(c, *req.RoomTypeID); err != nil {
			return writeDBError(c, "room", err)
		} else if !ok {
			return helper.JsonError(c, fiber.StatusBadRequest, "room_type_id tidak ditemukan")
		}
	}

	db := ctl.DB.WithContext(helper.ReqCtx(c))
	var m model.RoomModel
	if err := db.First(&m, "room_id = ?", id).Error; err != nil {
		return writeDBError(c, "room", err)
	}
	if err := req.Apply(&m); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "features tidak valid")
	}
	if err := db.Save(&m).Error; err != nil {
		return writeDBError(c, "room", err)
	}
	ctl.invalidate(c)
	return helper.JsonUpdated(c, "room diperbarui", dto.FromRoom(m))
}

// DELETE /rooms/:id (deactivate)
func (ctl *ResourceController) DeactivateRoom(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	res := ctl.DB.WithContext(helper.ReqCtx(c)).Model(&model.RoomModel{}).
		Where("room_id = ?", id).
		Update("room_is_active", false)
	if res.Error != nil {
		return writeDBError(c, "room", res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "room tidak ditemukan")
	}
	ctl.invalidate(c)
	return helper.JsonDeleted(c, "room dinonaktifkan", fiber.Map{"id": id})
}
