// file: internals/features/scheduling/resources/controller/instructor_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/dto"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/model"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
)

// GET /instructors?q=&is_active=&page=&per_page=
func (ctl *ResourceController) ListInstructors(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	tx := ctl.DB.WithContext(helper.ReqCtx(c)).Model(&model.InstructorModel{})
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pat := likePattern(q)
		tx = tx.Where("LOWER(instructor_name) LIKE ? OR LOWER(COALESCE(instructor_email,'')) LIKE ?", pat, pat)
	}
	if v := strings.TrimSpace(c.Query("is_active")); v != "" {
		tx = tx.Where("instructor_is_active = ?", v == "true" || v == "1")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return writeDBError(c, "instructor", err)
	}
	var rows []model.InstructorModel
	if err := tx.Order("instructor_name ASC, instructor_id ASC").
		Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return writeDBError(c, "instructor", err)
	}

	out := make([]dto.InstructorResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromInstructor(r))
	}
	pg := helper.BuildPagination(total, p, len(out))
	return helper.JsonList(c, "ok", out, &pg)
}

// GET /instructors/:id
func (ctl *ResourceController) GetInstructor(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var m model.InstructorModel
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).First(&m, "instructor_id = ?", id).Error; err != nil {
		return writeDBError(c, "instructor", err)
	}
	return helper.JsonOK(c, "ok", dto.FromInstructor(m))
}

// POST /instructors
func (ctl *ResourceController) CreateInstructor(c *fiber.Ctx) error {
	var req dto.CreateInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if ok, err := ctl.validate(c, &req); !ok {
		return err
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(helper.ReqCtx(c)).Create(&m).Error; err != nil {
		return writeDBError(c, "instructor", err)
	}
	return helper.JsonCreated(c, "instructor dibuat", dto.FromInstructor(m))
}

// PATCH /instructors/:id
func (ctl *ResourceController) PatchInstructor(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.UpdateInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if ok, err := ctl.validate(c, &req); !ok {
		return err
	}

	db := ctl.DB.WithContext(helper.ReqCtx(c))
	var m model.InstructorModel
	if err := db.First(&m, "instructor_id = ?", id).Error; err != nil {
		return writeDBError(c, "instructor", err)
	}
	req.Apply(&m)
	if err := db.Save(&m).Error; err != nil {
		return writeDBError(c, "instructor", err)
	}
	ctl.invalidate(c)
	return helper.JsonUpdated(c, "instructor diperbarui", dto.FromInstructor(m))
}

// DELETE /instructors/:id (deactivate; existing classes keep their reference)
func (ctl *ResourceController) DeactivateInstructor(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	res := ctl.DB.WithContext(helper.ReqCtx(c)).Model(&model.InstructorModel{}).
		Where("instructor_id = ?", id).
		Update("instructor_is_active", false)
	if res.Error != nil {
		return writeDBError(c, "instructor", res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "instructor tidak ditemukan")
	}
	ctl.invalidate(c)
	return helper.JsonDeleted(c, "instructor dinonaktifkan", fiber.Map{"id": id})
}
