// file: internals/features/scheduling/classes/controller/class_controller.go
package controller

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/dto"
	classmodel "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/model"
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/httperr"
	instdto "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/dto"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
)

/* =======================================================
   CONTROLLER
   ======================================================= */

type ClassController struct {
	Svc      *classsvc.Scheduler
	Validate *validator.Validate
}

func NewClassController(svc *classsvc.Scheduler, v *validator.Validate) *ClassController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ClassController{Svc: svc, Validate: v}
}

func (ctl *ClassController) parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "id tidak valid")
	}
	return id, nil
}

// bind parses and validates the class body.
func (ctl *ClassController) bind(c *fiber.Ctx, req *dto.ClassRequest) (classmodel.Class, error) {
	req.Normalize()
	if err := ctl.Validate.Struct(req); err != nil {
		return classmodel.Class{}, err
	}
	return req.ToDomain()
}

func (ctl *ClassController) fail(c *fiber.Ctx, err error) error {
	if fields, ok := helper.ValidationFields(err); ok {
		return helper.JsonValidationError(c, fields)
	}
	return httperr.Write(c, err)
}

/* =======================================================
   READ
   ======================================================= */

// GET /classes?q=&instructor_id=&room_id=&class_type=&is_active=&page=&per_page=
func (ctl *ClassController) List(c *fiber.Ctx) error {
	var q dto.ListClassesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	instructorID, err := helper.QueryUUID(c, "instructor_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "instructor_id tidak valid")
	}
	roomID, err := helper.QueryUUID(c, "room_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "room_id tidak valid")
	}
	p := helper.ResolvePaging(c, 20, 200)

	rows, total, err := ctl.Svc.List(helper.ReqCtx(c), classmodel.ListQuery{
		Q:            strings.TrimSpace(q.Q),
		InstructorID: instructorID,
		RoomID:       roomID,
		Type:         classmodel.ClassType(strings.ToLower(strings.TrimSpace(q.ClassType))),
		IsActive:     q.IsActive,
		Limit:        p.Limit,
		Offset:       p.Offset,
	})
	if err != nil {
		return ctl.fail(c, err)
	}
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "ok", dto.FromClasses(rows), &pg)
}

// GET /classes/:id
func (ctl *ClassController) GetByID(c *fiber.Ctx) error {
	id, err := ctl.parseID(c)
	if err != nil {
		return ctl.fail(c, err)
	}
	cls, err := ctl.Svc.Get(helper.ReqCtx(c), id)
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromClass(cls))
}

// GET /classes/:id/instances?from=&to=
func (ctl *ClassController) Instances(c *fiber.Ctx) error {
	id, err := ctl.parseID(c)
	if err != nil {
		return ctl.fail(c, err)
	}
	from, err := helper.QueryDate(c, "from")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "from harus YYYY-MM-DD")
	}
	to, err := helper.QueryDate(c, "to")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "to harus YYYY-MM-DD")
	}
	rows, err := ctl.Svc.Instances(helper.ReqCtx(c), id, from, to)
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonOK(c, "ok", instdto.FromModels(rows))
}

/* =======================================================
   WRITE
   ======================================================= */

// POST /classes
func (ctl *ClassController) Create(c *fiber.Ctx) error {
	var req dto.ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	cls, err := ctl.bind(c, &req)
	if err != nil {
		return ctl.fail(c, err)
	}
	out, err := ctl.Svc.Create(helper.ReqCtx(c), cls, req.Force)
	if err != nil {
		return ctl.fail(c, err)
	}
	log.Printf("[INFO] class %s dibuat oleh %s (instances=%d, forced=%d)",
		out.Class.ID, helper.ActorLabel(c), out.Materialized.Created, len(out.Conflicts))
	return helper.JsonCreated(c, "class dibuat", dto.FromOutcome(out))
}

// PUT /classes/:id
func (ctl *ClassController) Update(c *fiber.Ctx) error {
	id, err := ctl.parseID(c)
	if err != nil {
		return ctl.fail(c, err)
	}
	var req dto.ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	cls, err := ctl.bind(c, &req)
	if err != nil {
		return ctl.fail(c, err)
	}
	out, err := ctl.Svc.Update(helper.ReqCtx(c), id, cls, req.Force)
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonUpdated(c, "class diperbarui", dto.FromOutcome(out))
}

// DELETE /classes/:id (soft deactivate)
func (ctl *ClassController) Deactivate(c *fiber.Ctx) error {
	id, err := ctl.parseID(c)
	if err != nil {
		return ctl.fail(c, err)
	}
	n, err := ctl.Svc.Deactivate(helper.ReqCtx(c), id)
	if err != nil {
		return ctl.fail(c, err)
	}
	log.Printf("[INFO] class %s dinonaktifkan oleh %s (cancelled=%d)", id, helper.ActorLabel(c), n)
	return helper.JsonDeleted(c, "class dinonaktifkan", fiber.Map{"id": id, "cancelled_instances": n})
}

// POST /classes/conflicts
func (ctl *ClassController) CheckConflicts(c *fiber.Ctx) error {
	var req dto.ConflictCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return ctl.fail(c, err)
	}
	subj, opt, err := req.ToSubject()
	if err != nil {
		return ctl.fail(c, err)
	}
	res, err := ctl.Svc.CheckConflicts(helper.ReqCtx(c), subj, opt)
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// POST /classes/conflicts/preview
func (ctl *ClassController) Preview(c *fiber.Ctx) error {
	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	cls, err := ctl.bind(c, &req.ClassRequest)
	if err != nil {
		return ctl.fail(c, err)
	}
	res, err := ctl.Svc.Preview(helper.ReqCtx(c), cls, req.ExcludeClassID)
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// POST /classes/:id/materialize?from=&to=
func (ctl *ClassController) Materialize(c *fiber.Ctx) error {
	id, err := ctl.parseID(c)
	if err != nil {
		return ctl.fail(c, err)
	}
	from, err := helper.QueryDate(c, "from")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "from harus YYYY-MM-DD")
	}
	to, err := helper.QueryDate(c, "to")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "to harus YYYY-MM-DD")
	}
	res, err := ctl.Svc.Materialize(helper.ReqCtx(c), id, from, to)
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonOK(c, "materialized", fiber.Map{
		"summary":   dto.FromResult(res),
		"instances": instdto.FromModels(res.Instances),
	})
}

// PATCH /classes/:id/status
func (ctl *ClassController) UpdateStatus(c *fiber.Ctx) error {
	id, err := ctl.parseID(c)
	if err != nil {
		return ctl.fail(c, err)
	}
	var req instdto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := ctl.Validate.Struct(&req); err != nil {
		return ctl.fail(c, err)
	}
	in, err := ctl.Svc.UpdateStatus(helper.ReqCtx(c), id, req.ToChange())
	if err != nil {
		return ctl.fail(c, err)
	}
	return helper.JsonUpdated(c, "status diperbarui", instdto.FromModel(in))
}
