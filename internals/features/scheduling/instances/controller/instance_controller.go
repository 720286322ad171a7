// file: internals/features/scheduling/instances/controller/instance_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/httperr"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/dto"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
)

type InstanceController struct {
	Svc      *classsvc.Scheduler
	Validate *validator.Validate
}

func NewInstanceController(svc *classsvc.Scheduler, v *validator.Validate) *InstanceController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &InstanceController{Svc: svc, Validate: v}
}

// GET /class-instances/:id
func (ctl *InstanceController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	in, err := ctl.Svc.Instance(helper.ReqCtx(c), id)
	if err != nil {
		return httperr.Write(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(in))
}

// POST /class-instances/:id/reschedule
func (ctl *InstanceController) Reschedule(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	r, err := req.ToReschedule()
	if err != nil {
		return httperr.Write(c, err)
	}
	in, err := ctl.Svc.Reschedule(helper.ReqCtx(c), id, r)
	if err != nil {
		return httperr.Write(c, err)
	}
	return helper.JsonUpdated(c, "instance dijadwalkan ulang", dto.FromModel(in))
}
