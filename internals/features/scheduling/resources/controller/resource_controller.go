// file: internals/features/scheduling/resources/controller/resource_controller.go
package controller

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
)

/* =======================================================
   CONTROLLER
   ======================================================= */

// Invalidator drops cached calendar reads; renaming or deactivating a
// resource changes what the calendar shows.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// ResourceController serves instructors, room types and rooms straight
// over the DB. None of these writes touch bookings.
type ResourceController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Cache    Invalidator
}

func NewResourceController(db *gorm.DB, v *validator.Validate, cache Invalidator) *ResourceController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &ResourceController{DB: db, Validate: v, Cache: cache}
}

func (ctl *ResourceController) invalidate(c *fiber.Ctx) {
	if ctl.Cache != nil {
		ctl.Cache.Invalidate(helper.ReqCtx(c))
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := helper.ParseUUIDParam(c, "id")
	return id, err == nil
}

// validate writes the 422 body itself; callers return what it returns.
func (ctl *ResourceController) validate(c *fiber.Ctx, req any) (bool, error) {
	if err := ctl.Validate.Struct(req); err != nil {
		return false, helper.ValidationError(c, err)
	}
	return true, nil
}

func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

func isUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// writeDBError maps driver errors to responses.
func writeDBError(c *fiber.Ctx, entity string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, entity+" tidak ditemukan")
	case isFKViolation(err):
		return helper.JsonError(c, fiber.StatusBadRequest, entity+" merujuk data yang tidak ada")
	}
	if constraint, ok := isUniqueViolation(err); ok {
		msg := entity + " sudah ada"
		if constraint != "" {
			msg += " (" + constraint + ")"
		}
		return helper.JsonError(c, fiber.StatusConflict, msg)
	}
	log.Printf("[ERROR] %s: %v", entity, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
}
