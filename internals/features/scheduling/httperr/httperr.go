// Package httperr writes scheduling errors as JSON envelopes.
package httperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/conflicts"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/schederr"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
)

// Write maps err onto a status:
//
//	InvalidRecurrenceError, ValidationError  422
//	NotFoundError                            404
//	ConflictDetectedError                    409 (details = conflicts)
//	ConcurrentBookingError                   409
//	*fiber.Error                             its own code
//	anything else                            500
func Write(c *fiber.Ctx, err error) error {
	var (
		rec *schederr.InvalidRecurrenceError
		val *schederr.ValidationError
		nf  *schederr.NotFoundError
		cd  *conflicts.ConflictDetectedError
		cb  *schederr.ConcurrentBookingError
		fe  *fiber.Error
	)
	switch {
	case errors.As(err, &rec):
		return helper.JsonValidationError(c, rec.Fields)
	case errors.As(err, &val):
		return helper.JsonValidationError(c, val.Fields)
	case errors.As(err, &nf):
		return helper.JsonError(c, fiber.StatusNotFound, nf.Error())
	case errors.As(err, &cd):
		return helper.JsonErrorDetails(c, fiber.StatusConflict, cd.Error(), fiber.Map{"conflicts": cd.Conflicts})
	case errors.As(err, &cb):
		return helper.JsonError(c, fiber.StatusConflict, "slot was booked concurrently, retry")
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "internal error")
}
