// file: internals/features/scheduling/calendar/controller/calendar_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	calsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/httperr"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/dbtime"
)

type CalendarController struct {
	Svc *calsvc.Service

	// FeedDays is the window of the .ics feed when from/to are omitted.
	FeedDays int
	Now      func() time.Time
}

func NewCalendarController(svc *calsvc.Service, feedDays int) *CalendarController {
	return &CalendarController{Svc: svc, FeedDays: feedDays, Now: time.Now}
}

func parseQuery(c *fiber.Ctx) (calsvc.Query, error) {
	var q calsvc.Query
	from, err := helper.QueryDate(c, "from")
	if err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "from harus YYYY-MM-DD")
	}
	to, err := helper.QueryDate(c, "to")
	if err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "to harus YYYY-MM-DD")
	}
	if q.InstructorID, err = helper.QueryUUID(c, "instructor_id"); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "instructor_id tidak valid")
	}
	if q.RoomID, err = helper.QueryUUID(c, "room_id"); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "room_id tidak valid")
	}
	if from != nil {
		q.From = *from
	}
	if to != nil {
		q.To = *to
	}
	return q, nil
}

// GET /calendar?from=&to=&instructor_id=&room_id=
func (ctl *CalendarController) Range(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return httperr.Write(c, err)
	}
	cal, err := ctl.Svc.OccurrencesInRange(helper.ReqCtx(c), q)
	if err != nil {
		return httperr.Write(c, err)
	}
	return helper.JsonOK(c, "ok", cal)
}

// GET /calendar.ics; from/to default to [today, today+FeedDays].
func (ctl *CalendarController) ICS(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return httperr.Write(c, err)
	}
	today := dbtime.Today(ctl.Now(), ctl.Svc.Location)
	if q.From.IsZero() {
		q.From = today
	}
	if q.To.IsZero() {
		q.To = dbtime.AddDays(q.From, ctl.FeedDays)
	}
	body, err := ctl.Svc.ICS(helper.ReqCtx(c), q)
	if err != nil {
		return httperr.Write(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="classes.ics"`)
	return c.SendString(body)
}
