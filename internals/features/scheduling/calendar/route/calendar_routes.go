// file: internals/features/scheduling/calendar/route/calendar_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	ctrl "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/controller"
	calsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/service"
)

// CalendarPublicRoutes mounts the subscribable feed; calendar clients
// cannot send a bearer token.
func CalendarPublicRoutes(public fiber.Router, svc *calsvc.Service, feedDays int) {
	ctl := ctrl.NewCalendarController(svc, feedDays)
	public.Get("/calendar.ics", ctl.ICS)
}

func CalendarUserRoutes(r fiber.Router, svc *calsvc.Service, feedDays int) {
	ctl := ctrl.NewCalendarController(svc, feedDays)
	g := r.Group("/calendar")
	g.Get("/", ctl.Range)
	g.Get("/ics", ctl.ICS)
}
