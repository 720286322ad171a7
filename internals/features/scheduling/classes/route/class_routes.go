// file: internals/features/scheduling/classes/route/class_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	ctrl "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/controller"
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
)

// ClassUserRoutes: read-only, any signed-in user.
func ClassUserRoutes(r fiber.Router, svc *classsvc.Scheduler) {
	ctl := ctrl.NewClassController(svc, nil)

	g := r.Group("/classes")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Get("/:id/instances", ctl.Instances)
}

// ClassAdminRoutes: writes plus the conflict endpoints.
func ClassAdminRoutes(admin fiber.Router, svc *classsvc.Scheduler) {
	ctl := ctrl.NewClassController(svc, nil)

	g := admin.Group("/classes")
	// static paths before /:id
	g.Post("/conflicts", ctl.CheckConflicts)
	g.Post("/conflicts/preview", ctl.Preview)

	g.Post("/", ctl.Create)
	g.Put("/:id", ctl.Update)
	g.Delete("/:id", ctl.Deactivate)
	g.Post("/:id/materialize", ctl.Materialize)
	g.Patch("/:id/status", ctl.UpdateStatus)
}
