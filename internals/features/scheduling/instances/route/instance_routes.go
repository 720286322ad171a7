// file: internals/features/scheduling/instances/route/instance_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"

	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	ctrl "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/controller"
)

func InstanceUserRoutes(r fiber.Router, svc *classsvc.Scheduler) {
	ctl := ctrl.NewInstanceController(svc, nil)
	r.Get("/class-instances/:id", ctl.GetByID)
}

func InstanceAdminRoutes(admin fiber.Router, svc *classsvc.Scheduler) {
	ctl := ctrl.NewInstanceController(svc, nil)
	admin.Post("/class-instances/:id/reschedule", ctl.Reschedule)
}
