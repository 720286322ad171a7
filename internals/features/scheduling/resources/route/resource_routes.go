// file: internals/features/scheduling/resources/route/resource_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ctrl "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/controller"
)

func ResourceUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := ctrl.NewResourceController(db, nil, nil)

	r.Get("/instructors", ctl.ListInstructors)
	r.Get("/instructors/:id", ctl.GetInstructor)
	r.Get("/room-types", ctl.ListRoomTypes)
	r.Get("/rooms", ctl.ListRooms)
	r.Get("/rooms/:id", ctl.GetRoom)
}

func ResourceAdminRoutes(admin fiber.Router, db *gorm.DB, cache ctrl.Invalidator) {
	ctl := ctrl.NewResourceController(db, nil, cache)

	ins := admin.Group("/instructors")
	ins.Post("/", ctl.CreateInstructor)
	ins.Patch("/:id", ctl.PatchInstructor)
	ins.Delete("/:id", ctl.DeactivateInstructor)

	rt := admin.Group("/room-types")
	rt.Post("/", ctl.CreateRoomType)
	rt.Patch("/:id", ctl.PatchRoomType)

	rooms := admin.Group("/rooms")
	rooms.Post("/", ctl.CreateRoom)
	rooms.Patch("/:id", ctl.PatchRoom)
	rooms.Delete("/:id", ctl.DeactivateRoom)
}
