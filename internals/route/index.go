package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/constants"
	calroute "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/route"
	calsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/service"
	classroute "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/route"
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	instroute "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/instances/route"
	resroute "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/resources/route"
	middlewares "github.com/fooldevoloper/scheuling-system-sub000/internals/middlewares"
	authMiddleware "github.com/fooldevoloper/scheuling-system-sub000/internals/middlewares/auth"
)

var startTime time.Time

// Deps is everything the route tree mounts handlers over.
type Deps struct {
	DB        *gorm.DB
	Scheduler *classsvc.Scheduler
	Calendar  *calsvc.Service
	JWTSecret string
	FeedDays  int
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	// ===================== GROUPS =====================

	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	log.Println("[INFO] Setting up PRIVATE (user) group...")
	user := app.Group("/api/u", authMiddleware.AuthJWT(d.JWTSecret))

	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(d.JWTSecret),
		authMiddleware.OnlyRoles(constants.RoleErrorScheduler("jadwal"), constants.SchedulingWriteRoles...),
		middlewares.WriteRateLimiter(),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Calendar routes...")
	calroute.CalendarPublicRoutes(public, d.Calendar, d.FeedDays)
	calroute.CalendarUserRoutes(user, d.Calendar, d.FeedDays)

	log.Println("[INFO] Mounting Class routes...")
	classroute.ClassUserRoutes(user, d.Scheduler)
	classroute.ClassAdminRoutes(admin, d.Scheduler)

	log.Println("[INFO] Mounting Instance routes...")
	instroute.InstanceUserRoutes(user, d.Scheduler)
	instroute.InstanceAdminRoutes(admin, d.Scheduler)

	log.Println("[INFO] Mounting Resource routes...")
	resroute.ResourceUserRoutes(user, d.DB)
	resroute.ResourceAdminRoutes(admin, d.DB, d.Calendar)
}
