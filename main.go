package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/configs"
	database "github.com/fooldevoloper/scheuling-system-sub000/internals/databases"
	calsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/calendar/service"
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/jobs"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/repository"
	helper "github.com/fooldevoloper/scheuling-system-sub000/internals/helpers"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/helpers/cache"
	middlewares "github.com/fooldevoloper/scheuling-system-sub000/internals/middlewares"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/middlewares/logger"
	routes "github.com/fooldevoloper/scheuling-system-sub000/internals/route"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/seeds"
)

// errorHandler renders errors that escape a handler (fiber.NewError from
// middlewares, unmatched routes) in the same envelope as the controllers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Terjadi kesalahan pada server"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	}
	return helper.JsonError(c, code, msg)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	configs.LoadEnv()

	sched, err := configs.LoadScheduling(configs.SchedulingConfigPath)
	if err != nil {
		log.Fatalf("❌ Scheduling config: %v", err)
	}
	loc, _ := sched.Location()
	log.Printf("✅ Scheduling: tz=%s horizon=%dd conflict_horizon=%dd", sched.Timezone, sched.HorizonDays, sched.ConflictHorizonDays)

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            errorHandler,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          splitCSV(configs.GetEnv("TRUSTED_PROXIES", "0.0.0.0/0")),
	})

	// ⚙️ middleware dasar + performa
	app.Use(middlewares.RecoveryMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timeout guard (selaras dengan statement_timeout di DB)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("requestid", id)
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})
	app.Use(logger.LoggerMiddleware(sched.Timezone))
	app.Use(middlewares.CorsMiddleware(splitCSV(configs.CORSOrigins)))
	app.Use(middlewares.GlobalRateLimiter())

	// 🔌 DB connect + migrate
	db, err := database.Connect(configs.LoadDBConfig())
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ Migrasi gagal: %v", err)
	}
	if sched.RunSeeds {
		if _, err := seeds.RunAllSeeds(db, sched.SeedsFile); err != nil {
			log.Printf("❌ Seed gagal: %v", err)
		}
	}

	// 🧠 cache kalender (Redis kalau ada)
	var store cache.Store = cache.Noop{}
	rdb := configs.ConnectRedis(configs.RedisAddr)
	if rdb != nil {
		store = cache.NewRedis(rdb)
	}

	repo := repository.New(db)
	calendar := calsvc.New(repo, repo, store, sched.CalendarCacheTTL, sched.MaxWindowDays, loc)
	scheduler := classsvc.New(repo, repo, calendar, classsvc.Settings{
		HorizonDays:         sched.HorizonDays,
		ConflictHorizonDays: sched.ConflictHorizonDays,
		MaxWindowDays:       sched.MaxWindowDays,
		Location:            loc,
	})

	// ✅ Routes
	routes.SetupRoutes(app, routes.Deps{
		DB:        db,
		Scheduler: scheduler,
		Calendar:  calendar,
		JWTSecret: configs.JWTSecret,
		FeedDays:  sched.CalendarFeedDays,
	})

	// ⏱ horizon job setelah DB siap
	horizon := jobs.HorizonJob{Extender: scheduler}
	cr, err := jobs.StartHorizonCron(horizon, sched.HorizonCron, loc)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	go func() {
		_, _ = horizon.Run(context.Background())
	}()

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", configs.Port)
		if err := app.Listen("0.0.0.0:" + configs.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: cron, http, redis, pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")

	select {
	case <-cr.Stop().Done():
	case <-time.After(10 * time.Second):
		log.Println("[WARN] horizon job masih berjalan, lanjut shutdown")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if rdb != nil {
		_ = rdb.Close()
	}
	database.Close(db)
}
