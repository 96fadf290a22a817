package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/fitlink/class-booking/internal/config"
	"github.com/fitlink/class-booking/internal/database"
	"github.com/fitlink/class-booking/internal/handler"
	"github.com/fitlink/class-booking/internal/middleware"
	"github.com/fitlink/class-booking/internal/queue"
	"github.com/fitlink/class-booking/internal/repository"
	"github.com/fitlink/class-booking/internal/router"
	"github.com/fitlink/class-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // missing .env is fine; real envs set vars directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	// Repositories over the shared *sql.DB.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	classes := repository.NewClassRepo(db)
	bookings := repository.NewBookingRepo(db)
	conversations := repository.NewConversationRepo(db)
	messages := repository.NewMessageRepo(db)

	// Domain services.
	pub := queue.NewPublisher()
	linker := service.NewThreadLinker(conversations, messages, pub)
	availability := service.NewAvailability(classes, bookings)
	orchestrator := service.NewBookings(users, classes, bookings, linker, pub, cfg.BookingWindowDays)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	trainerH := handler.NewTrainerHandler(classes, bookings, orchestrator)
	studentH := handler.NewStudentHandler(orchestrator, bookings)
	publicH := handler.NewPublicHandler(classes, availability, cfg.BookingWindowDays)
	convH := handler.NewConversationHandler(conversations, messages, linker)

	e := echo.New()

	// Redis backs both the token-bucket rate limiter and the public
	// response cache.
	rdb := config.NewRedisClient()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterTrainer(e, trainerH, cfg.JWTSecret)
	router.RegisterStudent(e, studentH, cfg.JWTSecret)
	router.RegisterMessaging(e, convH, cfg.JWTSecret)
	if rdb != nil {
		router.RegisterPublic(e, publicH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		router.RegisterPublic(e, publicH)
	}

	// Background consumer turning booking/message events into
	// notification log entries.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
