package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/database"
	"github.com/iliyamo/parking-spot-reservation/internal/engine"
	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/iliyamo/parking-spot-reservation/internal/queue"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
	"github.com/iliyamo/parking-spot-reservation/internal/router"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	facilityRepo := repository.NewFacilityRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	// Capacity engine. The index must reflect persisted reservations
	// before any request is served.
	eng := engine.New(facilityRepo, reservationRepo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n, err := eng.Rebuild(ctx)
	if err != nil {
		log.Fatalf("engine rebuild: %v", err)
	}
	log.Printf("engine: index rebuilt with %d active reservations", n)
	eng.StartExpiryWorker(ctx,
		time.Duration(cfg.ExpirySweepSec)*time.Second,
		time.Duration(cfg.PendingTTLMin)*time.Minute)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	customerHandler := handler.NewCustomerHandler(eng, facilityRepo, locationRepo, reservationRepo)
	paymentHandler := handler.NewPaymentHandler(eng, reservationRepo, paymentRepo, facilityRepo, locationRepo)
	adminHandler := handler.NewAdminHandler(eng, locationRepo, facilityRepo, reservationRepo)

	e := echo.New()

	// Redis-backed rate limiting and response caching. Both degrade to
	// no-ops when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, customerHandler)
	router.RegisterCustomer(e, customerHandler, paymentHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// Background consumer that appends confirmed reservations to the
	// audit log. Runs its own reconnect loop.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
