package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bmkl23/taxi-management-system/internal/adapter/handler"
	"github.com/bmkl23/taxi-management-system/internal/adapter/logger"
	"github.com/bmkl23/taxi-management-system/internal/adapter/storage/memory"
	"github.com/bmkl23/taxi-management-system/internal/adapter/storage/postgres"
	redisadapter "github.com/bmkl23/taxi-management-system/internal/adapter/storage/redis"
	"github.com/bmkl23/taxi-management-system/internal/adapter/websocket"
	"github.com/bmkl23/taxi-management-system/internal/config"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
	"github.com/bmkl23/taxi-management-system/internal/core/service"
	"github.com/bmkl23/taxi-management-system/internal/core/service/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	appLogger, _ := logger.New(cfg.Env)
	defer appLogger.Sync()

	var (
		bookings port.BookingStore
		drivers  port.DriverRegistry
		users    port.UserStore
		presence port.Presence
	)

	switch cfg.Store {
	case "memory":
		appLogger.Info("using in-memory stores")
		presence = memory.NewPresence()
		bookings = memory.NewBookingStore()
		drivers = memory.NewDriverStore(presence)
		users = memory.NewUserStore()
	default:
		pool, err := pgxpool.New(context.Background(), cfg.DBUrl)
		if err != nil {
			appLogger.Fatal("unable to create db pool", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			appLogger.Fatal("cannot connect to db", zap.Error(err))
		}
		if err := postgres.Migrate(context.Background(), pool); err != nil {
			appLogger.Fatal("migration failed", zap.Error(err))
		}
		appLogger.Info("connected to database via pgxpool")

		redisOpts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			appLogger.Fatal("invalid redis url", zap.Error(err))
		}
		rdb := goredis.NewClient(redisOpts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			appLogger.Fatal("cannot connect to redis", zap.Error(err))
		}

		presence = redisadapter.NewPresenceStore(rdb)
		bookings = postgres.NewBookingStore(pool)
		drivers = postgres.NewDriverStore(pool, presence)
		users = postgres.NewUserStore(pool)
	}

	hub := websocket.NewHub(drivers, presence, appLogger)

	authSvc := service.NewAuthService(cfg.JWTSecret)
	fare := pricing.NewStandardStrategy()

	dispatchSvc := service.NewDispatchService(bookings, drivers, hub, fare, appLogger)
	if cfg.OfferTimeout > 0 {
		dispatchSvc.WithOfferTimeout(cfg.OfferTimeout)
	}
	hub.SetService(dispatchSvc)

	statusSvc := service.NewStatusService(bookings, drivers, hub, appLogger)
	if cfg.StrictTransitions {
		statusSvc.WithStrictTransitions()
	}

	go hub.Run()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "UP", "env": cfg.Env})
	})

	handler.RegisterRoutes(r, authSvc,
		handler.NewUserHandler(users, authSvc),
		handler.NewDriverHandler(drivers, hub, authSvc),
		handler.NewBookingHandler(dispatchSvc, statusSvc, bookings, drivers),
		hub,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		appLogger.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("server exiting")
}
