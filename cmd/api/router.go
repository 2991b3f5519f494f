package main

import (
	"context"
	"net/http"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/events"
	"tierraalta/internal/metrics"
	"tierraalta/internal/middleware"
	"tierraalta/internal/modules/auth"
	"tierraalta/internal/modules/hotelservice"
	"tierraalta/internal/modules/notification"
	"tierraalta/internal/modules/payment"
	"tierraalta/internal/modules/reservation"
	"tierraalta/internal/modules/room"
	"tierraalta/internal/modules/roomboard"
	"tierraalta/internal/pkg/jwt"
	"tierraalta/internal/ratelimit"
	"tierraalta/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type app struct {
	router *gin.Engine
	bus    *events.EventBus
	hub    *roomboard.Hub
}

// newApp wires services, the event bus and every route. limiter may be nil.
func newApp(cfg *config.Config, db *gorm.DB, limiter ratelimit.Limiter, log *zerolog.Logger) *app {
	bus := events.NewEventBus()
	bus.OnError(func(e *events.Event, err error) {
		log.Warn().Err(err).Str("event", e.Type).Msg("event handler failed")
	})
	for _, t := range events.AllTypes {
		bus.Subscribe(t, func(e *events.Event) error {
			metrics.IncEvent(e.Type)
			return nil
		})
	}
	hub := roomboard.NewHub(log)
	hub.Subscribe(bus)
	notificationService := notification.NewService(repository.NewNotificationRepository(db), log)
	notificationService.Subscribe(bus)

	tokens := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	provider := cfg.Payments.Provider

	authService := auth.NewService(repository.NewUserRepository(db), tokens, cfg.Auth.BcryptCost, log)
	roomService := room.NewService(db, cfg.Booking, bus, log)
	reservationService := reservation.NewService(db, cfg.Booking, provider, bus, log)
	hotelService := hotelservice.NewService(db, cfg.Booking, provider, bus, log)
	paymentService := payment.NewService(repository.NewPaymentRepository(db), reservationService, hotelService, log)

	var limit gin.HandlerFunc
	if limiter != nil {
		limit = middleware.RateLimit(limiter, log)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.HTTP.AllowedOrigins))
	if cfg.Monitoring.PrometheusEnabled {
		r.Use(middleware.Metrics())
	}

	r.GET("/health", health(db, cfg))

	v1 := r.Group("/api/v1")
	protected := v1.Group("", middleware.JWTAuth(tokens))

	authHandler := auth.NewHandler(authService)
	authHandler.RegisterPublicRoutes(v1, limit)
	authHandler.RegisterProtectedRoutes(protected)

	notification.NewHandler(notificationService).RegisterRoutes(protected)
	room.NewHandler(roomService).RegisterRoutes(v1, protected)
	reservation.NewHandler(reservationService).RegisterRoutes(v1, protected, limit)
	hotelservice.NewHandler(hotelService).RegisterRoutes(v1, protected, limit)
	roomboard.NewHandler(hub, tokens, repository.NewRoomRepository(db), cfg.HTTP.AllowedOrigins).RegisterRoutes(v1)

	internal := v1.Group("/internal", middleware.InternalTokenAuth(cfg.Payments.InternalToken, log))
	payment.NewHandler(paymentService).RegisterInternalRoutes(internal)

	return &app{router: r, bus: bus, hub: hub}
}

func health(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "version": cfg.App.Version})
	}
}
