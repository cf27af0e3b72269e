// Package server assembles the HTTP API from the repositories and modules.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studiobooking/internal/config"
	"studiobooking/internal/database"
	"studiobooking/internal/metrics"
	"studiobooking/internal/middleware"
	"studiobooking/internal/modules/auth"
	"studiobooking/internal/modules/booking"
	"studiobooking/internal/modules/catalog"
	jwtsvc "studiobooking/internal/pkg/jwt"
	"studiobooking/internal/repository"
	"studiobooking/internal/scheduling"
)

// NewRouter wires repositories, services and handlers on db. m may be nil
// when metrics are disabled.
func NewRouter(cfg *config.Config, db *gorm.DB, m *metrics.Metrics) *gin.Engine {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := repository.NewUserRepository(db)
	studioRepo := repository.NewStudioRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL.Duration)

	scheduler := scheduling.NewService(studioRepo, bookingRepo, database.NewTxManager(db))

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(
		studioRepo,
		equipmentRepo,
		bookingRepo,
		scheduler,
		catalog.DayWindow{OpenHour: cfg.Booking.OpenHour, CloseHour: cfg.Booking.CloseHour},
	)
	catalogHandler := catalog.NewHandler(catalogService)

	var recorder booking.Recorder
	if m != nil {
		recorder = m
	}
	bookingService := booking.NewService(scheduler, bookingRepo, userRepo, recorder, booking.RetryPolicy{
		MaxRetries: cfg.Booking.MaxRetries,
		Backoff:    cfg.Booking.RetryBackoff.Duration,
	})
	bookingHandler := booking.NewHandler(bookingService)

	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.HTTP.CORSAllowedOrigins))
	if m != nil {
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				authHandler.RegisterAdminRoutes(admin)
				catalogHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	return r
}
