package handlers

import (
	"github.com/SscSPs/travel_backoffice/cmd/docs"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouterDeps carries the optional infrastructure the routes use. Any field may be nil.
type RouterDeps struct {
	Analytics    *analytics.Client
	APILimiter   *limiter.Limiter
	LoginLimiter *limiter.Limiter
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouterDeps,
) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services, deps.Analytics, deps.LoginLimiter)

	setupAPIV1Routes(r, cfg, services, deps)

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	deps RouterDeps,
) {
	// API tokens are checked first; AuthMiddleware lets those requests through
	v1 := r.Group("/api/v1",
		middleware.APITokenAuth(service.APIToken),
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
	)
	if deps.APILimiter != nil {
		v1.Use(middleware.RateLimit(deps.APILimiter))
	}
	v1.Use(middleware.PosthogMiddleware(deps.Analytics))

	registerUserRoutes(v1, service.User)
	RegisterAPITokenRoutes(v1, service.APIToken)

	registerRelationRoutes(v1, service.Relation)
	registerBoxRoutes(v1, service.Box)
	registerChannelRoutes(v1, service.Channel)

	registerVoucherRoutes(v1, service.Voucher, deps.Analytics)
	registerAuditRoutes(v1, service.Audit)

	registerBookingRoutes(v1, service.Booking, service.Attachments, deps.Analytics)
	registerVisaRoutes(v1, service.Visa, service.Attachments)
	registerSubscriptionRoutes(v1, service.Subscription)
	registerSegmentRoutes(v1, service.Segment)
	registerNotificationRoutes(v1, service.Notification)

	registerReportingRoutes(v1, service.Reporting)
	registerExtractionRoutes(v1, service.Extraction, deps.Analytics)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
