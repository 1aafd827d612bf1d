package router

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/privacy-admin-api/internal/handler"
	"github.com/noah-isme/privacy-admin-api/internal/middleware"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/service"
	"github.com/noah-isme/privacy-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/privacy-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/privacy-admin-api/pkg/middleware/requestid"
)

// Config controls the engine-level concerns of the router.
type Config struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
}

// Handlers bundles every HTTP handler mounted by the router.
type Handlers struct {
	Health        *handler.HealthHandler
	Jurisdictions *handler.JurisdictionHandler
	Deadlines     *handler.DeadlineHandler
	DSARs         *handler.DSARHandler
	Breaches      *handler.BreachHandler
	Complaints    *handler.ComplaintHandler
	Consents      *handler.ConsentHandler
	ROPA          *handler.ROPAHandler
	Officers      *handler.OfficerHandler
	Notifications *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
	Exports       *handler.ExportHandler
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Deps carries the cross-cutting collaborators of the middleware chain.
type Deps struct {
	Logger    *zap.Logger
	Metrics   *service.MetricsService
	Validator middleware.TokenValidator
	Audit     auditWriter
}

// New builds the gin engine with every route registered.
func New(cfg Config, deps Deps, h Handlers) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics, "/metrics"))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta(), middleware.JWT(deps.Validator))

	// Marking a notification read is a personal action, so any role may do it.
	notifications := api.Group("/notifications", middleware.RequireRoles(middleware.ReadRoles...))
	notifications.GET("", h.Notifications.List)
	notifications.POST("/:id/read", h.Notifications.MarkRead)

	registers := api.Group("", middleware.ReadOrWrite())

	audited := func(g *gin.RouterGroup, resource string) *gin.RouterGroup {
		g.Use(middleware.Audit(deps.Audit, resource, deps.Logger))
		return g
	}

	jurisdictions := audited(registers.Group("/jurisdictions"), "jurisdictions")
	jurisdictions.GET("", h.Jurisdictions.List)
	jurisdictions.POST("", h.Jurisdictions.Create)
	jurisdictions.GET("/:code", h.Jurisdictions.Get)
	jurisdictions.PUT("/:code", h.Jurisdictions.Update)
	jurisdictions.DELETE("/:code", h.Jurisdictions.Delete)
	jurisdictions.POST("/:code/toggle", h.Jurisdictions.Toggle)

	deadlines := registers.Group("/deadlines")
	deadlines.GET("/dsar", h.Deadlines.DSAR)
	deadlines.GET("/breach", h.Deadlines.Breach)

	dsars := audited(registers.Group("/dsars"), "dsars")
	dsars.GET("", h.DSARs.List)
	dsars.POST("", h.DSARs.Create)
	dsars.GET("/:id", h.DSARs.Get)
	dsars.PUT("/:id", h.DSARs.Update)
	dsars.POST("/:id/transition", h.DSARs.Transition)

	breaches := audited(registers.Group("/breaches"), "breaches")
	breaches.GET("", h.Breaches.List)
	breaches.POST("", h.Breaches.Create)
	breaches.GET("/:id", h.Breaches.Get)
	breaches.PUT("/:id", h.Breaches.Update)
	breaches.POST("/:id/transition", h.Breaches.Transition)
	breaches.POST("/:id/notify-regulator", h.Breaches.NotifyRegulator)

	complaints := audited(registers.Group("/complaints"), "complaints")
	complaints.GET("", h.Complaints.List)
	complaints.POST("", h.Complaints.Create)
	complaints.GET("/:id", h.Complaints.Get)
	complaints.PUT("/:id", h.Complaints.Update)
	complaints.POST("/:id/transition", h.Complaints.Transition)

	consents := audited(registers.Group("/consents"), "consents")
	consents.GET("", h.Consents.List)
	consents.POST("", h.Consents.Create)
	consents.GET("/:id", h.Consents.Get)
	consents.PUT("/:id", h.Consents.Update)
	consents.POST("/:id/transition", h.Consents.Transition)

	ropa := audited(registers.Group("/ropa"), "ropa")
	ropa.GET("", h.ROPA.List)
	ropa.POST("", h.ROPA.Create)
	ropa.GET("/:id", h.ROPA.Get)
	ropa.PUT("/:id", h.ROPA.Update)
	ropa.POST("/:id/transition", h.ROPA.Transition)

	officers := audited(registers.Group("/officers"), "officers")
	officers.GET("", h.Officers.List)
	officers.POST("", h.Officers.Create)
	officers.GET("/:id", h.Officers.Get)
	officers.PUT("/:id", h.Officers.Update)
	officers.DELETE("/:id", h.Officers.Delete)
	officers.POST("/:id/toggle", h.Officers.Toggle)

	registers.GET("/dashboard/summary", h.Dashboard.Summary)
	registers.GET("/exports/:register", h.Exports.Export)

	return r
}
