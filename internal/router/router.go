package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/handler"
	"github.com/noah-isme/egov-portal-api/internal/middleware"
	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/service"
	"github.com/noah-isme/egov-portal-api/pkg/config"
	"github.com/noah-isme/egov-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/egov-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/egov-portal-api/pkg/middleware/requestid"
)

// Handlers bundles every route handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Department   *handler.DepartmentHandler
	Catalog      *handler.CatalogHandler
	Request      *handler.RequestHandler
	Payment      *handler.PaymentHandler
	Document     *handler.DocumentHandler
	Notification *handler.NotificationHandler
	Report       *handler.ReportHandler
	Metrics      *handler.MetricsHandler
}

// New builds the gin engine with the full middleware chain and route table.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public routes.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	api.GET("/services", h.Catalog.List)
	api.GET("/services/:id", h.Catalog.Get)
	api.GET("/departments", h.Department.List)
	api.GET("/departments/:id", h.Department.Get)

	// Authenticated routes.
	authed := api.Group("")
	authed.Use(middleware.JWT(auth))

	authed.GET("/auth/profile", h.Auth.Profile)
	authed.PUT("/auth/profile", h.Auth.UpdateProfile)
	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	requests := authed.Group("/requests")
	{
		requests.POST("", h.Request.Create)
		requests.GET("", h.Request.List)
		requests.GET("/stats", h.Request.Stats)
		requests.GET("/:id", h.Request.Get)
		requests.PATCH("/:id/status", middleware.RequireStaff(), h.Request.UpdateStatus)
		requests.DELETE("/:id", h.Request.Delete)

		requests.POST("/:id/documents", h.Document.Upload)
		requests.GET("/:id/documents", h.Document.List)
		requests.GET("/:id/payment", h.Payment.GetByRequest)
	}

	authed.GET("/documents/:id/download", h.Document.Download)
	authed.DELETE("/documents/:id", h.Document.Delete)

	payments := authed.Group("/payments")
	{
		payments.POST("", h.Payment.Simulate)
		payments.GET("", h.Payment.List)
		payments.GET("/stats", middleware.RequireRoles(models.RoleAdmin), h.Payment.Stats)
		payments.GET("/:id", h.Payment.Get)
		payments.GET("/:id/receipt", h.Payment.Receipt)
		payments.POST("/:id/refund", middleware.RequireRoles(models.RoleAdmin), h.Payment.Refund)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread-count", h.Notification.UnreadCount)
		notifications.PATCH("/read-all", h.Notification.MarkAllRead)
		notifications.PATCH("/:id/read", h.Notification.MarkRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	staffUsers := authed.Group("/users")
	staffUsers.Use(middleware.RequireRoles(models.RoleDepartmentHead, models.RoleAdmin))
	{
		staffUsers.GET("", h.User.List)
		staffUsers.GET("/stats", middleware.RequireRoles(models.RoleAdmin), h.User.Stats)
		staffUsers.GET("/:id", h.User.Get)
		staffUsers.POST("", middleware.RequireRoles(models.RoleAdmin), h.User.Create)
		staffUsers.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.User.Update)
		staffUsers.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.User.Deactivate)
	}

	adminCatalog := authed.Group("/services")
	adminCatalog.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		adminCatalog.POST("", h.Catalog.Create)
		adminCatalog.PUT("/:id", h.Catalog.Update)
		adminCatalog.DELETE("/:id", h.Catalog.Delete)
	}

	adminDepartments := authed.Group("/departments")
	adminDepartments.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		adminDepartments.POST("", h.Department.Create)
		adminDepartments.PUT("/:id", h.Department.Update)
		adminDepartments.DELETE("/:id", h.Department.Delete)
	}

	reports := authed.Group("/reports")
	reports.Use(middleware.RequireRoles(models.RoleDepartmentHead, models.RoleAdmin))
	{
		reports.GET("/dashboard", h.Report.Dashboard)
		reports.GET("/requests/export", h.Report.ExportRequests)
	}

	return r
}
