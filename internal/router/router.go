// Package router wires handlers and middleware into a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"ginkit/internal/auth"
	"ginkit/internal/config"
	"ginkit/internal/handlers"
	"ginkit/internal/metrics"
	"ginkit/internal/middleware"
	"ginkit/internal/models"
	"ginkit/internal/services"
	"ginkit/internal/validator"

	_ "ginkit/internal/docs" // swagger docs
)

// Deps are the collaborators the routes need.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Issuer *auth.Issuer
}

// New builds the gin engine with every API route mounted.
func New(deps Deps) *gin.Engine {
	validator.Register()

	errOpts := middleware.ErrorOptions{IncludeDetail: !deps.Config.IsProduction()}

	// Initialize services
	userService := services.NewUserService(deps.DB)
	customerService := services.NewCustomerService(deps.DB)
	orderService := services.NewOrderService(deps.DB, customerService)
	auditService := services.NewAuditService(deps.DB)
	logService := services.NewLogService(deps.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	orderHandler := handlers.NewOrderHandler(orderService)
	auditHandler := handlers.NewAuditHandler(auditService)
	logHandler := handlers.NewLogHandler(logService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Recovery(errOpts))
	router.Use(middleware.ErrorHandler(errOpts))
	router.Use(middleware.Metrics())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.APIKey(deps.Config.MetricsAPIKey), gin.WrapH(metrics.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/token", middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: deps.Config.RateLimit.TokenRPS,
		Burst:             deps.Config.RateLimit.TokenBurst,
	}), auth.TokenHandler(deps.Issuer))
	v1.POST("/auth/register", authHandler.Register)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(auth.Bearer(deps.Issuer))

	protected.GET("/profile", authHandler.GetProfile)

	customers := protected.Group("/customers")
	customers.POST("", customerHandler.CreateCustomer)
	customers.GET("", customerHandler.GetCustomers)
	customers.GET("/:id", customerHandler.GetCustomerByID)
	customers.PUT("/:id", customerHandler.UpdateCustomer)
	customers.DELETE("/:id", customerHandler.DeleteCustomer)

	orders := protected.Group("/orders")
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("", orderHandler.GetOrders)
	orders.GET("/:id", orderHandler.GetOrderByID)
	orders.PUT("/:id", orderHandler.UpdateOrder)
	orders.DELETE("/:id", orderHandler.DeleteOrder)

	auditGroup := protected.Group("/audit")
	auditGroup.GET("", auditHandler.ListEntries)
	auditGroup.GET("/:id", auditHandler.GetEntry)

	protected.GET("/logs", auth.RequireRole(models.RoleAdmin), logHandler.RecentLogs)

	return router
}
