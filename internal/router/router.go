// Package router assembles the gin engine: middleware, rate limits and the
// /api/v1 route table.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"finanzas-be/internal/config"
	"finanzas-be/internal/controllers"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/middleware"
	"finanzas-be/internal/service"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services are the collaborators the HTTP layer needs
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CategoryService
	Movements  service.MovementService
	Reports    service.ReportService
}

// Router owns the engine and the rate limiters behind it
type Router struct {
	Engine   *gin.Engine
	limiters []*middleware.RateLimiter
}

// New builds the engine. Call Close when the server stops.
func New(cfg *config.Config, svc Services, db Pinger, logger *logging.Logger) *Router {
	authController := controllers.NewAuthController(svc.Auth, svc.Users)
	userController := controllers.NewUserController(svc.Users, svc.Auth)
	categoryController := controllers.NewCategoryController(svc.Categories)
	movementController := controllers.NewMovementController(svc.Movements)
	reportController := controllers.NewReportController(svc.Reports)

	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, logger)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst, logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.SecurityHeaders())

	// Health check endpoint (no rate limiting)
	engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.AuthMiddleware(svc.Auth)

	api := engine.Group("/api/v1")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Auth routes with stricter rate limiting
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.GET("/check-username", authController.CheckUsername)
			auth.GET("/check-email", authController.CheckEmail)
			auth.POST("/logout", requireAuth, authController.Logout)
			auth.GET("/session", requireAuth, authController.Session)
		}

		protected := api.Group("")
		protected.Use(requireAuth)
		{
			users := protected.Group("/users/me")
			users.GET("", userController.Me)
			users.PUT("", userController.UpdateProfile)
			users.PUT("/password", userController.ChangePassword)
			users.POST("/deactivate", userController.Deactivate)

			categories := protected.Group("/categories")
			categories.GET("", categoryController.List)
			categories.GET("/predefined", categoryController.ListPredefined)
			categories.GET("/custom", categoryController.ListCustom)
			categories.GET("/expenses", categoryController.ListForExpenses)
			categories.GET("/incomes", categoryController.ListForIncome)
			categories.GET("/search", categoryController.Search)
			categories.GET("/empty", categoryController.ListEmpty)
			categories.GET("/with-movements", categoryController.ListWithMovements)
			categories.GET("/:id", categoryController.Get)
			categories.POST("", categoryController.Create)
			categories.PUT("/:id", categoryController.Update)
			categories.DELETE("/:id", categoryController.Delete)

			movements := protected.Group("/movements")
			movements.GET("", movementController.List)
			movements.GET("/recent", movementController.ListRecent)
			movements.GET("/type/:type", movementController.ListByType)
			movements.GET("/category/:categoryId", movementController.ListByCategory)
			movements.GET("/period", movementController.ListByPeriod)
			movements.GET("/search", movementController.Search)
			movements.GET("/balance", movementController.Balance)
			movements.GET("/statistics", movementController.Statistics)
			movements.GET("/expenses-by-category", movementController.ExpensesByCategory)
			movements.GET("/:id", movementController.Get)
			movements.POST("/expenses", movementController.RecordExpense)
			movements.POST("/incomes", movementController.RecordIncome)
			movements.PUT("/:id", movementController.Update)
			movements.DELETE("/:id", movementController.Delete)

			reports := protected.Group("/reports")
			reports.GET("/monthly", reportController.Monthly)
			reports.GET("/monthly/text", reportController.MonthlyText)
		}
	}

	return &Router{
		Engine:   engine,
		limiters: []*middleware.RateLimiter{generalRateLimiter, authRateLimiter},
	}
}

// Close stops the rate limiters' background cleanup
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Stop()
	}
}
