package routes

import (
	"log"
	"time"

	"tiendita-backend/engine"
	"tiendita-backend/handlers"
	"tiendita-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, dispatcher engine.Dispatcher) {
	// The confirmation presenter and status machine are shared by every
	// handler so auto-accepted and manually accepted orders behave the same.
	presenter := engine.NewConfirmationPresenter(engine.ConfirmationLifetime, func(ev engine.ConfirmationEvent) {
		log.Printf("confirmation for order %s expired", ev.OrderNumber)
	})
	machine := engine.NewMachine(dispatcher, presenter)

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	orderHandler := &handlers.OrderHandler{DB: db, Machine: machine}
	merchantHandler := &handlers.MerchantHandler{DB: db, Presenter: presenter}
	menuHandler := &handlers.MenuHandler{DB: db}

	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes, rate limited to slow down credential stuffing
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)

		// Public storefront routes
		api.GET("/businesses/:slug", merchantHandler.GetBusiness)
		api.GET("/businesses/:slug/availability", merchantHandler.GetAvailability)
		api.GET("/businesses/:slug/menu", menuHandler.GetBusinessMenu)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		// Order routes
		protected.POST("/orders", orderHandler.CreateOrder)
		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/transitions", orderHandler.GetOrderTransitions)
		protected.GET("/orders/:id", orderHandler.GetOrder)
	}

	// Merchant portal routes (require a merchant role with a business)
	merchant := api.Group("/merchant")
	merchant.Use(middleware.AuthMiddleware())
	merchant.Use(middleware.MerchantMiddleware())
	{
		merchant.GET("/me", merchantHandler.GetMyBusiness)
		merchant.PUT("/me", merchantHandler.UpdateMyBusiness)

		merchant.GET("/hours", merchantHandler.GetStoreHours)
		merchant.PUT("/hours", merchantHandler.UpdateStoreHours)

		merchant.GET("/settings", merchantHandler.GetOrderSettings)
		merchant.PUT("/settings", merchantHandler.UpdateOrderSettings)

		merchant.GET("/orders", orderHandler.GetOrders)
		merchant.GET("/orders/:id", orderHandler.GetOrder)
		merchant.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		merchant.GET("/confirmation", merchantHandler.GetConfirmation)
		merchant.DELETE("/confirmation", merchantHandler.DismissConfirmation)

		merchant.GET("/menu", menuHandler.GetMyMenu)
		merchant.POST("/menu/categories", menuHandler.CreateCategory)
		merchant.PUT("/menu/categories/:id", menuHandler.UpdateCategory)
		merchant.DELETE("/menu/categories/:id", menuHandler.DeleteCategory)
		merchant.POST("/menu/items", menuHandler.CreateMenuItem)
		merchant.PUT("/menu/items/:id", menuHandler.UpdateMenuItem)
		merchant.DELETE("/menu/items/:id", menuHandler.DeleteMenuItem)

		merchant.GET("/dashboard", merchantHandler.GetDashboard)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// User management
		admin.GET("/users", authHandler.ListUsers)
		admin.PUT("/users/:id", authHandler.UpdateUser)

		// Business management
		admin.GET("/businesses", merchantHandler.ListBusinesses)
		admin.PUT("/businesses/:id/active", merchantHandler.SetBusinessActive)

		// Order management
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
		admin.GET("/dashboard", orderHandler.GetAdminDashboard)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
