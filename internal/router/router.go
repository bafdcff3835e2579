// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/handlers"
	"github.com/shoploop/shoploop-backend/internal/middleware"
	"github.com/shoploop/shoploop-backend/internal/services"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	storeService := services.NewStoreService(db)
	productService := services.NewProductService(db)
	reviewService := services.NewReviewService(db)
	cartService := services.NewCartService(db, cfg)
	addressService := services.NewAddressService(db)
	orderService := services.NewOrderService(db, cfg, notificationService)
	paymentService := services.NewPaymentService(db, cfg, orderService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	storeHandler := handlers.NewStoreHandler(storeService, notificationService)
	productHandler := handlers.NewProductHandler(productService, reviewService, storageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	cartHandler := handlers.NewCartHandler(cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	healthHandler := handlers.NewHealthHandler(db)

	// Set JWT secrets
	utils.SetJWTSecrets(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.GeneralRateLimit())

	api := r.Group("/api")

	// Health checks
	health := api.Group("/health")
	{
		health.GET("", healthHandler.Health)
		health.GET("/detailed", healthHandler.Detailed)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/live", healthHandler.Live)
	}

	// API v1 routes
	v1 := api.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Catalog routes (public)
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.ListProducts)
			products.GET("/categories", productHandler.ListCategories)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/reviews", productHandler.ListReviews)
			products.POST("/:id/reviews", middleware.AuthRequired(), productHandler.CreateReview)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		// Public storefront routes
		stores := v1.Group("/stores")
		{
			stores.GET("/:slug", storeHandler.GetStoreBySlug)
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PATCH("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
		}

		// Address book and saved payment methods
		addresses := v1.Group("/addresses")
		addresses.Use(middleware.AuthRequired())
		{
			addresses.GET("", addressHandler.ListAddresses)
			addresses.POST("", addressHandler.CreateAddress)
			addresses.PUT("/:id", addressHandler.UpdateAddress)
			addresses.DELETE("/:id", addressHandler.DeleteAddress)
		}

		paymentMethods := v1.Group("/payment-methods")
		paymentMethods.Use(middleware.AuthRequired())
		{
			paymentMethods.GET("", addressHandler.ListPaymentMethods)
			paymentMethods.POST("", addressHandler.CreatePaymentMethod)
			paymentMethods.DELETE("/:id", addressHandler.DeletePaymentMethod)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.CheckoutRateLimit(), orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/cancel", orderHandler.CancelOrder)
			orders.PATCH("/admin/:id/status", middleware.AdminRequired(), orderHandler.UpdateStatus)
		}

		// Payment routes
		payments := v1.Group("/payments")
		{
			// Stripe signs the webhook; it carries no bearer token.
			payments.POST("/webhook", paymentHandler.Webhook)
			payments.POST("/intent", middleware.AuthRequired(), paymentHandler.CreatePaymentIntent)
		}

		// Seller routes
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthRequired(), middleware.SellerRequired())
		{
			seller.POST("/store", storeHandler.CreateStore)
			seller.GET("/store", storeHandler.GetSellerStore)
			seller.PUT("/store", storeHandler.UpdateStore)

			seller.GET("/products", productHandler.ListSellerProducts)
			seller.POST("/products", productHandler.CreateProduct)
			seller.PUT("/products/:id", productHandler.UpdateProduct)
			seller.DELETE("/products/:id", productHandler.DeleteProduct)
			seller.POST("/products/:id/images", productHandler.UploadImages)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stores", storeHandler.ListStores)
			admin.PATCH("/stores/:id/status", storeHandler.ReviewStore)
			admin.POST("/payments/refund", paymentHandler.Refund)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
