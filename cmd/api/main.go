package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ridewellhq/chauffeur-backend/internal/database"
	"github.com/ridewellhq/chauffeur-backend/internal/handlers"
	"github.com/ridewellhq/chauffeur-backend/internal/middleware"
	"github.com/ridewellhq/chauffeur-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Wire the domain services
	processor := services.NewStripeProcessor()
	authority := services.NewPaymentAuthority(db, processor)
	lifecycle := services.NewBookingLifecycle(db, authority)
	quotes := services.NewQuoteEngine(db)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"}
	r.Use(cors.New(config))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/staff/register", handlers.RegisterStaff(db))
			auth.POST("/staff/login", handlers.LoginStaff(db))
			auth.POST("/customers/register", handlers.RegisterCustomer(db))
			auth.POST("/customers/login", handlers.LoginCustomer(db))
		}

		// Processor webhooks authenticate by signature, not by token
		api.POST("/webhooks/stripe", handlers.StripeWebhook(db, authority, hub))

		// WebSocket connection for dispatch boards
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Guest-reachable routes: quotes, booking create, and single-booking
		// access via booking access token
		open := api.Group("/")
		open.Use(middleware.OptionalAuthMiddleware())
		{
			open.GET("/vehicles", handlers.ListVehicles(db))
			open.POST("/bookings/quote", handlers.GetQuote(quotes))
			open.POST("/bookings", handlers.CreateBooking(lifecycle, hub))
			open.GET("/bookings/:id", handlers.GetBooking(db))
			open.PATCH("/bookings/:id", handlers.UpdateBooking(lifecycle, hub))
			open.POST("/bookings/:id/payments/authorize", handlers.AuthorizePayment(db, authority, hub))
			open.POST("/bookings/:id/payments/capture", handlers.CapturePayment(db, authority, hub))
			open.GET("/bookings/:id/payments", handlers.ListBookingPayments(authority))
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			protected.GET("/bookings", handlers.ListBookings(db))

			staff := protected.Group("/")
			staff.Use(middleware.StaffOnly())
			{
				staff.DELETE("/bookings/:id", handlers.DeleteBooking(db))

				staff.POST("/vehicles", handlers.CreateVehicle(db))
				staff.PUT("/vehicles/:id", handlers.UpdateVehicle(db))
				staff.DELETE("/vehicles/:id", handlers.DeleteVehicle(db))

				staff.GET("/config", handlers.GetSystemConfig(db))
				staff.PUT("/config", handlers.UpdateSystemConfig(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
