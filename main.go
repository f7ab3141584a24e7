package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v82/client"

	"park-ticketing/internal/alert"
	"park-ticketing/internal/config"
	"park-ticketing/internal/handlers"
	"park-ticketing/internal/kafka"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/middleware"
	"park-ticketing/internal/models"
	rediswrap "park-ticketing/internal/redis"
	"park-ticketing/internal/services"
	"park-ticketing/internal/storage"
)

// Global logger instance
var log *logger.Logger

func main() {
	log = logger.NewLogger()
	defer log.Close()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "Error loading .env file, using environment variables")
	}

	log.LogProcess("STARTUP", "Park ticketing gateway starting up...")

	cfg := config.Load()
	log.Info("CONFIG", "Configuration loaded successfully")

	log.LogProcess("DATABASE", "Initializing Postgres database...")
	store, err := storage.NewPostgresStore(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", "Failed to initialize Postgres: "+err.Error())
	}
	defer store.Close()
	log.LogDatabase("INIT", "postgres", "Postgres storage initialized successfully")

	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MockMode, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create Kafka producer: "+err.Error())
	}
	defer kafkaProducer.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr: cfg.Redis.Addr,
	})
	validationCounter := rediswrap.NewCounter(redisClient)
	log.LogProcess("SERVICE", "Redis validation counter initialized")

	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		log.Warn("STRIPE", "Checkout and webhook endpoints will reject requests")
	}
	stripeClient := client.New(cfg.Stripe.SecretKey, nil)

	alertClient := alert.NewClient(cfg.Alert.WebhookURL, log)

	// Initialize services
	cartService := services.NewCartService(store, log)
	emailService := services.NewEmailService(store, cfg.Email, kafkaProducer, log)
	checkoutService, err := services.NewCheckoutService(stripeClient, cfg.Stripe, log)
	if err != nil {
		log.Fatal("STRIPE", "Failed to initialize checkout service: "+err.Error())
	}
	webhookService := services.NewWebhookService(
		store,
		services.NewStripeCustomerResolver(stripeClient),
		emailService,
		kafkaProducer,
		alertClient,
		log,
	)
	log.LogProcess("SERVICE", "All services initialized")

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewStripeWebhookHandler(webhookService, cfg.Stripe.WebhookSecret, log)
	emailHandler := handlers.NewEmailHandler(emailService)
	adminHandler := handlers.NewAdminHandler(validationCounter, emailService)
	log.LogProcess("HANDLER", "All handlers initialized")

	// Consume entrance-scanner validation events in the background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !cfg.Kafka.MockMode {
		validationConsumer, err := kafka.NewValidationConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			log.Fatal("KAFKA", "Failed to create validation consumer: "+err.Error())
		}
		defer validationConsumer.Close()

		go func() {
			log.LogKafka("START", "validation-scanned", "Starting validation consumer goroutine")
			err := validationConsumer.ConsumeValidations(ctx, func(event *models.ValidationEvent) error {
				_, err := validationCounter.Increment(ctx)
				return err
			})
			if err != nil && err != context.Canceled {
				log.Error("KAFKA", "Validation consumer error: "+err.Error())
			}
		}()
	}

	router := setupRouter(cfg, cartHandler, checkoutHandler, webhookHandler, emailHandler, adminHandler)
	log.LogProcess("ROUTER", "HTTP router configured")

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.LogProcess("SERVER", "Starting HTTP server on "+cfg.Server.Port)
		log.Info("STARTUP", "🎢 Park ticketing gateway is ready to accept requests!")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "Server failed to start: "+err.Error())
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("SHUTDOWN", "Received shutdown signal, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("SHUTDOWN", "Server forced to shutdown: "+err.Error())
	}

	log.Info("SHUTDOWN", "✅ Park ticketing gateway shutdown completed")
}

func setupRouter(cfg *config.Config, cartHandler *handlers.CartHandler, checkoutHandler *handlers.CheckoutHandler, webhookHandler *handlers.StripeWebhookHandler, emailHandler *handlers.EmailHandler, adminHandler *handlers.AdminHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// Wrong-method requests must answer 405, not fall through to 404.
	router.HandleMethodNotAllowed = true

	router.Use(middleware.EnhancedLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "park-ticketing",
			"version":   "1.0.0",
		})
	})

	v1 := router.Group("/api/v1")
	{
		cart := v1.Group("/cart")
		{
			cart.POST("/items", cartHandler.AddItem)
			cart.GET("/:session", cartHandler.ListItems)
			cart.DELETE("/:session", cartHandler.ClearCart)
			cart.DELETE("/:session/items/:id", cartHandler.RemoveItem)
		}

		v1.POST("/checkout/session", checkoutHandler.CreateSession)
		v1.POST("/stripe/webhook", webhookHandler.HandleWebhook)

		reservations := v1.Group("/reservations")
		{
			reservations.POST("/email-request", emailHandler.RequestEmail)
			reservations.POST("/email-send",
				middleware.ServiceRoleAuth(cfg.Email.ServiceRoleSecret, log),
				emailHandler.SendEmail)
		}

		admin := v1.Group("/admin", middleware.ServiceRoleAuth(cfg.Email.ServiceRoleSecret, log))
		{
			admin.GET("/validations", adminHandler.GetValidationCount)
			admin.POST("/validations", adminHandler.RecordValidation)
			admin.POST("/communication/blast", adminHandler.SendBlast)
		}
	}

	log.LogProcess("ROUTER", "All routes registered successfully")
	return router
}
