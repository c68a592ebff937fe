package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lucaanasser/nsr-ecommerce-backend/config"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/controller"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/db"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/router"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/scheduler"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/storage"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/payment/pagbank"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting NSR e-commerce backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed shipping methods
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (checkout sessions, token blacklist)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// PagBank client
	gateway, err := pagbank.NewClient(pagbank.Config{
		Token:            cfg.Payment.PagBank.Token,
		BaseURL:          cfg.Payment.PagBank.BaseURL,
		NotificationURL:  cfg.Payment.PagBank.NotificationURL,
		PixExpiryMinutes: cfg.Payment.PagBank.PixExpiryMinutes,
		BoletoDueDays:    cfg.Payment.PagBank.BoletoDueDays,
	})
	if err != nil {
		logger.Fatal("Failed to initialize PagBank client", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	paymentRepo := repository.NewPaymentRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	couponRepo := repository.NewCouponRepository(db.GetDB())
	shippingRepo := repository.NewShippingMethodRepository(db.GetDB())
	checkoutStore := repository.NewRedisCheckoutStore(redis.GetClient(), cfg.Checkout.SessionTTL)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	stockService := service.NewStockService(productRepo)
	shippingService := service.NewShippingService(shippingRepo, productRepo)
	addressService := service.NewAddressService(addressRepo)
	couponService := service.NewCouponService(couponRepo)
	checkoutService := service.NewCheckoutService(checkoutStore)
	orderService := service.NewOrderService(
		orderRepo,
		paymentRepo,
		productRepo,
		userRepo,
		addressRepo,
		cartService,
		stockService,
		gateway,
		db.GetDB(),
	)

	// S3 image storage
	imageStorage := storage.NewS3Storage(&cfg.S3)

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg.JWT.AccessTokenExpiry)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, stockService)
	orderController := controller.NewOrderController(orderService)
	addressController := controller.NewAddressController(addressService)
	shippingController := controller.NewShippingController(shippingService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	couponController := controller.NewCouponController(couponService)
	uploadController := controller.NewUploadController(imageStorage)
	webhookController := controller.NewPaymentWebhookController(orderService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// PIX expiry sweeper
	pixScheduler := scheduler.NewPixExpiryScheduler(orderService)
	if err := pixScheduler.Start(); err != nil {
		logger.Fatal("Failed to start PIX expiry scheduler", err)
	}
	defer pixScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		addressController,
		shippingController,
		checkoutController,
		couponController,
		uploadController,
		webhookController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
