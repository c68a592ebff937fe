package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/config"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/controller"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	addressController  *controller.AddressController
	shippingController *controller.ShippingController
	checkoutController *controller.CheckoutController
	couponController   *controller.CouponController
	uploadController   *controller.UploadController
	webhookController  *controller.PaymentWebhookController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	addressController *controller.AddressController,
	shippingController *controller.ShippingController,
	checkoutController *controller.CheckoutController,
	couponController *controller.CouponController,
	uploadController *controller.UploadController,
	webhookController *controller.PaymentWebhookController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		cartController:     cartController,
		orderController:    orderController,
		addressController:  addressController,
		shippingController: shippingController,
		checkoutController: checkoutController,
		couponController:   couponController,
		uploadController:   uploadController,
		webhookController:  webhookController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "NSR e-commerce API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/profile", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := v1.Group("/products")
		products.Use(r.authMiddleware.OptionalAuthenticate())
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		shipping := v1.Group("/shipping")
		{
			shipping.GET("/methods", r.shippingController.ListMethods)
			shipping.POST("/calculate", r.shippingController.CalculateShipping)
		}

		coupons := v1.Group("/coupons")
		{
			coupons.POST("/quote", r.couponController.QuoteCoupon)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:id", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/validate", r.cartController.ValidateCart)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.POST("/session", r.checkoutController.StartCheckout)
			checkout.GET("/session", r.checkoutController.GetCheckout)
			checkout.PUT("/session/buyer", r.checkoutController.SubmitBuyer)
			checkout.PUT("/session/recipient", r.checkoutController.SubmitRecipient)
			checkout.PUT("/session/payment", r.checkoutController.SubmitPayment)
			checkout.POST("/session/back", r.checkoutController.GoToStep)
			checkout.DELETE("/session", r.checkoutController.CancelCheckout)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("/:id/retry-payment", r.orderController.RetryPayment)
			orders.GET("/:id/payment-status", r.orderController.GetPaymentStatus)
		}

		addresses := v1.Group("/user/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.GetAddresses)
			addresses.GET("/:id", r.addressController.GetAddress)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PATCH("/:id/default", r.addressController.SetDefaultAddress)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/webhook", r.webhookController.HandleNotification)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)
			admin.POST("/products/:id/variants", r.productController.AddVariant)

			admin.POST("/coupons", r.couponController.CreateCoupon)
			admin.GET("/coupons", r.couponController.ListCoupons)
			admin.DELETE("/coupons/:id", r.couponController.DeleteCoupon)

			admin.PUT("/orders/:id/status", r.orderController.UpdateOrderStatus)

			admin.POST("/uploads/presign", r.uploadController.PresignUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
