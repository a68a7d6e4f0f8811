package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeremiapane/honda-dealer/controllers"
	"github.com/yeremiapane/honda-dealer/hub"
	"github.com/yeremiapane/honda-dealer/middlewares"
	"github.com/yeremiapane/honda-dealer/services"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Users    *services.UserService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Files    controllers.FilePaths
	Hub      *hub.Hub
	Metrics  prometheus.Gatherer

	UploadDir      string
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders(gin.Mode() == gin.ReleaseMode))
	r.Use(middlewares.CORSMiddlewares(deps.AllowedOrigins))

	if deps.UploadDir != "" {
		r.Static("/uploads/motorcycles", deps.UploadDir+"/motorcycles")
	}

	userController := controllers.NewUserController(deps.Users)
	motorcycleController := controllers.NewMotorcycleController(deps.Catalog)
	creditController := controllers.NewCreditController(deps.Catalog)
	orderController := controllers.NewOrderController(deps.Orders, deps.Payments)
	paymentController := controllers.NewPaymentController(deps.Payments)
	adminController := controllers.NewAdminController(deps.Orders, deps.Payments, deps.Files, deps.Hub, deps.AllowedOrigins)

	rateLimiter := middlewares.NewRateLimiter(deps.RateLimit, deps.RateBurst)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	// Public
	r.POST("/register", rateLimiter.RateLimit(), userController.Register)
	r.POST("/login", rateLimiter.RateLimit(), userController.Login)
	r.GET("/motorcycles", motorcycleController.ListMotorcycles)
	r.GET("/motorcycles/:id", motorcycleController.GetMotorcycle)
	r.GET("/credit/simulate", creditController.Simulate)

	// Authenticated buyer
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userController.Logout)
		auth.GET("/me", userController.Me)
		auth.GET("/payment-methods", paymentController.PaymentMethods)

		orders := auth.Group("/orders")
		{
			orders.GET("/mine", orderController.MyOrders)
			orders.GET("/:order_id", orderController.GetOrder)
			orders.GET("/:order_id/schedule", orderController.Schedule)
			orders.GET("/:order_id/schedule.pdf", orderController.SchedulePDF)
		}

		checkout := auth.Group("/")
		checkout.Use(rateLimiter.RateLimit(), middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
		{
			checkout.POST("/orders", orderController.CreateOrder)
			checkout.POST("/orders/:order_id/payment-instructions", paymentController.CreateInstruction)
			checkout.POST("/orders/:order_id/payment-proof", paymentController.UploadProof)
		}

		auth.GET("/payments/mine", paymentController.MyPayments)
		auth.GET("/payment-instructions/:id/pdf", paymentController.InstructionPDF)
	}

	// Admin
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		admin.GET("/orders", adminController.ListOrders)
		admin.PATCH("/orders/:order_id/status", adminController.UpdateOrderStatus)
		admin.PATCH("/orders/:order_id/payment-status", adminController.UpdatePaymentStatus)
		admin.DELETE("/orders/:order_id", adminController.DeleteOrder)
		admin.POST("/payment-proofs/:proof_id/verify", adminController.VerifyProof)
		admin.GET("/payment-proofs/:proof_id/file", adminController.ProofFile)
		admin.GET("/dashboard/stats", adminController.DashboardStats)

		admin.POST("/motorcycles", motorcycleController.CreateMotorcycle)
		admin.PATCH("/motorcycles/:id", motorcycleController.UpdateMotorcycle)
		admin.DELETE("/motorcycles/:id", motorcycleController.DeleteMotorcycle)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		ws.GET("/admin", adminController.AdminWS)
	}

	return r
}
