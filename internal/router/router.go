package router

import (
	"time"

	"moneybag/config"
	"moneybag/internal/handler"
	"moneybag/internal/middleware"
	"moneybag/internal/repository"
	"moneybag/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, gateway handler.Gateway) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)

	checkoutSvc := service.NewCheckoutService(cfg)

	authHandler := handler.NewAuthHandler(cfg)
	checkoutHandler := handler.NewCheckoutHandler(cfg, orderRepo, eventRepo, checkoutSvc, gateway)
	callbackHandler := handler.NewCallbackHandler(orderRepo, eventRepo, gateway)
	refundHandler := handler.NewRefundHandler(orderRepo, eventRepo, gateway)
	orderHandler := handler.NewOrderHandler(orderRepo, eventRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole("ADMIN")

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		payments := api.Group("/payments")
		{
			payments.POST("/checkout", checkoutHandler.Initiate)
			payments.GET("/callback/success", callbackHandler.Success)
			payments.GET("/callback/fail", callbackHandler.Fail)
			payments.GET("/callback/cancel", callbackHandler.Cancel)
			payments.GET("/orders", authMw, adminMw, orderHandler.List)
			payments.GET("/orders/:order_id", authMw, adminMw, orderHandler.Get)
			payments.POST("/orders/:order_id/refund", authMw, adminMw, refundHandler.Create)
		}

		api.POST("/webhooks/moneybag", callbackHandler.IPN)
	}

	return r
}
