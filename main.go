package main

import (
	"log"
	"net/http"

	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/logger"
	"checkout-service/middleware"
	"checkout-service/routes"
	"checkout-service/sender"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[CheckoutService] Failed to load config: ", err)
	}

	zlog, err := logger.Initialize(cfg.Env)
	if err != nil {
		log.Fatal("[CheckoutService] Failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	if cfg.StripeWebhookSecret == "" {
		zlog.Warn("STRIPE_WEBHOOK_SECRET not set; webhook verification will reject all deliveries")
	}

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.AllowedCountries)
	notifier := sender.NewLogNotifier(zlog)
	fulfillment := services.NewFulfillmentService(stripeSvc, notifier, zlog)

	cc := &controllers.CheckoutController{
		Gateway: stripeSvc,
		Config:  cfg,
		Logger:  zlog,
	}
	wc := controllers.NewWebhookController(stripeSvc, fulfillment, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		zlog.Error("Unhandled panic in request handler", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"type":  "internal_server_error",
		})
	}))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.RateLimit())
	r.Use(middleware.RequestLogger(zlog))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"type":  "not_found",
		})
	})

	routes.Register(r, cc, wc)

	zlog.Info("Checkout backend running",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("frontend_url", cfg.FrontendURL),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Server failed", zap.Error(err))
	}
}
