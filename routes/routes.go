package routes

import (
	"checkout-service/controllers"

	"github.com/gin-gonic/gin"
)

func Register(r *gin.Engine, cc *controllers.CheckoutController, wc *controllers.WebhookController) {
	r.GET("/health", cc.Health)
	r.POST("/create-checkout-session", cc.CreateCheckoutSession)
	r.GET("/session/:sessionId", cc.GetSession)
	r.POST("/create-customer-portal", cc.CreateCustomerPortal)

	// Raw body, signature-verified; never JSON-bound.
	r.POST("/webhook", wc.HandleWebhook)
}
