package payment

import (
	"payway-adapter/internal/payment/payway"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the storefront API under /api/v1.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	paymentGroup := r.Group("/payment")
	{
		paymentGroup.POST("/transactions", h.CreateTransaction)
		paymentGroup.GET("/transactions/:id", h.GetTransaction)
		paymentGroup.POST("/transactions/:id/checkout", h.Checkout)
	}
}

// RegisterGatewayRoutes mounts the public endpoints PayWay calls or redirects
// to. Their paths are embedded in every signed checkout.
func RegisterGatewayRoutes(r gin.IRoutes, h *Handler) {
	r.POST(payway.WebhookPath, h.Webhook(payway.Code))
	r.GET(payway.ReturnPath, h.Return(payway.StatusPagePath))
}
