package payment

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	paymentGroup := r.Group("/payment")
	{
		paymentGroup.GET("/providers", h.ListProviders)
		paymentGroup.POST("/providers", h.CreateProvider)
		paymentGroup.GET("/providers/:uuid", h.GetProvider)
		paymentGroup.PUT("/providers/:uuid", h.UpdateProvider)
		paymentGroup.DELETE("/providers/:uuid", h.DeleteProvider)
		paymentGroup.POST("/transactions/:id/reconcile", h.ReconcileTransaction)
	}
}
