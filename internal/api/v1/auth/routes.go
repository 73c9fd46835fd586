package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to be behind the admin auth middleware.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	auth := r.Group("/auth")
	auth.POST("/revoke", h.Revoke)
}
