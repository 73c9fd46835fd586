package auth

import (
	"errors"
	"net/http"
	"time"

	"payway-adapter/internal/middleware"
	"payway-adapter/internal/services"
	"payway-adapter/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type Handler struct {
	denylist *services.TokenDenylist
	logger   *zap.Logger
}

func NewHandler(denylist *services.TokenDenylist, logger *zap.Logger) *Handler {
	return &Handler{denylist: denylist, logger: logger}
}

// Revoke denylists the presented admin token until it expires.
func (h *Handler) Revoke(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
		return
	}

	claims, _ := c.Get(middleware.ClaimsKey)
	mapClaims, _ := claims.(jwt.MapClaims)
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Invalid token expiration"))
		return
	}

	remaining := time.Until(time.Unix(int64(exp), 0))
	if err := h.denylist.Add(c.Request.Context(), tokenString, remaining); err != nil {
		if errors.Is(err, services.ErrDenylistUnavailable) {
			c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(http.StatusServiceUnavailable, err.Error()))
			return
		}
		h.logger.Error("failed to denylist token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to denylist token"))
		return
	}

	h.logger.Info("admin token revoked", zap.String("subject", c.GetString(middleware.SubjectKey)))
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Token revoked", nil))
}
