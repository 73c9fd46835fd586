package middleware

import (
	"context"
	"net/http"

	"payway-adapter/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	RoleAdmin = "admin"

	// SubjectKey holds the token subject for handlers to log.
	SubjectKey = "subject"
	// ClaimsKey holds the validated jwt.MapClaims.
	ClaimsKey = "claims"
)

// Denylist reports revoked tokens.
type Denylist interface {
	IsDenylisted(ctx context.Context, token string) (bool, error)
}

// AdminAuthMiddleware accepts only unrevoked bearer tokens signed with
// secret that carry the admin role. denylist may be nil.
func AdminAuthMiddleware(secret string, denylist Denylist, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		if denylist != nil {
			isDenylisted, err := denylist.IsDenylisted(c.Request.Context(), tokenString)
			if err != nil {
				log.Error("failed to check token status", zap.Error(err))
				utils.AbortWithError(c, http.StatusInternalServerError, "Failed to check token status")
				return
			}
			if isDenylisted {
				utils.AbortWithError(c, http.StatusUnauthorized, "Token has been revoked")
				return
			}
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			utils.AbortWithError(c, http.StatusForbidden, "Invalid or expired token")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != RoleAdmin {
			log.Warn("unauthorized admin access attempt",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Any("role", claims["role"]),
			)
			utils.AbortWithError(c, http.StatusForbidden, "Forbidden: Admins only")
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set(SubjectKey, sub)
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
