package api

import (
	"net/http"

	adminPayment "payway-adapter/internal/api/v1/admin/payment"
	"payway-adapter/internal/api/v1/auth"
	paymentRoutes "payway-adapter/internal/api/v1/payment"
	"payway-adapter/internal/metrics"
	"payway-adapter/internal/middleware"
	"payway-adapter/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Payments     *services.PaymentService
	Providers    *services.ProviderStore
	Denylist     *services.TokenDenylist
	Logger       *zap.Logger
	JWTSecret    string
	AllowOrigins []string
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(deps.Logger), gin.Recovery())

	origins := deps.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(metrics.PrometheusMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	payments := paymentRoutes.NewHandler(deps.Payments, deps.Logger)
	paymentRoutes.RegisterGatewayRoutes(router, payments)

	v1 := router.Group("/api/v1")
	{
		paymentRoutes.RegisterRoutes(v1, payments)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(deps.JWTSecret, deps.Denylist, deps.Logger))
		{
			auth.RegisterRoutes(admin, auth.NewHandler(deps.Denylist, deps.Logger))
			adminPayment.RegisterRoutes(admin, adminPayment.NewHandler(deps.Providers, deps.Payments, deps.Logger))
		}
	}

	return router
}
