package http

import (
	"net/http"

	"github.com/gdugdh24/bookswap-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/bookswap-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Router struct {
	authHandler     *handler.AuthHandler
	matchHandler    *handler.MatchHandler
	transferHandler *handler.TransferHandler
	authMiddleware  *middleware.AuthMiddleware
	transferLimiter *middleware.RateLimiter
	httpMetrics     middleware.HTTPRecorder
	metricsHandler  http.Handler
	log             *logrus.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	matchHandler *handler.MatchHandler,
	transferHandler *handler.TransferHandler,
	authMiddleware *middleware.AuthMiddleware,
	transferLimiter *middleware.RateLimiter,
	httpMetrics middleware.HTTPRecorder,
	metricsHandler http.Handler,
	log *logrus.Logger,
) *Router {
	return &Router{
		authHandler:     authHandler,
		matchHandler:    matchHandler,
		transferHandler: transferHandler,
		authMiddleware:  authMiddleware,
		transferLimiter: transferLimiter,
		httpMetrics:     httpMetrics,
		metricsHandler:  metricsHandler,
		log:             log,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.log), middleware.Metrics(r.httpMetrics))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(r.authMiddleware.RequireAuth())
		{
			auth.POST("/logout", r.authHandler.Logout)
			auth.GET("/me", r.authHandler.Me)
		}

		matches := v1.Group("/matches")
		matches.Use(r.authMiddleware.RequireAuth())
		{
			matches.GET("/me", r.matchHandler.GetMyMatches)
			matches.POST("/transfer", r.transferLimiter.Handler(), r.transferHandler.Transfer)

			staff := matches.Group("")
			staff.Use(r.authMiddleware.RequirePermission(domain.PermissionEmployee))
			{
				staff.POST("/generate", r.matchHandler.Generate)
				staff.GET("/:id", r.matchHandler.GetByID)
			}
		}
	}

	return router
}
