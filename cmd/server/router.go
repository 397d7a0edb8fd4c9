package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/internal/analytics"
	"github.com/hezo-be/webinar-backend/internal/auth"
	"github.com/hezo-be/webinar-backend/internal/emaillogs"
	"github.com/hezo-be/webinar-backend/internal/invites"
	"github.com/hezo-be/webinar-backend/internal/middleware"
	"github.com/hezo-be/webinar-backend/internal/viewer"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/pkg/response"
)

type routerDeps struct {
	corsOrigins string
	secret      *auth.Secret
	sessions    *auth.SessionService
	limiter     middleware.Limiter
	registry    *prometheus.Registry
	logger      *zap.Logger

	auth      *auth.Handler
	analytics *analytics.Handler
	webinars  *webinars.Handler
	invites   *invites.Handler
	emailLogs *emaillogs.Handler
	viewer    *viewer.Handler
}

func newRouter(d routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.corsOrigins))
	router.Use(middleware.Logger(d.logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))

	// Public viewer (token only, rate limited per client IP)
	view := router.Group("/webinar-view", middleware.RateLimit(d.limiter, "webinar-view", d.logger))
	{
		view.GET("/:token", d.viewer.Get)
		view.POST("", d.viewer.Post)
	}

	// Admin gateway
	admin := router.Group("/webinar-admin")
	admin.POST("/session", d.auth.CreateSession)

	api := admin.Group("", middleware.AdminOnly(d.secret, d.sessions, d.logger))
	{
		api.GET("/webinars", d.webinars.List)
		api.POST("/webinars", d.webinars.Create)
		api.PUT("/webinars/:id", d.webinars.Update)
		api.DELETE("/webinars/:id", d.webinars.Delete)
		api.POST("/webinars/:id/thumbnail", d.webinars.UploadThumbnail)
		api.GET("/webinars/:id/emails", d.emailLogs.ListByWebinar)
		api.GET("/webinars/:id/analytics", d.analytics.GetByWebinar)

		api.GET("/invites", d.invites.List)
		api.POST("/invites", d.invites.Create)
		api.DELETE("/invites/:id", d.invites.Delete)
		api.POST("/invites/:id/resend", d.emailLogs.Resend)

		api.POST("/recipients/parse", d.invites.ParseRecipients)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "", "Not found")
	})
	return router
}
