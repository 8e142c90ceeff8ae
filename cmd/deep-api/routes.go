package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/internal/handler"
	"github.com/deep-platform/deep-api/internal/middleware"
	"github.com/deep-platform/deep-api/internal/models"
	"github.com/deep-platform/deep-api/internal/service"
	"github.com/deep-platform/deep-api/pkg/config"
	"github.com/deep-platform/deep-api/pkg/logger"
	corsmiddleware "github.com/deep-platform/deep-api/pkg/middleware/cors"
	reqidmiddleware "github.com/deep-platform/deep-api/pkg/middleware/requestid"
)

type routeDeps struct {
	identity   middleware.TokenValidator
	metrics    *service.MetricsService
	sessions   *handler.SessionHandler
	feed       *handler.FeedHandler
	statements *handler.StatementHandler
	ops        *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Timeout(cfg.RequestTimeout), middleware.ClientInfo())

	// signed links are their own credential
	api.GET("/statements/:token", deps.statements.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.identity))

	authed.POST("/sessions", deps.sessions.Create)
	authed.GET("/sessions", deps.sessions.List)
	authed.GET("/sessions/:id", deps.sessions.Get)
	authed.POST("/sessions/:id/transitions", deps.sessions.Transition)

	authed.GET("/mentors/me/statement", deps.statements.Export)
	authed.GET("/mentors/:id/availability", deps.sessions.Availability)

	authed.GET("/feed", deps.feed.Feed)
	authed.POST("/engagements", deps.feed.Track)
	authed.GET("/posts/search", deps.feed.Search)
	authed.GET("/posts/:id/similar", deps.feed.Similar)
	authed.PATCH("/posts/:id/moderation", middleware.RequireRole(models.RoleModerator), deps.feed.Moderate)

	return r
}
