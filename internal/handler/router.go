// Package handler assembles the HTTP surface: middleware chain, the v1 API,
// health and metrics endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/handler/middleware"
	v1 "github.com/dmehra2102/prod-golang-projects/medqueue/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
)

type RouterDeps struct {
	Config   *config.Config
	Services v1.Services
	Hub      *realtime.Hub
	Tokens   middleware.TokenValidator
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestContext(),
		middleware.Logger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.Config.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"version":  d.Config.App.Version,
			"sessions": d.Hub.ClientCount(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler(d.Gatherer)))

	api := r.Group("/api/v1")
	if rl := d.Config.RateLimit; rl.RequestsPerSecond > 0 {
		api.Use(middleware.NewRateLimiter(rate.Limit(rl.RequestsPerSecond), rl.BurstSize).Middleware())
	}
	api.Use(middleware.Authenticate(d.Tokens))

	var authLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if n := d.Config.RateLimit.AuthRequestsPerMinute; n > 0 {
		authLimit = middleware.PerMinute(n).Middleware()
	}

	h := v1.NewHandler(d.Services, d.Hub, func(req *http.Request) bool {
		return middleware.OriginAllowed(d.Config.CORS, req)
	})
	h.Register(api, authLimit, middleware.RequireAuth())
	return r
}
