// Package server assembles the taskr HTTP API
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/admin"
	"github.com/mikepea/taskr/pkg/taskr/apikeys"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/cache"
	"github.com/mikepea/taskr/pkg/taskr/categories"
	"github.com/mikepea/taskr/pkg/taskr/metrics"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"github.com/mikepea/taskr/pkg/taskr/subtasks"
	"github.com/mikepea/taskr/pkg/taskr/tags"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from
type Deps struct {
	DB     *gorm.DB
	Issuer *auth.Issuer
	// Cache memoizes task listings and stats; nil disables caching
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger
	// RateLimiter throttles the credential endpoints; nil disables it
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a Gin engine with all routes registered
func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(log), m.Middleware(), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	opts := tasks.Options{Cache: d.Cache, Observer: m, Log: log}
	selector := tasks.NewSelector(d.DB, opts)
	aggregator := tasks.NewAggregator(d.DB, opts)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "taskr",
			})
		})

		// Auth routes (public)
		var limit gin.HandlerFunc
		if d.RateLimiter != nil {
			limit = d.RateLimiter.Handler()
		}
		auth.NewHandler(d.DB, d.Issuer).RegisterRoutes(api, limit)

		protected := api.Group("")
		protected.Use(apikeys.CombinedAuthMiddleware(d.DB, d.Issuer), auth.RequireActiveUser(d.DB))

		tasks.NewHandler(d.DB, selector, aggregator).RegisterRoutes(protected)
		subtasks.NewHandler(d.DB).RegisterRoutes(protected)
		tags.NewHandler(d.DB).RegisterRoutes(protected)
		categories.NewHandler(d.DB).RegisterRoutes(protected)
		apikeys.NewHandler(d.DB).RegisterRoutes(protected)

		// Admin routes (admin role required)
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(d.Issuer), auth.RequireActiveUser(d.DB), auth.RequireAdmin())
		admin.NewHandler(d.DB, aggregator).RegisterRoutes(adminGroup)
	}

	return r
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("starting taskr server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down taskr server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
