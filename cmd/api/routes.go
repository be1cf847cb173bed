// AngelaMos | 2026
// routes.go

package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/go-htmx/internal/admin"
	"github.com/carterperez-dev/templates/go-htmx/internal/config"
	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/health"
	"github.com/carterperez-dev/templates/go-htmx/internal/middleware"
	"github.com/carterperez-dev/templates/go-htmx/internal/post"
	"github.com/carterperez-dev/templates/go-htmx/internal/store"
	"github.com/carterperez-dev/templates/go-htmx/internal/user"
	"github.com/carterperez-dev/templates/go-htmx/internal/view"
	"github.com/carterperez-dev/templates/go-htmx/internal/web"
)

type routeDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	worker   *core.Worker
	db       *core.Database
	redis    *core.Redis
	store    *store.Store
	renderer *view.Renderer
	health   *health.Handler
}

func mountRoutes(router chi.Router, d routeDeps) {
	userSvc := d.store.UserService()
	postSvc := d.store.PostService()

	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(d.cfg.Otel.ServiceName))
	router.Use(middleware.Logger(d.logger))
	router.Use(middleware.SecurityHeaders(d.cfg.IsProduction()))
	router.Use(middleware.WorkerHeaders(d.worker))

	if d.cfg.RateLimit.Enabled {
		var rdb *redis.Client
		if d.redis != nil {
			rdb = d.redis.Client
		}

		router.Use(middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
			Limit:      middleware.LimitFromConfig(d.cfg.RateLimit),
			FailOpen:   true,
			BypassFunc: isProbe,
		}).Handler)
	}

	web.NewHandler(userSvc, postSvc, d.renderer).RegisterRoutes(router)

	adminCfg := admin.HandlerConfig{
		DBStats: d.db.Stats,
		DBPing:  d.db.Ping,
		Users:   userSvc,
		Posts:   postSvc,
	}
	if d.redis != nil {
		adminCfg.RedisStats = d.redis.PoolStats
		adminCfg.RedisPing = d.redis.Ping
	}

	router.Route("/api", func(r chi.Router) {
		d.health.RegisterRoutes(r)
		user.NewHandler(userSvc).RegisterRoutes(r)
		post.NewHandler(postSvc).RegisterRoutes(r)
		admin.NewHandler(adminCfg).RegisterRoutes(r)
	})
}

func isProbe(r *http.Request) bool {
	return r.Method == http.MethodGet &&
		(r.URL.Path == "/api/health" || r.URL.Path == "/api/ready")
}
