// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

// Counter reports how many rows an entity's default view matches.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// HandlerConfig wires the stats sources. Redis fields stay nil when
// Redis is not configured.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	DBPing     func(ctx context.Context) error
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	Users      Counter
	Posts      Counter
}

type Handler struct {
	cfg     HandlerConfig
	started time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, started: time.Now()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Get("/", h.System)
		r.Get("/db", h.Database)
		r.Get("/redis", h.Redis)
		r.Get("/runtime", h.Runtime)
		r.Get("/entities", h.Entities)
	})
}

func (h *Handler) System(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entities, err := h.count(ctx)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	resp := SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: probe(ctx, h.cfg.DBPing),
			Stats:   h.dbStats(),
		},
		Runtime:  readRuntimeStats(h.started),
		Entities: entities,
	}
	if h.cfg.RedisPing != nil {
		resp.Redis = &RedisStatus{
			Healthy: probe(ctx, h.cfg.RedisPing),
			Stats:   h.redisStats(),
		}
	}

	core.OK(w, resp)
}

func (h *Handler) Database(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.dbStats())
}

func (h *Handler) Redis(w http.ResponseWriter, _ *http.Request) {
	stats := h.redisStats()
	if stats == nil {
		core.JSONError(w, core.NotFoundError("redis"))
		return
	}
	core.OK(w, stats)
}

func (h *Handler) Runtime(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats(h.started))
}

func (h *Handler) Entities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.count(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, entities)
}

func (h *Handler) count(ctx context.Context) (EntityCounts, error) {
	var counts EntityCounts

	for _, c := range []struct {
		name string
		src  Counter
		dst  *int
	}{
		{"users", h.cfg.Users, &counts.ActiveUsers},
		{"posts", h.cfg.Posts, &counts.Posts},
	} {
		if c.src == nil {
			continue
		}
		n, err := c.src.Count(ctx)
		if err != nil {
			return counts, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = n
	}

	return counts, nil
}

func (h *Handler) dbStats() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}
	return newDBPoolStats(h.cfg.DBStats())
}

func (h *Handler) redisStats() *RedisPoolStats {
	if h.cfg.RedisStats == nil {
		return nil
	}
	return newRedisPoolStats(h.cfg.RedisStats())
}

// probe treats a missing ping as healthy.
func probe(ctx context.Context, ping func(context.Context) error) bool {
	return ping == nil || ping(ctx) == nil
}
