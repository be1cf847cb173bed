// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

type Checker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	worker   *core.Worker
	checks   []namedChecker
	ready    atomic.Bool
	shutdown atomic.Bool
}

type namedChecker struct {
	name    string
	checker Checker
}

// NewHandler reports liveness for worker. Readiness pings db and, when
// non-nil, redis.
func NewHandler(worker *core.Worker, db Checker, redis Checker) *Handler {
	h := &Handler{
		worker: worker,
		checks: []namedChecker{{name: "database", checker: db}},
	}
	if redis != nil {
		h.checks = append(h.checks, namedChecker{name: "redis", checker: redis})
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			WorkerID: h.worker.ID(),
			Status:   "shutting_down",
		})
		return
	}

	h.writeStatus(w, http.StatusOK, StatusResponse{
		WorkerID: h.worker.ID(),
		Status:   "ok",
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			WorkerID: h.worker.ID(),
			Status:   "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			WorkerID: h.worker.ID(),
			Status:   "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := h.runChecks(ctx)

	status := "ok"
	statusCode := http.StatusOK
	for _, check := range checks {
		if !check.Healthy {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	h.writeStatus(w, statusCode, ReadinessResponse{
		WorkerID: h.worker.ID(),
		Status:   status,
		Checks:   checks,
	})
}

func (h *Handler) runChecks(ctx context.Context) []HealthCheck {
	var wg sync.WaitGroup
	results := make([]HealthCheck, len(h.checks))

	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = ping(ctx, c.name, c.checker)
		}()
	}

	wg.Wait()
	return results
}

func ping(ctx context.Context, name string, c Checker) HealthCheck {
	check := HealthCheck{Name: name, Healthy: true}

	if c == nil {
		check.Healthy = false
		check.Message = name + " checker not configured"
		return check
	}

	start := time.Now()
	err := c.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}

	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	core.JSON(w, status, data)
}

type StatusResponse struct {
	WorkerID string `json:"workerId"`
	Status   string `json:"status"`
}

type ReadinessResponse struct {
	WorkerID string        `json:"workerId"`
	Status   string        `json:"status"`
	Checks   []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
