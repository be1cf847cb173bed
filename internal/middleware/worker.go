// AngelaMos | 2026
// worker.go

package middleware

import (
	"net/http"
	"strconv"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

const (
	WorkerIDHeader  = "X-Worker-Id"
	NewWorkerHeader = "X-New-Worker"
)

// WorkerHeaders stamps every response with the process identity.
// X-New-Worker is "true" on exactly one request per process.
func WorkerHeaders(worker *core.Worker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(WorkerIDHeader, worker.ID())
			w.Header().Set(NewWorkerHeader, strconv.FormatBool(worker.ClaimFirst()))
			next.ServeHTTP(w, r)
		})
	}
}
