// AngelaMos | 2026
// recoverer.go

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a panic anywhere below it into a 500 whose body is the
// panic message. http.ErrAbortHandler is re-raised.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
				panic(rec)
			}

			msg := fmt.Sprint(rec)
			if err, ok := rec.(error); ok {
				msg = err.Error()
			}

			slog.ErrorContext(r.Context(), "panic recovered",
				"error", msg,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			http.Error(w, msg, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
