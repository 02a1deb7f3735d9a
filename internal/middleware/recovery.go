package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"arcade-backend/internal/metrics"
	"arcade-backend/pkg/utils"
)

// PanicRecovery converts handler panics into 500 responses. The stack goes
// to the log and the panic counter, never to the client.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[Server] PANIC on %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				metrics.PanicsRecovered.Inc()

				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
