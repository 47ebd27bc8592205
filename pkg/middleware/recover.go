package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// Recovery catches panics in downstream handlers, logs the stack trace and
// answers 500. Mount it inside Logger so the request_id is attached.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.WithCtx(r.Context()).ErrorContext(r.Context(), "panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
