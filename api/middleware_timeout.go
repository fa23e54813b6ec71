package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TimeoutMiddleware aborts requests that exceed the given duration and
// answers 408 so a stalled dispatch query cannot hold a connection open.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(w, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					w.WriteHeader(http.StatusRequestTimeout)
					fmt.Fprint(w, `{"response": "request timed out"}`)
				}
			}
		})
	}
}
