package diag

import (
	"net/http"

	"github.com/centraunit/ioc"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestIdentity gives every request its own per-thread identity and
// releases the request's per-thread instances once the handler returns.
// The identity is the chi request id, so it must run after middleware.RequestID;
// requests without one are passed through unchanged.
//
// Handlers resolve through ioc.ResolveContext(r.Context(), ...) to see the
// request's instances.
func RequestIdentity(r *ioc.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := middleware.GetReqID(req.Context())
			if id == "" {
				next.ServeHTTP(w, req)
				return
			}
			defer r.Release(id)
			next.ServeHTTP(w, req.WithContext(ioc.WithExecutionID(req.Context(), id)))
		})
	}
}
