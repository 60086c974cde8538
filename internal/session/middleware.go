package session

import (
	"encoding/json"
	"net/http"

	"github.com/cx-tal-miterani/travel-desk/internal/logger"
)

// LoginPath is where anonymous operators are sent
const LoginPath = "/login"

// Resolve stores the request's session in its context
func Resolve(resolver *Resolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := resolver.Resolve(r.Context(), TokenFromRequest(r))
			if s.State == Loading {
				log.Warn("session unresolved", "path", r.URL.Path)
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireSession gates the wrapped routes on an authenticated session
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch Gate(FromContext(r.Context()), true) {
		case Allow:
			next.ServeHTTP(w, r)
		case RedirectLogin:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
		}
	})
}
