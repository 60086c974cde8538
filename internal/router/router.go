package router

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cx-tal-miterani/travel-desk/internal/handlers"
	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/metrics"
	"github.com/cx-tal-miterani/travel-desk/internal/session"
)

// Pinger reports whether the record backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the router's collaborators
type Options struct {
	Resolver *session.Resolver
	Health   Pinger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      logger.Logger
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, opts Options) *mux.Router {
	r := mux.NewRouter()

	r.Use(recoverMiddleware(opts.Log))
	r.Use(accessLog(opts.Log, opts.Metrics))
	r.Use(corsMiddleware)
	r.Use(session.Resolve(opts.Resolver, opts.Log))

	// Public routes
	r.HandleFunc("/login", h.LoginView).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/login", h.SignIn).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/signup", h.SignUp).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/logout", h.SignOut).Methods(http.MethodPost, http.MethodOptions)

	// Health check and metrics
	r.HandleFunc("/health", healthCheck(opts.Health)).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Routes requiring a signed-in operator
	gated := r.NewRoute().Subrouter()
	gated.Use(session.RequireSession)

	gated.HandleFunc("/", h.Dashboard).Methods(http.MethodGet, http.MethodOptions)

	// Clients
	gated.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet, http.MethodOptions)
	gated.HandleFunc("/clients/new", h.ClientForm).Methods(http.MethodGet, http.MethodOptions)
	gated.HandleFunc("/clients/new", h.CreateClient).Methods(http.MethodPost, http.MethodOptions)
	gated.HandleFunc("/client/{id}", h.GetClient).Methods(http.MethodGet, http.MethodOptions)
	gated.HandleFunc("/client/{id}", h.UpdateClient).Methods(http.MethodPut, http.MethodOptions)
	gated.HandleFunc("/client/{id}", h.DeleteClient).Methods(http.MethodDelete, http.MethodOptions)
	gated.HandleFunc("/client/{id}/payments", h.RecordPayment).Methods(http.MethodPost, http.MethodOptions)

	// Flights
	gated.HandleFunc("/flights", h.ListFlights).Methods(http.MethodGet, http.MethodOptions)
	gated.HandleFunc("/flights/new", h.FlightForm).Methods(http.MethodGet, http.MethodOptions)
	gated.HandleFunc("/flights/new", h.CreateFlight).Methods(http.MethodPost, http.MethodOptions)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(log logger.Logger, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if m != nil {
				m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			}
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

func recoverMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic serving request", "path", r.URL.Path, "panic", rec)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func healthCheck(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not found"}`))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method not allowed"}`))
}
