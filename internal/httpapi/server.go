package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bootkit/pkg/types"
)

var (
	errUnsupportedMediaType = errors.New("unsupported content type")
	errNameRequired         = errors.New("name is required")
)

// NewMux builds the admin API:
//
//	GET  /environments          list plus current selection
//	GET  /environments/current  current selection
//	PUT  /environments/current  select by name
//	GET  /healthz, /metrics
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         corsMaxAge,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/environments", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			cur, err := svc.Current(r.Context())
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logRequest(r, "list environments", status, start, err)
				return
			}
			writeJSON(w, types.EnvironmentsResponse{Environments: svc.Environments(), Current: cur.Name})
			logRequest(r, "list environments", http.StatusOK, start, nil)
		})

		r.Get("/current", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			cur, err := svc.Current(r.Context())
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logRequest(r, "current environment", status, start, err)
				return
			}
			writeJSON(w, cur)
			logRequest(r, "current environment", http.StatusOK, start, nil)
		})

		r.Put("/current", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				logRequest(r, "use environment", http.StatusUnsupportedMediaType, start, errUnsupportedMediaType)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			var req types.UseRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
				logRequest(r, "use environment", http.StatusBadRequest, start, err)
				return
			}
			if strings.TrimSpace(req.Name) == "" {
				writeJSONError(w, http.StatusBadRequest, errNameRequired.Error())
				logRequest(r, "use environment", http.StatusBadRequest, start, errNameRequired)
				return
			}
			// Join server base context with request context so shutdown cancels store waits too.
			ctx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			env, err := svc.Use(ctx, req.Name)
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logRequest(r, "use environment", status, start, err)
				return
			}
			environmentSwitchesTotal.WithLabelValues(env.Name).Inc()
			writeJSON(w, env)
			logRequest(r, "use environment", http.StatusOK, start, nil)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
