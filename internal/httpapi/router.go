// Package httpapi exposes the earthquake catalogue over JSON/HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/logging"
	"go.uber.org/zap"
)

// Catalog is the set of operations the API serves.
type Catalog interface {
	Query(ctx context.Context, req earthquake.QueryRequest) (earthquake.PagedResult, error)
	Get(ctx context.Context, id string) (earthquake.Record, error)
	Create(ctx context.Context, in earthquake.CreateInput) (earthquake.Record, error)
	Update(ctx context.Context, id string, in earthquake.UpdateInput) (earthquake.Record, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// NewRouter mounts the catalogue routes and health check.
func NewRouter(catalog Catalog, logger *zap.Logger) http.Handler {
	h := &handler{catalog: catalog, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/earthquakes", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logging.WithRequestID(logger, middleware.GetReqID(r.Context())).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
