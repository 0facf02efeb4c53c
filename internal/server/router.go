package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tradeflow/internal/commons"
	"tradeflow/internal/dto"
)

// Module mounts its routes under the API prefix.
type Module interface {
	Routes(r chi.Router)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

func NewRouter(db Pinger, requestTimeout time.Duration, logger *zap.Logger, modules ...Module) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "route not found", Code: "NOT_FOUND"}, logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"}, logger)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			commons.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
			return
		}
		commons.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	r.Route("/api/v1", func(r chi.Router) {
		for _, m := range modules {
			m.Routes(r)
		}
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
