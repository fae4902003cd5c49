package delivery

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

type RouteConfig struct {
	RequestsPerMinute int
	AdminToken        string
}

func RegisterRoutes(r chi.Router, h *ConsultHandler, cfg RouteConfig, log *zap.Logger) {
	r.Use(middleware.RequestID, RequestLogger(log), middleware.Recoverer)

	r.Get("/", Index)
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/audio/{name}", h.Audio)

	// --- платные вызовы провайдеров ---
	r.Group(func(pr chi.Router) {
		if cfg.RequestsPerMinute > 0 {
			pr.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
		}
		pr.Post("/consult", h.Consult)
		pr.Post("/speech", h.Speech)
	})

	// --- история ---
	r.With(AuthMiddleware(cfg.AdminToken)).Get("/consultations", h.History)
}

func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("took", time.Since(start)))
		})
	}
}
