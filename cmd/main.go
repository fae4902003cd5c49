package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Vovarama1992/quickcare/internal/app"
	"github.com/Vovarama1992/quickcare/internal/config"
	"github.com/Vovarama1992/quickcare/internal/delivery"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("output dir: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()

	// =========================================================================
	// SERVICES
	// =========================================================================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("init services", zap.Error(err))
	}
	defer a.Close()

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	consultHandler := delivery.NewConsultHandler(a.Consult, cfg.OutputDir, baseLogger)
	delivery.RegisterRoutes(r, consultHandler, delivery.RouteConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		AdminToken:        cfg.AdminToken,
	}, baseLogger)

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	baseLogger.Info("listening", zap.String("addr", srv.Addr), zap.String("service", "quickcare"))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		baseLogger.Fatal("server error", zap.Error(err))
	}
}
