// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arbeidsrett-ai/assistant-platform/internal/config"
	"github.com/arbeidsrett-ai/assistant-platform/internal/handler"
	"github.com/arbeidsrett-ai/assistant-platform/internal/llm"
	"github.com/arbeidsrett-ai/assistant-platform/internal/middleware"
	"github.com/arbeidsrett-ai/assistant-platform/internal/persist"
	"github.com/arbeidsrett-ai/assistant-platform/internal/store"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/logger"
	"github.com/arbeidsrett-ai/assistant-platform/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "assistant-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// History backend
	kv, err := newHistoryBackend(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open history backend", zap.Error(err))
		os.Exit(1)
	}
	history := persist.NewAdapter(kv, log)
	defer history.Close()

	// AI gateway
	gateway := newGateway(cfg, log)
	log.Info("gateway ready", zap.String("provider", gateway.Name()))

	// Conversation store
	st := store.New(ctx, gateway, history, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(history)
	chatHandler := handler.NewChatHandler(st, log)
	actionHandler := handler.NewActionHandler(st, gateway, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", chatHandler.State)
			r.Post("/sessions", chatHandler.NewSession)
			r.Post("/sessions/{id}/select", chatHandler.SelectSession)
			r.Put("/input", chatHandler.SetInput)
			r.Post("/submit", chatHandler.Submit)

			r.Post("/messages/{id}/simplify", actionHandler.Simplify)
			r.Post("/messages/{id}/email", actionHandler.Email)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Let an in-flight reply land and persist before closing the store.
	st.Wait()

	log.Info("server stopped")
}

func newHistoryBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (persist.KV, error) {
	switch cfg.HistoryBackend {
	case "memory":
		return persist.NewMemory(), nil
	case "nats":
		return persist.NewNATS(ctx, persist.NATSConfig{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
			Bucket:   cfg.NATSBucket,
		}, log)
	case "sqlite":
		return persist.NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}

func newGateway(cfg *config.Config, log *logger.Logger) llm.Gateway {
	var (
		client llm.Client
		err    error
	)
	switch {
	case cfg.DefaultLLM == "anthropic" && cfg.AnthropicAPIKey != "":
		client, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		client, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		client, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, falling back to mock", zap.Error(err))
	}
	if client == nil {
		return llm.NewMockGateway()
	}
	return llm.NewClientGateway(client, log)
}
