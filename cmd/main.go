package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowchartai/backend/internal/cache"
	"github.com/flowchartai/backend/internal/config"
	"github.com/flowchartai/backend/internal/handler"
	"github.com/flowchartai/backend/internal/metrics"
	"github.com/flowchartai/backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/flowchartai/backend/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Flowchart AI API
// @version 1.0
// @description Generates Mermaid flowcharts from process descriptions and refines them from follow-up instructions.

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.Default()
	if cfg.OpenAI.APIKey == "" {
		logger.Println("warning: OPENAI_API_KEY is not set, generation will return error diagrams")
	}

	// LLM traffic must not pick up proxies from the environment.
	httpClient := &http.Client{
		Transport: &http.Transport{Proxy: nil},
	}

	openaiClient := openai.NewClient(
		option.WithAPIKey(cfg.OpenAI.APIKey),
		option.WithBaseURL(cfg.OpenAI.BaseURL),
		option.WithHTTPClient(httpClient),
	)

	flowchartService := service.NewFlowchartService(logger, &openaiClient.Chat.Completions, cfg.OpenAI)

	if cfg.CacheEnable {
		flowchartService.SetCacheClient(cache.NewRedisCache(cfg.Redis))
		logger.Println("set redis as cache")
	}

	f := handler.NewFlowchartHandler(logger, flowchartService, cfg.Server.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.Logger,
		middleware.Recoverer,
		middleware.Throttle(cfg.Server.ThrottleLimit),
		middleware.Timeout(cfg.Server.Timeout),
		metrics.Middleware,
	}...)

	r.Get("/", f.Index)
	r.With(handler.RecoverJSON(logger, "An unexpected error occurred on the server.")).
		Post("/generate", f.Generate)
	r.With(handler.RecoverJSON(logger, "An unexpected error occurred during refinement.")).
		Post("/refine", f.Refine)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Printf("server started :%s\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Println("server stopped")
}
