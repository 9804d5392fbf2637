package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buybuddy-ai/buybuddy/internal/agents"
	"github.com/buybuddy-ai/buybuddy/internal/ai"
	"github.com/buybuddy-ai/buybuddy/internal/config"
	"github.com/buybuddy-ai/buybuddy/internal/db"
	"github.com/buybuddy-ai/buybuddy/internal/history"
	"github.com/buybuddy-ai/buybuddy/internal/httpapi"
	"github.com/buybuddy-ai/buybuddy/internal/search"
	"github.com/buybuddy-ai/buybuddy/internal/session"
	"github.com/buybuddy-ai/buybuddy/internal/store/rabbitmq"
	"github.com/buybuddy-ai/buybuddy/internal/workflow"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := history.AutoMigrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	repo := history.NewRepo(gdb)

	// session store
	var sessions session.Store
	switch strings.ToLower(cfg.SessionBackend) {
	case "", "memory":
		ms := session.NewMemoryStore(cfg.SessionTTL)
		defer ms.Close()
		sessions = ms
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
	default:
		log.Fatalf("unsupported SESSION_BACKEND=%q", cfg.SessionBackend)
	}

	// Provider registry (route by LLM_PROVIDER)
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	provider, err := reg.Get(context.Background(), cfg.LLMProvider, "")
	if err != nil {
		log.Fatalf("llm provider: %v", err)
	}

	// history recorder: queue when RabbitMQ is configured, direct writes otherwise
	var recorder history.Recorder
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit publisher: %v", err)
		}
		defer pub.Close()
		recorder = history.NewQueueRecorder(pub)
	} else {
		recorder = history.NewDBRecorder(repo)
	}

	searcher := search.NewClient(cfg.SerperBaseURL, cfg.SerperAPIKey)

	eng := workflow.NewEngine(
		agents.NewClassifier(provider),
		agents.NewExtractor(provider),
		searcher,
		agents.NewSummarizer(provider),
		sessions,
		recorder,
	)

	r := httpapi.NewRouter(cfg, eng, searcher, repo)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
