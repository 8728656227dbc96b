package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garagemdigital/autovendas-ai-platform/internal/api/router"
	"github.com/garagemdigital/autovendas-ai-platform/internal/cache"
	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
	appconfig "github.com/garagemdigital/autovendas-ai-platform/internal/config"
	"github.com/garagemdigital/autovendas-ai-platform/internal/conversation"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/internal/messaging"
	"github.com/garagemdigital/autovendas-ai-platform/internal/observability/metrics"
	"github.com/garagemdigital/autovendas-ai-platform/internal/scheduling"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting autovendas-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
	)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cache.New(rootCtx, cache.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisTLS:      cfg.RedisTLS,
	}, logger)

	// Relational stores are optional: without DATABASE_URL the process runs
	// on in-memory repositories and the compiled-in inventory.
	var (
		pool        *pgxpool.Pool
		leadRepo    leads.Repository                 = leads.NewInMemoryRepository()
		apptRepo    scheduling.AppointmentRepository = scheduling.NewInMemoryAppointmentRepository()
		catalogRepo catalog.Repository
		transcripts conversation.TranscriptStore
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(rootCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadRepo = leads.NewPostgresRepository(pool)
		apptRepo = scheduling.NewPostgresAppointmentRepository(pool)
		catalogRepo = catalog.NewPostgresRepository(pool)
		transcripts = conversation.NewPostgresTranscriptStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	catalogSvc := catalog.NewService(catalogRepo, logger)
	schedulingSvc := scheduling.NewService(apptRepo, leadRepo, catalogSvc, cfg.DealershipTimezone, logger)
	dispatcher := conversation.NewDispatcher(catalogSvc, schedulingSvc, leadRepo, logger)
	supervisor := conversation.NewSupervisor(catalogSvc, logger)
	historyStore := conversation.NewHistoryStore(c, cfg.ConversationTTL, cfg.HistoryMaxTurns, nil)

	llm, model := buildLLMClient(cfg, logger)

	convMetrics := metrics.NewConversationMetrics(nil)
	msgMetrics := metrics.NewMessagingMetrics(nil)

	engine := conversation.NewEngine(llm, c, historyStore, dispatcher, supervisor, transcripts, convMetrics, conversation.EngineConfig{
		Provider:        cfg.LLMProvider,
		Model:           model,
		DealershipName:  cfg.DealershipName,
		MaxTokens:       int32(cfg.LLMMaxTokens),
		LLMTimeout:      cfg.LLMTimeout,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}, logger)

	var sender messaging.MessageSender = messaging.NewLogSender(logger)
	if cfg.WhatsAppBaseURL != "" {
		client, err := messaging.NewWhatsAppClient(messaging.WhatsAppConfig{
			BaseURL:  cfg.WhatsAppBaseURL,
			APIKey:   cfg.WhatsAppAPIKey,
			Instance: cfg.WhatsAppInstance,
		})
		if err != nil {
			logger.Error("failed to build whatsapp client", "error", err)
			os.Exit(1)
		}
		sender = client
	} else {
		logger.Warn("WHATSAPP_BASE_URL not set, outbound messages go to the log")
	}

	var transcriber messaging.Transcriber
	if cfg.OpenAIAPIKey != "" {
		t, err := messaging.NewOpenAITranscriber(messaging.TranscriberConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.TranscriptionModel,
		})
		if err != nil {
			logger.Error("failed to build transcriber", "error", err)
			os.Exit(1)
		}
		transcriber = t
	}

	webhookHandler := messaging.NewHandler(engine, sender, transcriber, msgMetrics, logger)
	leadsHandler := leads.NewHandler(leadRepo, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		WebhookHandler:     webhookHandler,
		LeadsHandler:       leadsHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CacheBackend:       c.Backend(),
		WebhookRate:        20,
		WebhookBurst:       40,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "cache_backend", c.Backend())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLMClient selects the provider from configuration. A missing
// credential does not abort startup; the engine degrades every turn until
// the key arrives.
func buildLLMClient(cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, string) {
	switch cfg.LLMProvider {
	case conversation.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY not set, running degraded")
			return nil, cfg.OpenAIModelID
		}
		client, err := conversation.NewOpenAIClient(conversation.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			logger.Error("failed to build openai client", "error", err)
			return nil, cfg.OpenAIModelID
		}
		return client, cfg.OpenAIModelID
	case conversation.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			logger.Error("ANTHROPIC_API_KEY not set, running degraded")
			return nil, cfg.AnthropicModelID
		}
		client, err := conversation.NewAnthropicClient(conversation.AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			logger.Error("failed to build anthropic client", "error", err)
			return nil, cfg.AnthropicModelID
		}
		return client, cfg.AnthropicModelID
	default:
		logger.Error("unknown LLM_PROVIDER, running degraded", "provider", cfg.LLMProvider)
		return nil, ""
	}
}
