package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/garagemdigital/autovendas-ai-platform/internal/http/middleware"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/internal/messaging"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	WebhookHandler     *messaging.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// CacheBackend is reported on /health so operators can tell at a
	// glance whether the process is running on Redis or the fallback.
	CacheBackend string

	// WebhookRate limits inbound webhook requests per second per IP.
	// Zero disables the limiter.
	WebhookRate  float64
	WebhookBurst int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.CacheBackend))

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WebhookHandler != nil {
		r.Group(func(hooks chi.Router) {
			if cfg.WebhookRate > 0 {
				hooks.Use(httpmiddleware.RateLimit(cfg.WebhookRate, cfg.WebhookBurst))
			}
			hooks.Post("/webhooks/whatsapp", cfg.WebhookHandler.Webhook)
		})
	}

	if cfg.LeadsHandler != nil {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/{phone}", cfg.LeadsHandler.GetByPhone)
		})
	}

	return r
}

func healthHandler(cacheBackend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":        "ok",
			"cache_backend": cacheBackend,
		})
	}
}
