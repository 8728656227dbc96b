package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("RATE_LIMIT_MAX", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Fatalf("expected anthropic default, got %s", cfg.LLMProvider)
	}
	if cfg.RateLimitMax != 15 {
		t.Fatalf("expected default rate limit, got %d", cfg.RateLimitMax)
	}
	if cfg.ConversationTTL != 24*time.Hour {
		t.Fatalf("expected 24h TTL, got %s", cfg.ConversationTTL)
	}
	if cfg.HistoryMaxTurns != 20 {
		t.Fatalf("expected 20 turns, got %d", cfg.HistoryMaxTurns)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_TIMEOUT", "10s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.LLMProvider != "openai" {
		t.Fatalf("provider should be lowercased, got %s", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.LLMTimeout)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected TLS enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")
	cfg := Load()
	if cfg.RateLimitWindow != time.Minute {
		t.Fatalf("expected fallback window, got %s", cfg.RateLimitWindow)
	}
}
