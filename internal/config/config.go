package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// LLM provider selection: "anthropic" or "openai".
	LLMProvider        string
	AnthropicAPIKey    string
	AnthropicModelID   string
	OpenAIAPIKey       string
	OpenAIModelID      string
	LLMTimeout         time.Duration
	LLMMaxTokens       int
	TranscriptionModel string

	// WhatsApp gateway (Evolution API).
	WhatsAppBaseURL  string
	WhatsAppAPIKey   string
	WhatsAppInstance string

	// Dealership scheduling rules.
	DealershipName     string
	DealershipTimezone string
	ConversationTTL    time.Duration
	HistoryMaxTurns    int

	// Per-sender rate limiting (fixed window).
	RateLimitMax    int
	RateLimitWindow time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		LLMProvider:        strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "anthropic"))),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModelID:   getEnv("ANTHROPIC_MODEL_ID", "claude-3-5-haiku-20241022"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModelID:      getEnv("OPENAI_MODEL_ID", "gpt-4o-mini"),
		LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 1024),
		TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "whisper-1"),

		WhatsAppBaseURL:  getEnv("WHATSAPP_BASE_URL", ""),
		WhatsAppAPIKey:   getEnv("WHATSAPP_API_KEY", ""),
		WhatsAppInstance: getEnv("WHATSAPP_INSTANCE", "vendas"),

		DealershipName:     getEnv("DEALERSHIP_NAME", "Garagem Digital Seminovos"),
		DealershipTimezone: getEnv("DEALERSHIP_TZ", "America/Fortaleza"),
		ConversationTTL:    getEnvAsDuration("CONVERSATION_TTL", 24*time.Hour),
		HistoryMaxTurns:    getEnvAsInt("HISTORY_MAX_TURNS", 20),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 15),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
