package main

import (
	"testing"

	appconfig "github.com/garagemdigital/autovendas-ai-platform/internal/config"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

func TestBuildLLMClientDegradedWithoutKey(t *testing.T) {
	logger := logging.New("error")

	cfg := &appconfig.Config{
		LLMProvider:      "anthropic",
		AnthropicModelID: "claude-3-5-haiku-20241022",
	}
	client, model := buildLLMClient(cfg, logger)
	if client != nil {
		t.Fatalf("expected nil client without a credential")
	}
	if model != "claude-3-5-haiku-20241022" {
		t.Fatalf("unexpected model: %s", model)
	}
}

func TestBuildLLMClientOpenAI(t *testing.T) {
	logger := logging.New("error")

	cfg := &appconfig.Config{
		LLMProvider:   "openai",
		OpenAIAPIKey:  "sk-test",
		OpenAIModelID: "gpt-4o-mini",
	}
	client, model := buildLLMClient(cfg, logger)
	if client == nil {
		t.Fatalf("expected client with credential present")
	}
	if model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", model)
	}
}

func TestBuildLLMClientUnknownProvider(t *testing.T) {
	logger := logging.New("error")

	client, model := buildLLMClient(&appconfig.Config{LLMProvider: "bedrock"}, logger)
	if client != nil || model != "" {
		t.Fatalf("expected degraded result for unknown provider, got %v %q", client, model)
	}
}
