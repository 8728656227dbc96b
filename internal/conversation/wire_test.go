package conversation

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestToolsForProviderAnthropicShape(t *testing.T) {
	rendered, err := ToolsForProvider(AgentTools(), ProviderAnthropic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(rendered)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(data)
	if !strings.Contains(payload, `"input_schema"`) {
		t.Fatalf("anthropic tools must carry input_schema: %s", payload)
	}
	if strings.Contains(payload, `"function"`) {
		t.Fatalf("anthropic tools must not use the function envelope: %s", payload)
	}
}

func TestToolsForProviderOpenAIShape(t *testing.T) {
	rendered, err := ToolsForProvider(AgentTools(), ProviderOpenAI)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(rendered)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(data)
	if !strings.Contains(payload, `"type":"function"`) {
		t.Fatalf("openai tools must be typed function envelopes: %s", payload)
	}
	if !strings.Contains(payload, `"parameters"`) {
		t.Fatalf("openai tools must carry parameters: %s", payload)
	}
	if strings.Contains(payload, `"input_schema"`) {
		t.Fatalf("openai tools must not leak the anthropic schema key: %s", payload)
	}
}

func TestToolsForProviderUnknown(t *testing.T) {
	if _, err := ToolsForProvider(AgentTools(), "gemini"); err == nil {
		t.Fatal("expected an error for an unsupported provider")
	}
}

func TestInvocationFromAnthropic(t *testing.T) {
	inv, err := invocationFromAnthropic(anthropicContentBlock{
		Type:  "tool_use",
		ID:    "toolu_123",
		Name:  ToolFindVehicles,
		Input: json.RawMessage(`{"budget":"até 100 mil","categories":["suv"]}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Name != ToolFindVehicles || inv.ProviderCallID != "toolu_123" {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if inv.Arguments["budget"] != "até 100 mil" {
		t.Fatalf("arguments not decoded: %+v", inv.Arguments)
	}
}

func TestInvocationFromOpenAIDecodesStringArguments(t *testing.T) {
	inv, err := invocationFromOpenAI(openaiToolCall{
		ID:   "call_abc",
		Type: "function",
		Function: openaiFunctionCall{
			Name:      ToolSaveLead,
			Arguments: `{"phone":"85999999999","has_trade_in":true}`,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Name != ToolSaveLead || inv.ProviderCallID != "call_abc" {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if inv.Arguments["has_trade_in"] != true {
		t.Fatalf("arguments not decoded: %+v", inv.Arguments)
	}
}

func TestInvocationFromOpenAIRejectsMalformedArguments(t *testing.T) {
	_, err := invocationFromOpenAI(openaiToolCall{
		Function: openaiFunctionCall{Name: ToolSaveLead, Arguments: `{"phone":`},
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestInvocationEmptyArgumentsYieldEmptyMap(t *testing.T) {
	inv, err := invocationFromOpenAI(openaiToolCall{
		Function: openaiFunctionCall{Name: ToolFindVehicles},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Arguments == nil {
		t.Fatal("arguments map must never be nil")
	}
}
