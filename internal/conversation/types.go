package conversation

import (
	"context"
	"time"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleTool      = "tool"
)

// Providers whose tool-calling wire conventions are supported.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ChatMessage is the internal message representation shared by both
// provider clients. Tool traffic uses ToolCalls on assistant messages and
// ToolCallID+Name on tool-result messages; provider-specific field names
// never leave the wire layer.
type ChatMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ToolInvocation `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

// ToolDefinition describes one capability offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolInvocation is a structured tool request parsed from a model response.
// Created by the wire layer, consumed exactly once by the dispatcher, and
// discarded after its result is folded into the next model call.
type ToolInvocation struct {
	Name           string         `json:"name"`
	Arguments      map[string]any `json:"arguments"`
	ProviderCallID string         `json:"provider_call_id,omitempty"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	Tools       []ToolDefinition
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	ToolCalls  []ToolInvocation
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// ConversationTurn is one entry of the bounded transcript window.
type ConversationTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageRequest is one inbound message to process.
type MessageRequest struct {
	ConversationID string
	From           string
	Message        string
	Timestamp      time.Time
}

// Response is the processed outcome of a turn.
type Response struct {
	ConversationID string
	Message        string
	Timestamp      time.Time
}

// Service processes conversation turns.
type Service interface {
	ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error)
}
