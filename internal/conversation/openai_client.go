package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openaiDefaultBaseURL = "https://api.openai.com"

// OpenAIConfig describes how to reach the Chat Completions API.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// OpenAIClient implements LLMClient over Chat Completions.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewOpenAIClient validates the configuration and returns a ready-to-use client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: API key required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Tools       []openaiTool    `json:"tools,omitempty"`
	MaxTokens   int32           `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"`
	TopP        float32         `json:"top_p,omitempty"`
}

type openaiResponse struct {
	Choices []struct {
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int32 `json:"prompt_tokens"`
		CompletionTokens int32 `json:"completion_tokens"`
		TotalTokens      int32 `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to Chat Completions and normalizes the
// reply, lifting tool_calls into ToolInvocations.
func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	body := openaiRequest{
		Model:       req.Model,
		Messages:    openaiMessagesFrom(req.System, req.Messages),
		Tools:       openaiToolsFrom(req.Tools),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(data))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return LLMResponse{}, fmt.Errorf("openai: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded openaiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return LLMResponse{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return LLMResponse{}, errors.New("openai: response carried no choices")
	}

	choice := decoded.Choices[0]
	out := LLMResponse{
		Text:       choice.Message.Content,
		StopReason: choice.FinishReason,
	}
	out.Usage.InputTokens = decoded.Usage.PromptTokens
	out.Usage.OutputTokens = decoded.Usage.CompletionTokens
	out.Usage.TotalTokens = decoded.Usage.TotalTokens

	for _, call := range choice.Message.ToolCalls {
		inv, err := invocationFromOpenAI(call)
		if err != nil {
			return LLMResponse{}, err
		}
		out.ToolCalls = append(out.ToolCalls, inv)
	}
	return out, nil
}

// openaiMessagesFrom converts the internal transcript to Chat Completions
// shape. System prompts become leading system messages; tool results keep
// their role and call id.
func openaiMessagesFrom(system []string, messages []ChatMessage) []openaiMessage {
	out := make([]openaiMessage, 0, len(system)+len(messages))
	for _, prompt := range system {
		out = append(out, openaiMessage{Role: ChatRoleSystem, Content: prompt})
	}
	for _, msg := range messages {
		wire := openaiMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		for _, call := range msg.ToolCalls {
			args, _ := json.Marshal(call.Arguments)
			wire.ToolCalls = append(wire.ToolCalls, openaiToolCall{
				ID:   call.ProviderCallID,
				Type: "function",
				Function: openaiFunctionCall{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		out = append(out, wire)
	}
	return out
}
