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

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicConfig describes how to reach the Anthropic Messages API.
type AnthropicConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AnthropicClient implements LLMClient over the Messages API.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewAnthropicClient validates the configuration and returns a ready-to-use client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic: API key required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnthropicClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int32              `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
	TopP        float32            `json:"top_p,omitempty"`
}

type anthropicResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int32 `json:"input_tokens"`
		OutputTokens int32 `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to the Messages API and normalizes the
// reply, lifting tool_use blocks into ToolInvocations.
func (c *AnthropicClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      strings.Join(req.System, "\n\n"),
		Messages:    anthropicMessagesFrom(req.Messages),
		Tools:       anthropicToolsFrom(req.Tools),
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("anthropic: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(data))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("anthropic: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("anthropic: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return LLMResponse{}, fmt.Errorf("anthropic: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return LLMResponse{}, fmt.Errorf("anthropic: decode response: %w", err)
	}

	out := LLMResponse{StopReason: decoded.StopReason}
	out.Usage.InputTokens = decoded.Usage.InputTokens
	out.Usage.OutputTokens = decoded.Usage.OutputTokens
	out.Usage.TotalTokens = decoded.Usage.InputTokens + decoded.Usage.OutputTokens

	var text strings.Builder
	for _, block := range decoded.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			inv, err := invocationFromAnthropic(block)
			if err != nil {
				return LLMResponse{}, err
			}
			out.ToolCalls = append(out.ToolCalls, inv)
		}
	}
	out.Text = text.String()
	return out, nil
}

// anthropicMessagesFrom converts the internal transcript to Messages API
// shape. Tool results ride on user-role messages as tool_result blocks;
// consecutive results are merged into one message as the API requires.
func anthropicMessagesFrom(messages []ChatMessage) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case ChatRoleTool:
			block := anthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   msg.Content,
			}
			if n := len(out); n > 0 && out[n-1].Role == ChatRoleUser && out[n-1].Content[0].Type == "tool_result" {
				out[n-1].Content = append(out[n-1].Content, block)
				continue
			}
			out = append(out, anthropicMessage{
				Role:    ChatRoleUser,
				Content: []anthropicContentBlock{block},
			})
		case ChatRoleAssistant:
			blocks := make([]anthropicContentBlock, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropicContentBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				input, _ := json.Marshal(call.Arguments)
				blocks = append(blocks, anthropicContentBlock{
					Type:  "tool_use",
					ID:    call.ProviderCallID,
					Name:  call.Name,
					Input: input,
				})
			}
			out = append(out, anthropicMessage{Role: ChatRoleAssistant, Content: blocks})
		default:
			out = append(out, anthropicMessage{
				Role:    ChatRoleUser,
				Content: []anthropicContentBlock{{Type: "text", Text: msg.Content}},
			})
		}
	}
	return out
}
