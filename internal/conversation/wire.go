package conversation

import (
	"encoding/json"
	"fmt"
)

// Wire shapes for the two supported tool-calling dialects. Anthropic puts
// the schema under input_schema on a flat object; OpenAI nests name and
// parameters inside a typed function envelope and ships arguments as a
// JSON-encoded string. Everything past this file speaks ToolInvocation.

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// Tool result fields, only sent on user-role messages.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openaiToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openaiFunctionCall `json:"function"`
}

type openaiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func anthropicToolsFrom(defs []ToolDefinition) []anthropicTool {
	out := make([]anthropicTool, 0, len(defs))
	for _, def := range defs {
		out = append(out, anthropicTool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		})
	}
	return out
}

func openaiToolsFrom(defs []ToolDefinition) []openaiTool {
	out := make([]openaiTool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

// ToolsForProvider renders the capability set in the provider's dialect.
// The returned value is ready to embed in a request body.
func ToolsForProvider(defs []ToolDefinition, provider string) (any, error) {
	switch provider {
	case ProviderAnthropic:
		return anthropicToolsFrom(defs), nil
	case ProviderOpenAI:
		return openaiToolsFrom(defs), nil
	default:
		return nil, fmt.Errorf("conversation: unknown provider %q", provider)
	}
}

func invocationFromAnthropic(block anthropicContentBlock) (ToolInvocation, error) {
	args := map[string]any{}
	if len(block.Input) > 0 {
		if err := json.Unmarshal(block.Input, &args); err != nil {
			return ToolInvocation{}, fmt.Errorf("conversation: decode tool input for %s: %w", block.Name, err)
		}
	}
	return ToolInvocation{
		Name:           block.Name,
		Arguments:      args,
		ProviderCallID: block.ID,
	}, nil
}

func invocationFromOpenAI(call openaiToolCall) (ToolInvocation, error) {
	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return ToolInvocation{}, fmt.Errorf("conversation: decode tool arguments for %s: %w", call.Function.Name, err)
		}
	}
	return ToolInvocation{
		Name:           call.Function.Name,
		Arguments:      args,
		ProviderCallID: call.ID,
	}, nil
}
