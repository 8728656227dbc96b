package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garagemdigital/autovendas-ai-platform/internal/cache"
	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/internal/scheduling"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// scriptedLLM replays canned responses in order, repeating the last one.
type scriptedLLM struct {
	responses []LLMResponse
	err       error
	calls     int
}

func (s *scriptedLLM) Complete(_ context.Context, _ LLMRequest) (LLMResponse, error) {
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx], nil
}

func newTestEngine(t *testing.T, llm LLMClient, cfg EngineConfig) (*Engine, *cache.Cache, *HistoryStore) {
	t.Helper()
	logger := logging.Default()
	c := cache.NewWithStore(cache.NewMemoryStore(), logger)
	history := NewHistoryStore(c, time.Hour, 20, nil)
	catalogSvc := catalog.NewService(nil, logger)
	leadRepo := leads.NewInMemoryRepository()
	schedulingSvc := scheduling.NewService(
		scheduling.NewInMemoryAppointmentRepository(), leadRepo, catalogSvc, "UTC", logger)
	dispatcher := NewDispatcher(catalogSvc, schedulingSvc, leadRepo, logger)
	supervisor := NewSupervisor(catalogSvc, logger)
	engine := NewEngine(llm, c, history, dispatcher, supervisor, nil, nil, cfg, logger)
	return engine, c, history
}

func TestProcessMessageToolLoop(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{
			ToolCalls: []ToolInvocation{{
				Name:           ToolFindVehicles,
				Arguments:      map[string]any{"budget": "até 100 mil"},
				ProviderCallID: "toolu_1",
			}},
			StopReason: "tool_use",
		},
		{
			Text:       "Tenho uma Strada Freedom por R$ 98.500, quer agendar uma visita?",
			StopReason: "end_turn",
		},
	}}
	engine, _, history := newTestEngine(t, llm, EngineConfig{})

	resp, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "5585999999999",
		Message:        "tenho uns 100 mil pra gastar",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.calls != 2 {
		t.Fatalf("expected two model calls, got %d", llm.calls)
	}
	if resp.Message == "" || resp.Message == degradedReply {
		t.Fatalf("expected the model reply, got %q", resp.Message)
	}

	turns, err := history.Load(context.Background(), "5585999999999")
	if err != nil {
		t.Fatalf("history load: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected user+assistant turns persisted, got %d", len(turns))
	}
	if turns[0].Role != ChatRoleUser || turns[1].Role != ChatRoleAssistant {
		t.Fatalf("unexpected turn roles: %+v", turns)
	}
}

func TestProcessMessageRateLimited(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{Text: "Oi! Como posso ajudar?"}}}
	engine, _, _ := newTestEngine(t, llm, EngineConfig{RateLimitMax: 1, RateLimitWindow: time.Minute})

	if _, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "conv-1", Message: "oi",
	}); err != nil {
		t.Fatalf("first message: %v", err)
	}
	resp, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "conv-1", Message: "oi de novo",
	})
	if err != nil {
		t.Fatalf("second message: %v", err)
	}
	if resp.Message != rateLimitedReply {
		t.Fatalf("expected rate limit reply, got %q", resp.Message)
	}
	if llm.calls != 1 {
		t.Fatalf("rate-limited turn must not reach the model, calls=%d", llm.calls)
	}
}

func TestProcessMessageBusyWhenLocked(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{Text: "Oi!"}}}
	engine, c, _ := newTestEngine(t, llm, EngineConfig{})

	if !c.AcquireLock(context.Background(), "conversation:conv-2", time.Minute) {
		t.Fatal("setup: lock acquisition failed")
	}
	resp, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "conv-2", Message: "oi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != busyReply {
		t.Fatalf("expected busy reply, got %q", resp.Message)
	}
	if llm.calls != 0 {
		t.Fatal("locked turn must not reach the model")
	}
}

func TestProcessMessageDegradesOnModelFailure(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("context deadline exceeded")}
	engine, _, history := newTestEngine(t, llm, EngineConfig{})

	resp, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "conv-3", Message: "oi",
	})
	if err != nil {
		t.Fatalf("model failures must not surface as errors: %v", err)
	}
	if resp.Message != degradedReply {
		t.Fatalf("expected degraded reply, got %q", resp.Message)
	}

	turns, err := history.Load(context.Background(), "conv-3")
	if err != nil {
		t.Fatalf("history load: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("degraded turns must still be persisted, got %d", len(turns))
	}
}

func TestProcessMessageDegradesWithoutClient(t *testing.T) {
	engine, _, _ := newTestEngine(t, nil, EngineConfig{})
	resp, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "conv-4", Message: "oi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != degradedReply {
		t.Fatalf("expected degraded reply, got %q", resp.Message)
	}
}

func TestProcessMessageSupervisorBlocksFabricatedQuote(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{
		Text: "O Onix sai por R$ 45.000, fechamos?",
	}}}
	engine, _, _ := newTestEngine(t, llm, EngineConfig{})

	resp, err := engine.ProcessMessage(context.Background(), MessageRequest{
		ConversationID: "conv-5", Message: "quanto custa o onix?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != fatalReplacement {
		t.Fatalf("fabricated quote must be replaced, got %q", resp.Message)
	}
}

func TestProcessMessageRejectsEmptyInput(t *testing.T) {
	engine, _, _ := newTestEngine(t, &scriptedLLM{responses: []LLMResponse{{Text: "oi"}}}, EngineConfig{})
	if _, err := engine.ProcessMessage(context.Background(), MessageRequest{ConversationID: "c"}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := engine.ProcessMessage(context.Background(), MessageRequest{Message: "oi"}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}
