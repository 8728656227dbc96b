package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/garagemdigital/autovendas-ai-platform/internal/cache"
	"github.com/garagemdigital/autovendas-ai-platform/internal/observability/metrics"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// Replies produced without a model call. Every turn answers something, even
// when the engine is rate limited, locked out, or degraded.
const (
	rateLimitedReply = "Opa, recebi várias mensagens suas de uma vez! Me dá um minutinho para responder tudo com calma, combinado?"
	busyReply        = "Ainda estou terminando de responder sua mensagem anterior. Já te respondo!"
	degradedReply    = "Estou com uma instabilidade no sistema agora. Pode me mandar sua mensagem de novo em alguns minutos? Se preferir, liga pra loja que o time te atende na hora."
	emptyModelReply  = "Me conta um pouco mais do que você procura? Assim consigo te ajudar melhor."
)

// maxToolRounds bounds how many dispatch-and-retry cycles one turn may do
// before the engine answers with whatever text it has.
const maxToolRounds = 3

// ErrEmptyMessage rejects turns with no conversation id or no text.
var ErrEmptyMessage = errors.New("conversation: empty message or conversation id")

// EngineConfig carries the turn-loop tuning knobs.
type EngineConfig struct {
	Provider        string
	Model           string
	DealershipName  string
	MaxTokens       int32
	Temperature     float32
	LLMTimeout      time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	LockTTL         time.Duration
}

// Engine runs the full conversation turn: rate limit, lock, history, model,
// tools, supervision, persistence, reply.
type Engine struct {
	llm         LLMClient
	cache       *cache.Cache
	history     *HistoryStore
	dispatcher  *Dispatcher
	supervisor  *Supervisor
	transcripts TranscriptStore
	metrics     *metrics.ConversationMetrics
	logger      *logging.Logger
	cfg         EngineConfig
}

// NewEngine wires the turn engine. llm may be nil when no provider
// credential is configured; the engine then answers every turn with the
// degraded reply instead of failing at startup. transcripts and m may be
// nil.
func NewEngine(llm LLMClient, c *cache.Cache, history *HistoryStore, dispatcher *Dispatcher, supervisor *Supervisor, transcripts TranscriptStore, m *metrics.ConversationMetrics, cfg EngineConfig, logger *logging.Logger) *Engine {
	if c == nil {
		panic("conversation: cache required")
	}
	if history == nil {
		panic("conversation: history store required")
	}
	if dispatcher == nil {
		panic("conversation: dispatcher required")
	}
	if supervisor == nil {
		panic("conversation: supervisor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 30 * time.Second
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 15
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 90 * time.Second
	}
	return &Engine{
		llm:         llm,
		cache:       c,
		history:     history,
		dispatcher:  dispatcher,
		supervisor:  supervisor,
		transcripts: transcripts,
		metrics:     m,
		logger:      logger,
		cfg:         cfg,
	}
}

// ProcessMessage handles one inbound customer message end to end. It always
// returns a reply; infrastructure failures degrade the answer instead of
// surfacing as errors to the transport layer.
func (e *Engine) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	conversationID := strings.TrimSpace(req.ConversationID)
	message := strings.TrimSpace(req.Message)
	if conversationID == "" || message == "" {
		return nil, ErrEmptyMessage
	}

	allowed, remaining, _ := e.cache.RateLimit(ctx, conversationID, e.cfg.RateLimitMax, e.cfg.RateLimitWindow)
	if !allowed {
		e.logger.Warn("conversation: rate limited", "conversation_id", conversationID)
		e.metrics.ObserveTurn("rate_limited")
		return e.reply(conversationID, rateLimitedReply), nil
	}
	if remaining <= 2 {
		e.logger.Info("conversation: rate limit nearly exhausted", "conversation_id", conversationID, "remaining", remaining)
	}

	if !e.cache.AcquireLock(ctx, "conversation:"+conversationID, e.cfg.LockTTL) {
		e.metrics.ObserveTurn("locked")
		return e.reply(conversationID, busyReply), nil
	}
	defer e.cache.ReleaseLock(ctx, "conversation:"+conversationID)

	history, err := e.history.Load(ctx, conversationID)
	if err != nil {
		// A lost window is recoverable; the turn continues without context.
		e.logger.Error("conversation: history load failed", "error", err, "conversation_id", conversationID)
		history = []ConversationTurn{}
	}

	now := req.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	text, toolsInvoked, ok := e.runModelLoop(ctx, conversationID, history, message)
	if !ok {
		e.metrics.ObserveTurn("degraded")
		e.persistTurn(ctx, conversationID, history, message, degradedReply, now)
		return e.reply(conversationID, degradedReply), nil
	}
	if strings.TrimSpace(text) == "" {
		text = emptyModelReply
	}

	verdict := e.supervisor.Review(ctx, SupervisorRequest{
		ConversationID: conversationID,
		Draft:          text,
		ToolsInvoked:   toolsInvoked,
		History:        history,
	})
	e.metrics.ObserveVerdict(verdict.Severity)
	switch verdict.Severity {
	case VerdictFatal:
		e.logger.Error("conversation: draft blocked by supervisor",
			"conversation_id", conversationID, "reasons", strings.Join(verdict.Reasons, "; "))
		text = verdict.Replacement
	case VerdictWarning, VerdictSuggestion:
		e.logger.Warn("conversation: supervisor flagged draft",
			"conversation_id", conversationID, "severity", verdict.Severity,
			"reasons", strings.Join(verdict.Reasons, "; "))
	}

	e.persistTurn(ctx, conversationID, history, message, text, now)
	e.metrics.ObserveTurn("ok")
	return e.reply(conversationID, text), nil
}

// runModelLoop performs the first completion and up to maxToolRounds
// dispatch cycles. ok is false when the model is unavailable and the caller
// should degrade.
func (e *Engine) runModelLoop(ctx context.Context, conversationID string, history []ConversationTurn, message string) (string, []string, bool) {
	if e.llm == nil {
		e.logger.Error("conversation: no llm client configured")
		return "", nil, false
	}

	messages := make([]ChatMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: message})

	var toolsInvoked []string
	for round := 0; ; round++ {
		resp, err := e.complete(ctx, messages)
		if err != nil {
			e.logger.Error("conversation: model call failed", "error", err, "round", round)
			return "", toolsInvoked, false
		}
		if len(resp.ToolCalls) == 0 || round >= maxToolRounds {
			return resp.Text, toolsInvoked, true
		}

		results := e.dispatcher.DispatchAll(ctx, resp.ToolCalls, conversationID)
		messages = append(messages, ChatMessage{
			Role:      ChatRoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, result := range results {
			status := "ok"
			if result.IsError {
				status = "error"
			}
			e.metrics.ObserveToolCall(result.Name, status)
			toolsInvoked = append(toolsInvoked, result.Name)
			messages = append(messages, ChatMessage{
				Role:       ChatRoleTool,
				Content:    result.JSON(),
				ToolCallID: result.ProviderCallID,
				Name:       result.Name,
			})
		}
	}
}

func (e *Engine) complete(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.LLMTimeout)
	defer cancel()
	start := time.Now()
	// The prompt is rebuilt every call so the baked-in date never goes
	// stale on a long-lived process.
	resp, err := e.llm.Complete(callCtx, LLMRequest{
		Model:       e.cfg.Model,
		System:      []string{BuildSystemPrompt(e.cfg.DealershipName, time.Now())},
		Messages:    messages,
		Tools:       AgentTools(),
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	e.metrics.ObserveLLMLatency(e.cfg.Provider, time.Since(start).Seconds())
	return resp, err
}

// persistTurn saves the bounded window synchronously and kicks the durable
// audit append off the request path.
func (e *Engine) persistTurn(ctx context.Context, conversationID string, history []ConversationTurn, userText, assistantText string, now time.Time) {
	updated := append(history,
		ConversationTurn{Role: ChatRoleUser, Content: userText, Timestamp: now},
		ConversationTurn{Role: ChatRoleAssistant, Content: assistantText, Timestamp: time.Now().UTC()},
	)
	if err := e.history.Save(ctx, conversationID, updated); err != nil {
		e.logger.Error("conversation: history save failed", "error", err, "conversation_id", conversationID)
	}

	if e.transcripts == nil {
		return
	}
	entries := []TranscriptEntry{
		{ConversationID: conversationID, Role: ChatRoleUser, Content: userText, CreatedAt: now},
		{ConversationID: conversationID, Role: ChatRoleAssistant, Content: assistantText, CreatedAt: time.Now().UTC()},
	}
	go func() {
		auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := e.transcripts.Append(auditCtx, entries); err != nil {
			e.logger.Error("conversation: transcript audit failed", "error", err, "conversation_id", conversationID)
		}
	}()
}

func (e *Engine) reply(conversationID, text string) *Response {
	return &Response{
		ConversationID: conversationID,
		Message:        text,
		Timestamp:      time.Now().UTC(),
	}
}
