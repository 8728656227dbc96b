package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/garagemdigital/autovendas-ai-platform/internal/cache"
)

// HistoryStore keeps the bounded conversation transcript in the cache
// layer, so it works the same over Redis and the in-process fallback.
type HistoryStore struct {
	cache    *cache.Cache
	tracer   trace.Tracer
	ttl      time.Duration
	maxTurns int
}

// NewHistoryStore builds the store. ttl renews on every save; maxTurns
// bounds how many transcript entries survive a save.
func NewHistoryStore(c *cache.Cache, ttl time.Duration, maxTurns int, tracer trace.Tracer) *HistoryStore {
	if c == nil {
		panic("conversation: cache required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if tracer == nil {
		tracer = otel.Tracer("autovendas.internal.conversation.history")
	}
	return &HistoryStore{
		cache:    c,
		tracer:   tracer,
		ttl:      ttl,
		maxTurns: maxTurns,
	}
}

// Save persists the transcript, keeping only the newest maxTurns entries,
// and renews the TTL.
func (s *HistoryStore) Save(ctx context.Context, conversationID string, history []ConversationTurn) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_history")
	defer span.End()

	if len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	if err := s.cache.SetJSON(ctx, conversationKey(conversationID), history, s.ttl); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: persist history: %w", err)
	}
	return nil
}

// Load returns the stored transcript. A conversation that was never seen,
// or whose entry expired, comes back as an empty slice.
func (s *HistoryStore) Load(ctx context.Context, conversationID string) ([]ConversationTurn, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	var history []ConversationTurn
	err := s.cache.GetJSON(ctx, conversationKey(conversationID), &history)
	if errors.Is(err, cache.ErrNotFound) {
		return []ConversationTurn{}, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load history: %w", err)
	}
	return history, nil
}

// Delete drops the transcript, ending the conversation.
func (s *HistoryStore) Delete(ctx context.Context, conversationID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.delete_history")
	defer span.End()

	if err := s.cache.Delete(ctx, conversationKey(conversationID)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: delete history: %w", err)
	}
	return nil
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}
