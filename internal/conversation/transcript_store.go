package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// TranscriptEntry is one audited message, separate from the cached history
// window: the cache expires, the audit trail does not.
type TranscriptEntry struct {
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// TranscriptStore appends messages to the durable audit trail.
type TranscriptStore interface {
	Append(ctx context.Context, entries []TranscriptEntry) error
}

type transcriptDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresTranscriptStore writes transcript rows via pgx.
type PostgresTranscriptStore struct {
	db transcriptDB
}

func NewPostgresTranscriptStore(db transcriptDB) *PostgresTranscriptStore {
	if db == nil {
		panic("conversation: database handle required")
	}
	return &PostgresTranscriptStore{db: db}
}

func (s *PostgresTranscriptStore) Append(ctx context.Context, entries []TranscriptEntry) error {
	for _, entry := range entries {
		_, err := s.db.Exec(ctx, `
			INSERT INTO conversation_transcripts (id, conversation_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), entry.ConversationID, entry.Role, entry.Content, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("conversation: append transcript: %w", err)
		}
	}
	return nil
}
