package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool or tx.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("leads: database handle required")
	}
	return &PostgresRepository{db: db}
}

// UpsertByPhone loads the lead row keyed by phone, merging the request's
// non-zero fields and recomputing the score before writing back.
func (r *PostgresRepository) UpsertByPhone(ctx context.Context, req *UpsertLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead, err := r.GetByPhone(ctx, req.Phone)
	if err == ErrLeadNotFound {
		lead = &Lead{
			ID:        uuid.NewString(),
			Phone:     req.Phone,
			Status:    StatusNew,
			CreatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	applyUpsert(lead, req)
	lead.Score = Score(lead)
	if lead.Status == StatusNew && lead.Score >= 60 {
		lead.Status = StatusQualified
	}
	lead.UpdatedAt = now

	_, err = r.db.Exec(ctx, `
		INSERT INTO leads (
			id, name, phone, email, budget_text, payment_method, urgency,
			has_trade_in, vehicles_of_interest, appointment_set, score, status,
			conversation_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (phone) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			budget_text = EXCLUDED.budget_text,
			payment_method = EXCLUDED.payment_method,
			urgency = EXCLUDED.urgency,
			has_trade_in = EXCLUDED.has_trade_in,
			vehicles_of_interest = EXCLUDED.vehicles_of_interest,
			appointment_set = EXCLUDED.appointment_set,
			score = EXCLUDED.score,
			status = EXCLUDED.status,
			conversation_id = EXCLUDED.conversation_id,
			updated_at = EXCLUDED.updated_at
	`, lead.ID, lead.Name, lead.Phone, lead.Email, lead.BudgetText,
		lead.PaymentMethod, lead.Urgency, lead.HasTradeIn,
		lead.VehiclesOfInterest, lead.AppointmentSet, lead.Score, lead.Status,
		lead.ConversationID, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("leads: upsert failed: %w", err)
	}

	return lead, nil
}

// GetByPhone fetches a lead by phone number.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Lead, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, phone, email, budget_text, payment_method, urgency,
			   has_trade_in, vehicles_of_interest, appointment_set, score,
			   status, conversation_id, created_at, updated_at
		FROM leads
		WHERE phone = $1
	`, phone)

	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.BudgetText,
		&lead.PaymentMethod,
		&lead.Urgency,
		&lead.HasTradeIn,
		&lead.VehiclesOfInterest,
		&lead.AppointmentSet,
		&lead.Score,
		&lead.Status,
		&lead.ConversationID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return &lead, nil
}
