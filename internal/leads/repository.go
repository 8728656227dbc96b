package leads

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	// UpsertByPhone finds the lead with the given phone or creates it, then
	// applies the non-zero request fields and recomputes the score.
	UpsertByPhone(ctx context.Context, req *UpsertLeadRequest) (*Lead, error)
	GetByPhone(ctx context.Context, phone string) (*Lead, error)
}

// InMemoryRepository keeps leads in a process-local map. Used in tests and
// when the relational store is not configured.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead // keyed by phone
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// UpsertByPhone creates or updates the lead keyed by phone.
func (r *InMemoryRepository) UpsertByPhone(_ context.Context, req *UpsertLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	lead, ok := r.leads[req.Phone]
	if !ok {
		lead = &Lead{
			ID:        uuid.NewString(),
			Phone:     req.Phone,
			Status:    StatusNew,
			CreatedAt: now,
		}
		r.leads[req.Phone] = lead
	}

	applyUpsert(lead, req)
	lead.Score = Score(lead)
	if lead.Status == StatusNew && lead.Score >= 60 {
		lead.Status = StatusQualified
	}
	lead.UpdatedAt = now

	copied := *lead
	return &copied, nil
}

// GetByPhone retrieves a lead by phone number.
func (r *InMemoryRepository) GetByPhone(_ context.Context, phone string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[phone]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// applyUpsert folds the request's non-zero fields into the stored lead.
func applyUpsert(lead *Lead, req *UpsertLeadRequest) {
	if v := strings.TrimSpace(req.Name); v != "" {
		lead.Name = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		lead.Email = v
	}
	if v := strings.TrimSpace(req.BudgetText); v != "" {
		lead.BudgetText = v
	}
	if v := strings.TrimSpace(req.PaymentMethod); v != "" {
		lead.PaymentMethod = v
	}
	if v := NormalizeUrgency(req.Urgency); v != "" {
		lead.Urgency = v
	}
	if req.HasTradeIn {
		lead.HasTradeIn = true
	}
	if req.AppointmentSet {
		lead.AppointmentSet = true
		lead.Status = StatusScheduled
	}
	if v := strings.TrimSpace(req.ConversationID); v != "" {
		lead.ConversationID = v
	}
	for _, vehicle := range req.VehiclesOfInterest {
		vehicle = strings.TrimSpace(vehicle)
		if vehicle == "" {
			continue
		}
		exists := false
		for _, known := range lead.VehiclesOfInterest {
			if strings.EqualFold(known, vehicle) {
				exists = true
				break
			}
		}
		if !exists {
			lead.VehiclesOfInterest = append(lead.VehiclesOfInterest, vehicle)
		}
	}
}
