package leads

import (
	"strings"
	"time"
)

// Urgency buckets reported by the qualification tools.
const (
	UrgencyAlta  = "alta"
	UrgencyMedia = "media"
	UrgencyBaixa = "baixa"
)

// Lead statuses.
const (
	StatusNew       = "novo"
	StatusQualified = "qualificado"
	StatusScheduled = "agendado"
)

// Lead is a prospect captured from a WhatsApp conversation.
type Lead struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email,omitempty"`
	BudgetText         string    `json:"budget_text,omitempty"`
	PaymentMethod      string    `json:"payment_method,omitempty"`
	Urgency            string    `json:"urgency,omitempty"`
	HasTradeIn         bool      `json:"has_trade_in"`
	VehiclesOfInterest []string  `json:"vehicles_of_interest,omitempty"`
	AppointmentSet     bool      `json:"appointment_set"`
	Score              int       `json:"score"`
	Status             string    `json:"status"`
	ConversationID     string    `json:"conversation_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UpsertLeadRequest carries the fields the save_lead tool may set. Zero
// values leave the stored column untouched on update.
type UpsertLeadRequest struct {
	Name               string
	Phone              string
	Email              string
	BudgetText         string
	PaymentMethod      string
	Urgency            string
	HasTradeIn         bool
	VehiclesOfInterest []string
	AppointmentSet     bool
	ConversationID     string
}

// Validate checks the minimal identity fields.
func (r *UpsertLeadRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingContact
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// NormalizeUrgency maps free-form urgency text to one of the known buckets,
// defaulting to media.
func NormalizeUrgency(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case UrgencyAlta, "urgente", "imediata":
		return UrgencyAlta
	case UrgencyBaixa, "sem pressa":
		return UrgencyBaixa
	case "":
		return ""
	default:
		return UrgencyMedia
	}
}
