package leads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// Handler serves lead lookups for the sales team dashboard.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates the leads HTTP handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// GetByPhone handles GET /leads/{phone}.
func (h *Handler) GetByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if phone == "" {
		http.Error(w, "missing phone", http.StatusBadRequest)
		return
	}

	lead, err := h.repo.GetByPhone(r.Context(), phone)
	if errors.Is(err, ErrLeadNotFound) {
		http.Error(w, "lead not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("leads: lookup failed", "error", err, "phone", phone)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lead)
}
