package leads

import (
	"math"
	"strings"

	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
)

// Weighted contribution of each qualification axis.
const (
	budgetWeight  = 0.3
	urgencyWeight = 0.4
	paymentWeight = 0.2

	tradeInBonus       = 5
	emailBonus         = 3
	appointmentBonus   = 10
	multiInterestBonus = 5
)

// Score maps a lead's qualification attributes to a 0-100 score. It is a
// pure function of the lead's fields: absent optional fields contribute
// zero and the same lead always produces the same score.
func Score(l *Lead) int {
	if l == nil {
		return 0
	}

	weighted := budgetWeight*float64(budgetBracket(l.BudgetText)) +
		urgencyWeight*float64(urgencyBracket(l.Urgency)) +
		paymentWeight*float64(paymentBracket(l.PaymentMethod))

	score := int(math.Round(weighted))
	if l.HasTradeIn {
		score += tradeInBonus
	}
	if strings.TrimSpace(l.Email) != "" {
		score += emailBonus
	}
	if l.AppointmentSet {
		score += appointmentBonus
	}
	if len(l.VehiclesOfInterest) > 1 {
		score += multiInterestBonus
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func budgetBracket(budgetText string) int {
	if strings.TrimSpace(budgetText) == "" {
		return 0
	}
	ceiling := catalog.ParseBudgetCeiling(budgetText)
	switch {
	case ceiling >= 150000:
		return 100
	case ceiling >= 100000:
		return 85
	case ceiling >= 60000:
		return 70
	case ceiling >= 30000:
		return 50
	default:
		return 30
	}
}

func urgencyBracket(urgency string) int {
	switch NormalizeUrgency(urgency) {
	case UrgencyAlta:
		return 100
	case UrgencyMedia:
		return 60
	case UrgencyBaixa:
		return 30
	default:
		return 0
	}
}

func paymentBracket(method string) int {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "a_vista", "à vista", "a vista", "pix":
		return 100
	case "financiamento", "financiado":
		return 70
	case "consorcio", "consórcio":
		return 50
	default:
		return 0
	}
}
