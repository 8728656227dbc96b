package conversation

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/garagemdigital/autovendas-ai-platform/internal/catalog"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// Verdict severities. Fatal verdicts replace the draft before it reaches the
// customer; warnings and suggestions are logged and let the draft through.
const (
	VerdictOK         = "ok"
	VerdictSuggestion = "suggestion"
	VerdictWarning    = "warning"
	VerdictFatal      = "fatal"
)

// Verdict is the outcome of reviewing one draft reply.
type Verdict struct {
	Severity string
	Reasons  []string
	// Replacement carries the safe fallback text when Severity is fatal.
	Replacement string
}

// SupervisorRequest captures the turn context needed to review a draft.
type SupervisorRequest struct {
	ConversationID string
	Draft          string
	ToolsInvoked   []string
	History        []ConversationTurn
}

// Supervisor runs deterministic checks on draft replies before they are
// sent. It never calls a model; every rule is a regex or a store lookup, so
// a review can not time out or hallucinate on its own.
type Supervisor struct {
	catalog *catalog.Service
	logger  *logging.Logger
}

// NewSupervisor builds the reviewer. catalogSvc may be nil, which disables
// the inventory consistency check but keeps every other rule active.
func NewSupervisor(catalogSvc *catalog.Service, logger *logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Supervisor{catalog: catalogSvc, logger: logger}
}

var (
	currencyRe = regexp.MustCompile(`(?i)r\$\s*(\d{1,3}(?:\.\d{3})*(?:,\d{2})?|\d+(?:[.,]\d+)?)\s*(mil)?`)

	// modelTokens are the vehicle names the store is known to talk about.
	// A draft quoting a price next to one of these without having consulted
	// the catalog this turn is treated as fabricated.
	modelTokens = []string{
		"onix", "hb20", "t-cross", "tcross", "strada", "saveiro",
		"corolla", "fiorino", "gol", "civic", "creta", "compass",
		"polo", "argo", "mobi", "kwid", "spin", "hr-v", "hrv", "tracker",
	}

	questionRe = regexp.MustCompile(`\?`)
	listItemRe = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]\s|[-*•]\s)`)

	bannedPhrases = []string{"não entendi", "nao entendi"}
)

const (
	maxDraftLength   = 600
	maxQuestions     = 2
	priceTolerance   = 0.05
	qualMinTurns     = 6
	qualMinSignals   = 2
	fatalReplacement = "Deixa eu confirmar os detalhes com a equipe e já te retorno com os valores certinhos. Enquanto isso, posso te ajudar com mais alguma coisa?"
)

// Review runs every rule against the draft and returns the most severe
// verdict. Fatal always wins; warnings beat suggestions.
func (s *Supervisor) Review(ctx context.Context, req SupervisorRequest) Verdict {
	verdict := Verdict{Severity: VerdictOK}

	if reason := s.checkFabricatedQuote(req); reason != "" {
		return Verdict{
			Severity:    VerdictFatal,
			Reasons:     []string{reason},
			Replacement: fatalReplacement,
		}
	}

	var warnings, suggestions []string
	warnings = append(warnings, s.checkInventoryConsistency(ctx, req)...)
	warnings = append(warnings, checkStyle(req.Draft)...)
	suggestions = append(suggestions, checkQualificationProgress(req.History)...)

	switch {
	case len(warnings) > 0:
		verdict.Severity = VerdictWarning
		verdict.Reasons = append(warnings, suggestions...)
	case len(suggestions) > 0:
		verdict.Severity = VerdictSuggestion
		verdict.Reasons = suggestions
	}
	return verdict
}

// checkFabricatedQuote fires when the draft pairs a currency amount with a
// known model name but no catalog lookup happened this turn. That is the one
// hallucination the business can not tolerate.
func (s *Supervisor) checkFabricatedQuote(req SupervisorRequest) string {
	if !currencyRe.MatchString(req.Draft) {
		return ""
	}
	lower := strings.ToLower(req.Draft)
	mentioned := ""
	for _, token := range modelTokens {
		if strings.Contains(lower, token) {
			mentioned = token
			break
		}
	}
	if mentioned == "" {
		return ""
	}
	for _, tool := range req.ToolsInvoked {
		if tool == ToolFindVehicles {
			return ""
		}
	}
	return fmt.Sprintf("price quoted for %q without a catalog lookup this turn", mentioned)
}

// checkInventoryConsistency compares quoted prices against the store. A
// quote for a sold or reserved vehicle, or one off by more than the
// tolerance, is a warning but not fatal: the catalog was consulted, so the
// draft is grounded even if stale.
func (s *Supervisor) checkInventoryConsistency(ctx context.Context, req SupervisorRequest) []string {
	if s.catalog == nil {
		return nil
	}
	lower := strings.ToLower(req.Draft)
	var warnings []string
	for _, token := range modelTokens {
		if !strings.Contains(lower, token) {
			continue
		}
		vehicle, err := s.catalog.FindByName(ctx, token)
		if err != nil || vehicle == nil {
			continue
		}
		if vehicle.Status != catalog.StatusAvailable {
			warnings = append(warnings, fmt.Sprintf("draft offers %s which is %s", vehicle.Name, vehicle.Status))
			continue
		}
		quoted, ok := quotedAmountNear(req.Draft, token)
		if !ok {
			continue
		}
		if diff := math.Abs(quoted-vehicle.Price) / vehicle.Price; diff > priceTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"draft quotes R$%.0f for %s, store price is R$%.0f", quoted, vehicle.Name, vehicle.Price))
		}
	}
	return warnings
}

// quotedAmountNear extracts the first currency amount in the draft. Amounts
// written as "129.900" use the thousands dot; "129 mil" multiplies by 1000.
func quotedAmountNear(draft, _ string) (float64, bool) {
	match := currencyRe.FindStringSubmatch(draft)
	if match == nil {
		return 0, false
	}
	raw := match[1]
	isThousands := strings.Count(raw, ".") > 0 && !strings.Contains(raw, ",")
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	var amount float64
	if _, err := fmt.Sscanf(raw, "%f", &amount); err != nil {
		return 0, false
	}
	if match[2] == "mil" && !isThousands {
		amount *= 1000
	}
	return amount, true
}

func checkStyle(draft string) []string {
	var warnings []string
	if len([]rune(draft)) > maxDraftLength {
		warnings = append(warnings, fmt.Sprintf("draft exceeds %d characters", maxDraftLength))
	}
	if n := len(questionRe.FindAllString(draft, -1)); n > maxQuestions {
		warnings = append(warnings, fmt.Sprintf("draft asks %d questions in one message", n))
	}
	if listItemRe.MatchString(draft) {
		warnings = append(warnings, "draft uses an enumerated list instead of conversational prose")
	}
	lower := strings.ToLower(draft)
	for _, phrase := range bannedPhrases {
		if strings.Contains(lower, phrase) {
			warnings = append(warnings, fmt.Sprintf("draft contains banned phrase %q", phrase))
			break
		}
	}
	return warnings
}

// Qualification signals the agent should have probed for by mid-conversation.
var qualificationSignals = map[string][]string{
	"budget":   {"orçamento", "orcamento", "valor", "quanto", "até", "ate ", "mil", "preço", "preco", "investir"},
	"decision": {"decisão", "decisao", "decide", "esposa", "marido", "família", "familia", "sozinho"},
	"need":     {"precisa", "uso", "usar", "trabalho", "família", "familia", "viagem", "cidade", "aplicativo"},
	"timeline": {"quando", "prazo", "urgente", "urgência", "urgencia", "semana", "mês", "mes", "hoje"},
}

// checkQualificationProgress suggests probing questions when the assistant
// has gone six or more turns while touching fewer than two of the four
// qualification dimensions.
func checkQualificationProgress(history []ConversationTurn) []string {
	assistantTurns := 0
	var assistantText strings.Builder
	for _, turn := range history {
		if turn.Role == ChatRoleAssistant {
			assistantTurns++
			assistantText.WriteString(strings.ToLower(turn.Content))
			assistantText.WriteString(" ")
		}
	}
	if assistantTurns < qualMinTurns {
		return nil
	}
	text := assistantText.String()
	covered := 0
	var missing []string
	for dimension, keywords := range qualificationSignals {
		found := false
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				found = true
				break
			}
		}
		if found {
			covered++
		} else {
			missing = append(missing, dimension)
		}
	}
	if covered >= qualMinSignals {
		return nil
	}
	return []string{fmt.Sprintf(
		"conversation is %d turns in with only %d qualification signals covered (missing: %s)",
		assistantTurns, covered, strings.Join(missing, ", "))}
}
