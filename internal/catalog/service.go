package catalog

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// DefaultMaxResults bounds how many vehicles a recommendation returns.
const DefaultMaxResults = 2

// Sources reported in RecommendResult.
const (
	SourceStore    = "store"
	SourceFallback = "fallback"
)

// synonyms maps common customer nicknames to the canonical stock keyword
// searched against the vehicles table.
var synonyms = map[string]string{
	"tcross":     "t-cross",
	"t cross":    "t-cross",
	"hrv":        "hr-v",
	"hr v":       "hr-v",
	"spin activ": "spin",
	"sw 4":       "sw4",
	"strada cd":  "strada",
}

// trim-level and year tokens carry no search signal on their own.
var (
	yearTokenRe = regexp.MustCompile(`^(19|20)\d{2}$`)
	trimTokens  = map[string]struct{}{
		"1.0": {}, "1.3": {}, "1.4": {}, "1.5": {}, "1.6": {}, "1.8": {}, "2.0": {},
		"16v": {}, "8v": {}, "flex": {}, "turbo": {}, "tsi": {}, "automatico": {},
		"automatica": {}, "manual": {}, "completo": {}, "completa": {},
	}
)

// Service answers natural-language inventory questions with a bounded,
// ranked vehicle list.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService builds the catalog query service. repo may be nil when the
// relational store is not configured; every query then serves fallback data.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Recommend resolves a budget description into available vehicles ordered
// price descending. Store failures degrade to the compiled-in fallback list
// instead of failing the conversation turn.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) RecommendResult {
	ceiling := ParseBudgetCeiling(req.BudgetText)
	term := NormalizeSearchTerm(req.SearchTerm)
	limit := req.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	if s.repo != nil {
		vehicles, err := s.searchStore(ctx, ceiling, req.Categories, term, limit)
		if err == nil {
			return RecommendResult{Vehicles: vehicles, Source: SourceStore}
		}
		s.logger.Warn("catalog: store query failed, serving fallback", "error", err)
	}

	return RecommendResult{
		Vehicles: filterFallback(ceiling, req.Categories, term, limit),
		Source:   SourceFallback,
	}
}

// FindByName proxies a single-vehicle lookup, nil when unavailable.
func (s *Service) FindByName(ctx context.Context, name string) (*Vehicle, error) {
	if s.repo == nil {
		for _, v := range fallbackInventory {
			if strings.Contains(strings.ToLower(v.Name), strings.ToLower(name)) {
				found := v
				return &found, nil
			}
		}
		return nil, nil
	}
	return s.repo.FindByName(ctx, name)
}

func (s *Service) searchStore(ctx context.Context, ceiling float64, categories []string, term string, limit int) ([]Vehicle, error) {
	if term != "" {
		vehicles, err := s.repo.Search(ctx, SearchFilter{
			PriceCeiling: ceiling,
			Term:         term,
			Limit:        limit,
		})
		if err != nil {
			return nil, err
		}
		if len(vehicles) > 0 {
			return vehicles, nil
		}
		// No match on the term: fall through to the plain budget query so
		// the customer still gets an anchor offer.
	}
	return s.repo.Search(ctx, SearchFilter{
		PriceCeiling: ceiling,
		Categories:   categories,
		Limit:        limit,
	})
}

// NormalizeSearchTerm applies the nickname synonym table and discards terms
// that reduce to only year/trim tokens, which would make a garbage filter.
func NormalizeSearchTerm(raw string) string {
	term := strings.ToLower(strings.TrimSpace(raw))
	if term == "" {
		return ""
	}
	if canonical, ok := synonyms[term]; ok {
		return canonical
	}

	meaningful := false
	for _, token := range strings.Fields(term) {
		if yearTokenRe.MatchString(token) {
			continue
		}
		if _, ok := trimTokens[token]; ok {
			continue
		}
		meaningful = true
	}
	if !meaningful {
		return ""
	}
	return term
}

func filterFallback(ceiling float64, categories []string, term string, limit int) []Vehicle {
	var out []Vehicle
	for _, v := range fallbackInventory {
		if v.Price > ceiling {
			continue
		}
		if len(categories) > 0 && !containsFold(categories, v.Category) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(v.Name), term) {
			continue
		}
		out = append(out, v)
	}
	if term != "" && len(out) == 0 {
		// Same fall-through as the store path: budget-only anchor offers.
		return filterFallback(ceiling, categories, "", limit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, item := range haystack {
		if strings.EqualFold(item, needle) {
			return true
		}
	}
	return false
}
