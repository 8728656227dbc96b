package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultBudgetCeiling is used when no amount can be read from the text.
const DefaultBudgetCeiling = 200000

var budgetNumberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseBudgetCeiling extracts a price ceiling from free-form budget text.
// Amounts are quoted in thousands ("até 100 mil" means 100000); a range
// ("entre 80 e 120 mil") resolves to the high end. Bare numbers are
// multiplied by 1000 unconditionally, which can produce absurd ceilings for
// fully written amounts; the thresholds stay as the business defined them.
// Never returns an error.
func ParseBudgetCeiling(text string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return DefaultBudgetCeiling
	}
	normalized = strings.ReplaceAll(normalized, "r$", " ")

	matches := budgetNumberRe.FindAllString(normalized, -1)
	if len(matches) == 0 {
		return DefaultBudgetCeiling
	}

	var ceiling float64
	for _, raw := range matches {
		raw = strings.ReplaceAll(raw, ",", ".")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if value > ceiling {
			ceiling = value
		}
	}
	if ceiling <= 0 {
		return DefaultBudgetCeiling
	}
	return ceiling * 1000
}
