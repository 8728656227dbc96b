package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotedAmountParsing(t *testing.T) {
	tests := []struct {
		name       string
		draft      string
		wantAmount float64
		wantFound  bool
	}{
		{
			name:       "thousands dot",
			draft:      "o Onix sai por R$ 78.900 à vista",
			wantAmount: 78900,
			wantFound:  true,
		},
		{
			name:       "mil suffix",
			draft:      "temos opções por R$ 95 mil",
			wantAmount: 95000,
			wantFound:  true,
		},
		{
			name:       "decimal comma with cents",
			draft:      "a parcela fica em R$ 1.250,50",
			wantAmount: 1250.50,
			wantFound:  true,
		},
		{
			name:       "plain integer",
			draft:      "entrada de R$5000",
			wantAmount: 5000,
			wantFound:  true,
		},
		{
			name:      "no currency mention",
			draft:     "esse modelo é ótimo para a cidade",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, found := quotedAmountNear(tt.draft, "")
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.InDelta(t, tt.wantAmount, amount, 0.01)
			}
		})
	}
}

func TestQualificationSignalDimensions(t *testing.T) {
	history := make([]ConversationTurn, 0, 12)
	for i := 0; i < 6; i++ {
		history = append(history,
			ConversationTurn{Role: ChatRoleUser, Content: "oi"},
			ConversationTurn{Role: ChatRoleAssistant, Content: "temos várias opções na loja"},
		)
	}

	warnings := checkQualificationProgress(history)
	assert.Len(t, warnings, 1, "six uninformative turns should trigger a suggestion")

	// Covering budget and timeline keywords clears the suggestion.
	history[11].Content = "qual valor você quer investir? pensa em comprar ainda essa semana?"
	assert.Empty(t, checkQualificationProgress(history))
}
