package detectors

import (
	"strings"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// financialVocabulary covers banking identifiers, card brands,
// investment/scam idioms, and crypto wallet/seed phrasing (spec §4.1).
var financialVocabulary = []string{
	"routing number", "account number", "iban", "swift code", "wire transfer",
	"visa", "mastercard", "american express", "discover card",
	"guaranteed returns", "double your money", "risk-free investment", "ponzi",
	"wallet address", "seed phrase", "private key", "send bitcoin", "send btc",
	"crypto wallet", "recovery phrase",
}

// Financial drives FINANCIAL rules: case-insensitive vocabulary match
// (spec §4.1). Patterns on the rule are not consulted.
type Financial struct {
	vocabulary []string
}

func NewFinancial() *Financial {
	return &Financial{vocabulary: financialVocabulary}
}

func (f *Financial) Detect(s string, rule *moderation.Rule) (Outcome, error) {
	lower := strings.ToLower(s)
	var hits []string
	for _, term := range f.vocabulary {
		if strings.Contains(lower, term) {
			hits = append(hits, term)
		}
	}
	return Outcome{
		Triggered: len(hits) > 0,
		Matches:   map[string]any{"matched_terms": hits},
	}, nil
}
