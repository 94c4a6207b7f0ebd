package detectors

import (
	"strings"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// Keyword drives KEYWORD rules: case-insensitive substring search over
// the rule's Patterns (spec §4.1).
type Keyword struct{}

func NewKeyword() *Keyword { return &Keyword{} }

func (k *Keyword) Detect(s string, rule *moderation.Rule) (Outcome, error) {
	lower := strings.ToLower(s)
	var matched []string
	for _, pattern := range rule.Patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(pattern)) {
			matched = append(matched, pattern)
		}
	}
	return Outcome{
		Triggered: len(matched) > 0,
		Matches:   map[string]any{"matched_tokens": matched},
	}, nil
}
