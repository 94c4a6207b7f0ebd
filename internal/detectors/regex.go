package detectors

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// Regex drives REGEX rules: each pattern is compiled once per rule
// version and cached. Go's regexp package is RE2-backed — linear-time,
// no backtracking — which is itself the catastrophic-backtracking guard
// the spec asks for (spec §4.1); no third-party regex engine is needed
// or used elsewhere in this pack for the same concern. Invalid patterns
// are reported as an error so the engine can skip the rule and bump the
// detector-error counter without aborting the request.
type Regex struct {
	mu    sync.RWMutex
	cache map[string][]*regexp.Regexp // keyed by rule_id + updated_at
}

func NewRegex() *Regex {
	return &Regex{cache: make(map[string][]*regexp.Regexp)}
}

func (r *Regex) compiled(rule *moderation.Rule) ([]*regexp.Regexp, error) {
	key := rule.ID + "@" + rule.UpdatedAt.String()

	r.mu.RLock()
	if compiled, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return compiled, nil
	}
	r.mu.RUnlock()

	compiled := make([]*regexp.Regexp, 0, len(rule.Patterns))
	for _, pattern := range rule.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid regex pattern %q: %w", rule.ID, pattern, err)
		}
		compiled = append(compiled, re)
	}

	r.mu.Lock()
	r.cache[key] = compiled
	r.mu.Unlock()

	return compiled, nil
}

func (r *Regex) Detect(s string, rule *moderation.Rule) (Outcome, error) {
	patterns, err := r.compiled(rule)
	if err != nil {
		return Outcome{}, err
	}

	var matched []string
	for i, re := range patterns {
		if re.MatchString(s) {
			matched = append(matched, rule.Patterns[i])
		}
	}

	return Outcome{
		Triggered: len(matched) > 0,
		Matches:   map[string]any{"matched_patterns": matched},
	}, nil
}
