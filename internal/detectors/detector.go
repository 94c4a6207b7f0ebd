// Package detectors implements the stateless analyzers that back
// individual rules: PII, toxicity, keyword, regex, financial, and
// medical. Each detector is pure over an input string and safe to
// invoke concurrently from multiple request contexts.
package detectors

import "github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"

// Outcome is what a single detector invocation reports back to the
// engine, before priority/should-block aggregation.
type Outcome struct {
	Triggered bool
	Score     *float64
	Matches   map[string]any
}

// Detector evaluates a candidate string against one rule and reports
// whether it triggered. Implementations must not retain per-call state;
// any internal tables/models are initialized once and read concurrently.
type Detector interface {
	Detect(s string, rule *moderation.Rule) (Outcome, error)
}
