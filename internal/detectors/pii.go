package detectors

import (
	"regexp"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// PII scans text with a fixed family of recognizers: email, North
// American phone, US SSN, credit card, and IPv4 dotted-quad (spec §4.1).
// Anchors are deliberately loose about surrounding whitespace so inline
// PII (e.g. "email:alice@example.com") is not missed.
type PII struct {
	email      *regexp.Regexp
	phoneNA    *regexp.Regexp
	ssn        *regexp.Regexp
	creditCard *regexp.Regexp
	ipv4       *regexp.Regexp
}

// NewPII compiles the recognizer set once; the returned detector is safe
// for concurrent use.
func NewPII() *PII {
	return &PII{
		email:      regexp.MustCompile(`[a-zA-Z0-9.+_-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`),
		phoneNA:    regexp.MustCompile(`(\+?1[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}`),
		ssn:        regexp.MustCompile(`\d{3}-\d{2}-\d{4}`),
		creditCard: regexp.MustCompile(`\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}`),
		ipv4:       regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`),
	}
}

// Detect implements Detector. Patterns on the rule are ignored; PII uses
// only its built-in recognizers.
func (p *PII) Detect(s string, rule *moderation.Rule) (Outcome, error) {
	byType := map[string]any{}
	total := 0

	if m := p.email.FindAllString(s, -1); len(m) > 0 {
		byType["email"] = len(m)
		total += len(m)
	}
	if m := p.phoneNA.FindAllString(s, -1); len(m) > 0 {
		byType["phone"] = len(m)
		total += len(m)
	}
	if m := p.ssn.FindAllString(s, -1); len(m) > 0 {
		byType["ssn"] = len(m)
		total += len(m)
	}
	if m := p.creditCard.FindAllString(s, -1); len(m) > 0 {
		byType["credit_card"] = len(m)
		total += len(m)
	}
	if m := p.ipv4.FindAllString(s, -1); len(m) > 0 {
		byType["ipv4"] = len(m)
		total += len(m)
	}

	hasPII := total > 0
	return Outcome{
		Triggered: hasPII,
		Matches: map[string]any{
			"has_pii":       hasPII,
			"by_type":       byType,
			"total_matches": total,
		},
	}, nil
}
