package detectors

import "github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"

// Registry dispatches a rule to the detector backing its kind, the same
// closed-switch shape other rule engines in this pack use for dispatch
// by rule type.
type Registry struct {
	pii       *PII
	toxicity  *Toxicity
	keyword   *Keyword
	regex     *Regex
	financial *Financial
	medical   *Medical
}

// NewRegistry wires one instance of each detector. All detectors are
// stateless over the request path and safe to share across goroutines.
func NewRegistry(pii *PII, toxicity *Toxicity, keyword *Keyword, regex *Regex, financial *Financial, medical *Medical) *Registry {
	return &Registry{
		pii:       pii,
		toxicity:  toxicity,
		keyword:   keyword,
		regex:     regex,
		financial: financial,
		medical:   medical,
	}
}

// For returns the detector backing kind, or nil if kind is not in the
// closed set (callers should treat that as a skip, not a panic).
func (r *Registry) For(kind moderation.Kind) Detector {
	switch kind {
	case moderation.KindPII:
		return r.pii
	case moderation.KindToxicity:
		return r.toxicity
	case moderation.KindKeyword:
		return r.keyword
	case moderation.KindRegex:
		return r.regex
	case moderation.KindFinancial:
		return r.financial
	case moderation.KindMedical:
		return r.medical
	default:
		return nil
	}
}
