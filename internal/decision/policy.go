// Package decision implements the pure function mapping a list of rule
// outcomes to an aggregated verdict plus fallback category (spec §4.4).
package decision

import (
	"sort"
	"strings"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// hateSpeechMarker is the rule-name convention the administrator uses to
// mark a KEYWORD rule as blocking rather than advisory. Isolated here as
// a single explicit predicate rather than a string sniff scattered
// across the engine (spec §4.4). A future migration should replace this
// with a first-class `blocking` field on the rule record (spec §9 open
// question); until then this is the sole place the convention is read.
const hateSpeechMarker = "hate"

// IsHateSpeechRule reports whether a KEYWORD rule's name carries the
// administrator's hate-speech marker convention.
func IsHateSpeechRule(ruleName string) bool {
	return strings.Contains(strings.ToLower(ruleName), hateSpeechMarker)
}

// ShouldBlock determines per-rule should_block by kind (spec §4.4).
func ShouldBlock(kind moderation.Kind, ruleName string) bool {
	switch kind {
	case moderation.KindPII, moderation.KindFinancial, moderation.KindMedical,
		moderation.KindToxicity, moderation.KindRegex:
		return true
	case moderation.KindKeyword:
		return IsHateSpeechRule(ruleName)
	default:
		return false
	}
}

// fallbackPriority orders triggered blocking kinds from most to least
// defensive, per spec §4.4: PII > TOXICITY > FINANCIAL > MEDICAL > REGEX > KEYWORD.
var fallbackPriority = []moderation.Kind{
	moderation.KindPII,
	moderation.KindToxicity,
	moderation.KindFinancial,
	moderation.KindMedical,
	moderation.KindRegex,
	moderation.KindKeyword,
}

// Verdict is the aggregated decision the Moderation Engine composes from
// a request's rule outcomes.
type Verdict struct {
	IsFlagged     bool
	IsBlocked     bool
	FallbackKind  moderation.Kind
	Triggered     []moderation.RuleOutcome
	Scores        map[moderation.Kind]float64
}

// Compose aggregates outcomes into a Verdict. The returned Triggered
// slice is sorted priority-descending (tie-break id ascending) so
// audits are stable, regardless of the order outcomes were evaluated in
// (spec §4.3, §5).
func Compose(outcomes []moderation.RuleOutcome) Verdict {
	v := Verdict{Scores: map[moderation.Kind]float64{}}

	var triggered []moderation.RuleOutcome
	for _, o := range outcomes {
		if !o.Triggered {
			continue
		}
		triggered = append(triggered, o)
		v.IsFlagged = true
		if o.ShouldBlock {
			v.IsBlocked = true
		}
		if o.Score != nil {
			v.Scores[o.Kind] = *o.Score
		}
	}

	sort.SliceStable(triggered, func(i, j int) bool {
		if triggered[i].Priority != triggered[j].Priority {
			return triggered[i].Priority > triggered[j].Priority
		}
		return triggered[i].RuleID < triggered[j].RuleID
	})
	v.Triggered = triggered

	if v.IsBlocked {
		v.FallbackKind = pickFallbackKind(triggered)
	}

	return v
}

// pickFallbackKind selects the fallback category per the priority order
// in spec §4.4 among triggered, blocking outcomes.
func pickFallbackKind(triggered []moderation.RuleOutcome) moderation.Kind {
	for _, kind := range fallbackPriority {
		for _, o := range triggered {
			if o.Kind == kind && o.ShouldBlock {
				return kind
			}
		}
	}
	return ""
}
