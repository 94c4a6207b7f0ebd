package detectors

import (
	"strings"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// medicalVocabulary covers diagnosis/treatment/prescription/record/
// insurance terms (spec §4.1).
var medicalVocabulary = []string{
	"diagnosed with", "diagnosis of", "prescription for", "prescribed",
	"dosage", "medical record", "patient history", "insurance claim",
	"hipaa", "treatment plan", "lab results", "biopsy", "chemotherapy",
	"mental health diagnosis", "psychiatric evaluation",
}

// Medical drives MEDICAL rules: case-insensitive vocabulary match
// (spec §4.1). Patterns on the rule are not consulted.
type Medical struct {
	vocabulary []string
}

func NewMedical() *Medical {
	return &Medical{vocabulary: medicalVocabulary}
}

func (m *Medical) Detect(s string, rule *moderation.Rule) (Outcome, error) {
	lower := strings.ToLower(s)
	var hits []string
	for _, term := range m.vocabulary {
		if strings.Contains(lower, term) {
			hits = append(hits, term)
		}
	}
	return Outcome{
		Triggered: len(hits) > 0,
		Matches:   map[string]any{"matched_terms": hits},
	}, nil
}
