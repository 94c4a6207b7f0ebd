package detectors

import (
	"regexp"
	"strings"
)

// textFeatureOrder is the fixed feature order fed into the toxicity
// model's vector, mirroring a lexical-feature classifier: every feature
// is a normalized float in [0,1] derived from the candidate string.
var textFeatureOrder = []string{
	"profanity_ratio", "slur_hit", "threat_hit", "insult_hit",
	"caps_ratio", "exclamation_density", "repeated_punct", "second_person_density",
	"negation_density", "length_norm",
}

type textFeatureExtractor struct {
	repeatedPunct *regexp.Regexp
	profanity     map[string]struct{}
	slurs         map[string]struct{}
	threats       map[string]struct{}
	insults       map[string]struct{}
	negations     map[string]struct{}
}

func newTextFeatureExtractor() *textFeatureExtractor {
	return &textFeatureExtractor{
		repeatedPunct: regexp.MustCompile(`[!?]{2,}`),
		profanity:     setOf("damn", "hell", "crap", "shit", "fuck", "bitch", "ass", "bastard"),
		slurs:         setOf("retard", "subhuman"),
		threats:       setOf("kill", "hurt", "destroy", "die", "murder", "hunt"),
		insults:       setOf("idiot", "stupid", "moron", "dumb", "loser", "pathetic", "worthless"),
		negations:     setOf("not", "never", "no", "cant", "can't", "wont", "won't"),
	}
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// extract derives a fixed set of normalized lexical features from s.
func (e *textFeatureExtractor) extract(s string) map[string]float64 {
	lower := strings.ToLower(s)
	words := strings.Fields(lower)
	n := float64(len(words))
	if n == 0 {
		n = 1
	}

	profanityHits := e.countHits(words, e.profanity)
	slurHits := e.countHits(words, e.slurs)
	threatHits := e.countHits(words, e.threats)
	insultHits := e.countHits(words, e.insults)
	negationHits := e.countHits(words, e.negations)

	caps := 0
	letters := 0
	secondPerson := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			caps++
			letters++
		} else if r >= 'a' && r <= 'z' {
			letters++
		}
	}
	for _, w := range words {
		if w == "you" || w == "you're" || w == "your" || w == "youre" {
			secondPerson++
		}
	}
	if letters == 0 {
		letters = 1
	}

	return map[string]float64{
		"profanity_ratio":       profanityHits / n,
		"slur_hit":              clamp01(float64(slurHits)),
		"threat_hit":            clamp01(float64(threatHits)),
		"insult_hit":            insultHits / n,
		"caps_ratio":            float64(caps) / float64(letters),
		"exclamation_density":   clamp01(float64(len(e.repeatedPunct.FindAllString(s, -1))) / n),
		"repeated_punct":        clamp01(float64(strings.Count(s, "!!") + strings.Count(s, "??"))),
		"second_person_density": float64(secondPerson) / n,
		"negation_density":      negationHits / n,
		"length_norm":           clamp01(n / 50.0),
	}
}

func (e *textFeatureExtractor) countHits(words []string, set map[string]struct{}) float64 {
	count := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'")
		if _, ok := set[w]; ok {
			count++
		}
	}
	return float64(count)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func featuresToVector(features map[string]float64) []float64 {
	vec := make([]float64, len(textFeatureOrder))
	for i, name := range textFeatureOrder {
		vec[i] = features[name]
	}
	return vec
}
