package detectors

import (
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

const (
	LabelToxicity       = "toxicity"
	LabelSevereToxicity = "severe_toxicity"
	LabelObscene        = "obscene"
	LabelThreat         = "threat"
	LabelInsult         = "insult"
	LabelIdentityHate    = "identity_hate"
)

var toxicityLabelOrder = []string{
	LabelToxicity, LabelSevereToxicity, LabelObscene, LabelThreat, LabelInsult, LabelIdentityHate,
}

// Toxicity is a linear, sigmoid-scored model over a fixed lexical feature
// vector, one weight vector per label, generalized from a single-label
// spam classifier into the six-label score map the spec requires. A
// soft per-invocation timeout guards inference; on timeout the detector
// fails open or closed per config and reports the timeout via the
// supplied onTimeout callback.
type Toxicity struct {
	logger     *zap.Logger
	extractor  *textFeatureExtractor
	weights    map[string]*mat.VecDense
	failOpen   bool
	timeout    time.Duration
	onTimeout  func()
}

// NewToxicity builds the detector with fixed, hand-seeded weights per
// label (no online training — the spec's Non-goals exclude learning or
// updating detector weights at runtime).
func NewToxicity(logger *zap.Logger, failOpen bool, timeout time.Duration, onTimeout func()) *Toxicity {
	t := &Toxicity{
		logger:    logger,
		extractor: newTextFeatureExtractor(),
		failOpen:  failOpen,
		timeout:   timeout,
		onTimeout: onTimeout,
	}
	t.weights = map[string]*mat.VecDense{
		LabelToxicity:       vec(0.9, 0.2, 0.2, 0.8, 1.2, 0.6, 0.5, 0.3, -0.2, 0.1),
		LabelSevereToxicity: vec(1.0, 1.4, 0.3, 1.3, 0.9, 0.5, 0.4, 0.2, -0.1, 0.1),
		LabelObscene:        vec(1.5, 0.2, 0.1, 0.1, 0.3, 0.3, 0.2, 0.1, -0.1, 0.0),
		LabelThreat:         vec(0.2, 0.3, 1.6, 0.1, 0.2, 0.4, 0.3, 0.3, -0.2, 0.1),
		LabelInsult:         vec(0.3, 0.2, 0.1, 1.6, 1.0, 0.5, 0.3, 0.2, -0.1, 0.1),
		LabelIdentityHate:    vec(0.4, 0.5, 0.2, 0.2, 0.4, 1.5, 0.3, 0.2, -0.2, 0.1),
	}
	return t
}

func vec(values ...float64) *mat.VecDense {
	return mat.NewVecDense(len(values), values)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// score computes the six-label score map for s. It is pure and
// allocation-light enough to run within the soft timeout budget.
func (t *Toxicity) score(s string) map[string]float64 {
	features := t.extractor.extract(s)
	featureVec := mat.NewVecDense(len(textFeatureOrder), featuresToVector(features))

	scores := make(map[string]float64, len(toxicityLabelOrder))
	for _, label := range toxicityLabelOrder {
		w := t.weights[label]
		scores[label] = sigmoid(mat.Dot(w, featureVec))
	}
	return scores
}

// Detect implements Detector. Patterns are ignored; Threshold on the
// rule gates which maximum score counts as triggering (spec §4.1).
func (t *Toxicity) Detect(s string, rule *moderation.Rule) (Outcome, error) {
	type result struct {
		scores map[string]float64
	}
	resCh := make(chan result, 1)

	go func() {
		resCh <- result{scores: t.score(s)}
	}()

	select {
	case r := <-resCh:
		maxScore, maxLabel := 0.0, ""
		for _, label := range toxicityLabelOrder {
			if v := r.scores[label]; v > maxScore {
				maxScore, maxLabel = v, label
			}
		}
		threshold := rule.EffectiveThreshold(0.7)
		triggered := maxScore >= threshold

		matches := map[string]any{}
		for k, v := range r.scores {
			matches[k] = v
		}
		matches["max_label"] = maxLabel

		score := maxScore
		return Outcome{Triggered: triggered, Score: &score, Matches: matches}, nil

	case <-time.After(t.timeout):
		if t.onTimeout != nil {
			t.onTimeout()
		}
		if t.logger != nil {
			t.logger.Warn("toxicity detector timed out", zap.String("rule_id", rule.ID))
		}
		if t.failOpen {
			score := 0.0
			return Outcome{Triggered: false, Score: &score, Matches: map[string]any{"timeout": true}}, nil
		}
		score := 1.0
		return Outcome{Triggered: true, Score: &score, Matches: map[string]any{"timeout": true}}, nil
	}
}
