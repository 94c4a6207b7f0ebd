// Package engine implements the Moderation Engine (spec §4.3): it
// orchestrates fetching the active rule set, invoking detectors per
// rule, composing the verdict, stamping latency, and emitting metrics
// and an audit record. No error or panic ever crosses the engine
// boundary to the caller (spec §7).
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/decision"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/detectors"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// RuleSource is the engine's sole dependency on the Rule Store: the
// single getActiveRules(region) read (spec §4.2).
type RuleSource interface {
	GetActiveRules(region moderation.Region) []moderation.Rule
}

// AuditSink is the engine's non-blocking audit dependency (spec §4.5).
type AuditSink interface {
	Submit(rec moderation.AuditRecord)
}

// MetricsSink is the engine's metrics dependency (spec §4.6).
type MetricsSink interface {
	RecordInvocation(result moderation.ModerationResult, slaCeiling time.Duration)
	RecordDetectorError(kind moderation.Kind, reason string)
}

// Engine is the Moderation Engine. All fields are set once at
// construction and read concurrently thereafter; Moderate is safe to
// call from many goroutines at once.
type Engine struct {
	rules      RuleSource
	registry   *detectors.Registry
	audit      AuditSink
	metrics    MetricsSink
	logger     *zap.Logger
	slaCeiling time.Duration
}

// New constructs the engine. slaCeiling is the latency ceiling the SLA
// metric is measured against (spec §4.6, default 100ms).
func New(rules RuleSource, registry *detectors.Registry, audit AuditSink, metrics MetricsSink, logger *zap.Logger, slaCeiling time.Duration) *Engine {
	return &Engine{
		rules:      rules,
		registry:   registry,
		audit:      audit,
		metrics:    metrics,
		logger:     logger,
		slaCeiling: slaCeiling,
	}
}

// Moderate is the engine's public operation (spec §4.3):
// moderate(user_message, bot_response, region, session_id) -> ModerationResult.
func (e *Engine) Moderate(userMessage, botResponse string, region moderation.Region, sessionID string) (result moderation.ModerationResult) {
	start := time.Now()
	requestID := moderation.NewRequestID()

	result = moderation.ModerationResult{
		RequestID:     requestID,
		FinalResponse: botResponse,
		Region:        region,
		SessionID:     sessionID,
		Intercepted:   true,
	}

	// The engine never returns an exception to the caller (spec §4.3,
	// §7): an unexpected panic anywhere below is caught here and
	// degrades to the failsafe path.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("moderation engine panic recovered",
				zap.Any("panic", r), zap.String("request_id", requestID))
			result = moderation.ModerationResult{
				RequestID:      requestID,
				FinalResponse:  botResponse,
				IsFlagged:      false,
				IsBlocked:      false,
				Region:         region,
				SessionID:      sessionID,
				Intercepted:    false,
				EngineErrorTag: "engine_error",
			}
			result.LatencyNS = time.Since(start).Nanoseconds()
			e.emit(userMessage, botResponse, result, "engine_error")
		}
	}()

	rules := e.rules.GetActiveRules(region)
	outcomes := e.evaluate(rules, botResponse)

	verdict := decision.Compose(outcomes)
	result.IsFlagged = verdict.IsFlagged
	result.IsBlocked = verdict.IsBlocked
	result.Triggered = verdict.Triggered
	result.Scores = verdict.Scores

	if verdict.IsBlocked {
		result.FinalResponse = decision.FallbackMessage(verdict.FallbackKind)
	}

	result.LatencyNS = time.Since(start).Nanoseconds()

	e.emit(userMessage, botResponse, result, "")

	return result
}

// evaluate runs every rule's detector. Detectors are stateless, so
// evaluation fans out across goroutines; ordering affects only
// reporting, never correctness (spec §4.3, §5).
func (e *Engine) evaluate(rules []moderation.Rule, botResponse string) []moderation.RuleOutcome {
	outcomes := make([]moderation.RuleOutcome, len(rules))

	var wg sync.WaitGroup
	for i := range rules {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = e.evaluateRule(&rules[i], botResponse)
		}(i)
	}
	wg.Wait()

	return outcomes
}

// evaluateRule runs a single rule's detector, degrading to a skipped,
// non-triggering outcome on any detector error (spec §4.3 step 3, §7:
// "Detector failure... the owning rule is treated as not triggered").
func (e *Engine) evaluateRule(rule *moderation.Rule, botResponse string) (outcome moderation.RuleOutcome) {
	outcome = moderation.RuleOutcome{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Kind:     rule.Kind,
		Priority: rule.Priority,
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("detector panic recovered, skipping rule",
				zap.String("rule_id", rule.ID), zap.Any("panic", r))
			outcome.Skipped = true
			outcome.SkippedError = fmt.Sprintf("panic: %v", r)
			if e.metrics != nil {
				e.metrics.RecordDetectorError(rule.Kind, "panic")
			}
		}
	}()

	detector := e.registry.For(rule.Kind)
	if detector == nil {
		outcome.Skipped = true
		outcome.SkippedError = "no detector for kind"
		return outcome
	}

	result, err := detector.Detect(botResponse, rule)
	if err != nil {
		outcome.Skipped = true
		outcome.SkippedError = err.Error()
		if e.metrics != nil {
			e.metrics.RecordDetectorError(rule.Kind, detectorErrorReason(rule.Kind, err))
		}
		return outcome
	}

	outcome.Triggered = result.Triggered
	outcome.Score = result.Score
	outcome.Matches = result.Matches
	if result.Triggered {
		outcome.ShouldBlock = decision.ShouldBlock(rule.Kind, rule.Name)
	}
	return outcome
}

func detectorErrorReason(kind moderation.Kind, err error) string {
	switch kind {
	case moderation.KindRegex:
		return "regex_compile"
	case moderation.KindToxicity:
		return "model_error"
	default:
		return "error"
	}
}

// emit performs the engine's required side effects after every
// invocation regardless of outcome: exactly one audit submission and
// one metrics recording (spec §4.3 postconditions, §8).
func (e *Engine) emit(userMessage, botResponse string, result moderation.ModerationResult, tag string) {
	if e.metrics != nil {
		e.metrics.RecordInvocation(result, e.slaCeiling)
	}
	if e.audit != nil {
		rec := auditRecord(userMessage, botResponse, result, tag)
		e.audit.Submit(rec)
	}
}

func auditRecord(userMessage, botResponse string, result moderation.ModerationResult, tag string) moderation.AuditRecord {
	return moderation.AuditRecord{
		RequestID:     result.RequestID,
		Timestamp:     time.Now(),
		UserMessage:   userMessage,
		BotResponse:   botResponse,
		FinalResponse: result.FinalResponse,
		IsFlagged:     result.IsFlagged,
		IsBlocked:     result.IsBlocked,
		Triggered:     result.Triggered,
		Scores:        result.Scores,
		LatencyNS:     result.LatencyNS,
		Region:        result.Region,
		SessionID:     result.SessionID,
		Tag:           tag,
	}
}
