// Package moderation holds the data model shared by the rule store,
// detectors, decision policy, and engine: Rule, RuleOutcome,
// ModerationResult, and AuditRecord, as well as the closed set of rule
// kinds and regions.
package moderation

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the closed set of rule kinds. It determines which detector
// drives a rule and whether Patterns is consulted.
type Kind string

const (
	KindPII       Kind = "PII"
	KindToxicity  Kind = "TOXICITY"
	KindKeyword   Kind = "KEYWORD"
	KindRegex     Kind = "REGEX"
	KindFinancial Kind = "FINANCIAL"
	KindMedical   Kind = "MEDICAL"
)

// Valid reports whether k is one of the closed set of rule kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPII, KindToxicity, KindKeyword, KindRegex, KindFinancial, KindMedical:
		return true
	default:
		return false
	}
}

// Region is the closed set of jurisdictional tags. GLOBAL rules apply to
// every request; any other region applies only when it matches the
// request's region.
type Region string

const (
	RegionGlobal Region = "GLOBAL"
	RegionUS     Region = "US"
	RegionEU     Region = "EU"
	RegionUK     Region = "UK"
	RegionAPAC   Region = "APAC"
)

// Valid reports whether r is one of the closed set of regions.
func (r Region) Valid() bool {
	switch r {
	case RegionGlobal, RegionUS, RegionEU, RegionUK, RegionAPAC:
		return true
	default:
		return false
	}
}

// Rule is the authoritative record administered externally and consumed
// read-only by the engine (spec §3).
type Rule struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Kind        Kind      `json:"kind" db:"kind"`
	Region      Region    `json:"region" db:"region"`
	Patterns    []string  `json:"patterns,omitempty" db:"patterns"`
	Threshold   float64   `json:"threshold" db:"threshold"`
	Priority    int       `json:"priority" db:"priority"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveThreshold returns Threshold, defaulting to defaultThreshold
// when the rule does not carry one (spec §4.1: "default 0.7 if absent").
func (r *Rule) EffectiveThreshold(defaultThreshold float64) float64 {
	if r.Threshold <= 0 {
		return defaultThreshold
	}
	return r.Threshold
}

// RuleOutcome is the transient, per-rule, per-request evaluation result
// (spec §3).
type RuleOutcome struct {
	RuleID       string         `json:"rule_id"`
	RuleName     string         `json:"rule_name"`
	Kind         Kind           `json:"kind"`
	Priority     int            `json:"priority"`
	Triggered    bool           `json:"triggered"`
	ShouldBlock  bool           `json:"should_block"`
	Score        *float64       `json:"score,omitempty"`
	Matches      map[string]any `json:"matches,omitempty"`
	Skipped      bool           `json:"skipped,omitempty"`
	SkippedError string         `json:"skipped_error,omitempty"`
}

// ModerationResult is returned to the caller and persisted via the Audit
// Sink (spec §3).
type ModerationResult struct {
	RequestID      string        `json:"request_id"`
	FinalResponse  string        `json:"final_response"`
	IsFlagged      bool          `json:"is_flagged"`
	IsBlocked      bool          `json:"is_blocked"`
	Triggered      []RuleOutcome `json:"triggered"`
	Scores         map[Kind]float64 `json:"scores,omitempty"`
	LatencyNS      int64         `json:"latency_ns"`
	Region         Region        `json:"region"`
	SessionID      string        `json:"session_id,omitempty"`
	Intercepted    bool          `json:"intercepted"`
	Cancelled      bool          `json:"cancelled,omitempty"`
	EngineErrorTag string        `json:"engine_error,omitempty"`
}

// AuditRecord is the write-once sink entry (spec §3, §4.5).
type AuditRecord struct {
	RequestID     string        `json:"request_id"`
	Timestamp     time.Time     `json:"timestamp"`
	UserMessage   string        `json:"user_message"`
	BotResponse   string        `json:"bot_response"`
	FinalResponse string        `json:"final_response"`
	IsFlagged     bool          `json:"is_flagged"`
	IsBlocked     bool          `json:"is_blocked"`
	Triggered     []RuleOutcome `json:"triggered"`
	Scores        map[Kind]float64 `json:"scores,omitempty"`
	LatencyNS     int64         `json:"latency_ns"`
	Region        Region        `json:"region"`
	SessionID     string        `json:"session_id,omitempty"`
	Tag           string        `json:"tag,omitempty"` // "engine_error" on the failsafe path, else ""; the engine never sets "cancelled"
}

// NewRequestID mints a fresh unique request identifier, the same way the
// teacher mints whitelist-entry and audit-event identifiers.
func NewRequestID() string {
	return uuid.NewString()
}
