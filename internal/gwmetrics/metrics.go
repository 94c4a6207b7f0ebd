// Package gwmetrics implements the Metrics Sink (spec §4.6): the
// latency histogram, region×outcome counters, the SLA-violation
// counter, the interception counter, per-kind trigger counters, and
// detector-error counters, built the same way this codebase's existing
// MetricsCollector wires prometheus/client_golang.
package gwmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/config"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// Collector is the process-wide metrics registry. Per spec §9, the
// metrics registry is the one permissible implicit global because its
// writes are shard-local and lock-free; every other component here is
// constructed explicitly and passed by reference.
type Collector struct {
	cfg    *config.MetricsConfig
	logger *zap.Logger

	latencySeconds      *prometheus.HistogramVec
	outcomesTotal       *prometheus.CounterVec
	slaViolationsTotal  prometheus.Counter
	interceptedTotal    *prometheus.CounterVec
	ruleTriggersTotal   *prometheus.CounterVec
	detectorErrorsTotal *prometheus.CounterVec
	auditEmittedTotal   prometheus.Counter
	auditDroppedTotal   prometheus.Counter
	ruleStoreStaleness  prometheus.Gauge
}

// NewCollector builds and registers every metric family spec.md §4.6
// requires. It takes the whole Config, matching how NewEngine,
// NewToxicityDetector, and NewAuditSink are wired into the fx graph,
// since fx does not decompose a struct into a provider for one of its
// fields.
func NewCollector(fullCfg *config.Config, logger *zap.Logger) *Collector {
	cfg := &fullCfg.Metrics
	buckets := cfg.HistogramBuckets
	if len(buckets) == 0 {
		buckets = []float64{0.010, 0.025, 0.050, 0.075, 0.100, 0.150, 0.200, 0.500, 1.000}
	}

	c := &Collector{
		cfg:    cfg,
		logger: logger,

		latencySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moderation_gateway_latency_seconds",
				Help:    "Moderation engine latency from entry to just before sink emission",
				Buckets: buckets,
			},
			[]string{"region", "outcome"},
		),

		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_gateway_outcomes_total",
				Help: "Moderation outcomes by region and outcome (allowed/flagged/blocked)",
			},
			[]string{"region", "outcome"},
		),

		slaViolationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "moderation_gateway_sla_violations_total",
				Help: "Invocations whose latency exceeded the configured SLA ceiling",
			},
		),

		interceptedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_gateway_intercepted_total",
				Help: "Invocations split by whether the engine boundary completed normally",
			},
			[]string{"intercepted"},
		),

		ruleTriggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_gateway_rule_triggers_total",
				Help: "Rule triggers by kind",
			},
			[]string{"kind"},
		),

		detectorErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_gateway_detector_errors_total",
				Help: "Detector errors by kind and reason (regex_compile, model_error, timeout)",
			},
			[]string{"kind", "reason"},
		),

		auditEmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "moderation_gateway_audit_emitted_total",
				Help: "Audit records successfully handed to the sink",
			},
		),

		auditDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "moderation_gateway_audit_dropped_total",
				Help: "Audit records dropped due to sink backpressure",
			},
		),

		ruleStoreStaleness: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "moderation_gateway_rule_store_snapshot_age_seconds",
				Help: "Age of the current Rule Store snapshot",
			},
		),
	}

	c.registerMetrics()

	logger.Info("metrics collector initialized", zap.Bool("enabled", cfg.Enabled))
	return c
}

func (c *Collector) registerMetrics() {
	prometheus.MustRegister(
		c.latencySeconds,
		c.outcomesTotal,
		c.slaViolationsTotal,
		c.interceptedTotal,
		c.ruleTriggersTotal,
		c.detectorErrorsTotal,
		c.auditEmittedTotal,
		c.auditDroppedTotal,
		c.ruleStoreStaleness,
	)
}

// outcomeLabel derives the outcome label from a ModerationResult.
func outcomeLabel(result moderation.ModerationResult) string {
	switch {
	case result.IsBlocked:
		return "blocked"
	case result.IsFlagged:
		return "flagged"
	default:
		return "allowed"
	}
}

// RecordInvocation records the per-invocation metrics the spec requires
// (spec §4.6): latency histogram, region×outcome counter, SLA-violation
// counter, interception counter, and per-kind trigger counters.
func (c *Collector) RecordInvocation(result moderation.ModerationResult, slaCeiling time.Duration) {
	outcome := outcomeLabel(result)
	region := string(result.Region)

	latency := time.Duration(result.LatencyNS)
	c.latencySeconds.WithLabelValues(region, outcome).Observe(latency.Seconds())
	c.outcomesTotal.WithLabelValues(region, outcome).Inc()

	if latency > slaCeiling {
		c.slaViolationsTotal.Inc()
	}

	interceptedLabel := "true"
	if !result.Intercepted {
		interceptedLabel = "false"
	}
	c.interceptedTotal.WithLabelValues(interceptedLabel).Inc()

	for _, o := range result.Triggered {
		c.ruleTriggersTotal.WithLabelValues(string(o.Kind)).Inc()
	}
}

// RecordDetectorError increments the detector-error counter (spec §4.6:
// "regex compile, model error, timeouts").
func (c *Collector) RecordDetectorError(kind moderation.Kind, reason string) {
	c.detectorErrorsTotal.WithLabelValues(string(kind), reason).Inc()
}

// IncAuditEmitted implements audit.DropCounter.
func (c *Collector) IncAuditEmitted() { c.auditEmittedTotal.Inc() }

// IncAuditDropped implements audit.DropCounter.
func (c *Collector) IncAuditDropped() { c.auditDroppedTotal.Inc() }

// SetRuleStoreSnapshotAge records the current Rule Store snapshot's age.
func (c *Collector) SetRuleStoreSnapshotAge(age time.Duration) {
	if age < 0 {
		return
	}
	c.ruleStoreStaleness.Set(age.Seconds())
}

// Handler exposes the metrics scrape endpoint (the "Metrics consumer
// (downstream)" boundary named in spec §6; the scrape wiring itself —
// the HTTP route — is out of scope for the core, but the handler the
// core's registry produces is not).
func (c *Collector) Handler() http.Handler {
	return promhttp.Handler()
}
