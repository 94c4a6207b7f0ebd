package gwmetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/config"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	return NewCollector(&config.Config{Metrics: config.MetricsConfig{Enabled: true}}, zap.NewNop())
}

func TestCollector_RecordInvocation_SLAViolation(t *testing.T) {
	c := newTestCollector(t)
	result := moderation.ModerationResult{
		Region:      moderation.RegionUS,
		IsBlocked:   true,
		Intercepted: true,
		LatencyNS:   int64(200 * time.Millisecond),
		Triggered: []moderation.RuleOutcome{
			{Kind: moderation.KindPII, Triggered: true},
		},
	}
	c.RecordInvocation(result, 100*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.slaViolationsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ruleTriggersTotal.WithLabelValues("PII")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.interceptedTotal.WithLabelValues("true")))
}

func TestCollector_RecordInvocation_EngineFailsafe(t *testing.T) {
	c := newTestCollector(t)
	result := moderation.ModerationResult{
		Region:      moderation.RegionGlobal,
		Intercepted: false,
	}
	c.RecordInvocation(result, 100*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.interceptedTotal.WithLabelValues("false")))
}

func TestCollector_AuditCounters(t *testing.T) {
	c := newTestCollector(t)
	c.IncAuditEmitted()
	c.IncAuditDropped()
	c.IncAuditDropped()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.auditEmittedTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.auditDroppedTotal))
}
