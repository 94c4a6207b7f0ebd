package detectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

func TestToxicity_TriggersOnInsult(t *testing.T) {
	tox := NewToxicity(zap.NewNop(), true, time.Second, nil)
	rule := &moderation.Rule{ID: "r1", Threshold: 0.5}

	out, err := tox.Detect("You are an idiot and a loser", rule)
	require.NoError(t, err)
	assert.True(t, out.Triggered)
	require.NotNil(t, out.Score)
	assert.GreaterOrEqual(t, *out.Score, 0.5)
}

func TestToxicity_NoTriggerOnNeutralText(t *testing.T) {
	tox := NewToxicity(zap.NewNop(), true, time.Second, nil)
	rule := &moderation.Rule{ID: "r1", Threshold: 0.7}

	out, err := tox.Detect("Hello, how can I help you today?", rule)
	require.NoError(t, err)
	assert.False(t, out.Triggered)
}

func TestToxicity_DefaultThresholdWhenAbsent(t *testing.T) {
	tox := NewToxicity(zap.NewNop(), true, time.Second, nil)
	rule := &moderation.Rule{ID: "r1"} // Threshold zero -> default 0.7

	// "hello" scores just above 0.5 on every label: below the 0.7
	// default, but it would trigger against a literal zero threshold.
	out, err := tox.Detect("hello", rule)
	require.NoError(t, err)
	assert.False(t, out.Triggered)
}

func TestToxicity_FailOpenOnTimeout(t *testing.T) {
	timedOut := false
	tox := NewToxicity(zap.NewNop(), true, 0, func() { timedOut = true })
	rule := &moderation.Rule{ID: "r1", Threshold: 0.1}

	out, err := tox.Detect("anything at all", rule)
	require.NoError(t, err)
	assert.False(t, out.Triggered)
	assert.True(t, timedOut)
}

func TestToxicity_FailClosedOnTimeout(t *testing.T) {
	tox := NewToxicity(zap.NewNop(), false, 0, nil)
	rule := &moderation.Rule{ID: "r1", Threshold: 0.1}

	out, err := tox.Detect("anything at all", rule)
	require.NoError(t, err)
	assert.True(t, out.Triggered)
}
