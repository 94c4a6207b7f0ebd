package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

func TestMedical_Detect(t *testing.T) {
	m := NewMedical()
	rule := &moderation.Rule{ID: "r1"}

	out, err := m.Detect("you were diagnosed with a condition requiring a treatment plan", rule)
	require.NoError(t, err)
	assert.True(t, out.Triggered)
}

func TestMedical_NoMatch(t *testing.T) {
	m := NewMedical()
	rule := &moderation.Rule{ID: "r1"}

	out, err := m.Detect("the weather is nice today", rule)
	require.NoError(t, err)
	assert.False(t, out.Triggered)
}
