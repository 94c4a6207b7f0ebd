package detectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

func TestRegex_Detect(t *testing.T) {
	r := NewRegex()
	rule := &moderation.Rule{
		ID:        "r1",
		Patterns:  []string{`\bfree\s+money\b`},
		UpdatedAt: time.Now(),
	}

	out, err := r.Detect("this is free money for you", rule)
	require.NoError(t, err)
	assert.True(t, out.Triggered)
}

func TestRegex_InvalidPatternReturnsError(t *testing.T) {
	r := NewRegex()
	rule := &moderation.Rule{
		ID:        "r1",
		Patterns:  []string{`(unclosed`},
		UpdatedAt: time.Now(),
	}

	_, err := r.Detect("anything", rule)
	assert.Error(t, err)
}

func TestRegex_CachesCompiledPatternsByVersion(t *testing.T) {
	r := NewRegex()
	updatedAt := time.Now()
	rule := &moderation.Rule{ID: "r1", Patterns: []string{"abc"}, UpdatedAt: updatedAt}

	_, err := r.Detect("abc", rule)
	require.NoError(t, err)

	r.mu.RLock()
	_, cached := r.cache[rule.ID+"@"+updatedAt.String()]
	r.mu.RUnlock()
	assert.True(t, cached)
}
