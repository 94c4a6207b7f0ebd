package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

func TestPII_Detect(t *testing.T) {
	p := NewPII()
	rule := &moderation.Rule{ID: "r1", Kind: moderation.KindPII}

	cases := []struct {
		name      string
		input     string
		triggered bool
		wantType  string
	}{
		{"email", "Contact me at alice@example.com", true, "email"},
		{"phone", "Call me at 415-555-1234", true, "phone"},
		{"ssn", "My SSN is 123-45-6789", true, "ssn"},
		{"credit card", "Card: 4111 1111 1111 1111", true, "credit_card"},
		{"ipv4", "Server at 192.168.1.10 is down", true, "ipv4"},
		{"clean", "Hello, how can I help you today?", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := p.Detect(tc.input, rule)
			require.NoError(t, err)
			assert.Equal(t, tc.triggered, out.Triggered)
			if tc.wantType != "" {
				byType := out.Matches["by_type"].(map[string]any)
				assert.Contains(t, byType, tc.wantType)
			}
		})
	}
}

func TestPII_InlineWhitespaceInsensitive(t *testing.T) {
	p := NewPII()
	rule := &moderation.Rule{ID: "r1", Kind: moderation.KindPII}

	out, err := p.Detect("email:alice@example.com,done", rule)
	require.NoError(t, err)
	assert.True(t, out.Triggered)
}
