package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

func TestIsHateSpeechRule(t *testing.T) {
	assert.True(t, IsHateSpeechRule("Hate Speech Filter"))
	assert.True(t, IsHateSpeechRule("hateful-terms"))
	assert.False(t, IsHateSpeechRule("Crypto Scam Detection"))
}

func TestShouldBlock(t *testing.T) {
	assert.True(t, ShouldBlock(moderation.KindPII, ""))
	assert.True(t, ShouldBlock(moderation.KindFinancial, ""))
	assert.True(t, ShouldBlock(moderation.KindMedical, ""))
	assert.True(t, ShouldBlock(moderation.KindToxicity, ""))
	assert.True(t, ShouldBlock(moderation.KindRegex, ""))
	assert.False(t, ShouldBlock(moderation.KindKeyword, "Crypto Scam Detection"))
	assert.True(t, ShouldBlock(moderation.KindKeyword, "Hate Speech Filter"))
}

func score(v float64) *float64 { return &v }

func TestCompose_EmptyInputNeverBlocks(t *testing.T) {
	v := Compose(nil)
	assert.False(t, v.IsFlagged)
	assert.False(t, v.IsBlocked)
	assert.Empty(t, v.Triggered)
}

func TestCompose_PIITriggersBlock(t *testing.T) {
	outcomes := []moderation.RuleOutcome{
		{RuleID: "r1", Kind: moderation.KindPII, Triggered: true, ShouldBlock: true, Priority: 10},
	}
	v := Compose(outcomes)
	assert.True(t, v.IsFlagged)
	assert.True(t, v.IsBlocked)
	assert.Equal(t, moderation.KindPII, v.FallbackKind)
}

func TestCompose_KeywordNonHateFlagsButDoesNotBlock(t *testing.T) {
	outcomes := []moderation.RuleOutcome{
		{RuleID: "r1", Kind: moderation.KindKeyword, Triggered: true, ShouldBlock: false, Priority: 5},
	}
	v := Compose(outcomes)
	assert.True(t, v.IsFlagged)
	assert.False(t, v.IsBlocked)
}

func TestCompose_MultiKindPicksPIIOverToxicity(t *testing.T) {
	outcomes := []moderation.RuleOutcome{
		{RuleID: "r2", Kind: moderation.KindToxicity, Triggered: true, ShouldBlock: true, Priority: 20, Score: score(0.9)},
		{RuleID: "r1", Kind: moderation.KindPII, Triggered: true, ShouldBlock: true, Priority: 10},
	}
	v := Compose(outcomes)
	assert.True(t, v.IsBlocked)
	assert.Equal(t, moderation.KindPII, v.FallbackKind)
	// priority-descending ordering for the reported triggered list
	assert.Equal(t, "r2", v.Triggered[0].RuleID)
	assert.Equal(t, "r1", v.Triggered[1].RuleID)
}

func TestCompose_TieBreakByIDAscending(t *testing.T) {
	outcomes := []moderation.RuleOutcome{
		{RuleID: "rB", Kind: moderation.KindKeyword, Triggered: true, Priority: 5},
		{RuleID: "rA", Kind: moderation.KindKeyword, Triggered: true, Priority: 5},
	}
	v := Compose(outcomes)
	assert.Equal(t, "rA", v.Triggered[0].RuleID)
	assert.Equal(t, "rB", v.Triggered[1].RuleID)
}

func TestFallbackMessage_KnownAndUnknownKind(t *testing.T) {
	assert.NotEmpty(t, FallbackMessage(moderation.KindPII))
	assert.Equal(t, defaultFallbackMessage, FallbackMessage(moderation.Kind("UNKNOWN")))
}
