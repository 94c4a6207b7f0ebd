package rulestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

type fakeLoader struct {
	rules []moderation.Rule
	err   error
}

func (f *fakeLoader) ListActive(ctx context.Context) ([]moderation.Rule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

func TestStore_GetActiveRules_GlobalAndRegionMerge(t *testing.T) {
	loader := &fakeLoader{rules: []moderation.Rule{
		{ID: "g1", Region: moderation.RegionGlobal, Priority: 5, IsActive: true},
		{ID: "u1", Region: moderation.RegionUS, Priority: 10, IsActive: true},
		{ID: "eu1", Region: moderation.RegionEU, Priority: 20, IsActive: true},
	}}
	s := NewStore(loader, zap.NewNop(), time.Hour)
	require.NoError(t, s.Refresh(context.Background()))

	rules := s.GetActiveRules(moderation.RegionUS)
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"u1", "g1"}, ids) // priority 10 before 5
	assert.NotContains(t, ids, "eu1")
}

func TestStore_GetActiveRules_InactiveExcluded(t *testing.T) {
	loader := &fakeLoader{rules: []moderation.Rule{
		{ID: "a", Region: moderation.RegionGlobal, IsActive: true},
		{ID: "b", Region: moderation.RegionGlobal, IsActive: false},
	}}
	s := NewStore(loader, zap.NewNop(), time.Hour)
	require.NoError(t, s.Refresh(context.Background()))

	rules := s.GetActiveRules(moderation.RegionGlobal)
	require.Len(t, rules, 1)
	assert.Equal(t, "a", rules[0].ID)
}

func TestStore_ServesLastGoodSnapshotOnRefreshFailure(t *testing.T) {
	loader := &fakeLoader{rules: []moderation.Rule{{ID: "a", Region: moderation.RegionGlobal, IsActive: true}}}
	s := NewStore(loader, zap.NewNop(), time.Hour)
	require.NoError(t, s.Refresh(context.Background()))

	loader.err = assertError{}
	err := s.Refresh(context.Background())
	assert.Error(t, err)

	rules := s.GetActiveRules(moderation.RegionGlobal)
	require.Len(t, rules, 1)
	assert.Equal(t, "a", rules[0].ID)
}

func TestStore_EmptyBeforeFirstLoad(t *testing.T) {
	loader := &fakeLoader{rules: nil}
	s := NewStore(loader, zap.NewNop(), time.Hour)
	assert.Empty(t, s.GetActiveRules(moderation.RegionGlobal))
}

func TestStore_NotifyMutationAdvancesEpoch(t *testing.T) {
	loader := &fakeLoader{}
	s := NewStore(loader, zap.NewNop(), time.Hour)
	e1 := s.NotifyMutation()
	e2 := s.NotifyMutation()
	assert.Greater(t, e2, e1)
}

type assertError struct{}

func (assertError) Error() string { return "load failed" }
