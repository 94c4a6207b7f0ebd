package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

type fakeCounter struct {
	dropped int
	emitted int
}

func (f *fakeCounter) IncAuditDropped() { f.dropped++ }
func (f *fakeCounter) IncAuditEmitted() { f.emitted++ }

func TestSink_SubmitPersistsRecord(t *testing.T) {
	store := NewMemoryStore(10)
	counter := &fakeCounter{}
	sink := NewSink(10, zap.NewNop(), counter, store.Store)
	defer sink.Close()

	rec := moderation.AuditRecord{RequestID: "r1"}
	sink.Submit(rec)

	require.Eventually(t, func() bool {
		_, ok := store.ByRequestID("r1")
		return ok
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, counter.emitted)
}

func TestSink_DropsWithMetricWhenFull(t *testing.T) {
	counter := &fakeCounter{}
	// No drain consumer backpressure simulated by a capacity-1 buffer and
	// a slow store callback that blocks the drain goroutine.
	block := make(chan struct{})
	sink := NewSink(1, zap.NewNop(), counter, func(moderation.AuditRecord) {
		<-block
	})
	defer close(block)
	defer sink.Close()

	sink.Submit(moderation.AuditRecord{RequestID: "r1"}) // picked up by drain, blocks
	require.Eventually(t, func() bool { return true }, time.Millisecond, time.Millisecond)

	sink.Submit(moderation.AuditRecord{RequestID: "r2"}) // fills buffer
	sink.Submit(moderation.AuditRecord{RequestID: "r3"}) // dropped

	require.Eventually(t, func() bool { return counter.dropped >= 1 }, time.Second, time.Millisecond)
}

func TestNewRecord_CarriesModerationFields(t *testing.T) {
	result := moderation.ModerationResult{
		RequestID:     "r1",
		FinalResponse: "hi",
		IsFlagged:     true,
		IsBlocked:     false,
		Region:        moderation.RegionUS,
	}
	rec := NewRecord("user said hi", "hi", result, "")
	assert.Equal(t, "r1", rec.RequestID)
	assert.Equal(t, "user said hi", rec.UserMessage)
	assert.Equal(t, "hi", rec.BotResponse)
	assert.True(t, rec.IsFlagged)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestMemoryStore_QueryRecordsFiltersByTimestamp(t *testing.T) {
	store := NewMemoryStore(10)
	now := time.Now()
	store.Store(moderation.AuditRecord{RequestID: "old", Timestamp: now.Add(-time.Hour)})
	store.Store(moderation.AuditRecord{RequestID: "new", Timestamp: now})

	recs := store.QueryRecords(now.Add(-time.Minute), time.Time{})
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].RequestID)
}

func TestMemoryStore_EvictsOldestBeyondCapacity(t *testing.T) {
	store := NewMemoryStore(2)
	store.Store(moderation.AuditRecord{RequestID: "r1"})
	store.Store(moderation.AuditRecord{RequestID: "r2"})
	store.Store(moderation.AuditRecord{RequestID: "r3"})

	_, ok := store.ByRequestID("r1")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Count())
}
