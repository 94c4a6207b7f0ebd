package audit

import (
	"sync"
	"time"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// MemoryStore is a bounded in-memory AuditRecord store, the Go-level
// analog of the teacher's richer QueryEvents/GenerateReport surface,
// trimmed to what the "Audit consumer (downstream)" boundary (spec §6)
// implies: some read path by request id, even though its wire format is
// out of scope for the core.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]moderation.AuditRecord
	order   []string
	cap     int
}

func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{records: make(map[string]moderation.AuditRecord), cap: capacity}
}

// Store is passed to audit.NewSink as the persist callback.
func (m *MemoryStore) Store(rec moderation.AuditRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.RequestID]; !exists {
		m.order = append(m.order, rec.RequestID)
	}
	m.records[rec.RequestID] = rec

	if m.cap > 0 && len(m.order) > m.cap {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.records, oldest)
	}
}

// ByRequestID looks up a single audit record.
func (m *MemoryStore) ByRequestID(requestID string) (moderation.AuditRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[requestID]
	return rec, ok
}

// Count returns the number of retained audit records.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// QueryRecords returns retained records with a timestamp in [since,
// until), newest first. A zero until means no upper bound. This is the
// trimmed analog of the teacher's richer QueryEvents/GenerateReport
// surface — the "Audit consumer (downstream)" boundary implies some read
// path even though its wire format is out of scope for the core.
func (m *MemoryStore) QueryRecords(since, until time.Time) []moderation.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []moderation.AuditRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.records[m.order[i]]
		if rec.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && !rec.Timestamp.Before(until) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
