// Package audit implements the non-blocking Audit Sink (spec §4.5): a
// bounded buffered channel with drop-with-metric semantics, the same
// shape as this codebase's existing audit logger, generalized from
// application events to moderation AuditRecords.
package audit

import (
	"time"

	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// DropCounter is implemented by the metrics package; kept as a narrow
// interface here so audit does not import metrics directly.
type DropCounter interface {
	IncAuditDropped()
	IncAuditEmitted()
}

// Sink is the only durable exhaust for the interception property (spec
// §8). Submit never blocks the caller beyond the channel send itself;
// once the queue is at capacity, records are dropped and counted rather
// than risk leaking sink latency into the moderation SLA.
type Sink struct {
	buffer  chan moderation.AuditRecord
	logger  *zap.Logger
	metrics DropCounter
	stop    chan struct{}
	store   func(moderation.AuditRecord)
}

// NewSink constructs a Sink with the given queue capacity (spec §4.5,
// default configurable). store is called from the background drain
// goroutine to persist each record; tests may pass an in-memory store.
func NewSink(capacity int, logger *zap.Logger, metrics DropCounter, store func(moderation.AuditRecord)) *Sink {
	s := &Sink{
		buffer:  make(chan moderation.AuditRecord, capacity),
		logger:  logger,
		metrics: metrics,
		stop:    make(chan struct{}),
		store:   store,
	}
	go s.drain()
	return s
}

// Submit is non-blocking: it enqueues rec if the buffer has room,
// otherwise it drops rec and increments the dropped-audit metric (spec
// §4.5, §8: a dropped record is itself a correctness alarm).
func (s *Sink) Submit(rec moderation.AuditRecord) {
	select {
	case s.buffer <- rec:
	default:
		s.logger.Warn("audit buffer full, dropping record",
			zap.String("request_id", rec.RequestID))
		if s.metrics != nil {
			s.metrics.IncAuditDropped()
		}
	}
}

func (s *Sink) drain() {
	for {
		select {
		case rec := <-s.buffer:
			s.persist(rec)
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *Sink) flush() {
	for {
		select {
		case rec := <-s.buffer:
			s.persist(rec)
		default:
			return
		}
	}
}

func (s *Sink) persist(rec moderation.AuditRecord) {
	if s.store != nil {
		s.store(rec)
	}
	if s.metrics != nil {
		s.metrics.IncAuditEmitted()
	}
}

// Close stops the background drain goroutine after flushing whatever is
// still buffered.
func (s *Sink) Close() {
	close(s.stop)
}

// NewRecord builds an AuditRecord from a moderation result, stamping the
// current wall-clock time (spec §3).
func NewRecord(userMessage, botResponse string, result moderation.ModerationResult, tag string) moderation.AuditRecord {
	return moderation.AuditRecord{
		RequestID:     result.RequestID,
		Timestamp:     time.Now(),
		UserMessage:   userMessage,
		BotResponse:   botResponse,
		FinalResponse: result.FinalResponse,
		IsFlagged:     result.IsFlagged,
		IsBlocked:     result.IsBlocked,
		Triggered:     result.Triggered,
		Scores:        result.Scores,
		LatencyNS:     result.LatencyNS,
		Region:        result.Region,
		SessionID:     result.SessionID,
		Tag:           tag,
	}
}
