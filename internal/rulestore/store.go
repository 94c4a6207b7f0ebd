package rulestore

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/config"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// loader is the single upstream read the Store refreshes from — a
// single (all active rules) snapshot, never a per-rule fetch (spec §4.2).
type loader interface {
	ListActive(ctx context.Context) ([]moderation.Rule, error)
}

// snapshot is the immutable, copy-on-write view of the active rule set.
// Readers never synchronize beyond the pointer-load (spec §5, §9).
type snapshot struct {
	byRegion map[moderation.Region][]moderation.Rule
	loadedAt time.Time
	epoch    uint64
}

// Store is the in-process cache the Moderation Engine reads through its
// single getActiveRules operation (spec §4.2). Freshness is governed by
// both a periodic ticker (default interval ≤1s) and a monotonic mutation
// epoch — belt-and-suspenders, per the design decision recorded for this
// exercise's Rule Store freshness open question.
type Store struct {
	loader  loader
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
	epoch   atomic.Uint64

	refreshInterval time.Duration
	stop            chan struct{}

	// current is replaced only by a successful load, so after a failed
	// upstream load it still holds the last good snapshot, which backs the
	// degraded-mode read (spec §7: "Rule-set unavailable").
}

// NewStore constructs a Store. Call Start to begin the background
// refresh ticker; the Store is safe to read (GetActiveRules) even before
// the first successful load — it serves the empty rule set until then,
// per the fail-open default of spec §7.
func NewStore(l loader, logger *zap.Logger, refreshInterval time.Duration) *Store {
	s := &Store{
		loader:          l,
		logger:          logger,
		refreshInterval: refreshInterval,
		stop:            make(chan struct{}),
	}
	empty := &snapshot{byRegion: map[moderation.Region][]moderation.Rule{}, loadedAt: time.Time{}}
	s.current.Store(empty)
	return s
}

// Start loads the initial snapshot and launches the background refresh
// ticker. It is a no-op to call Stop without calling Start.
func (s *Store) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("initial rule store load failed; serving empty rule set", zap.Error(err))
	}

	go s.tickerLoop()
	return nil
}

// Stop halts the background refresh ticker.
func (s *Store) Stop() {
	close(s.stop)
}

func (s *Store) tickerLoop() {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.refreshInterval)
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("periodic rule store refresh failed; serving last good snapshot", zap.Error(err))
			}
			cancel()
		case <-s.stop:
			return
		}
	}
}

// Refresh performs the single upstream read and publishes a new
// immutable snapshot via pointer swap (spec §9: "copy-on-write snapshot,
// pointer-swapped by the Rule Store on refresh"). On failure the
// previous snapshot remains in effect (spec §7).
func (s *Store) Refresh(ctx context.Context) error {
	rules, err := s.loader.ListActive(ctx)
	if err != nil {
		return err
	}

	byRegion := buildIndex(rules)
	next := &snapshot{
		byRegion: byRegion,
		loadedAt: time.Now(),
		epoch:    s.epoch.Load(),
	}
	s.current.Store(next)
	return nil
}

// NotifyMutation bumps the monotonic epoch. The administrative layer
// calls this after every create/update/delete so the next refresh (or an
// epoch-triggered early refresh via Redis, see epoch.go) is known to be
// necessary. It does not itself trigger an I/O bound refresh — that
// still goes through the ticker or an explicit Refresh call — because
// the spec requires cache load to never be a per-mutation synchronous
// fetch on an unrelated request's hot path.
func (s *Store) NotifyMutation() uint64 {
	return s.epoch.Add(1)
}

// GetActiveRules is the engine's sole read path (spec §4.2):
// priority-descending, id-ascending, GLOBAL plus region-matching rules.
func (s *Store) GetActiveRules(region moderation.Region) []moderation.Rule {
	snap := s.current.Load()

	global := snap.byRegion[moderation.RegionGlobal]
	var regional []moderation.Rule
	if region != moderation.RegionGlobal {
		regional = snap.byRegion[region]
	}

	if len(regional) == 0 {
		return global
	}

	merged := make([]moderation.Rule, 0, len(global)+len(regional))
	merged = append(merged, global...)
	merged = append(merged, regional...)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Priority != merged[j].Priority {
			return merged[i].Priority > merged[j].Priority
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// SnapshotAge reports how long ago the current snapshot was loaded — the
// degraded-mode health signal described in the expanded spec.
func (s *Store) SnapshotAge() time.Duration {
	snap := s.current.Load()
	if snap.loadedAt.IsZero() {
		return -1
	}
	return time.Since(snap.loadedAt)
}

func buildIndex(rules []moderation.Rule) map[moderation.Region][]moderation.Rule {
	byRegion := make(map[moderation.Region][]moderation.Rule)
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}
	for region := range byRegion {
		rs := byRegion[region]
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].Priority != rs[j].Priority {
				return rs[i].Priority > rs[j].Priority
			}
			return rs[i].ID < rs[j].ID
		})
		byRegion[region] = rs
	}
	return byRegion
}

// NewStoreFromConfig is the fx-facing constructor tying config values to
// NewStore.
func NewStoreFromConfig(repo *Repository, cfg *config.Config, logger *zap.Logger) *Store {
	return NewStore(repo, logger, cfg.RuleStore.RefreshInterval)
}
