// Package rulestore implements the authoritative, externally mutable
// Rule Store (spec §4.2) and the in-process snapshot cache the engine
// reads through its single getActiveRules operation.
package rulestore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/config"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/moderation"
)

// NewPostgresPool creates the connection pool backing the Rule Store,
// grounded on the same pgxpool construction the rest of this codebase
// uses for its repositories.
func NewPostgresPool(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("rule store database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database))

	return pool, nil
}

// Repository is the authoritative, Postgres-backed collection of rule
// records. The administrative layer mutates through it (spec §6); the
// engine never calls it directly, only through the Store's cached
// snapshot (spec §4.2).
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	store       *Store
	broadcaster *EpochBroadcaster
}

func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{pool: pool, logger: logger}
}

// AttachNotifier wires the Repository to the Store whose epoch it bumps
// and the EpochBroadcaster it publishes through on every mutation. The
// Store itself is constructed from the Repository (as the loader it
// refreshes from), so the two cannot be wired through constructor
// arguments alone without a cycle; this is called once both exist,
// after fx has built the full graph (see cmd/main.go).
func (r *Repository) AttachNotifier(store *Store, broadcaster *EpochBroadcaster) {
	r.store = store
	r.broadcaster = broadcaster
}

// notifyMutation bumps the in-process epoch and publishes it to peers so
// every replica's snapshot converges sooner than the next ticker tick
// (spec §4.2, §9). Both the Store and the broadcaster are optional: in
// tests, or before AttachNotifier runs, this is a no-op.
func (r *Repository) notifyMutation(ctx context.Context) {
	if r.store == nil {
		return
	}
	epoch := r.store.NotifyMutation()
	r.broadcaster.Publish(ctx, epoch)
}

// ListActive loads every active rule, ordered priority descending then
// id ascending — the single read the spec's caching policy requires
// (spec §4.2: "Cache load is a single read, never a per-rule fetch").
func (r *Repository) ListActive(ctx context.Context) ([]moderation.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, kind, region, patterns, threshold,
		       priority, is_active, created_at, updated_at
		FROM moderation_rules
		WHERE is_active = true
		ORDER BY priority DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing active rules: %w", err)
	}
	defer rows.Close()

	var rules []moderation.Rule
	for rows.Next() {
		var rule moderation.Rule
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Description, &rule.Kind, &rule.Region,
			&rule.Patterns, &rule.Threshold, &rule.Priority, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			r.logger.Error("scanning moderation rule", zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Create inserts a new rule, assigning it a stable id (spec §6).
func (r *Repository) Create(ctx context.Context, rule moderation.Rule) (moderation.Rule, error) {
	if !rule.Kind.Valid() {
		return moderation.Rule{}, fmt.Errorf("%w: kind %q", ErrInvalidInput, rule.Kind)
	}
	if !rule.Region.Valid() {
		return moderation.Rule{}, fmt.Errorf("%w: region %q", ErrInvalidInput, rule.Region)
	}
	if rule.Threshold < 0 || rule.Threshold > 1 {
		return moderation.Rule{}, fmt.Errorf("%w: threshold %f", ErrInvalidInput, rule.Threshold)
	}

	rule.ID = uuid.NewString()
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO moderation_rules
			(id, name, description, kind, region, patterns, threshold, priority, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rule.ID, rule.Name, rule.Description, rule.Kind, rule.Region, rule.Patterns,
		rule.Threshold, rule.Priority, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return moderation.Rule{}, fmt.Errorf("creating rule: %w", err)
	}
	r.notifyMutation(ctx)
	return rule, nil
}

// Update mutates the mutable fields of a rule by id. id and kind are
// never mutated in place (spec §6: "modeled as delete-plus-create").
// Every mutation advances updated_at strictly monotonically (spec §3).
func (r *Repository) Update(ctx context.Context, id string, patch RulePatch) error {
	now := time.Now()

	cmd, err := r.pool.Exec(ctx, `
		UPDATE moderation_rules SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			patterns    = COALESCE($4, patterns),
			threshold   = COALESCE($5, threshold),
			priority    = COALESCE($6, priority),
			is_active   = COALESCE($7, is_active),
			updated_at  = $8
		WHERE id = $1`,
		id, patch.Name, patch.Description, patch.Patterns, patch.Threshold,
		patch.Priority, patch.IsActive, now,
	)
	if err != nil {
		return fmt.Errorf("updating rule %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.notifyMutation(ctx)
	return nil
}

// Delete soft-deletes a rule by marking it inactive, mirroring this
// codebase's existing soft-delete convention for administered records.
func (r *Repository) Delete(ctx context.Context, id string) error {
	now := time.Now()
	cmd, err := r.pool.Exec(ctx,
		`UPDATE moderation_rules SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, now,
	)
	if err != nil {
		return fmt.Errorf("deleting rule %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.notifyMutation(ctx)
	return nil
}

// RulePatch carries optional fields for a partial Update; nil fields are
// left unchanged.
type RulePatch struct {
	Name        *string
	Description *string
	Patterns    []string
	Threshold   *float64
	Priority    *int
	IsActive    *bool
}
