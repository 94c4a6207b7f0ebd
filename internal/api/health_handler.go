// Package api exposes the gateway's internal HTTP surface: health and
// metrics only. The moderation call itself (Engine.Moderate) is a
// direct Go function call consumed in-process, not a route here.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/rulestore"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	pool   *pgxpool.Pool
	store  *rulestore.Store
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *pgxpool.Pool, store *rulestore.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{pool: pool, store: store, logger: logger}
}

// Health returns basic health status.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "moderation-gateway",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Ready checks if the service is ready to handle requests. Only the
// database ping decides readiness. The rule_store check is advisory: it
// reports the snapshot's age and reads "no_snapshot_loaded" until the
// first successful load, and it never fails readiness, since the engine
// still serves the last-good snapshot (spec §7). The age is not compared
// against the refresh interval.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	start := time.Now()
	checks := make(map[string]interface{})
	allHealthy := true

	dbCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStart := time.Now()
	if err := h.pool.Ping(dbCtx); err != nil {
		checks["database"] = map[string]interface{}{
			"status":   "unhealthy",
			"error":    err.Error(),
			"duration": time.Since(dbStart).Milliseconds(),
		}
		allHealthy = false
		h.logger.Warn("rule store database health check failed", zap.Error(err))
	} else {
		checks["database"] = map[string]interface{}{
			"status":   "healthy",
			"duration": time.Since(dbStart).Milliseconds(),
		}
	}

	age := h.store.SnapshotAge()
	ruleStoreStatus := "healthy"
	if age < 0 {
		ruleStoreStatus = "no_snapshot_loaded"
	}
	checks["rule_store"] = map[string]interface{}{
		"status":         ruleStoreStatus,
		"snapshot_age_s": age.Seconds(),
	}

	status := http.StatusOK
	overallStatus := "ready"
	if !allHealthy {
		status = http.StatusServiceUnavailable
		overallStatus = "not_ready"
	}

	c.JSON(status, gin.H{
		"status":         overallStatus,
		"service":        "moderation-gateway",
		"checks":         checks,
		"total_duration": time.Since(start).Milliseconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Live checks if the service is alive (minimal check).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "moderation-gateway",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
