package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/api"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/audit"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/config"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/detectors"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/engine"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/gwmetrics"
	"github.com/ketanwani/Chat-Moderator-for-AI-chatbot/internal/rulestore"
)

func main() {
	app := fx.New(
		// Configuration
		fx.Provide(config.NewConfig),

		// Logging
		fx.Provide(NewLogger),

		// Rule Store
		fx.Provide(rulestore.NewPostgresPool),
		fx.Provide(rulestore.NewRepository),
		fx.Provide(rulestore.NewStoreFromConfig),
		fx.Provide(NewEpochBroadcaster),

		// Detectors
		fx.Provide(detectors.NewPII),
		fx.Provide(NewToxicityDetector),
		fx.Provide(detectors.NewKeyword),
		fx.Provide(detectors.NewRegex),
		fx.Provide(detectors.NewFinancial),
		fx.Provide(detectors.NewMedical),
		fx.Provide(detectors.NewRegistry),

		// Audit
		fx.Provide(audit.NewMemoryStore),
		fx.Provide(NewAuditSink),

		// Metrics
		fx.Provide(gwmetrics.NewCollector),

		// Moderation Engine
		fx.Provide(NewEngine),

		// API
		fx.Provide(NewGinEngine),
		fx.Provide(api.NewHealthHandler),

		// HTTP Server
		fx.Provide(NewHTTPServer),

		// Lifecycle
		fx.Invoke(WireRuleStoreNotifications),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(StartRuleStore),
		fx.Invoke(LogEngineReady),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Logging.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewToxicityDetector wires the detector's fail-open policy and
// per-invocation timeout to config, recording a timeout as a detector
// error via the metrics collector (spec §4.6: "regex compile, model
// error, timeouts").
func NewToxicityDetector(cfg *config.Config, collector *gwmetrics.Collector, logger *zap.Logger) *detectors.Toxicity {
	onTimeout := func() {
		collector.RecordDetectorError("TOXICITY", "timeout")
	}
	return detectors.NewToxicity(logger, cfg.Detector.ToxicityFailOpen, cfg.Detector.ToxicityTimeout, onTimeout)
}

func NewAuditSink(cfg *config.Config, logger *zap.Logger, collector *gwmetrics.Collector, store *audit.MemoryStore) *audit.Sink {
	return audit.NewSink(cfg.Audit.QueueCapacity, logger, collector, store.Store)
}

func NewEngine(store *rulestore.Store, registry *detectors.Registry, sink *audit.Sink, collector *gwmetrics.Collector, logger *zap.Logger, cfg *config.Config) *engine.Engine {
	return engine.New(store, registry, sink, collector, logger, cfg.Metrics.SLACeiling)
}

// NewEpochBroadcaster wires the optional cross-replica pub/sub that
// wraps rulestore.NewEpochBroadcaster; it is separate from the fx.Invoke
// hook that actually subscribes it (StartRuleStore), since the
// broadcaster must exist before the store starts refreshing.
func NewEpochBroadcaster(cfg *config.Config, logger *zap.Logger) *rulestore.EpochBroadcaster {
	return rulestore.NewEpochBroadcaster(cfg, logger)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	ginEngine.Use(gin.Logger())

	ginEngine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	return ginEngine
}

func NewHTTPServer(cfg *config.Config, ginEngine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        ginEngine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func RegisterRoutes(ginEngine *gin.Engine, healthHandler *api.HealthHandler, collector *gwmetrics.Collector, cfg *config.Config) {
	ginEngine.GET("/health", healthHandler.Health)
	ginEngine.GET("/health/ready", healthHandler.Ready)
	ginEngine.GET("/health/live", healthHandler.Live)

	if cfg.Metrics.Enabled {
		ginEngine.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}
}

// WireRuleStoreNotifications attaches the Store and EpochBroadcaster to
// the Repository so every administrative create/update/delete bumps the
// in-process epoch and publishes it to peers (spec §4.2, §9). The Store
// is itself built from the Repository (as its loader), so this can only
// be connected after fx has constructed both, not through either one's
// constructor arguments.
func WireRuleStoreNotifications(repo *rulestore.Repository, store *rulestore.Store, broadcaster *rulestore.EpochBroadcaster) {
	repo.AttachNotifier(store, broadcaster)
}

// StartRuleStore begins the Rule Store's background refresh ticker and,
// when configured, subscribes it to cross-replica epoch announcements
// so a mutation on one replica is reflected on all of them sooner than
// the next tick (spec §4.2, §9).
func StartRuleStore(lc fx.Lifecycle, store *rulestore.Store, broadcaster *rulestore.EpochBroadcaster, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Start(ctx); err != nil {
				logger.Error("rule store initial load failed", zap.Error(err))
			}
			broadcaster.Subscribe(context.Background(), func() {
				refreshCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := store.Refresh(refreshCtx); err != nil {
					logger.Warn("epoch-triggered rule store refresh failed", zap.Error(err))
				}
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			store.Stop()
			return broadcaster.Close()
		},
	})
}

// LogEngineReady forces fx to construct the Moderation Engine even
// though nothing in this process calls Moderate over HTTP — callers
// embedding this module reach it as a direct Go function call (spec
// §1: "synchronous, in-process" scope), so the wiring graph's only
// consumer of the engine here is this readiness log line.
func LogEngineReady(e *engine.Engine, logger *zap.Logger) {
	logger.Info("moderation engine ready", zap.Bool("engine_constructed", e != nil))
}

func StartServer(lc fx.Lifecycle, server *http.Server, sink *audit.Sink, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting moderation gateway", zap.String("addr", server.Addr))

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("failed to start server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down moderation gateway")
			sink.Close()

			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		},
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("received shutdown signal")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("error during shutdown", zap.Error(err))
		}
	}()
}
