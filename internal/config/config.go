package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the moderation gateway.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RuleStore RuleStoreConfig `mapstructure:"rule_store"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains the internal health/metrics HTTP surface configuration.
// The moderation call itself is a direct Go function call, not an HTTP route.
type ServerConfig struct {
	Port            int           `mapstructure:"port" default:"3100"`
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"5s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"10s"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
}

// DatabaseConfig contains PostgreSQL configuration for the Rule Store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" default:"localhost"`
	Port            int           `mapstructure:"port" default:"5432"`
	Database        string        `mapstructure:"database" default:"moderation_gateway"`
	Username        string        `mapstructure:"username" default:"postgres"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode" default:"prefer"`
	MaxConnections  int           `mapstructure:"max_connections" default:"25"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" default:"10m"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout" default:"5s"`
}

// RuleStoreConfig governs the in-process snapshot cache (spec §4.2).
type RuleStoreConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval" default:"1s"`
	// EpochRedisAddr, when set, subscribes the snapshot cache to cross-replica
	// epoch-bump notifications published by the administrative layer, in
	// addition to the refresh-interval ticker.
	EpochRedisAddr    string `mapstructure:"epoch_redis_addr"`
	EpochRedisChannel string `mapstructure:"epoch_redis_channel" default:"rules:epoch"`
}

// DetectorConfig governs detector behavior.
type DetectorConfig struct {
	ToxicityFailOpen    bool          `mapstructure:"toxicity_fail_open" default:"true"`
	ToxicityTimeout     time.Duration `mapstructure:"toxicity_timeout" default:"20ms"`
	DefaultThreshold    float64       `mapstructure:"default_toxicity_threshold" default:"0.7"`
	RegexTimeBudget     time.Duration `mapstructure:"regex_time_budget" default:"5ms"`
}

// AuditConfig governs the non-blocking audit sink (spec §4.5).
type AuditConfig struct {
	QueueCapacity int `mapstructure:"queue_capacity" default:"4096"`
}

// MetricsConfig contains the latency SLA and histogram configuration (spec §4.6).
type MetricsConfig struct {
	Enabled          bool          `mapstructure:"enabled" default:"true"`
	Path             string        `mapstructure:"path" default:"/metrics"`
	SLACeiling       time.Duration `mapstructure:"sla_ceiling" default:"100ms"`
	HistogramBuckets []float64     `mapstructure:"histogram_buckets"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `mapstructure:"level" default:"info"`
	Development bool   `mapstructure:"development" default:"false"`
	Encoding    string `mapstructure:"encoding" default:"json"`
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("MODGW")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3100)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "5s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "moderation_gateway")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.ssl_mode", "prefer")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "1h")
	viper.SetDefault("database.conn_max_idle_time", "10m")
	viper.SetDefault("database.query_timeout", "5s")

	viper.SetDefault("rule_store.refresh_interval", "1s")
	viper.SetDefault("rule_store.epoch_redis_channel", "rules:epoch")

	viper.SetDefault("detector.toxicity_fail_open", true)
	viper.SetDefault("detector.toxicity_timeout", "20ms")
	viper.SetDefault("detector.default_toxicity_threshold", 0.7)
	viper.SetDefault("detector.regex_time_budget", "5ms")

	viper.SetDefault("audit.queue_capacity", 4096)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.sla_ceiling", "100ms")
	viper.SetDefault("metrics.histogram_buckets", []float64{
		0.010, 0.025, 0.050, 0.075, 0.100, 0.150, 0.200, 0.500, 1.000,
	})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.development", false)
	viper.SetDefault("logging.encoding", "json")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Database.MaxConnections <= 0 {
		return fmt.Errorf("database max_connections must be positive")
	}

	if cfg.RuleStore.RefreshInterval <= 0 {
		return fmt.Errorf("rule_store refresh_interval must be positive")
	}

	if cfg.Detector.DefaultThreshold < 0 || cfg.Detector.DefaultThreshold > 1 {
		return fmt.Errorf("detector default_toxicity_threshold must be between 0 and 1")
	}

	if cfg.Audit.QueueCapacity <= 0 {
		return fmt.Errorf("audit queue_capacity must be positive")
	}

	return nil
}

// NewConfig creates a new configuration instance. Exposed for fx.Provide.
func NewConfig() (*Config, error) {
	return Load()
}
