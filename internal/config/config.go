package config

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// EngineConfig holds the numeric constants driving the decision pipeline
// and the integrity lock. Loaded once at startup and treated as read-only
// by every component that receives it.
type EngineConfig struct {
	HarmonyThreshold     float64 `yaml:"harmony_threshold" mapstructure:"harmony_threshold"`
	InvariantHigh        float64 `yaml:"invariant_high" mapstructure:"invariant_high"`
	BinaryBreak          float64 `yaml:"binary_break" mapstructure:"binary_break"`
	DensityThreshold     float64 `yaml:"density_threshold" mapstructure:"density_threshold"`
	CovenantMultiplier   float64 `yaml:"covenant_multiplier" mapstructure:"covenant_multiplier"`
	QCITarget            float64 `yaml:"qci_target" mapstructure:"qci_target"`
	RepentanceThreshold  float64 `yaml:"repentance_threshold" mapstructure:"repentance_threshold"`
	EigenvalueLambda1    float64 `yaml:"eigenvalue_lambda1" mapstructure:"eigenvalue_lambda1"`
	EigenvalueLambda2    float64 `yaml:"eigenvalue_lambda2" mapstructure:"eigenvalue_lambda2"`
	StrictValidation     bool    `yaml:"strict_validation" mapstructure:"strict_validation"`
	IntegrityRulesPath   string  `yaml:"integrity_rules_path" mapstructure:"integrity_rules_path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RatePerSecond  float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	BatchMaxConc   int      `yaml:"batch_max_concurrency" mapstructure:"batch_max_concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MonitoringConfig configures the background alert checker.
type MonitoringConfig struct {
	CheckIntervalSecs        int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	RejectionRateThreshold   float64 `yaml:"rejection_rate_threshold" mapstructure:"rejection_rate_threshold"`
	LockFailureRateThreshold float64 `yaml:"lock_failure_rate_threshold" mapstructure:"lock_failure_rate_threshold"`
	WebhookURL               string  `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("engine.harmony_threshold", 1.67)
	v.SetDefault("engine.invariant_high", 1.89)
	v.SetDefault("engine.binary_break", 1.7333)
	v.SetDefault("engine.density_threshold", 3.34)
	v.SetDefault("engine.covenant_multiplier", 5.0)
	v.SetDefault("engine.qci_target", math.Pi/2)
	v.SetDefault("engine.repentance_threshold", math.Pi/4)
	v.SetDefault("engine.eigenvalue_lambda1", 1.016)
	v.SetDefault("engine.eigenvalue_lambda2", 0.384)
	v.SetDefault("engine.strict_validation", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_second", 50.0)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.batch_max_concurrency", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.rejection_rate_threshold", 0.5)
	v.SetDefault("monitoring.lock_failure_rate_threshold", 0.9)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the engine constants for internal consistency.
func (c EngineConfig) Validate() error {
	for name, val := range map[string]float64{
		"harmony_threshold":    c.HarmonyThreshold,
		"invariant_high":       c.InvariantHigh,
		"density_threshold":    c.DensityThreshold,
		"covenant_multiplier":  c.CovenantMultiplier,
		"qci_target":           c.QCITarget,
		"repentance_threshold": c.RepentanceThreshold,
	} {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return eris.Errorf("config: engine.%s must be finite, got %v", name, val)
		}
	}
	if c.RepentanceThreshold >= c.QCITarget {
		return eris.Errorf("config: repentance_threshold %v must be below qci_target %v",
			c.RepentanceThreshold, c.QCITarget)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
