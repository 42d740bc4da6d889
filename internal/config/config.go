package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Sheet      SheetConfig      `yaml:"sheet" mapstructure:"sheet"`
	Sync       SyncConfig       `yaml:"sync" mapstructure:"sync"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SheetConfig configures the external spreadsheet source.
type SheetConfig struct {
	HeaderRow   int     `yaml:"header_row" mapstructure:"header_row"`
	SheetName   string  `yaml:"sheet_name" mapstructure:"sheet_name"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // reads per second, 0 = unlimited
}

// SyncConfig configures the reconciliation engine.
type SyncConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ClassifierConfig holds the branch classifier scoring knobs. The
// defaults live in the branch package; values here override them.
type ClassifierConfig struct {
	FieldPoints           int `yaml:"field_points" mapstructure:"field_points"`
	SignatureBonus        int `yaml:"signature_bonus" mapstructure:"signature_bonus"`
	KeywordPoints         int `yaml:"keyword_points" mapstructure:"keyword_points"`
	FieldScoreCap         int `yaml:"field_score_cap" mapstructure:"field_score_cap"`
	MinScore              int `yaml:"min_score" mapstructure:"min_score"`
	StrongScore           int `yaml:"strong_score" mapstructure:"strong_score"`
	StrongFields          int `yaml:"strong_fields" mapstructure:"strong_fields"`
	MultiBranchMin        int `yaml:"multi_branch_min" mapstructure:"multi_branch_min"`
	MultiBranchConfidence int `yaml:"multi_branch_confidence" mapstructure:"multi_branch_confidence"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MonitoringConfig configures sync health checks and webhook alerts.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours  int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadsync.db")
	v.SetDefault("sheet.header_row", 0)
	v.SetDefault("sheet.timeout_secs", 30)
	v.SetDefault("sync.max_concurrent", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("monitoring.failure_rate_threshold", 0.2)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("classifier.field_points", 25)
	v.SetDefault("classifier.signature_bonus", 20)
	v.SetDefault("classifier.keyword_points", 15)
	v.SetDefault("classifier.field_score_cap", 100)
	v.SetDefault("classifier.min_score", 30)
	v.SetDefault("classifier.strong_score", 45)
	v.SetDefault("classifier.strong_fields", 2)
	v.SetDefault("classifier.multi_branch_min", 60)
	v.SetDefault("classifier.multi_branch_confidence", 75)

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

	return &cfg, nil
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
