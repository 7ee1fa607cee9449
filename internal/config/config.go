package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridpulse/csgstat/pkg/csg"
)

// Config holds the full application configuration.
type Config struct {
	API      APIConfig     `yaml:"api" mapstructure:"api"`
	Accounts []csg.Account `yaml:"accounts" mapstructure:"accounts"`
	Update   UpdateConfig  `yaml:"update" mapstructure:"update"`
	Server   ServerConfig  `yaml:"server" mapstructure:"server"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

// APIConfig holds provider API credentials and endpoint settings.
type APIConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	AuthToken string  `yaml:"auth_token" mapstructure:"auth_token"`
	RateRPS   float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// UpdateConfig configures the refresh cycle cadence. TimeoutSecs is
// floor-enforced by the engine, not here, so the substitution is visible
// in logs on every cycle rather than hidden at load time.
type UpdateConfig struct {
	IntervalSecs int `yaml:"interval_secs" mapstructure:"interval_secs"`
	TimeoutSecs  int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the snapshot read server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.AddConfigPath("$HOME/.config/csgstat")

	// Environment
	v.SetEnvPrefix("CSGSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("update.interval_secs", 1800)
	v.SetDefault("update.timeout_secs", 120)
	v.SetDefault("api.base_url", "https://95598.csg.cn/ucs/ma/zt")
	v.SetDefault("api.rate_rps", 2.0)
	v.SetDefault("api.rate_burst", 4)

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
