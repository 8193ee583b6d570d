// Package config loads the offerform configuration from a YAML file and
// OFFERFORM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-offerform/pkg/store/gormstore"
)

// EnvPrefix is prepended to every environment override, with dots in keys
// replaced by underscores (OFFERFORM_STORAGE_DSN).
const EnvPrefix = "OFFERFORM"

// Storage drivers accepted by storage.driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = gormstore.DriverSQLite
	DriverPostgres = gormstore.DriverPostgres
)

type Config struct {
	Form    FormConfig    `mapstructure:"form"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	GenAI   GenAIConfig   `mapstructure:"genai"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// FormConfig selects the field profile: a builtin id or a path to a YAML or
// JSON profile file. PlaceholderMode overrides the profile's mode when set.
type FormConfig struct {
	Profile         string `mapstructure:"profile"`
	PlaceholderMode string `mapstructure:"placeholder_mode"`
}

type StorageConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
}

// Gorm converts the storage section into a gormstore configuration.
func (s StorageConfig) Gorm() gormstore.Config {
	return gormstore.Config{
		Driver:          s.Driver,
		DSN:             s.DSN,
		MaxIdleConns:    s.MaxIdleConns,
		MaxOpenConns:    s.MaxOpenConns,
		ConnMaxLifetime: s.ConnMaxLifetime,
		SlowThreshold:   s.SlowThreshold,
	}
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

type GenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration. An explicit path must exist; otherwise
// offerform.yaml is searched in ".", "./configs" and "$HOME/.offerform" and
// may be absent, leaving defaults and environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("offerform")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.offerform")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.RetryAttempts < 1 {
		return fmt.Errorf("config: storage.retry_attempts must be at least 1, got %d", c.Storage.RetryAttempts)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required when redis is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("form.profile", "ascension")
	v.SetDefault("form.placeholder_mode", "")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "offerform.db")
	v.SetDefault("storage.max_idle_conns", 5)
	v.SetDefault("storage.max_open_conns", 20)
	v.SetDefault("storage.conn_max_lifetime", time.Hour)
	v.SetDefault("storage.slow_threshold", 200*time.Millisecond)
	v.SetDefault("storage.retry_attempts", 1)
	v.SetDefault("storage.retry_backoff", 200*time.Millisecond)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 7*24*time.Hour)
	v.SetDefault("redis.prefix", "offerform:draft:")

	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-2.5-flash")
	v.SetDefault("genai.temperature", 0.7)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.mode", "release")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")
}
