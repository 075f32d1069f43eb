package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/spf13/viper"
)

const EnvPrefix = "RECONCILER"

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	ItemSource ItemSourceConfig `mapstructure:"item_source"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	ConfigPath string           `mapstructure:"-"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type WorkerConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	DegradedThreshold time.Duration `mapstructure:"degraded_threshold"`
	MaxRetry          int           `mapstructure:"max_retry"`
	FailFastAfter     int           `mapstructure:"fail_fast_after"`
}

type ItemSourceConfig struct {
	Kind    string `mapstructure:"kind"`
	BaseURL string `mapstructure:"base_url"`
	// Query is the JSON filter blob (pageNumber, pageSize, fromDate, toDate).
	Query   string        `mapstructure:"query"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	Token        string `mapstructure:"token"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Scope        string `mapstructure:"scope"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func NewDefault() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "postgres"},
		HTTP:     HTTPConfig{Port: consts.DefaultHTTPPort},
		Worker: WorkerConfig{
			PollInterval:      consts.DefaultPollInterval,
			DegradedThreshold: consts.DefaultDegradedThreshold,
			MaxRetry:          consts.DefaultMaxRetry,
			FailFastAfter:     consts.DefaultFailFastAfter,
		},
		ItemSource: ItemSourceConfig{
			Kind:    consts.ItemSourceDatabase,
			Timeout: consts.DefaultSourceTimeout,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path, when given, and applies RECONCILER_*
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, NewDefault())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("reconciler")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	cfg := NewDefault()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables bind even when
// the file does not mention them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("http.port", cfg.HTTP.Port)
	v.SetDefault("worker.poll_interval", cfg.Worker.PollInterval)
	v.SetDefault("worker.degraded_threshold", cfg.Worker.DegradedThreshold)
	v.SetDefault("worker.max_retry", cfg.Worker.MaxRetry)
	v.SetDefault("worker.fail_fast_after", cfg.Worker.FailFastAfter)
	v.SetDefault("item_source.kind", cfg.ItemSource.Kind)
	v.SetDefault("item_source.base_url", cfg.ItemSource.BaseURL)
	v.SetDefault("item_source.query", cfg.ItemSource.Query)
	v.SetDefault("item_source.timeout", cfg.ItemSource.Timeout)
	v.SetDefault("auth.token", cfg.Auth.Token)
	v.SetDefault("auth.token_url", cfg.Auth.TokenURL)
	v.SetDefault("auth.client_id", cfg.Auth.ClientID)
	v.SetDefault("auth.client_secret", cfg.Auth.ClientSecret)
	v.SetDefault("auth.scope", cfg.Auth.Scope)
	v.SetDefault("log.level", cfg.Log.Level)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Worker.PollInterval <= 0 {
		return errors.New("worker.poll_interval must be positive")
	}
	if c.Worker.MaxRetry < 0 {
		return errors.New("worker.max_retry must not be negative")
	}
	if c.Worker.FailFastAfter < 1 {
		return errors.New("worker.fail_fast_after must be at least 1")
	}

	switch c.ItemSource.Kind {
	case consts.ItemSourceDatabase:
	case consts.ItemSourceHTTP:
		if c.ItemSource.BaseURL == "" {
			return errors.New("item_source.base_url is required for the http item source")
		}
		if c.Auth.Token == "" && c.Auth.TokenURL == "" {
			return errors.New("auth.token or auth.token_url is required for the http item source")
		}
	default:
		return fmt.Errorf("unsupported item source kind %q", c.ItemSource.Kind)
	}
	return nil
}
