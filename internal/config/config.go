package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MinSecretLength is the shortest attestation secret accepted at startup.
const MinSecretLength = 32

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Milestone   MilestoneConfig   `yaml:"milestone"`
	Attestation AttestationConfig `yaml:"attestation"`
	Redis       RedisConfig       `yaml:"redis"`
	Jobs        JobsConfig        `yaml:"jobs"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// LogConfig.Format is "json" or "console".
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MilestoneConfig struct {
	TxTimeout        time.Duration `yaml:"txTimeout"`
	MaxRetryAttempts int           `yaml:"maxRetryAttempts"`
	RetryBackoff     time.Duration `yaml:"retryBackoff"`
}

// AttestationConfig.Secret has no default; Validate rejects an empty value.
type AttestationConfig struct {
	Secret string `yaml:"secret"`
}

// RedisConfig.PublishTimeout bounds each milestone notification publish.
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	Channel        string        `yaml:"channel"`
	PublishTimeout time.Duration `yaml:"publishTimeout"`
}

type JobsConfig struct {
	OverdueSchedule string `yaml:"overdueSchedule"`
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "tradeflow",
			Password:        "tradeflow",
			Name:            "tradeflow",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Milestone: MilestoneConfig{
			TxTimeout:        5 * time.Second,
			MaxRetryAttempts: 3,
			RetryBackoff:     50 * time.Millisecond,
		},
		Redis: RedisConfig{
			Channel:        "tradeflow.milestones",
			PublishTimeout: 2 * time.Second,
		},
		Jobs: JobsConfig{
			OverdueSchedule: "@every 15m",
		},
	}
}

// Load builds a configuration from defaults and environment variables only.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with every environment variable that is set.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.AutomaticEnv()

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		if !v.IsSet(key) {
			return nil
		}
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setInt("SERVER_PORT", &cfg.Server.Port)
	setString("DB_HOST", &cfg.Database.Host)
	setInt("DB_PORT", &cfg.Database.Port)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.Name)
	setInt("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setInt("MILESTONE_MAX_RETRY_ATTEMPTS", &cfg.Milestone.MaxRetryAttempts)
	setString("ATTESTATION_SECRET", &cfg.Attestation.Secret)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("REDIS_DB", &cfg.Redis.DB)
	setString("REDIS_CHANNEL", &cfg.Redis.Channel)
	setString("JOBS_OVERDUE_SCHEDULE", &cfg.Jobs.OverdueSchedule)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout},
		{"DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime},
		{"MILESTONE_TX_TIMEOUT", &cfg.Milestone.TxTimeout},
		{"MILESTONE_RETRY_BACKOFF", &cfg.Milestone.RetryBackoff},
		{"REDIS_PUBLISH_TIMEOUT", &cfg.Redis.PublishTimeout},
	}
	for _, d := range durations {
		if err := setDuration(d.key, d.dst); err != nil {
			return err
		}
	}

	return nil
}

var ErrMissingAttestationSecret = errors.New("attestation secret is not configured (set ATTESTATION_SECRET)")

func (c *Config) Validate() error {
	if c.Attestation.Secret == "" {
		return ErrMissingAttestationSecret
	}
	if len(c.Attestation.Secret) < MinSecretLength {
		return fmt.Errorf("attestation secret must be at least %d bytes, got %d", MinSecretLength, len(c.Attestation.Secret))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format %q must be json or console", c.Log.Format)
	}
	if c.Milestone.TxTimeout <= 0 {
		return errors.New("milestone txTimeout must be positive")
	}
	if c.Milestone.MaxRetryAttempts < 1 {
		return errors.New("milestone maxRetryAttempts must be at least 1")
	}
	if c.Milestone.RetryBackoff < 0 {
		return errors.New("milestone retryBackoff must not be negative")
	}
	if c.Redis.PublishTimeout <= 0 {
		return errors.New("redis publishTimeout must be positive")
	}
	return nil
}
