package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "procurement.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const envPrefix = "procurement"

// ClockMode selects where block heights come from.
type ClockMode string

const (
	ClockInterval ClockMode = "interval"
	ClockRedis    ClockMode = "redis"
)

// Config is the process configuration. Values come from defaults, then the
// optional YAML file, then PROCUREMENT_* environment variables.
type Config struct {
	ListenAddr      string        `yaml:"listenAddr"      split_words:"true"`
	LogLevel        string        `yaml:"logLevel"        split_words:"true"`
	LogFormat       string        `yaml:"logFormat"       split_words:"true"`
	MetricsPath     string        `yaml:"metricsPath"     split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
	StrictAuthority bool          `yaml:"strictAuthority" split_words:"true"`

	Auth     AuthConfig     `yaml:"auth"`
	Registry RegistryConfig `yaml:"registry"`
	Clock    ClockConfig    `yaml:"clock"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type AuthConfig struct {
	SigningKey string        `yaml:"signingKey" split_words:"true"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	TokenTTL   time.Duration `yaml:"tokenTTL"   envconfig:"TOKEN_TTL"`
}

// RegistryConfig holds the initial thresholds and fees of each component.
type RegistryConfig struct {
	MaxTenders       uint64 `yaml:"maxTenders"       split_words:"true"`
	RegistrationFee  uint64 `yaml:"registrationFee"  split_words:"true"`
	MaxBidders       uint64 `yaml:"maxBidders"       split_words:"true"`
	QualificationFee uint64 `yaml:"qualificationFee" split_words:"true"`
	MaxQueries       uint64 `yaml:"maxQueries"       split_words:"true"`
}

type ClockConfig struct {
	Mode     ClockMode     `yaml:"mode"`
	Genesis  time.Time     `yaml:"genesis"`
	Interval time.Duration `yaml:"interval"`
	RedisKey string        `yaml:"redisKey" split_words:"true"`
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"poolSize"     split_words:"true"`
	MinIdleConns int           `yaml:"minIdleConns" split_words:"true"`
	DialTimeout  time.Duration `yaml:"dialTimeout"  split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout"  split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
}

// PostgresConfig enables the persistent fee ledger when DSN is set.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// KafkaConfig enables snapshot ingestion when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	Topic       string   `yaml:"topic"`
	GroupID     string   `yaml:"groupID"     envconfig:"GROUP_ID"`
	Partitions  int32    `yaml:"partitions"`
	Replication int16    `yaml:"replication"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		ListenAddr:      ":8080",
		LogLevel:        "info",
		LogFormat:       "json",
		MetricsPath:     "/metrics",
		ShutdownTimeout: 30 * time.Second,
		Auth: AuthConfig{
			SigningKey: "dev-secret-key-change-in-production",
			Issuer:     "procurement",
			Audience:   "registry",
			TokenTTL:   24 * time.Hour,
		},
		Registry: RegistryConfig{
			MaxTenders:       500,
			RegistrationFee:  500,
			MaxBidders:       1000,
			QualificationFee: 200,
			MaxQueries:       1000,
		},
		Clock: ClockConfig{
			Mode:     ClockInterval,
			Interval: 10 * time.Minute,
			RedisKey: "ledger:block-height",
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:       "audit-snapshots",
			GroupID:     "procurement-verifier",
			Partitions:  1,
			Replication: 1,
		},
	}
}

// Load reads configFile when given and applies the environment on top.
func Load(configFile string) (*Config, error) {
	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logFormat must be json or text, got %q", c.LogFormat))
	}
	switch c.Clock.Mode {
	case ClockInterval:
		if c.Clock.Interval <= 0 {
			errs = append(errs, errors.New("clock.interval must be positive"))
		}
	case ClockRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("clock.mode redis requires redis.url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown clock.mode %q", c.Clock.Mode))
	}
	if c.Registry.MaxTenders == 0 || c.Registry.MaxBidders == 0 || c.Registry.MaxQueries == 0 {
		errs = append(errs, errors.New("registry capacity ceilings must be positive"))
	}
	if c.Auth.SigningKey == "" {
		errs = append(errs, errors.New("auth.signingKey is required"))
	}
	return errors.Join(errs...)
}
