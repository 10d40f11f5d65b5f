package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Store     StoreConfig     `yaml:"store"`
	Storage   StorageConfig   `yaml:"storage"`
	Events    EventsConfig    `yaml:"events"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CORSConfig is resolved once at startup and applied to every API and docs route.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials *bool    `yaml:"allow_credentials"`
}

// Credentials reports the effective credentials flag (default true).
func (c CORSConfig) Credentials() bool {
	return c.AllowCredentials == nil || *c.AllowCredentials
}

// RateLimitConfig bounds requests per client per window. An explicit
// requests value of 0 disables limiting; an absent one means DefaultRateLimit.
type RateLimitConfig struct {
	Requests      *int `yaml:"requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// DefaultRateLimit is the per-client request budget per window.
const DefaultRateLimit = 100

// Limit reports the effective request budget.
func (r RateLimitConfig) Limit() int {
	if r.Requests == nil {
		return DefaultRateLimit
	}
	return *r.Requests
}

// StoreConfig selects the contract record backend: memory, sqlite or postgres.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// StorageConfig selects where rendered PDFs live: local or minio.
type StorageConfig struct {
	Driver   string      `yaml:"driver"`
	LocalDir string      `yaml:"local_dir"`
	Minio    MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

// EventsConfig selects the contract-created publisher: log, redis or kafka.
type EventsConfig struct {
	Driver                string      `yaml:"driver"`
	PublishTimeoutSeconds int         `yaml:"publish_timeout_seconds"`
	Redis                 RedisConfig `yaml:"redis"`
	Kafka                 KafkaConfig `yaml:"kafka"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

var (
	DefaultAllowedOrigins = []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:8081",
		"http://localhost:8082",
		"http://localhost:8083",
	}
	DefaultAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	DefaultAllowedHeaders = []string{"*"}
)

// Load reads the YAML file at path, applies defaults and then environment
// overrides. A missing file is not an error: the service runs on defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.SetDefaults()

	return &cfg, nil
}

// SetDefaults fills every unset field with its default value
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = append([]string(nil), DefaultAllowedMethods...)
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = append([]string(nil), DefaultAllowedHeaders...)
	}
	if c.RateLimit.Requests == nil {
		n := DefaultRateLimit
		c.RateLimit.Requests = &n
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		c.Store.DSN = "contracts.db"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "./data/contracts"
	}
	if c.Storage.Minio.Prefix == "" {
		c.Storage.Minio.Prefix = "contracts"
	}
	if c.Events.Driver == "" {
		c.Events.Driver = "log"
	}
	if c.Events.PublishTimeoutSeconds == 0 {
		c.Events.PublishTimeoutSeconds = 5
	}
	if c.Events.Redis.Channel == "" {
		c.Events.Redis.Channel = "contract.created"
	}
	if c.Events.Kafka.Topic == "" {
		c.Events.Kafka.Topic = "contract.created"
	}
}

// ApplyEnv overrides values from the environment. Each CORS option can be
// overridden on its own; lists are comma separated.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = SplitList(v)
		}
	}

	list("CORS_ALLOWED_ORIGINS", &c.CORS.AllowedOrigins)
	list("CORS_ALLOWED_METHODS", &c.CORS.AllowedMethods)
	list("CORS_ALLOWED_HEADERS", &c.CORS.AllowedHeaders)
	if v, ok := lookup("CORS_ALLOW_CREDENTIALS"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CORS_ALLOW_CREDENTIALS: %w", err)
		}
		c.CORS.AllowCredentials = &b
	}

	if v, ok := lookup("SERVER_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}

	if v, ok := lookup("RATE_LIMIT_REQUESTS"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err)
		}
		c.RateLimit.Requests = &n
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_DSN", &c.Store.DSN)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_DIR", &c.Storage.LocalDir)
	str("MINIO_ENDPOINT", &c.Storage.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Storage.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Storage.Minio.Bucket)
	str("EVENTS_DRIVER", &c.Events.Driver)
	str("REDIS_ADDR", &c.Events.Redis.Addr)
	list("KAFKA_BROKERS", &c.Events.Kafka.Brokers)

	return nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
