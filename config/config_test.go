package config

import (
	"os"
	"reflect"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9090
log:
  level: "debug"
  format: "json"
cors:
  allowed_origins: ["https://dealer.example.com"]
  allowed_methods: ["GET", "POST"]
  allowed_headers: ["Content-Type", "X-Trace-Id"]
  allow_credentials: false
rate_limit:
  requests: 50
  window_seconds: 30
store:
  driver: "sqlite"
  dsn: "file::memory:"
storage:
  driver: "minio"
  minio:
    endpoint: "localhost:9000"
    access_key: "minioadmin"
    secret_key: "minioadmin"
    bucket: "contracts"
events:
  driver: "kafka"
  kafka:
    brokers: ["localhost:9092"]
    topic: "contracts"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://dealer.example.com"}) {
		t.Errorf("Unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.Credentials() {
		t.Error("Expected credentials disabled")
	}
	if cfg.RateLimit.Limit() != 50 || cfg.RateLimit.WindowSeconds != 30 {
		t.Errorf("Unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "file::memory:" {
		t.Errorf("Unexpected store %+v", cfg.Store)
	}
	if cfg.Storage.Driver != "minio" || cfg.Storage.Minio.Bucket != "contracts" {
		t.Errorf("Unexpected storage %+v", cfg.Storage)
	}
	if cfg.Events.Kafka.Topic != "contracts" || len(cfg.Events.Kafka.Brokers) != 1 {
		t.Errorf("Unexpected kafka config %+v", cfg.Events.Kafka)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeTempConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, DefaultAllowedOrigins) {
		t.Errorf("Expected default origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedMethods, DefaultAllowedMethods) {
		t.Errorf("Expected default methods, got %v", cfg.CORS.AllowedMethods)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedHeaders, []string{"*"}) {
		t.Errorf("Expected default headers *, got %v", cfg.CORS.AllowedHeaders)
	}
	if !cfg.CORS.Credentials() {
		t.Error("Expected credentials allowed by default")
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Expected default store memory, got %s", cfg.Store.Driver)
	}
	if cfg.Storage.Driver != "local" || cfg.Storage.LocalDir == "" {
		t.Errorf("Expected local storage defaults, got %+v", cfg.Storage)
	}
	if cfg.Events.Driver != "log" || cfg.Events.PublishTimeoutSeconds != 5 {
		t.Errorf("Expected log events defaults, got %+v", cfg.Events)
	}
}

func TestLoadNonExistentUsesDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "invalid: yaml: content:")

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CORS_ALLOWED_ORIGINS":   "https://a.example.com, https://b.example.com",
		"CORS_ALLOW_CREDENTIALS": "false",
		"SERVER_PORT":            "9191",
		"STORE_DRIVER":           "postgres",
		"KAFKA_BROKERS":          "k1:9092,k2:9092",
		"LOG_LEVEL":              "  ",
		"RATE_LIMIT_REQUESTS":    "0",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := &Config{Log: LogConfig{Level: "warn"}}
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.example.com", "https://b.example.com"}) {
		t.Errorf("Unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.Credentials() {
		t.Error("Expected credentials overridden to false")
	}
	// methods untouched, so defaults still apply independently
	cfg.SetDefaults()
	if !reflect.DeepEqual(cfg.CORS.AllowedMethods, DefaultAllowedMethods) {
		t.Errorf("Expected default methods, got %v", cfg.CORS.AllowedMethods)
	}
	if cfg.RateLimit.Limit() != 0 {
		t.Errorf("Expected explicit 0 to survive defaults, got %d", cfg.RateLimit.Limit())
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("Expected postgres, got %s", cfg.Store.Driver)
	}
	if len(cfg.Events.Kafka.Brokers) != 2 {
		t.Errorf("Expected 2 brokers, got %v", cfg.Events.Kafka.Brokers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Blank env value must not override, got %s", cfg.Log.Level)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"CORS_ALLOW_CREDENTIALS", "maybe"},
		{"SERVER_PORT", "eighty"},
		{"RATE_LIMIT_REQUESTS", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.ApplyEnv(func(key string) (string, bool) {
				if key == tt.key {
					return tt.value, true
				}
				return "", false
			})
			if err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" GET, POST ,,OPTIONS ")
	want := []string{"GET", "POST", "OPTIONS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitList = %v, want %v", got, want)
	}
}

func TestRateLimitDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"absent", "server:\n  port: 8080\n", DefaultRateLimit},
		{"section without requests", "rate_limit:\n  window_seconds: 10\n", DefaultRateLimit},
		{"explicit zero disables", "rate_limit:\n  requests: 0\n", 0},
		{"explicit value", "rate_limit:\n  requests: 7\n", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTempConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if got := cfg.RateLimit.Limit(); got != tt.want {
				t.Errorf("Expected rate limit %d, got %d", tt.want, got)
			}
			if cfg.RateLimit.WindowSeconds <= 0 {
				t.Errorf("Expected a positive window, got %d", cfg.RateLimit.WindowSeconds)
			}
		})
	}
}

func TestRateLimitDefaultWithoutConfigFile(t *testing.T) {
	cfg, err := Load(t.TempDir() + "/missing.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if got := cfg.RateLimit.Limit(); got != DefaultRateLimit {
		t.Errorf("Expected rate limit %d, got %d", DefaultRateLimit, got)
	}
}
