package config

import (
	"os"
	"testing"
	"time"
)

var allEnvVars = []string{
	"SERVICE_NAME", "HTTP_PORT", "ENV", "PUBLIC_BASE_URL", "CORS_ALLOW_ORIGIN", "SHUTDOWN_TIMEOUT",
	"BOT_PROVIDER", "RECALL_REGION", "RECALL_API_KEY", "RECALL_BASE_URL", "RECALL_TIMEOUT",
	"RECALL_TRANSCRIPT_PROVIDER", "BOT_NAME",
	"STORE_BACKEND", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "STORE_KEY_PREFIX", "STORE_TTL",
	"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_PARTIAL", "KAFKA_TOPIC_FINAL", "KAFKA_PRINCIPAL",
	"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "GRPC_HEALTH_ENABLED", "GRPC_HEALTH_PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range allEnvVars {
		if old, ok := os.LookupEnv(v); ok {
			os.Unsetenv(v)
			t.Cleanup(func() { os.Setenv(v, old) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Name != "meeting-transcript-relay" {
		t.Errorf("expected default service name, got %s", cfg.Service.Name)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.CORSAllowOrigin != "*" {
		t.Errorf("expected default CORS origin '*', got %s", cfg.Service.CORSAllowOrigin)
	}
	if cfg.Service.PublicBaseURL != "" {
		t.Errorf("expected empty public base URL, got %s", cfg.Service.PublicBaseURL)
	}

	if cfg.Bot.Provider != "recall" {
		t.Errorf("expected default bot provider 'recall', got %s", cfg.Bot.Provider)
	}
	if cfg.Bot.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Bot.Timeout)
	}
	if cfg.Bot.TranscriptProvider != "recallai_streaming" {
		t.Errorf("expected default transcript provider 'recallai_streaming', got %s", cfg.Bot.TranscriptProvider)
	}
	if cfg.Bot.DefaultName != "Sales Notetaker" {
		t.Errorf("expected default bot name 'Sales Notetaker', got %s", cfg.Bot.DefaultName)
	}
	if cfg.Bot.BotConfigured() {
		t.Error("expected bot provider to be unconfigured without region and key")
	}

	if cfg.Store.Backend != "memory" {
		t.Errorf("expected default store backend 'memory', got %s", cfg.Store.Backend)
	}
	if cfg.Store.TTL != 0 {
		t.Errorf("expected no default TTL, got %v", cfg.Store.TTL)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no default brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicPartial != "meeting.transcript.partial" {
		t.Errorf("unexpected partial topic %s", cfg.Kafka.TopicPartial)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.GRPCHealthEnabled {
		t.Error("expected gRPC health enabled by default")
	}
	if cfg.Observability.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr ':9090', got %s", cfg.Observability.MetricsAddr)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "3000")
	t.Setenv("PUBLIC_BASE_URL", " https://relay.example.com ")
	t.Setenv("BOT_PROVIDER", "MOCK")
	t.Setenv("RECALL_REGION", "us-west-2")
	t.Setenv("RECALL_API_KEY", "secret")
	t.Setenv("RECALL_TIMEOUT", "5s")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STORE_TTL", "2h")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("GRPC_HEALTH_ENABLED", "false")

	cfg := Load()

	if cfg.Service.HTTPPort != "3000" {
		t.Errorf("expected port '3000', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.PublicBaseURL != "https://relay.example.com" {
		t.Errorf("expected trimmed public base URL, got %q", cfg.Service.PublicBaseURL)
	}
	if cfg.Bot.Provider != "mock" {
		t.Errorf("expected provider lowercased to 'mock', got %s", cfg.Bot.Provider)
	}
	if !cfg.Bot.BotConfigured() {
		t.Error("expected bot provider configured")
	}
	if cfg.Bot.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Bot.Timeout)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("expected store backend 'redis', got %s", cfg.Store.Backend)
	}
	if cfg.Store.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Store.RedisDB)
	}
	if cfg.Store.TTL != 2*time.Hour {
		t.Errorf("expected TTL 2h, got %v", cfg.Store.TTL)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.GRPCHealthEnabled {
		t.Error("expected gRPC health disabled")
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECALL_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("STORE_TTL", "forever")
	t.Setenv("KAFKA_ENABLED", "maybe")
	t.Setenv("SHUTDOWN_TIMEOUT", "invalid")

	cfg := Load()

	if cfg.Bot.Timeout != 30*time.Second {
		t.Errorf("expected default timeout on invalid input, got %v", cfg.Bot.Timeout)
	}
	if cfg.Store.RedisDB != 0 {
		t.Errorf("expected default redis db on invalid input, got %d", cfg.Store.RedisDB)
	}
	if cfg.Store.TTL != 0 {
		t.Errorf("expected default TTL on invalid input, got %v", cfg.Store.TTL)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected default Kafka enabled=false on invalid input")
	}
	if cfg.Service.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout on invalid input, got %v", cfg.Service.ShutdownTimeout)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServiceName(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVICE_NAME", "my-relay")

	cfg := Load()

	if cfg.Kafka.Principal != "my-relay" {
		t.Errorf("expected Kafka principal to fall back to service name, got %s", cfg.Kafka.Principal)
	}
}

func TestBotConfigured(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		baseURL string
		key     string
		want    bool
	}{
		{"both set", "us-east-1", "", "key", true},
		{"base url instead of region", "", "http://localhost:9000/api/v1", "key", true},
		{"missing region", "", "", "key", false},
		{"missing key", "us-east-1", "", "", false},
		{"neither", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BotConfig{Region: tt.region, BaseURL: tt.baseURL, APIKey: tt.key}
			if got := cfg.BotConfigured(); got != tt.want {
				t.Errorf("BotConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
