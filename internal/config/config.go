package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Service       ServiceConfig
	Bot           BotConfig
	Store         StoreConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name            string
	HTTPPort        string
	Env             string
	PublicBaseURL   string
	CORSAllowOrigin string
	ShutdownTimeout time.Duration
}

// BotConfig configures the meeting bot provider.
type BotConfig struct {
	Provider           string // recall, mock
	Region             string
	APIKey             string
	BaseURL            string // overrides the region-derived URL when set
	Timeout            time.Duration
	TranscriptProvider string
	DefaultName        string
}

// StoreConfig selects the transcript accumulator backend.
type StoreConfig struct {
	Backend       string // memory, redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	TTL           time.Duration
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicPartial string
	TopicFinal   string
	Principal    string
}

type ObservabilityConfig struct {
	LogLevel          string
	LogFormat         string
	MetricsAddr       string
	GRPCHealthEnabled bool
	GRPCHealthPort    string
}

func Load() *Config {
	service := ServiceConfig{
		Name:            envOrDefault("SERVICE_NAME", "meeting-transcript-relay"),
		HTTPPort:        envOrDefault("HTTP_PORT", "8080"),
		Env:             envOrDefault("ENV", "prod"),
		PublicBaseURL:   strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")),
		CORSAllowOrigin: envOrDefault("CORS_ALLOW_ORIGIN", "*"),
		ShutdownTimeout: envOrDefaultDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return &Config{
		Service: service,
		Bot: BotConfig{
			Provider:           strings.ToLower(envOrDefault("BOT_PROVIDER", "recall")),
			Region:             strings.TrimSpace(os.Getenv("RECALL_REGION")),
			APIKey:             strings.TrimSpace(os.Getenv("RECALL_API_KEY")),
			BaseURL:            strings.TrimSpace(os.Getenv("RECALL_BASE_URL")),
			Timeout:            envOrDefaultDuration("RECALL_TIMEOUT", 30*time.Second),
			TranscriptProvider: envOrDefault("RECALL_TRANSCRIPT_PROVIDER", "recallai_streaming"),
			DefaultName:        envOrDefault("BOT_NAME", "Sales Notetaker"),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(envOrDefault("STORE_BACKEND", "memory")),
			RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       envOrDefaultInt("REDIS_DB", 0),
			KeyPrefix:     envOrDefault("STORE_KEY_PREFIX", "live"),
			TTL:           envOrDefaultDuration("STORE_TTL", 0),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envList("KAFKA_BROKERS"),
			TopicPartial: envOrDefault("KAFKA_TOPIC_PARTIAL", "meeting.transcript.partial"),
			TopicFinal:   envOrDefault("KAFKA_TOPIC_FINAL", "meeting.transcript.final"),
			// Kafka principal falls back to the service name
			Principal: envOrDefault("KAFKA_PRINCIPAL", service.Name),
		},
		Observability: ObservabilityConfig{
			LogLevel:          strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			LogFormat:         envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr:       envOrDefault("METRICS_ADDR", ":9090"),
			GRPCHealthEnabled: envOrDefaultBool("GRPC_HEALTH_ENABLED", true),
			GRPCHealthPort:    envOrDefault("GRPC_HEALTH_PORT", "50051"),
		},
	}
}

// BotConfigured reports whether the Recall credentials needed to call the provider are present.
// An explicit base URL stands in for the region.
func (c BotConfig) BotConfigured() bool {
	return (c.Region != "" || c.BaseURL != "") && c.APIKey != ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
