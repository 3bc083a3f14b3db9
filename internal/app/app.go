package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"meeting-transcript-relay/internal/config"
	"meeting-transcript-relay/internal/events"
	"meeting-transcript-relay/internal/observability"
	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/observability/metrics"
	"meeting-transcript-relay/internal/schema"
	"meeting-transcript-relay/internal/service/bot"
	"meeting-transcript-relay/internal/service/bot/mock"
	"meeting-transcript-relay/internal/service/bot/recall"
	"meeting-transcript-relay/internal/service/ingest"
	"meeting-transcript-relay/internal/service/session"
	"meeting-transcript-relay/internal/service/transcript"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Metrics   *metrics.Metrics
	Store     transcript.Store
	Provider  bot.Provider
	Publisher *events.Publisher
	Ingestor  *ingest.Ingestor
	Sessions  *session.Controller
	Validator *schema.Validator

	checks  []observability.ReadinessCheck
	closers []func() error
}

// Option overrides a component that New would otherwise build from config.
type Option func(*Application)

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Application) { a.Metrics = m }
}

func WithStore(s transcript.Store) Option {
	return func(a *Application) { a.Store = s }
}

func WithProvider(p bot.Provider) Option {
	return func(a *Application) { a.Provider = p }
}

// New constructs the Application from the provided configuration.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Metrics == nil {
		a.Metrics = metrics.DefaultMetrics
	}
	if a.Store == nil {
		if err := a.setupStore(); err != nil {
			return nil, err
		}
	}
	if a.Provider == nil {
		if err := a.setupProvider(); err != nil {
			return nil, err
		}
	}

	a.Publisher = events.New(&events.Config{
		Brokers:      cfg.Kafka.Brokers,
		TopicPartial: cfg.Kafka.TopicPartial,
		TopicFinal:   cfg.Kafka.TopicFinal,
		Principal:    cfg.Kafka.Principal,
		Enabled:      cfg.Kafka.Enabled,
	}, a.Metrics)
	a.closers = append(a.closers, a.Publisher.Close)

	a.Ingestor = ingest.New(a.Store, a.Publisher, a.Metrics)
	a.Sessions = session.NewController(a.Provider, session.Config{
		PublicBaseURL:  cfg.Service.PublicBaseURL,
		DefaultBotName: cfg.Bot.DefaultName,
	})
	a.Validator = schema.New()

	a.Logger.Info().
		Str("provider", a.Provider.Name()).
		Str("store", cfg.Store.Backend).
		Bool("kafka", a.Publisher.Enabled()).
		Msg("Meeting transcript relay application created")
	return a, nil
}

func (a *Application) setupStore() error {
	sc := a.Cfg.Store
	switch sc.Backend {
	case "", "memory":
		a.Store = transcript.NewMemoryStore()
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
		})
		rs := transcript.NewRedisStore(rdb, sc.KeyPrefix, sc.TTL)
		a.Store = rs
		a.checks = append(a.checks, rs.Ping)
		a.closers = append(a.closers, rs.Close)
		a.Logger.Info().Str("addr", sc.RedisAddr).Msg("Using Redis transcript store")
	default:
		return fmt.Errorf("unknown store backend %q", sc.Backend)
	}
	return nil
}

func (a *Application) setupProvider() error {
	bc := a.Cfg.Bot
	switch bc.Provider {
	case "", "recall":
		client := recall.New(recall.Config{
			Region:             bc.Region,
			APIKey:             bc.APIKey,
			BaseURL:            bc.BaseURL,
			Timeout:            bc.Timeout,
			TranscriptProvider: bc.TranscriptProvider,
		}, a.Metrics)
		if !bc.BotConfigured() {
			a.Logger.Warn().Msg("RECALL_REGION or RECALL_API_KEY not set, bot operations will fail")
		}
		a.Provider = client
	case "mock":
		a.Provider = mock.New()
	default:
		return fmt.Errorf("unknown bot provider %q", bc.Provider)
	}
	return nil
}

// Checks returns the readiness checks of the configured dependencies.
func (a *Application) Checks() []observability.ReadinessCheck {
	return a.checks
}

// Ready runs every readiness check and returns the first failure.
func (a *Application) Ready(ctx context.Context) error {
	for _, check := range a.checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Meeting transcript relay starting")
	return nil
}

// Shutdown releases the store and publisher connections.
func (a *Application) Shutdown() error {
	a.Logger.Info().Msg("Meeting transcript relay shutting down")

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
