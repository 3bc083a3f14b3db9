// Package recall provides a Recall.ai bot provider.
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"meeting-transcript-relay/internal/observability/logging"
	"meeting-transcript-relay/internal/observability/metrics"
	"meeting-transcript-relay/internal/service/bot"
)

const (
	providerName = "recall"

	// DefaultTimeout is the default request timeout toward the Recall API.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response is read into memory.
	maxBodyBytes = 32 << 20

	legacyCaptionsProvider = "meeting_captions"
)

// Config holds Recall.ai client configuration.
type Config struct {
	Region string
	APIKey string
	// BaseURL overrides https://{Region}.recall.ai/api/v1.
	BaseURL            string
	Timeout            time.Duration
	TranscriptProvider string
	HTTPClient         *http.Client
}

// DefaultConfig returns the client defaults; Region and APIKey still have to be set.
func DefaultConfig() Config {
	return Config{
		Timeout:            DefaultTimeout,
		TranscriptProvider: "recallai_streaming",
	}
}

// Client implements bot.Provider on the Recall.ai REST API.
type Client struct {
	httpClient         *http.Client
	baseURL            string
	apiKey             string
	transcriptProvider string
	metrics            *metrics.Metrics
	log                zerolog.Logger
}

// New creates a Recall client. It never fails: a client without region or key
// answers every call with bot.ErrNotConfigured.
func New(cfg Config, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.TranscriptProvider == "" {
		cfg.TranscriptProvider = DefaultConfig().TranscriptProvider
	}
	if m == nil {
		m = metrics.DefaultMetrics
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" && cfg.Region != "" {
		baseURL = fmt.Sprintf("https://%s.recall.ai/api/v1", cfg.Region)
	}

	return &Client{
		httpClient:         httpClient,
		baseURL:            baseURL,
		apiKey:             cfg.APIKey,
		transcriptProvider: cfg.TranscriptProvider,
		metrics:            m,
		log:                logging.WithComponent("recall"),
	}
}

// Name implements bot.Provider.
func (c *Client) Name() string { return providerName }

// Configured reports whether both the API location and the key are known.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// CreateBot implements bot.Provider. When the current request schema is rejected
// with a 400 or 422 it retries once with the legacy schema.
func (c *Client) CreateBot(ctx context.Context, req bot.CreateRequest) (*bot.Bot, error) {
	if !c.Configured() {
		return nil, bot.ErrNotConfigured
	}

	var resp botResponse
	err := c.doJSON(ctx, "create_bot", http.MethodPost, c.baseURL+"/bot/", newCreatePayload(req, c.transcriptProvider), &resp)
	if err != nil && bot.IsSchemaRejection(err) {
		c.log.Warn().Err(err).Msg("Bot payload rejected, retrying with legacy schema")
		err = c.doJSON(ctx, "create_bot_legacy", http.MethodPost, c.baseURL+"/bot/", newLegacyCreatePayload(req), &resp)
	}
	if err != nil {
		return nil, err
	}
	return resp.toBot(), nil
}

// LeaveCall implements bot.Provider.
func (c *Client) LeaveCall(ctx context.Context, botID string) error {
	if !c.Configured() {
		return bot.ErrNotConfigured
	}
	_, err := c.do(ctx, "leave_call", http.MethodPost, c.botURL(botID, "leave_call/"), nil, true)
	return err
}

// GetBot implements bot.Provider.
func (c *Client) GetBot(ctx context.Context, botID string) (*bot.Bot, error) {
	if !c.Configured() {
		return nil, bot.ErrNotConfigured
	}
	var resp botResponse
	if err := c.doJSON(ctx, "get_bot", http.MethodGet, c.botURL(botID, ""), nil, &resp); err != nil {
		return nil, err
	}
	b := resp.toBot()
	if b.ID == "" {
		b.ID = botID
	}
	return b, nil
}

// DownloadTranscript implements bot.Provider. Download links are pre-signed,
// so the API key is only attached when the link points at the Recall API itself.
func (c *Client) DownloadTranscript(ctx context.Context, downloadURL string) ([]byte, error) {
	if !c.Configured() {
		return nil, bot.ErrNotConfigured
	}
	withAuth := strings.HasPrefix(downloadURL, c.baseURL)
	return c.do(ctx, "download_transcript", http.MethodGet, downloadURL, nil, withAuth)
}

// LegacyTranscript implements bot.Provider.
func (c *Client) LegacyTranscript(ctx context.Context, botID string) ([]byte, error) {
	if !c.Configured() {
		return nil, bot.ErrNotConfigured
	}
	return c.do(ctx, "legacy_transcript", http.MethodGet, c.botURL(botID, "transcript/"), nil, true)
}

func (c *Client) botURL(botID, suffix string) string {
	return c.baseURL + "/bot/" + url.PathEscape(botID) + "/" + suffix
}

func (c *Client) doJSON(ctx context.Context, op, method, target string, body, out any) error {
	raw, err := c.do(ctx, op, method, target, body, true)
	if err != nil {
		return err
	}
	if len(raw) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("recall %s: decode response: %w", op, err)
	}
	return nil
}

// do sends one request and returns the body of a 2xx answer. Non-2xx answers
// become *bot.APIError carrying the provider's body.
func (c *Client) do(ctx context.Context, op, method, target string, body any, withAuth bool) ([]byte, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("recall %s: marshal request body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("recall %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordProviderRequest(providerName, op, 0, err, time.Since(start).Seconds())
		return nil, fmt.Errorf("recall %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.RecordProviderRequest(providerName, op, resp.StatusCode, err, time.Since(start).Seconds())
		return nil, fmt.Errorf("recall %s: read response body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &bot.APIError{
			Provider:   providerName,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
		c.metrics.RecordProviderRequest(providerName, op, resp.StatusCode, apiErr, time.Since(start).Seconds())
		c.log.Error().
			Str("operation", op).
			Int("status", resp.StatusCode).
			Str("body", truncate(string(raw), 512)).
			Msg("Recall API error")
		return nil, apiErr
	}

	c.metrics.RecordProviderRequest(providerName, op, resp.StatusCode, nil, time.Since(start).Seconds())
	return raw, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ bot.Provider = (*Client)(nil)
