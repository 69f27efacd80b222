package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/notify"
)

// MaxMessageLength is the Telegram limit for message text, in runes.
const MaxMessageLength = 4096

const defaultTimeout = 10 * time.Second

// Client posts HTML messages to one Telegram chat.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ notify.Notifier = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New creates a Telegram notifier. A missing token or chat id is not an error:
// the client logs a warning on every Notify instead of sending.
func New(cfg Config, opts ...Option) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("telegram"))
	return c
}

// Notify implements notify.Notifier. Failures are logged, never returned.
func (c *Client) Notify(ctx context.Context, text string) {
	if err := c.Send(ctx, text); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			c.logger.WarnContext(ctx, "Telegram config missing: no token or chat ID")
			return
		}
		c.logger.ErrorContext(ctx, "Telegram send failed", logger.Error(err))
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	Text                  string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts text to the configured chat and reports the outcome.
func (c *Client) Send(ctx context.Context, text string) error {
	if c.config.Token == "" || c.config.ChatID == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.config.ChatID,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		Text:                  truncateHTML(text, MaxMessageLength),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	url := c.config.APIURL + "/bot" + c.config.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs.
		return fmt.Errorf("%w: %s", ErrRequestFailed, redact(err.Error(), c.config.Token))
	}
	defer resp.Body.Close()

	var out apiResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, desc)
	}

	c.logger.DebugContext(ctx, "Telegram message sent", logger.StatusCode(resp.StatusCode))
	return nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
