package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/format"
	"maunium.net/go/mautrix/id"

	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/notify"
)

// Client posts HTML notices to one Matrix room.
type Client struct {
	config Config
	client *mautrix.Client
	logger *slog.Logger
}

var _ notify.Notifier = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Matrix notifier. An incomplete config yields a client that
// only logs warnings; a malformed homeserver URL is an error.
func New(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{config: cfg, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("matrix"))

	if !cfg.enabled() {
		return c, nil
	}

	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.client = client
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, opts ...Option) *Client {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Notify implements notify.Notifier. Failures are logged, never returned.
func (c *Client) Notify(ctx context.Context, text string) {
	if err := c.Send(ctx, text); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			c.logger.WarnContext(ctx, "Matrix config missing: no homeserver, token or room ID")
			return
		}
		c.logger.ErrorContext(ctx, "Matrix send failed", logger.Error(err))
	}
}

// plainText renders alert HTML without the markdown emphasis that
// format.HTMLToText adds, so clients without HTML support show clean text.
var plainText = &format.HTMLParser{
	TabsToSpaces:           4,
	Newline:                "\n",
	HorizontalLine:         "\n---\n",
	PillConverter:          format.DefaultPillConverter,
	BoldConverter:          keepText,
	ItalicConverter:        keepText,
	StrikethroughConverter: keepText,
	MonospaceConverter:     keepText,
	MonospaceBlockConverter: func(code, _ string, _ format.Context) string {
		return code
	},
}

func keepText(s string, _ format.Context) string { return s }

// Send posts text as an m.notice. Newlines become <br> in the formatted body;
// the plain body is the same text with the markup stripped.
func (c *Client) Send(ctx context.Context, text string) error {
	if c.client == nil {
		return ErrNotConfigured
	}

	formatted := strings.ReplaceAll(text, "\n", "<br>")
	content := &event.MessageEventContent{
		MsgType:       event.MsgNotice,
		Body:          plainText.Parse(formatted, format.NewContext(ctx)),
		Format:        event.FormatHTML,
		FormattedBody: formatted,
	}

	resp, err := c.client.SendMessageEvent(ctx, id.RoomID(c.config.RoomID), event.EventMessage, content)
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	c.logger.DebugContext(ctx, "Matrix message sent", slog.String("event_id", resp.EventID.String()))
	return nil
}
