package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/dmitrymomot/notifykit/core/email"
)

const defaultTimeout = 30 * time.Second

// Client implements email.Transport over SMTP.
// Supports multiple TLS modes (STARTTLS, TLS, plain) and is safe for concurrent use:
// every call opens its own connection.
type Client struct {
	config Config
}

// New creates an SMTP-backed email transport.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: Host is required", email.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: Port must be between 1 and 65535", email.ErrInvalidConfig)
	}
	if cfg.Username != "" && cfg.Password == "" {
		return nil, fmt.Errorf("%w: Password is required when Username is set", email.ErrInvalidConfig)
	}
	if cfg.TLSMode != "starttls" && cfg.TLSMode != "tls" && cfg.TLSMode != "plain" {
		return nil, fmt.Errorf("%w: TLSMode must be starttls, tls, or plain", email.ErrInvalidConfig)
	}
	if !email.IsValidAddress(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" && !email.IsValidAddress(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: SupportEmail must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{config: cfg}, nil
}

// MustNewClient creates an SMTP client that panics on invalid config.
func MustNewClient(cfg Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// SendEmail delivers msg to every To, Cc and Bcc recipient in one transaction.
// The context bounds dialing and the whole SMTP exchange.
func (c *Client) SendEmail(ctx context.Context, msg email.Message) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	from := msg.From
	if from == "" {
		from = c.config.SenderEmail
	}

	data, err := buildMessage(from, c.config.SupportEmail, msg)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}

	client, release, err := c.connect(ctx)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	defer release()

	if err := client.SendMail(from, msg.Recipients(), bytes.NewReader(data)); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, contextErr(ctx, err))
	}

	// Quit errors are non-fatal as the message was already accepted
	_ = client.Quit()
	return nil
}

// Verify connects, authenticates and issues NOOP to check the server accepts us.
func (c *Client) Verify(ctx context.Context) error {
	client, release, err := c.connect(ctx)
	if err != nil {
		return errors.Join(email.ErrVerifyFailed, err)
	}
	defer release()

	if err := client.Noop(); err != nil {
		return errors.Join(email.ErrVerifyFailed, contextErr(ctx, err))
	}
	_ = client.Quit()
	return nil
}

// connect dials the server according to TLSMode and authenticates when
// credentials are configured. release closes the connection and must be called.
func (c *Client) connect(ctx context.Context) (*smtp.Client, func(), error) {
	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
	dialer := &net.Dialer{Timeout: c.config.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if c.config.TLSMode == "tls" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: c.tlsConfig()}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	// Unblock pending reads and writes when ctx is canceled.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	var client *smtp.Client
	if c.config.TLSMode == "starttls" {
		client, err = smtp.NewClientStartTLS(conn, c.tlsConfig())
		if err != nil {
			stop()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("failed to start TLS: %w", contextErr(ctx, err))
		}
	} else {
		client = smtp.NewClient(conn)
	}

	release := func() {
		stop()
		_ = client.Close()
	}

	if c.config.LocalName != "" {
		if err := client.Hello(c.config.LocalName); err != nil {
			release()
			return nil, nil, fmt.Errorf("HELO failed: %w", contextErr(ctx, err))
		}
	}

	if c.config.Username != "" {
		auth := sasl.NewPlainClient("", c.config.Username, c.config.Password)
		if err := client.Auth(auth); err != nil {
			release()
			return nil, nil, fmt.Errorf("authentication failed: %w", contextErr(ctx, err))
		}
	}

	return client, release, nil
}

func (c *Client) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         c.config.Host,
		InsecureSkipVerify: c.config.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed dev servers
		MinVersion:         tls.VersionTLS12,
	}
}

// contextErr prefers the context error when the connection was closed by cancellation.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}
