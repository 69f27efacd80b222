package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/notifykit/core/email"
)

// Client implements email.Transport using Postmark's transactional API.
type Client struct {
	client *postmark.Client
	config Config
}

// New creates a Postmark-backed email transport.
// Both tokens are required: the server token sends mail and the account token
// is used by Verify.
func New(cfg Config) (*Client, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", email.ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", email.ErrInvalidConfig)
	}
	if !email.IsValidAddress(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", email.ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" && !email.IsValidAddress(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: SupportEmail must be a valid email address", email.ErrInvalidConfig)
	}

	client := postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{client: client, config: cfg}, nil
}

// MustNewClient creates a Postmark client that panics on invalid config.
func MustNewClient(cfg Config) *Client {
	client, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// SendEmail implements email.EmailSender. Opens and HTML link clicks are tracked.
// Attachments are read eagerly and sent base64 encoded.
func (c *Client) SendEmail(ctx context.Context, msg email.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	attachments, err := convertAttachments(msg.Attachments)
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}

	from := msg.From
	if from == "" {
		from = c.config.SenderEmail
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:          from,
		ReplyTo:       c.config.SupportEmail,
		To:            strings.Join(msg.To, ","),
		Cc:            strings.Join(msg.Cc, ","),
		Bcc:           strings.Join(msg.Bcc, ","),
		Subject:       msg.Subject,
		Tag:           msg.Tag,
		HTMLBody:      msg.BodyHTML,
		TrackOpens:    true,
		TrackLinks:    "HtmlOnly",
		Attachments:   attachments,
		MessageStream: c.config.MessageStream,
	})
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			email.ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

// Verify checks the server token by fetching the current server.
func (c *Client) Verify(ctx context.Context) error {
	if _, err := c.client.GetCurrentServer(ctx); err != nil {
		return errors.Join(email.ErrVerifyFailed, err)
	}
	return nil
}

func convertAttachments(in []email.Attachment) ([]postmark.Attachment, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make([]postmark.Attachment, 0, len(in))
	for i, a := range in {
		data, err := a.Bytes()
		if err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		name := a.Filename
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i)
		}
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		out = append(out, postmark.Attachment{
			Name:        name,
			Content:     base64.StdEncoding.EncodeToString(data),
			ContentType: contentType,
		})
	}
	return out, nil
}
