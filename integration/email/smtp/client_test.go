package smtp_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/integration/email/smtp"
)

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	validConfig := smtp.Config{
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "user@example.com",
		Password:     "password",
		TLSMode:      "starttls",
		SenderEmail:  "sender@example.com",
		SupportEmail: "support@example.com",
	}

	tests := []struct {
		name    string
		config  smtp.Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  validConfig,
			wantErr: false,
		},
		{
			name: "empty host",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.Host = ""
				return cfg
			}(),
			wantErr: true,
			errMsg:  "Host is required",
		},
		{
			name: "invalid port - zero",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.Port = 0
				return cfg
			}(),
			wantErr: true,
			errMsg:  "Port must be between 1 and 65535",
		},
		{
			name: "invalid port - too high",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.Port = 70000
				return cfg
			}(),
			wantErr: true,
			errMsg:  "Port must be between 1 and 65535",
		},
		{
			name: "no credentials",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.Username = ""
				cfg.Password = ""
				return cfg
			}(),
			wantErr: false,
		},
		{
			name: "username without password",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.Password = ""
				return cfg
			}(),
			wantErr: true,
			errMsg:  "Password is required when Username is set",
		},
		{
			name: "invalid TLS mode",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.TLSMode = "ssl"
				return cfg
			}(),
			wantErr: true,
			errMsg:  "TLSMode must be starttls, tls, or plain",
		},
		{
			name: "empty TLS mode",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.TLSMode = ""
				return cfg
			}(),
			wantErr: true,
			errMsg:  "TLSMode must be starttls, tls, or plain",
		},
		{
			name: "valid TLS mode - tls",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.TLSMode = "tls"
				return cfg
			}(),
			wantErr: false,
		},
		{
			name: "invalid sender email",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.SenderEmail = "not-an-email"
				return cfg
			}(),
			wantErr: true,
			errMsg:  "SenderEmail must be a valid email address",
		},
		{
			name: "empty support email is allowed",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.SupportEmail = ""
				return cfg
			}(),
			wantErr: false,
		},
		{
			name: "invalid support email",
			config: func() smtp.Config {
				cfg := validConfig
				cfg.SupportEmail = "invalid@"
				return cfg
			}(),
			wantErr: true,
			errMsg:  "SupportEmail must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := smtp.New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				assert.ErrorIs(t, err, email.ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestMustNewClient(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		client := smtp.MustNewClient(smtp.Config{Host: "smtp.example.com", Port: 25, TLSMode: "plain", SenderEmail: "a@example.com"})
		var _ email.Transport = client
	})
	assert.Panics(t, func() {
		smtp.MustNewClient(smtp.Config{})
	})
}

func plainConfig(port int, be *backend) smtp.Config {
	return smtp.Config{
		Host:        "127.0.0.1",
		Port:        port,
		Username:    be.username,
		Password:    be.password,
		TLSMode:     "plain",
		SenderEmail: "sender@example.com",
		Timeout:     5 * time.Second,
	}
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	be := &backend{username: "user", password: "secret"}
	port := startServer(t, be)
	cfg := plainConfig(port, be)
	cfg.SupportEmail = "support@example.com"
	client := smtp.MustNewClient(cfg)

	src := t.TempDir() + "/report.csv"
	require.NoError(t, writeFile(src, "a,b\n1,2\n"))

	err := client.SendEmail(context.Background(), email.Message{
		To:       []string{"to@example.com"},
		Cc:       []string{"cc@example.com"},
		Bcc:      []string{"hidden@example.com"},
		Subject:  "Monthly report",
		BodyHTML: "<h1>Report</h1>",
		Tag:      "report",
		Attachments: []email.Attachment{
			email.NewFileAttachment("report.csv", src, "text/csv"),
			email.NewTextAttachment("note.bin", "AAEC", "base64"),
		},
	})
	require.NoError(t, err)

	msgs := be.received()
	require.Len(t, msgs, 1)
	got := msgs[0]
	assert.Equal(t, "sender@example.com", got.from)
	assert.Equal(t, []string{"to@example.com", "cc@example.com", "hidden@example.com"}, got.to)

	mr, err := mail.CreateReader(bytes.NewReader(got.data))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Monthly report", subject)
	assert.Contains(t, mr.Header.Get("Cc"), "cc@example.com")
	assert.Contains(t, mr.Header.Get("Reply-To"), "support@example.com")
	assert.Empty(t, mr.Header.Get("Bcc"))
	assert.NotContains(t, string(got.data), "hidden@example.com")
	assert.Equal(t, "report", mr.Header.Get("X-Tag"))

	var body string
	attachments := map[string][]byte{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			body = string(data)
		case *mail.AttachmentHeader:
			name, err := h.Filename()
			require.NoError(t, err)
			attachments[name] = data
		}
	}

	assert.Equal(t, "<h1>Report</h1>", body)
	assert.Equal(t, "a,b\n1,2\n", string(attachments["report.csv"]))
	assert.Equal(t, []byte{0, 1, 2}, attachments["note.bin"])
}

func TestClient_SendEmail_NoAttachmentsNoAuth(t *testing.T) {
	t.Parallel()

	be := &backend{}
	port := startServer(t, be)
	client := smtp.MustNewClient(plainConfig(port, be))

	err := client.SendEmail(context.Background(), email.Message{
		From:     "custom@example.com",
		To:       []string{"to@example.com"},
		Subject:  "Привет",
		BodyHTML: "<p>тело</p>",
	})
	require.NoError(t, err)

	msgs := be.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, "custom@example.com", msgs[0].from)

	mr, err := mail.CreateReader(bytes.NewReader(msgs[0].data))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Привет", subject)

	p, err := mr.NextPart()
	require.NoError(t, err)
	data, err := io.ReadAll(p.Body)
	require.NoError(t, err)
	// DATA ends the last line with CRLF; without a multipart boundary it
	// stays part of the body.
	assert.Equal(t, "<p>тело</p>\r\n", string(data))
}

func TestClient_SendEmail_Validation(t *testing.T) {
	t.Parallel()

	client := smtp.MustNewClient(smtp.Config{Host: "smtp.example.com", Port: 587, TLSMode: "starttls", SenderEmail: "a@example.com"})

	tests := []struct {
		name string
		msg  email.Message
	}{
		{name: "no recipients", msg: email.Message{Subject: "Test", BodyHTML: "<p>Test</p>"}},
		{name: "invalid recipient", msg: email.Message{To: []string{"invalid-email"}, Subject: "Test"}},
		{name: "empty subject", msg: email.Message{To: []string{"user@example.com"}}},
		{name: "invalid bcc", msg: email.Message{To: []string{"user@example.com"}, Bcc: []string{"x"}, Subject: "Test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := client.SendEmail(context.Background(), tt.msg)
			assert.ErrorIs(t, err, email.ErrInvalidParams)
		})
	}
}

func TestClient_SendEmail_Rejected(t *testing.T) {
	t.Parallel()

	be := &backend{rejectRcpt: "gone@example.com"}
	port := startServer(t, be)
	client := smtp.MustNewClient(plainConfig(port, be))

	err := client.SendEmail(context.Background(), email.Message{
		To:      []string{"gone@example.com"},
		Subject: "hi",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.Contains(t, err.Error(), "mailbox unavailable")
	assert.Empty(t, be.received())
}

func TestClient_SendEmail_BadAttachment(t *testing.T) {
	t.Parallel()

	be := &backend{}
	port := startServer(t, be)
	client := smtp.MustNewClient(plainConfig(port, be))

	err := client.SendEmail(context.Background(), email.Message{
		To:          []string{"to@example.com"},
		Subject:     "hi",
		Attachments: []email.Attachment{{Filename: "x", Source: email.UnsupportedSource{Kind: "url"}}},
	})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.ErrorIs(t, err, email.ErrUnsupportedSource)
	assert.Empty(t, be.received())
}

func TestClient_SendEmail_ConnectionError(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	client := smtp.MustNewClient(smtp.Config{
		Host:        "127.0.0.1",
		Port:        port,
		TLSMode:     "plain",
		SenderEmail: "sender@example.com",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = client.SendEmail(ctx, email.Message{To: []string{"user@example.com"}, Subject: "Test"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.Contains(t, err.Error(), "failed to connect to SMTP server")
}

func TestClient_SendEmail_CanceledContext(t *testing.T) {
	t.Parallel()

	client := smtp.MustNewClient(smtp.Config{Host: "127.0.0.1", Port: 25, TLSMode: "plain", SenderEmail: "a@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.SendEmail(ctx, email.Message{To: []string{"user@example.com"}, Subject: "Test"})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	be := &backend{username: "user", password: "secret"}
	port := startServer(t, be)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		client := smtp.MustNewClient(plainConfig(port, be))
		assert.NoError(t, client.Verify(context.Background()))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		cfg := plainConfig(port, be)
		cfg.Password = "wrong"
		err := smtp.MustNewClient(cfg).Verify(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, email.ErrVerifyFailed)
		assert.True(t, strings.Contains(err.Error(), "authentication failed"))
	})
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
