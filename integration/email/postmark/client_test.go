package postmark_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/integration/email/postmark"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	valid := postmark.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "sender@example.com",
		SupportEmail:         "support@example.com",
	}

	tests := []struct {
		name    string
		mutate  func(*postmark.Config)
		wantErr bool
		errMsg  string
	}{
		{name: "valid config", mutate: func(*postmark.Config) {}},
		{name: "no support email", mutate: func(c *postmark.Config) { c.SupportEmail = "" }},
		{name: "missing server token", mutate: func(c *postmark.Config) { c.PostmarkServerToken = "" }, wantErr: true, errMsg: "PostmarkServerToken is required"},
		{name: "missing account token", mutate: func(c *postmark.Config) { c.PostmarkAccountToken = "" }, wantErr: true, errMsg: "PostmarkAccountToken is required"},
		{name: "invalid sender", mutate: func(c *postmark.Config) { c.SenderEmail = "nope" }, wantErr: true, errMsg: "SenderEmail must be a valid email address"},
		{name: "invalid support", mutate: func(c *postmark.Config) { c.SupportEmail = "nope@" }, wantErr: true, errMsg: "SupportEmail must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			client, err := postmark.New(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestMustNewClient(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { postmark.MustNewClient(postmark.Config{}) })
}

type apiRecorder struct {
	mu       sync.Mutex
	requests []map[string]any
	tokens   []string
}

func newAPI(t *testing.T, status int, reply string) (*httptest.Server, *apiRecorder) {
	t.Helper()

	rec := &apiRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		rec.mu.Lock()
		rec.requests = append(rec.requests, body)
		rec.tokens = append(rec.tokens, r.Header.Get("X-Postmark-Server-Token"))
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(t *testing.T, baseURL string) *postmark.Client {
	t.Helper()
	return postmark.MustNewClient(postmark.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "sender@example.com",
		SupportEmail:         "support@example.com",
		MessageStream:        "outbound",
		BaseURL:              baseURL,
	})
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	srv, rec := newAPI(t, http.StatusOK, `{"To":"a@example.com","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`)
	client := newClient(t, srv.URL)

	err := client.SendEmail(context.Background(), email.Message{
		To:       []string{"a@example.com", "b@example.com"},
		Cc:       []string{"c@example.com"},
		Bcc:      []string{"d@example.com", "e@example.com"},
		Subject:  "Invoice",
		BodyHTML: "<p>Invoice</p>",
		Tag:      "invoice",
		Attachments: []email.Attachment{
			email.NewBytesAttachment("invoice.pdf", []byte("pdf"), "application/pdf"),
			email.NewTextAttachment("", "hello", ""),
		},
	})
	require.NoError(t, err)

	require.Len(t, rec.requests, 1)
	body := rec.requests[0]
	assert.Equal(t, "server-token", rec.tokens[0])
	assert.Equal(t, "sender@example.com", body["From"])
	assert.Equal(t, "support@example.com", body["ReplyTo"])
	assert.Equal(t, "a@example.com,b@example.com", body["To"])
	assert.Equal(t, "c@example.com", body["Cc"])
	assert.Equal(t, "d@example.com,e@example.com", body["Bcc"])
	assert.Equal(t, "Invoice", body["Subject"])
	assert.Equal(t, "invoice", body["Tag"])
	assert.Equal(t, "<p>Invoice</p>", body["HtmlBody"])

	attachments, ok := body["Attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 2)

	first := attachments[0].(map[string]any)
	assert.Equal(t, "invoice.pdf", first["Name"])
	assert.Equal(t, "cGRm", first["Content"])
	assert.Equal(t, "application/pdf", first["ContentType"])

	second := attachments[1].(map[string]any)
	assert.Equal(t, "attachment-1", second["Name"])
	assert.Equal(t, "aGVsbG8=", second["Content"])
	assert.Equal(t, "application/octet-stream", second["ContentType"])
}

func TestClient_SendEmail_CustomFrom(t *testing.T) {
	t.Parallel()

	srv, rec := newAPI(t, http.StatusOK, `{"ErrorCode":0,"Message":"OK"}`)
	client := newClient(t, srv.URL)

	err := client.SendEmail(context.Background(), email.Message{
		From:    "billing@example.com",
		To:      []string{"a@example.com"},
		Subject: "s",
	})
	require.NoError(t, err)
	require.Len(t, rec.requests, 1)
	assert.Equal(t, "billing@example.com", rec.requests[0]["From"])
}

func TestClient_SendEmail_APIError(t *testing.T) {
	t.Parallel()

	srv, _ := newAPI(t, http.StatusUnprocessableEntity, `{"ErrorCode":300,"Message":"Invalid email request"}`)
	client := newClient(t, srv.URL)

	err := client.SendEmail(context.Background(), email.Message{To: []string{"a@example.com"}, Subject: "s"})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
}

func TestClient_SendEmail_Validation(t *testing.T) {
	t.Parallel()

	srv, rec := newAPI(t, http.StatusOK, `{}`)
	client := newClient(t, srv.URL)

	err := client.SendEmail(context.Background(), email.Message{Subject: "s"})
	assert.ErrorIs(t, err, email.ErrInvalidParams)

	err = client.SendEmail(context.Background(), email.Message{
		To:          []string{"a@example.com"},
		Subject:     "s",
		Attachments: []email.Attachment{{Filename: "x", Source: email.UnsupportedSource{Kind: "stream"}}},
	})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.ErrorIs(t, err, email.ErrUnsupportedSource)

	assert.Empty(t, rec.requests, "nothing reaches the API")
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	srv, rec := newAPI(t, http.StatusOK, `{"ID":1,"Name":"app","ApiTokens":["server-token"]}`)
	client := newClient(t, srv.URL)
	require.NoError(t, client.Verify(context.Background()))
	assert.Equal(t, []string{"server-token"}, rec.tokens)

	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	err := newClient(t, url).Verify(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, email.ErrVerifyFailed)
	assert.False(t, strings.Contains(err.Error(), "server-token"))
}
