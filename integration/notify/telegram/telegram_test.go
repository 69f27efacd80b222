package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/notify"
	"github.com/dmitrymomot/notifykit/integration/notify/telegram"
)

type botAPI struct {
	mu       sync.Mutex
	paths    []string
	messages []map[string]any
}

func newBotAPI(t *testing.T, status int, reply string) (*httptest.Server, *botAPI) {
	t.Helper()

	api := &botAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		api.mu.Lock()
		api.paths = append(api.paths, r.URL.Path)
		api.messages = append(api.messages, body)
		api.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, api
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	srv, api := newBotAPI(t, http.StatusOK, `{"ok":true,"result":{}}`)
	client := telegram.New(telegram.Config{Token: "123:abc", ChatID: "-100", APIURL: srv.URL + "/"})

	require.NoError(t, client.Send(context.Background(), "<b>hello</b>"))

	require.Len(t, api.messages, 1)
	assert.Equal(t, "/bot123:abc/sendMessage", api.paths[0])
	assert.Equal(t, map[string]any{
		"chat_id":                  "-100",
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
		"text":                     "<b>hello</b>",
	}, api.messages[0])
}

func TestClient_SendTruncates(t *testing.T) {
	t.Parallel()

	entity := regexp.MustCompile(`&(?:[a-z]+|#[0-9]+);`)
	alert := (&notify.Formatter{AppName: "app"}).FormatAlert(notify.Alert{
		Type: notify.Error,
		Err:  errors.New("p" + strings.Repeat("<x>", 1500)),
	})

	tests := []struct {
		name   string
		text   string
		suffix string
	}{
		{"plain text", strings.Repeat("я", telegram.MaxMessageLength+10), "…"},
		{"cut inside an entity", "<b>Error message:</b> " + strings.Repeat("&lt;x&gt;", 1000), "…"},
		{"cut inside code", "<b>App:</b> x\n<b>Error stack:</b>\n<code>" + strings.Repeat("a&amp;", 2000) + "</code>", "…</code>"},
		{"cut inside a tag", strings.Repeat("<b>bold</b> ", 500), "…"},
		{"line boundary", strings.Repeat("line\n", 1000), "line…"},
		{"formatted alert", alert, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, api := newBotAPI(t, http.StatusOK, `{"ok":true}`)
			client := telegram.New(telegram.Config{Token: "t", ChatID: "1", APIURL: srv.URL})
			require.NoError(t, client.Send(context.Background(), tt.text))

			text, _ := api.messages[0]["text"].(string)
			assert.LessOrEqual(t, len([]rune(text)), telegram.MaxMessageLength)
			assert.True(t, strings.HasSuffix(text, tt.suffix), "suffix of %q", text[max(len(text)-40, 0):])
			assert.NotContains(t, entity.ReplaceAllString(text, ""), "&", "partial entity")
			assert.Equal(t, strings.Count(text, "<code>"), strings.Count(text, "</code>"))
			assert.Equal(t, strings.Count(text, "<b>"), strings.Count(text, "</b>"))
			assert.Equal(t, strings.Count(text, "<"), strings.Count(text, ">"), "partial tag")
		})
	}
}

func TestClient_SendAPIError(t *testing.T) {
	t.Parallel()

	srv, _ := newBotAPI(t, http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	client := telegram.New(telegram.Config{Token: "t", ChatID: "1", APIURL: srv.URL})

	err := client.Send(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, telegram.ErrRequestFailed)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Contains(t, err.Error(), "400")
}

func TestClient_NotConfigured(t *testing.T) {
	t.Parallel()

	srv, api := newBotAPI(t, http.StatusOK, `{"ok":true}`)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	for _, cfg := range []telegram.Config{
		{ChatID: "1", APIURL: srv.URL},
		{Token: "t", APIURL: srv.URL},
	} {
		client := telegram.New(cfg, telegram.WithLogger(log))
		assert.ErrorIs(t, client.Send(context.Background(), "x"), telegram.ErrNotConfigured)
		client.Notify(context.Background(), "x")
	}

	assert.Empty(t, api.messages)
	assert.Contains(t, buf.String(), "Telegram config missing: no token or chat ID")
}

func TestClient_NotifyLogsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	client := telegram.New(telegram.Config{Token: "secret-token", ChatID: "1", APIURL: url}, telegram.WithLogger(log))

	assert.NotPanics(t, func() { client.Notify(context.Background(), "x") })
	assert.Contains(t, buf.String(), "Telegram send failed")
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestClient_CustomHTTPClient(t *testing.T) {
	t.Parallel()

	srv, api := newBotAPI(t, http.StatusOK, `{"ok":true}`)
	client := telegram.New(
		telegram.Config{Token: "t", ChatID: "1", APIURL: srv.URL},
		telegram.WithHTTPClient(srv.Client()),
	)
	client.Notify(context.Background(), "x")
	assert.Len(t, api.messages, 1)
}
