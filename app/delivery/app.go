package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifykit/core/cookie"
	"github.com/dmitrymomot/notifykit/core/health"
	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/mailer"
	"github.com/dmitrymomot/notifykit/core/notify"
	"github.com/dmitrymomot/notifykit/middleware"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

// StatusSendFailed answers a delivery that failed and was not saved.
// Clients of the contact form treat it as "email could not be sent".
const StatusSendFailed = 535

// App serves the feedback endpoint and health probes.
type App struct {
	mailer     *mailer.Mailer
	recipients []string
	limits     Limits
	maxBody    int64
	store      ratelimiter.WindowStore
	notifier   notify.Notifier
	formatter  *notify.Formatter
	checks     []func(context.Context) error
	cookies    *cookie.Manager
	logger     *slog.Logger
	handler    http.Handler
}

// Option configures an App.
type Option func(*App) error

// WithConfig applies the environment configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) error {
		if cfg.Limits != (Limits{}) {
			a.limits = cfg.Limits
		}
		if len(cfg.Recipients) > 0 {
			a.recipients = cfg.Recipients
		}
		if cfg.MaxBody > 0 {
			a.maxBody = cfg.MaxBody
		}
		if len(cfg.Cookie.SecretList()) > 0 {
			m, err := cookie.NewFromConfig(cfg.Cookie)
			if err != nil {
				return err
			}
			a.cookies = m
		}
		return nil
	}
}

// WithCookies sets the manager signing the CSRF secret cookie. Without it a
// manager with a random secret is created, so tokens expire on restart.
func WithCookies(m *cookie.Manager) Option {
	return func(a *App) error {
		if m == nil {
			return errors.New("cookie manager cannot be nil")
		}
		a.cookies = m
		return nil
	}
}

// WithRecipients sets the addresses feedback is delivered to.
func WithRecipients(addrs ...string) Option {
	return func(a *App) error {
		a.recipients = addrs
		return nil
	}
}

// WithLimits overrides the throttling limits.
func WithLimits(l Limits) Option {
	return func(a *App) error {
		a.limits = l
		return nil
	}
}

// WithRateLimitStore sets the counter store shared by all throttling
// middlewares. Defaults to a new in-memory store.
func WithRateLimitStore(s ratelimiter.WindowStore) Option {
	return func(a *App) error {
		if s == nil {
			return errors.New("rate limit store cannot be nil")
		}
		a.store = s
		return nil
	}
}

// WithNotifier sets the sink for global limit alerts.
func WithNotifier(n notify.Notifier, f *notify.Formatter) Option {
	return func(a *App) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		a.notifier = n
		if f != nil {
			a.formatter = f
		}
		return nil
	}
}

// WithReadinessChecks adds dependency checks to /health/ready.
func WithReadinessChecks(fn ...func(context.Context) error) Option {
	return func(a *App) error {
		a.checks = append(a.checks, fn...)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		a.logger = l
		return nil
	}
}

// New builds the service around m.
func New(m *mailer.Mailer, opts ...Option) (*App, error) {
	if m == nil {
		return nil, ErrNoMailer
	}

	app := &App{
		mailer:    m,
		limits:    DefaultLimits(),
		maxBody:   64 << 10,
		notifier:  notify.Nop,
		formatter: &notify.Formatter{},
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	if len(app.recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if app.store == nil {
		app.store = ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(app.logger))
	}
	if app.cookies == nil {
		secret, err := cookie.GenerateSecret()
		if err != nil {
			return nil, err
		}
		if app.cookies, err = cookie.New([]string{secret}); err != nil {
			return nil, err
		}
	}
	app.logger = app.logger.With(logger.Component("delivery"))

	h, err := app.routes()
	if err != nil {
		return nil, err
	}
	app.handler = h
	return app, nil
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) routes() (http.Handler, error) {
	throttle, err := middleware.Throttle(a.store, middleware.ThrottleConfig{
		Limit:      a.limits.Limit,
		Window:     a.limits.Window,
		DelayAfter: a.limits.DelayAfter,
		Delay:      a.limits.Delay,
		MaxDelay:   a.limits.MaxDelay,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}
	global, err := ratelimiter.NewFixedWindow(a.store, ratelimiter.WindowConfig{
		Limit:  a.limits.GlobalLimit,
		Window: a.limits.GlobalWindow,
	})
	if err != nil {
		return nil, err
	}
	globalLimit := middleware.GlobalRateLimit(middleware.GlobalRateLimitConfig{
		Limiter:   global,
		Notifier:  a.notifier,
		Formatter: a.formatter,
		Logger:    a.logger,
	})

	csrf := middleware.CSRF(middleware.CSRFConfig{
		Cookies: a.cookies,
		Logger:  a.logger,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /api/csrf", csrf(http.HandlerFunc(a.csrfToken)))
	mux.Handle("POST /api/feedback", globalLimit(throttle(csrf(http.HandlerFunc(a.feedback)))))
	mux.HandleFunc("GET /health/live", health.Liveness)
	mux.Handle("GET /health/ready", health.Readiness(a.logger, a.checks...))

	return middleware.ClientIP()(mux), nil
}

func (a *App) csrfToken(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetCSRFToken(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, response{CSRFToken: token})
}

func (a *App) feedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var f Feedback
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.maxBody))
	if err := dec.Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid request body"})
		return
	}
	if err := f.Normalize(); err != nil {
		var verr ValidationError
		errors.As(err, &verr)
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid input", Fields: verr})
		return
	}

	ip, _ := middleware.GetClientIP(ctx)
	res := a.mailer.Send(ctx, f.Mail(a.recipients), mailer.SaveOnFail())

	switch res.State {
	case mailer.Delivered:
		writeJSON(w, http.StatusOK, response{Status: res.State.String()})
	case mailer.Saved:
		a.logger.WarnContext(ctx, "Feedback saved for resend", logger.RecordID(res.RecordID), logger.ClientIP(ip))
		writeJSON(w, http.StatusAccepted, response{Status: res.State.String(), ID: res.RecordID})
	case mailer.PersistFailed:
		if errors.Is(res.PersistErr, mailer.ErrNoStore) {
			writeJSON(w, StatusSendFailed, response{Status: mailer.Failed.String(), Message: "Failed to send the message, please try again later"})
			return
		}
		writeJSON(w, http.StatusLocked, response{Status: res.State.String(), Message: "Failed to save the message, please try again later"})
	default:
		writeJSON(w, StatusSendFailed, response{Status: res.State.String(), Message: "Failed to send the message, please try again later"})
	}
}

type response struct {
	Status  string            `json:"status,omitempty"`
	ID      string            `json:"id,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`

	CSRFToken string `json:"csrfToken,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run returns an errgroup function doing background maintenance of the
// counter store. Only the in-memory store needs it; for others the function
// waits for ctx.
func (a *App) Run(ctx context.Context) func() error {
	if ms, ok := a.store.(*ratelimiter.MemoryStore); ok {
		return ms.Run(ctx)
	}
	return func() error {
		<-ctx.Done()
		return nil
	}
}
