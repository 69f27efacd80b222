package mailer

import (
	"log/slog"

	"github.com/dmitrymomot/notifykit/core/failedmail"
	"github.com/dmitrymomot/notifykit/core/notify"
)

// DefaultFrom is the sender used when neither the message nor the Mailer sets one.
const DefaultFrom = "no-reply@example.com"

// Option configures a Mailer.
type Option func(*Mailer)

// WithStore enables save-on-fail persistence. The store's attachment store is
// used unless WithAttachmentStore is given.
func WithStore(s *failedmail.Store) Option {
	return func(m *Mailer) {
		m.store = s
	}
}

// WithAttachmentStore overrides where attachments of failed emails are written.
func WithAttachmentStore(s *failedmail.AttachmentStore) Option {
	return func(m *Mailer) {
		m.attachments = s
	}
}

// WithNotifier sets the alert sink. Defaults to notify.Nop.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Mailer) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithFormatter sets the alert formatter.
func WithFormatter(f *notify.Formatter) Option {
	return func(m *Mailer) {
		if f != nil {
			m.formatter = f
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithFailureSimulator installs a failure simulator. Defaults to NoSimulation.
func WithFailureSimulator(s FailureSimulator) Option {
	return func(m *Mailer) {
		if s != nil {
			m.simulator = s
		}
	}
}

// WithDefaultFrom sets the sender used for messages without From.
func WithDefaultFrom(from string) Option {
	return func(m *Mailer) {
		if from != "" {
			m.defaultFrom = from
		}
	}
}

// SendOption configures a single Send call.
type SendOption func(*sendOptions)

type sendOptions struct {
	saveOnFail bool
}

// SaveOnFail persists the message for later resend when delivery fails.
func SaveOnFail() SendOption {
	return func(o *sendOptions) {
		o.saveOnFail = true
	}
}
