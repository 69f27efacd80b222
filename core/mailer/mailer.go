package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/core/failedmail"
	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/notify"
)

// Mailer sends emails and falls back to durable storage and operator alerts
// when delivery fails.
type Mailer struct {
	sender      email.EmailSender
	store       *failedmail.Store
	attachments *failedmail.AttachmentStore
	notifier    notify.Notifier
	formatter   *notify.Formatter
	logger      *slog.Logger
	simulator   FailureSimulator
	defaultFrom string
}

// New creates a Mailer on top of sender.
func New(sender email.EmailSender, opts ...Option) (*Mailer, error) {
	if sender == nil {
		return nil, ErrNoTransport
	}

	m := &Mailer{
		sender:      sender,
		notifier:    notify.Nop,
		formatter:   &notify.Formatter{},
		logger:      logger.Nop(),
		simulator:   NoSimulation,
		defaultFrom: DefaultFrom,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.attachments == nil && m.store != nil {
		m.attachments = m.store.Attachments()
	}
	m.logger = m.logger.With(logger.Component("mailer"))

	return m, nil
}

// MustNew is like New but panics on error.
func MustNew(sender email.EmailSender, opts ...Option) *Mailer {
	m, err := New(sender, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Store returns the configured failed email store, or nil.
func (m *Mailer) Store() *failedmail.Store {
	return m.store
}

// Send delivers msg. When delivery fails an alert is sent and, with SaveOnFail,
// the message is persisted for later resend. Persistence is attempted once and
// its outcome is reported through the alert sink and Result, never by retrying.
func (m *Mailer) Send(ctx context.Context, msg email.Message, opts ...SendOption) Result {
	var so sendOptions
	for _, opt := range opts {
		opt(&so)
	}
	if msg.From == "" {
		msg.From = m.defaultFrom
	}

	err := m.simulator.SendFailure(msg)
	if err == nil {
		err = m.sender.SendEmail(ctx, msg)
	}
	if err == nil {
		m.logger.InfoContext(ctx, "Email sent", logger.Recipients(msg.To...))
		return Result{State: Delivered}
	}

	// Alerts and persistence must outlive a canceled request.
	ctx = context.WithoutCancel(ctx)

	m.logger.ErrorContext(ctx, "Error sending email",
		logger.Error(err),
		logger.Recipients(msg.To...),
		slog.String("email", messageJSON(msg)),
	)
	m.alert(ctx, notify.Alert{Type: notify.Sending, Title: "Error sending email", Err: err})

	res := Result{State: Failed, Err: err}
	if !so.saveOnFail {
		return res
	}

	res.State = Persisting
	id, perr := m.persist(ctx, msg)
	if perr != nil {
		res.State = PersistFailed
		res.PersistErr = perr
		m.logger.ErrorContext(ctx, "Failed to save undelivered email",
			logger.Error(perr),
			logger.Recipients(msg.To...),
		)
		m.alert(ctx, notify.Alert{Type: notify.Error, Title: "Error saving failed email", Err: perr})
		return res
	}

	res.State = Saved
	res.RecordID = id
	m.alert(ctx, notify.Alert{Type: notify.Success, Title: "Failed email saved for resend, id " + id})
	return res
}

func (m *Mailer) persist(ctx context.Context, msg email.Message) (string, error) {
	if m.store == nil || m.attachments == nil {
		return "", ErrNoStore
	}
	if err := m.simulator.PersistFailure(msg); err != nil {
		return "", err
	}

	id, err := m.store.NewID()
	if err != nil {
		return "", err
	}

	stored, err := m.attachments.Persist(ctx, id, msg.Attachments)
	if err != nil {
		m.attachments.Discard(ctx, id)
		return "", err
	}

	draft := failedmail.DraftFromMessage(id, msg)
	draft.Attachments = stored
	if _, err := m.store.Append(ctx, draft); err != nil {
		m.attachments.Discard(ctx, id)
		return "", err
	}

	m.logger.InfoContext(ctx, "Undelivered email saved",
		logger.RecordID(id),
		logger.Count("attachments", len(stored)),
		logger.Count("attachments_skipped", len(msg.Attachments)-len(stored)),
	)
	return id, nil
}

// Verify checks the transport. A failure is logged and forwarded as a warning alert.
// Transports without a Verify method are assumed healthy.
func (m *Mailer) Verify(ctx context.Context) error {
	v, ok := m.sender.(email.Verifier)
	if !ok {
		m.logger.DebugContext(ctx, "Email transport does not support verification")
		return nil
	}

	if err := v.Verify(ctx); err != nil {
		m.logger.WarnContext(ctx, "Unable to connect to email server", logger.Error(err))
		m.alert(context.WithoutCancel(ctx), notify.Alert{
			Type:  notify.Warning,
			Title: "Unable to connect to email server",
			Err:   err,
		})
		return err
	}

	m.logger.InfoContext(ctx, "Connected to email server")
	return nil
}

// Resend delivers a stored record again. On success its attachment files and the
// record are removed; on failure both are kept.
func (m *Mailer) Resend(ctx context.Context, id string) error {
	if m.store == nil || m.attachments == nil {
		return ErrNoStore
	}

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	msg := rec.Message()
	if msg.From == "" {
		msg.From = m.defaultFrom
	}
	if err := m.sender.SendEmail(ctx, msg); err != nil {
		m.logger.WarnContext(ctx, "Failed to resend email", logger.RecordID(id), logger.Error(err))
		return fmt.Errorf("%w %s: %w", ErrResendFailed, id, err)
	}

	// Records never point at deleted files; files of a removed record may
	// outlive it if deletion fails.
	if err := m.store.Remove(ctx, id); err != nil {
		return err
	}
	m.attachments.DeleteAll(ctx, rec.Attachments)

	m.logger.InfoContext(ctx, "Email resent", logger.RecordID(id), logger.Recipients(msg.To...))
	return nil
}

// ResendAll resends every stored record and returns how many were delivered.
// Failures of single records are joined into the returned error.
func (m *Mailer) ResendAll(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, ErrNoStore
	}

	records, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}

	var (
		sent int
		errs []error
	)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := m.Resend(ctx, rec.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

func (m *Mailer) alert(ctx context.Context, a notify.Alert) {
	m.notifier.Notify(ctx, m.formatter.FormatAlert(a))
}

// messageJSON renders the message for diagnostics. Attachment payloads are
// reduced to their names.
func messageJSON(msg email.Message) string {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	data, err := json.Marshal(struct {
		From        string   `json:"from"`
		To          []string `json:"to"`
		Cc          []string `json:"cc,omitempty"`
		Bcc         []string `json:"bcc,omitempty"`
		Subject     string   `json:"subject"`
		HTML        string   `json:"html"`
		Attachments []string `json:"attachments,omitempty"`
	}{msg.From, msg.To, msg.Cc, msg.Bcc, msg.Subject, msg.BodyHTML, names})
	if err != nil {
		return ""
	}
	return string(data)
}
