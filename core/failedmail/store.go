package failedmail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/core/logger"
)

// DefaultFilename is the default store document name.
const DefaultFilename = "failedEmails.json"

// Store is a single-file database of failed deliveries. Every mutation re-reads the
// document and rewrites it whole. Calls are serialized within the process;
// several processes sharing one file are not supported.
type Store struct {
	mu             sync.Mutex
	path           string
	attachmentsDir string
	attachments    *AttachmentStore
	logger         *slog.Logger
	now            func() time.Time
	newID          func() (string, error)
}

// Option configures a Store.
type Option func(*Store)

// WithAttachmentsDir sets the attachment root.
// Defaults to failed-email-attachments next to the store file.
func WithAttachmentsDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.attachmentsDir = dir
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides record id generation. Defaults to UUIDv7.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Open opens the store at path, creating the file, its parent directory and the
// attachment root when missing. A missing or empty file is initialized to an
// empty document.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultFilename
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	s := &Store{
		path:   abs,
		logger: logger.Nop(),
		now:    time.Now,
		newID:  newUUIDv7,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.attachmentsDir == "" {
		s.attachmentsDir = filepath.Join(filepath.Dir(abs), DefaultAttachmentsDir)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	doc, exists, err := s.load()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.write(doc); err != nil {
			return nil, err
		}
	}

	s.attachments, err = NewAttachmentStore(s.attachmentsDir, WithAttachmentLogger(s.logger))
	if err != nil {
		return nil, err
	}

	return s, nil
}

// MustOpen is like Open but panics on error.
func MustOpen(path string, opts ...Option) *Store {
	s, err := Open(path, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Path returns the absolute path of the store document.
func (s *Store) Path() string {
	return s.path
}

// Attachments returns the attachment store rooted at the configured directory.
func (s *Store) Attachments() *AttachmentStore {
	return s.attachments
}

// NewID reserves a fresh record id.
func (s *Store) NewID() (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate record id: %w", err)
	}
	return id, nil
}

// Append stores d as a new record and returns its id.
func (s *Store) Append(ctx context.Context, d Draft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := d.validate(); err != nil {
		return "", err
	}

	id := d.ID
	if id == "" {
		var err error
		if id, err = s.NewID(); err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load()
	if err != nil {
		return "", err
	}
	if slices.ContainsFunc(doc.FailedEmails, func(r Record) bool { return r.ID == id }) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	attachments := slices.Clone(d.Attachments)
	if attachments == nil {
		attachments = []AttachmentRecord{}
	}

	doc.FailedEmails = append(doc.FailedEmails, Record{
		ID:          id,
		From:        d.From,
		To:          slices.Clone(d.To),
		Cc:          slices.Clone(d.Cc),
		Bcc:         slices.Clone(d.Bcc),
		Subject:     d.Subject,
		HTML:        d.HTML,
		Attachments: attachments,
		CreatedAt:   s.now().UTC(),
	})

	if err := s.write(doc); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Failed email saved",
		logger.Component("failed_mail_store"),
		logger.RecordID(id),
		logger.Count("attachments", len(attachments)),
	)
	return id, nil
}

// List returns copies of all stored records in insertion order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(doc.FailedEmails))
	for _, r := range doc.FailedEmails {
		out = append(out, r.clone())
	}
	return out, nil
}

// Get returns a copy of the record with id or ErrRecordNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// Remove deletes the record with id. Removing an absent id is a no-op.
// Attachment files are not touched; use AttachmentStore.DeleteAll.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load()
	if err != nil {
		return err
	}

	before := len(doc.FailedEmails)
	doc.FailedEmails = slices.DeleteFunc(doc.FailedEmails, func(r Record) bool { return r.ID == id })
	if len(doc.FailedEmails) == before {
		return nil
	}

	if err := s.write(doc); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Failed email removed",
		logger.Component("failed_mail_store"),
		logger.RecordID(id),
	)
	return nil
}

// load reads the document. exists is false when the file is missing or blank.
func (s *Store) load() (document, bool, error) {
	doc := document{FailedEmails: []Record{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, false, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, true, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if doc.FailedEmails == nil {
		doc.FailedEmails = []Record{}
	}
	return doc, true, nil
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	if err := writeAtomic(s.path, bytes.NewReader(data), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
