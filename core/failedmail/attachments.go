package failedmail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/pkg/filename"
)

// DefaultAttachmentsDir is the attachment root name used next to the store file.
const DefaultAttachmentsDir = "failed-email-attachments"

const defaultDeleteConcurrency = 8

// AttachmentStore persists attachment payloads into one directory per record id
// under a fixed root.
type AttachmentStore struct {
	root        string
	logger      *slog.Logger
	concurrency int
}

// AttachmentOption configures an AttachmentStore.
type AttachmentOption func(*AttachmentStore)

// WithAttachmentLogger sets the logger. Defaults to a discard logger.
func WithAttachmentLogger(l *slog.Logger) AttachmentOption {
	return func(s *AttachmentStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDeleteConcurrency bounds the number of files unlinked in parallel by DeleteAll.
func WithDeleteConcurrency(n int) AttachmentOption {
	return func(s *AttachmentStore) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewAttachmentStore creates the attachment root if needed.
func NewAttachmentStore(root string, opts ...AttachmentOption) (*AttachmentStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: empty root", ErrAttachmentDir)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentDir, err)
	}

	s := &AttachmentStore{
		root:        abs,
		logger:      logger.Nop(),
		concurrency: defaultDeleteConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentDir, err)
	}
	return s, nil
}

// Root returns the absolute attachment root.
func (s *AttachmentStore) Root() string {
	return s.root
}

// Dir returns the directory holding attachments of recordID.
func (s *AttachmentStore) Dir(recordID string) string {
	return filepath.Join(s.root, recordID)
}

// Persist writes every attachment into the record directory and returns the ones
// that were stored. Per-attachment failures are logged and skipped. An error is
// returned only when the record directory cannot be created or ctx is done.
func (s *AttachmentStore) Persist(ctx context.Context, recordID string, attachments []email.Attachment) ([]AttachmentRecord, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	if !validRecordID(recordID) {
		return nil, fmt.Errorf("%w: invalid record id %q", ErrAttachmentDir, recordID)
	}

	dir := s.Dir(recordID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentDir, err)
	}

	log := s.logger.With(logger.Component("attachment_store"), logger.RecordID(recordID))
	stored := make([]AttachmentRecord, 0, len(attachments))
	taken := make(map[string]struct{}, len(attachments))

	for i, a := range attachments {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		name := a.Filename
		if name == "" {
			name = "attachment-" + strconv.Itoa(i)
		}
		name = uniqueName(taken, filename.Sanitize(name, filename.ASCIIOnly()))
		target := filepath.Join(dir, name)

		var err error
		switch src := a.Source.(type) {
		case email.PathSource:
			if src.Path == "" {
				log.WarnContext(ctx, "Attachment path is empty. Skipping attachment save", logger.Filename(name))
				continue
			}
			err = copyFile(src.Path, target)
		case email.InlineSource:
			if len(src.Data) == 0 {
				log.WarnContext(ctx, "Attachment content is empty. Skipping attachment save", logger.Filename(name))
				continue
			}
			var data []byte
			data, err = src.Decode()
			if errors.Is(err, email.ErrUnsupportedEncoding) {
				log.WarnContext(ctx, "Attachment content has unsupported encoding. Skipping attachment save",
					logger.Filename(name), logger.Error(err))
				continue
			}
			if err == nil {
				err = writeAtomic(target, bytes.NewReader(data), 0o644)
			}
		case email.UnsupportedSource:
			log.WarnContext(ctx, "Attachment source has unsupported type. Skipping attachment save",
				logger.Filename(name), slog.String("kind", src.Kind))
			continue
		default:
			log.WarnContext(ctx, "Attachment has neither path nor content. Skipping attachment save",
				logger.Filename(name))
			continue
		}

		if err != nil {
			log.ErrorContext(ctx, "Failed to persist attachment", logger.Filename(name), logger.Error(err))
			continue
		}

		taken[strings.ToLower(name)] = struct{}{}
		stored = append(stored, AttachmentRecord{
			Filename:    name,
			Path:        target,
			ContentType: a.ContentType,
			Encoding:    a.Encoding,
		})
	}

	if len(stored) == 0 {
		// Nothing was written; drop the empty directory.
		_ = os.Remove(dir)
	}

	return stored, nil
}

// DeleteAll unlinks the attachment files in parallel and then removes their owning
// directories recursively. Missing files are not errors; other failures are
// logged. Paths outside the attachment root are never touched.
func (s *AttachmentStore) DeleteAll(ctx context.Context, records []AttachmentRecord) {
	if len(records) == 0 {
		return
	}

	log := s.logger.With(logger.Component("attachment_store"))
	dirs := make(map[string]struct{})

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, rec := range records {
		path, ok := s.within(rec.Path)
		if !ok {
			log.WarnContext(ctx, "Refusing to remove attachment outside the attachment root",
				logger.Path(rec.Path), logger.Error(ErrOutsideAttachments))
			continue
		}
		if dir := filepath.Dir(path); dir != s.root {
			dirs[dir] = struct{}{}
		}

		g.Go(func() error {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.WarnContext(ctx, "Failed to remove attachment file", logger.Path(path), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	ordered := make([]string, 0, len(dirs))
	for dir := range dirs {
		ordered = append(ordered, dir)
	}
	slices.Sort(ordered)
	for _, dir := range ordered {
		if err := os.RemoveAll(dir); err != nil {
			log.WarnContext(ctx, "Failed to clean attachment directory", logger.Path(dir), logger.Error(err))
		}
	}
}

// Discard removes the whole directory of recordID, whatever it contains.
func (s *AttachmentStore) Discard(ctx context.Context, recordID string) {
	if !validRecordID(recordID) {
		return
	}
	dir := s.Dir(recordID)
	if err := os.RemoveAll(dir); err != nil {
		s.logger.WarnContext(ctx, "Failed to clean attachment directory",
			logger.Component("attachment_store"), logger.Path(dir), logger.Error(err))
	}
}

// within resolves p and reports whether it lies strictly inside the root.
func (s *AttachmentStore) within(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}

func validRecordID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`) && !strings.ContainsRune(id, 0)
}

// uniqueName appends -1, -2, ... before the extension until name is unused.
// Comparison is case-insensitive so names stay distinct on case-folding filesystems.
func uniqueName(taken map[string]struct{}, name string) string {
	if _, ok := taken[strings.ToLower(name)]; !ok {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}

	for n := 1; ; n++ {
		suffix := "-" + strconv.Itoa(n)
		s := stem
		if over := len(s) + len(suffix) + len(ext) - filename.DefaultMaxLength; over > 0 {
			s = s[:max(0, len(s)-over)]
		}
		candidate := s + suffix + ext
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}
