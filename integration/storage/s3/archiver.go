package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/notifykit/core/failedmail"
	"github.com/dmitrymomot/notifykit/core/logger"
)

// RecordObject is the object name of the record document inside its folder.
const RecordObject = "record.json"

// S3Client defines the S3 operations used by Archiver.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
}

// Archiver copies failed email records and their attachment files to S3.
type Archiver struct {
	client        S3Client
	bucket        string
	prefix        string
	uploadTimeout time.Duration
	logger        *slog.Logger
}

// Option configures an Archiver.
type Option func(*options)

type options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3aws.Options)
	uploadTimeout   time.Duration
	logger          *slog.Logger
}

// WithS3Client sets a pre-configured S3 client. Mostly used with mocks.
func WithS3Client(client S3Client) Option {
	return func(o *options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3aws.Options)) Option {
	return func(o *options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithUploadTimeout bounds every single upload.
// If not set, relies on context deadline from caller.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.uploadTimeout = timeout
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New creates an Archiver. Without static credentials the default AWS
// credential chain is used.
func New(ctx context.Context, cfg Config, opts ...Option) (*Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: Bucket is required", ErrInvalidConfig)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: Region is required", ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}
		awsOptions = append(awsOptions, o.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range o.s3ClientOptions {
				opt(so)
			}
		})
	}

	l := o.logger
	if l == nil {
		l = logger.Nop()
	}

	return &Archiver{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		uploadTimeout: o.uploadTimeout,
		logger:        l.With(logger.Component("s3_archiver")),
	}, nil
}

// Archive uploads every attachment file of rec and then rec itself as
// <prefix>/<id>/record.json, returning the uploaded keys. The record document is
// written last, so its presence marks a complete archive. Attachment files that
// no longer exist are skipped with a warning.
func (a *Archiver) Archive(ctx context.Context, rec failedmail.Record) ([]string, error) {
	if rec.ID == "" || strings.ContainsAny(rec.ID, `/\`) || rec.ID == "." || rec.ID == ".." {
		return nil, fmt.Errorf("%w: bad id %q", ErrInvalidRecord, rec.ID)
	}

	keys := make([]string, 0, len(rec.Attachments)+1)
	for _, att := range rec.Attachments {
		key, err := a.uploadFile(ctx, rec.ID, att)
		if errors.Is(err, fs.ErrNotExist) {
			a.logger.WarnContext(ctx, "Attachment file missing, not archived",
				logger.RecordID(rec.ID),
				logger.Path(att.Path),
			)
			continue
		}
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return keys, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	key := a.Key(rec.ID, RecordObject)
	if err := a.put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return keys, err
	}
	keys = append(keys, key)

	a.logger.InfoContext(ctx, "Failed email archived",
		logger.RecordID(rec.ID),
		logger.Count("objects", len(keys)),
	)
	return keys, nil
}

// Key returns the object key for name inside the folder of record id.
func (a *Archiver) Key(id, name string) string {
	if a.prefix == "" {
		return path.Join(id, name)
	}
	return path.Join(a.prefix, id, name)
}

func (a *Archiver) uploadFile(ctx context.Context, id string, att failedmail.AttachmentRecord) (string, error) {
	f, err := os.Open(att.Path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	name := att.Filename
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		name = path.Base(strings.ReplaceAll(att.Path, `\`, "/"))
	}
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := a.Key(id, name)
	if err := a.put(ctx, key, f, info.Size(), contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (a *Archiver) put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if a.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.uploadTimeout)
		defer cancel()
	}

	_, err := a.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	return classifyS3Error(err, key)
}
