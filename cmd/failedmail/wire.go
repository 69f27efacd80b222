package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/core/failedmail"
	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/mailer"
	"github.com/dmitrymomot/notifykit/core/notify"
	"github.com/dmitrymomot/notifykit/integration/database/redis"
	"github.com/dmitrymomot/notifykit/integration/email/postmark"
	"github.com/dmitrymomot/notifykit/integration/email/smtp"
	"github.com/dmitrymomot/notifykit/integration/notify/matrix"
	"github.com/dmitrymomot/notifykit/integration/notify/telegram"
	"github.com/dmitrymomot/notifykit/integration/storage/s3"
	"github.com/dmitrymomot/notifykit/pkg/ratelimiter"
)

func newTransport(cfg Config) (email.EmailSender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", providerDev:
		return email.NewDevSender(cfg.DevDir), nil
	case providerSMTP:
		return smtp.New(cfg.SMTP)
	case providerPostmark:
		return postmark.New(cfg.Postmark)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func newNotifier(cfg Config, log *slog.Logger) (notify.Notifier, error) {
	switch strings.ToLower(cfg.NotifyChannel) {
	case "", channelNone:
		return notify.Nop, nil
	case channelTelegram:
		return telegram.New(cfg.Telegram, telegram.WithLogger(log)), nil
	case channelMatrix:
		return matrix.New(cfg.Matrix, matrix.WithLogger(log))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, cfg.NotifyChannel)
	}
}

// components holds everything the commands share.
type components struct {
	mailer    *mailer.Mailer
	store     *failedmail.Store
	notifier  notify.Notifier
	formatter *notify.Formatter
}

func wire(cfg Config, log *slog.Logger) (*components, error) {
	sender, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return nil, err
	}
	formatter, err := notify.NewFormatter(cfg.Notify)
	if err != nil {
		return nil, err
	}
	store, err := failedmail.Open(cfg.StorePath,
		failedmail.WithAttachmentsDir(cfg.AttachmentsDir),
		failedmail.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	opts := []mailer.Option{
		mailer.WithStore(store),
		mailer.WithNotifier(notifier),
		mailer.WithFormatter(formatter),
		mailer.WithLogger(log),
		mailer.WithDefaultFrom(cfg.From),
	}
	if cfg.SimulateFailures {
		opts = append(opts, mailer.WithFailureSimulator(mailer.DefaultSentinels()))
	}
	m, err := mailer.New(sender, opts...)
	if err != nil {
		return nil, err
	}

	return &components{
		mailer:    m,
		store:     store,
		notifier:  notifier,
		formatter: formatter,
	}, nil
}

// newRateLimitStore returns the counter store for the delivery service and the
// readiness checks it brings. The returned cleanup closes external connections.
func newRateLimitStore(ctx context.Context, cfg Config, log *slog.Logger) (ratelimiter.WindowStore, []func(context.Context) error, func(), error) {
	switch strings.ToLower(cfg.RateLimitStore) {
	case "", storeMemory:
		store := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(log))
		return store, []func(context.Context) error{store.Healthcheck}, func() {}, nil
	case storeRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := ratelimiter.NewRedisStore(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
				log.Warn("Failed to close redis client", logger.Error(err))
			}
		}
		return store, []func(context.Context) error{redis.Healthcheck(client)}, closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.RateLimitStore)
	}
}

// recordArchiver uploads a stored record to long-term storage.
type recordArchiver interface {
	Archive(ctx context.Context, rec failedmail.Record) ([]string, error)
}

func newS3Archiver(ctx context.Context, cfg s3.Config, log *slog.Logger) (recordArchiver, error) {
	return s3.New(ctx, cfg, s3.WithLogger(log))
}
