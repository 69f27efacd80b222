package main

import (
	"github.com/dmitrymomot/notifykit/app/delivery"
	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/notify"
	"github.com/dmitrymomot/notifykit/core/server"
	"github.com/dmitrymomot/notifykit/integration/database/redis"
	"github.com/dmitrymomot/notifykit/integration/email/postmark"
	"github.com/dmitrymomot/notifykit/integration/email/smtp"
	"github.com/dmitrymomot/notifykit/integration/notify/matrix"
	"github.com/dmitrymomot/notifykit/integration/notify/telegram"
	"github.com/dmitrymomot/notifykit/integration/storage/s3"
)

// Email providers.
const (
	providerDev      = "dev"
	providerSMTP     = "smtp"
	providerPostmark = "postmark"
)

// Alert channels.
const (
	channelNone     = "none"
	channelTelegram = "telegram"
	channelMatrix   = "matrix"
)

// Rate limit counter stores.
const (
	storeMemory = "memory"
	storeRedis  = "redis"
)

// Config is the environment configuration of the failedmail binary.
type Config struct {
	Logger logger.Config
	Notify notify.Config

	StorePath      string `env:"FAILED_EMAILS_DB" envDefault:"failedEmails.json"`
	AttachmentsDir string `env:"FAILED_EMAILS_ATTACHMENTS_DIR"`
	From           string `env:"EMAIL_FROM"`

	Provider         string `env:"EMAIL_PROVIDER" envDefault:"dev"`
	DevDir           string `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`
	SimulateFailures bool   `env:"EMAIL_SIMULATE_FAILURES" envDefault:"false"`

	NotifyChannel  string `env:"NOTIFY_CHANNEL" envDefault:"none"`
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"memory"`

	SMTP     smtp.Config
	Postmark postmark.Config
	Telegram telegram.Config
	Matrix   matrix.Config
	S3       s3.Config
	Redis    redis.Config
	Server   server.Config
	Delivery delivery.Config
}
