package smtp

import "time"

// Config holds SMTP server configuration.
// Username and Password are optional; without them the client does not authenticate.
type Config struct {
	Host               string        `env:"SMTP_HOST"`
	Port               int           `env:"SMTP_PORT" envDefault:"587"`
	Username           string        `env:"SMTP_USERNAME"`
	Password           string        `env:"SMTP_PASSWORD"`
	TLSMode            string        `env:"SMTP_TLS_MODE" envDefault:"starttls"` // starttls, tls, or plain
	SenderEmail        string        `env:"EMAIL_FROM" envDefault:"no-reply@example.com"`
	SupportEmail       string        `env:"SUPPORT_EMAIL"` // Reply-To, optional
	LocalName          string        `env:"SMTP_LOCAL_NAME"`
	Timeout            time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	InsecureSkipVerify bool          `env:"SMTP_INSECURE_SKIP_VERIFY" envDefault:"false"`
}
