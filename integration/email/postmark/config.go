package postmark

// Config holds Postmark API configuration.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"EMAIL_FROM" envDefault:"no-reply@example.com"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	MessageStream        string `env:"POSTMARK_MESSAGE_STREAM" envDefault:"outbound"`
	// BaseURL overrides the API endpoint. Used by tests and proxies.
	BaseURL string `env:"POSTMARK_BASE_URL"`
}
