package telegram

import "time"

// DefaultAPIURL is the Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Config holds Telegram bot settings. An empty Token or ChatID disables sending.
type Config struct {
	Token   string        `env:"TELEGRAM_BOT_TOKEN"`
	ChatID  string        `env:"TELEGRAM_CHAT_ID"`
	APIURL  string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	Timeout time.Duration `env:"TELEGRAM_TIMEOUT" envDefault:"10s"`
}
