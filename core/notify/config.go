package notify

import (
	"fmt"
	"time"
)

// Config describes the application identity printed in every message.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"app"`
	Env      string `env:"APP_ENV"`
	TimeZone string `env:"NOTIFY_TIMEZONE" envDefault:"Local"`
}

// NewFormatter builds a Formatter from cfg.
func NewFormatter(cfg Config) (*Formatter, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid notification time zone %q: %w", cfg.TimeZone, err)
	}
	return &Formatter{
		AppName:  cfg.AppName,
		Env:      cfg.Env,
		Location: loc,
	}, nil
}
