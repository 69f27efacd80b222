package delivery

import (
	"time"

	"github.com/dmitrymomot/notifykit/core/cookie"
)

// Limits configures request throttling of the delivery endpoints.
type Limits struct {
	Limit        int           `env:"RATE_LIMIT" envDefault:"10"`
	Window       time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	DelayAfter   int           `env:"RATE_LIMIT_DELAY_AFTER" envDefault:"5"`
	Delay        time.Duration `env:"RATE_LIMIT_DELAY" envDefault:"1s"`
	MaxDelay     time.Duration `env:"RATE_LIMIT_MAX_DELAY" envDefault:"10s"`
	GlobalLimit  int           `env:"RATE_LIMIT_GLOBAL" envDefault:"300"`
	GlobalWindow time.Duration `env:"RATE_LIMIT_GLOBAL_WINDOW" envDefault:"1m"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		Limit:        10,
		Window:       time.Minute,
		DelayAfter:   5,
		Delay:        time.Second,
		MaxDelay:     10 * time.Second,
		GlobalLimit:  300,
		GlobalWindow: time.Minute,
	}
}

// Config is the environment configuration of the service.
type Config struct {
	Limits     Limits
	Recipients []string `env:"FEEDBACK_RECIPIENTS" envSeparator:","`
	MaxBody    int64    `env:"FEEDBACK_MAX_BODY" envDefault:"65536"`
	Cookie     cookie.Config
}
