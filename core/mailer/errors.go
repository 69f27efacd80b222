package mailer

import "errors"

var (
	ErrNoTransport      = errors.New("mailer: email transport is required")
	ErrNoStore          = errors.New("mailer: failed email store is not configured")
	ErrSimulatedSend    = errors.New("simulated email sending error")
	ErrSimulatedPersist = errors.New("simulated failed email save error")
	ErrResendFailed     = errors.New("failed to resend email")
)
