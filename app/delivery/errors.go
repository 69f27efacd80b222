package delivery

import "errors"

var (
	ErrNoMailer     = errors.New("delivery: mailer is required")
	ErrNoRecipients = errors.New("delivery: at least one feedback recipient is required")
	ErrInvalidInput = errors.New("delivery: invalid input")
)
