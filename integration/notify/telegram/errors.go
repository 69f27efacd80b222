package telegram

import "errors"

var (
	ErrNotConfigured = errors.New("telegram: token or chat id is missing")
	ErrRequestFailed = errors.New("telegram: request failed")
)
