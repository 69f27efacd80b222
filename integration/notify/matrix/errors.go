package matrix

import "errors"

var (
	ErrNotConfigured = errors.New("matrix: homeserver, access token or room id is missing")
	ErrInvalidConfig = errors.New("matrix: invalid config")
	ErrSendFailed    = errors.New("matrix: send failed")
)
