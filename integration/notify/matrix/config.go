package matrix

// Config holds the Matrix account and target room. Empty Homeserver,
// AccessToken or RoomID disables sending.
type Config struct {
	Homeserver  string `env:"MATRIX_HOMESERVER"`
	UserID      string `env:"MATRIX_USER_ID"`
	AccessToken string `env:"MATRIX_ACCESS_TOKEN"`
	RoomID      string `env:"MATRIX_ROOM_ID"`
}

func (c Config) enabled() bool {
	return c.Homeserver != "" && c.AccessToken != "" && c.RoomID != ""
}
