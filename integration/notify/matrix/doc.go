// Package matrix sends operator alerts to a Matrix room using mautrix.
//
//	mx, err := matrix.New(matrix.Config{
//		Homeserver:  "https://matrix.example.com",
//		UserID:      "@alerts:example.com",
//		AccessToken: token,
//		RoomID:      "!ops:example.com",
//	})
//
// Alerts are sent as m.notice events with an org.matrix.custom.html body.
package matrix
