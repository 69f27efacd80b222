// Package telegram sends operator alerts to a Telegram chat through the Bot API.
//
//	tg := telegram.New(telegram.Config{Token: token, ChatID: chatID}, telegram.WithLogger(log))
//	tg.Notify(ctx, "<b>deploy finished</b>")
//
// Messages use HTML parse mode with link previews disabled and are cut to
// MaxMessageLength runes. Notify never fails: a missing token or chat id
// produces a warning log and delivery errors are logged. Send returns them.
package telegram
