// Package notify formats operator alerts and defines the sink they are sent to.
//
// A Notifier is fire-and-forget: Notify never returns an error and a failing
// channel only logs. Concrete channels live in integration/notify (Telegram, Matrix).
//
//	f, _ := notify.NewFormatter(notify.Config{AppName: "shop", Env: "production", TimeZone: "Europe/Moscow"})
//
//	text := f.FormatAlert(notify.Alert{
//		Type:  notify.Sending,
//		Title: "Error sending email",
//		Err:   err,
//	})
//	notifier.Notify(ctx, text)
//
// Rendered alerts are HTML lines:
//
//	<b>App:</b> shop
//	<b>Env:</b> production
//	<b>Error type:</b> 🔥 sending
//	<b>Error title:</b> Error sending email
//	<b>Error route:</b> N/A
//	<b>Error time:</b> 2025-03-14T12:26:53.000
//	<b>Error message:</b> dial tcp: connection refused
//
// Inserted values are HTML-escaped.
package notify
