// Package mailer coordinates email delivery with failure recovery.
//
// Every Send walks a small state machine:
//
//	Sending -> Delivered
//	Sending -> Failed -> (SaveOnFail) Persisting -> Saved | PersistFailed
//
// A failed send is logged with the full message, and a "sending" alert goes to the
// configured notify.Notifier. With SaveOnFail the message and its attachments are
// written to a failedmail.Store. A successful save sends a "success" alert and a
// failed save sends a second "error" alert. Result.Delivered is true only when the
// transport accepted the message.
//
//	m := mailer.MustNew(transport,
//		mailer.WithStore(store),
//		mailer.WithNotifier(telegramNotifier),
//		mailer.WithFormatter(formatter),
//		mailer.WithLogger(log),
//	)
//
//	res := m.Send(ctx, msg, mailer.SaveOnFail())
//	if !res.Delivered() {
//		// res.State is Failed, Saved or PersistFailed
//	}
//
// Stored messages are re-driven by Resend or ResendAll, which remove the record and
// its files after a successful send.
//
// # Testing the failure path
//
// WithFailureSimulator(mailer.DefaultSentinels()) makes messages addressed to
// smtp-sending-error@test.com fail to send, and messages addressed to
// smtp-save-failed-error@test.com fail to send and then fail to save.
// The default simulator never injects failures.
package mailer
