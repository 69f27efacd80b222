// Package logger provides structured logging utilities built on Go's standard slog package:
// a small logger factory and nil-safe attribute helpers used across the delivery subsystem.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/notifykit/core/logger"
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("service", "mailer")),
//	)
//
//	log.Error("Failed to send email",
//		logger.Error(err),
//		logger.Component("mailer"),
//		logger.Recipients(msg.To...),
//		logger.RecordID(id),
//	)
//
// Helpers return an empty slog.Attr for nil or empty values, which slog drops,
// so call sites need no nil checks.
//
// Components that accept a *slog.Logger default to Nop when none is given.
package logger
