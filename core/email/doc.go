// Package email defines the outbound message model shared by every mail provider
// and a development transport that writes messages to disk.
//
// # Features
//
//   - EmailSender, Verifier and Transport interfaces for provider flexibility
//   - Message with To, Cc and Bcc recipients and HTML body
//   - Attachments backed by a local file, inline bytes or encoded text
//   - Built-in development mode that saves emails to disk
//   - Parameter validation with detailed error messages
//
// # Usage
//
//	import "github.com/dmitrymomot/notifykit/core/email"
//
//	sender := email.NewDevSender("./dev_emails")
//
//	msg := email.Message{
//		To:       []string{"user@example.com"},
//		Subject:  "Invoice",
//		BodyHTML: "<p>Your invoice is attached.</p>",
//		Attachments: []email.Attachment{
//			email.NewFileAttachment("invoice.pdf", "/tmp/invoice.pdf", "application/pdf"),
//			email.NewTextAttachment("notes.txt", "aGVsbG8=", "base64"),
//		},
//	}
//
//	if err := sender.SendEmail(ctx, msg); err != nil {
//		return err
//	}
//
// # Attachments
//
// An attachment payload comes from one of three sources:
//
//   - PathSource: a file on the local filesystem
//   - InlineSource: bytes in memory, optionally text in a named encoding
//     (utf8, ascii, latin1, binary, utf16le, ucs2, base64, base64url, hex)
//   - UnsupportedSource: a representation that cannot be resolved locally
//
// Attachment.Bytes resolves any of them to raw bytes or returns
// ErrUnsupportedSource / ErrUnsupportedEncoding.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//
//	if errors.Is(err, email.ErrInvalidParams) {
//		// validation failed
//	}
//	if errors.Is(err, email.ErrFailedToSendEmail) {
//		// provider rejected or could not be reached
//	}
package email
