// Package smtp provides an SMTP implementation of email.Transport.
//
// Messages are rendered as MIME with go-message: an HTML body, optional
// attachments and a Reply-To pointing at SupportEmail. Bcc recipients receive
// the message through the envelope only. STARTTLS, implicit TLS and plain
// connections are supported; PLAIN auth is used when Username is set.
//
// Basic usage:
//
//	cfg := smtp.Config{
//		Host:        "smtp.example.com",
//		Port:        587,
//		Username:    "mailer",
//		Password:    "secret",
//		TLSMode:     "starttls",
//		SenderEmail: "no-reply@example.com",
//	}
//
//	client, err := smtp.New(cfg)
//	if err != nil {
//		return err
//	}
//
//	err = client.SendEmail(ctx, email.Message{
//		To:       []string{"user@example.com"},
//		Subject:  "Welcome",
//		BodyHTML: "<h1>Welcome</h1>",
//	})
//
// Verify dials, authenticates and issues NOOP, which is enough to detect wrong
// credentials or an unreachable server at startup.
//
// Each call opens a new connection, so a Client is safe for concurrent use.
package smtp
