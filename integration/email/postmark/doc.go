// Package postmark implements email.Transport on top of the Postmark
// transactional API.
//
// To, Cc and Bcc are sent as comma separated lists, attachments are base64
// encoded, and Reply-To is set to SupportEmail when configured. Opens and HTML
// link clicks are tracked.
//
//	client, err := postmark.New(postmark.Config{
//		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:          "no-reply@example.com",
//	})
//	if err != nil {
//		return err
//	}
//	if err := client.Verify(ctx); err != nil {
//		// token rejected or API unreachable
//	}
//
// API failures and non-zero Postmark error codes are joined with
// email.ErrFailedToSendEmail.
package postmark
