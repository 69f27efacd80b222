package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// EmailSender delivers a message through a concrete provider.
type EmailSender interface {
	SendEmail(ctx context.Context, msg Message) error
}

// Verifier checks that a provider is reachable and accepts our credentials.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Transport is a provider that can both send and verify.
type Transport interface {
	EmailSender
	Verifier
}

// Message is an outbound HTML email.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	BodyHTML    string
	Tag         string
	Attachments []Attachment
}

// Recipients returns To, Cc and Bcc addresses in that order.
func (m Message) Recipients() []string {
	all := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	all = append(all, m.To...)
	all = append(all, m.Cc...)
	all = append(all, m.Bcc...)
	return all
}

// Validate checks the message has at least one valid recipient and a subject.
// The body may be empty; From is optional because senders fall back to their
// configured address.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidParams)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if m.From != "" && !IsValidAddress(m.From) {
		return fmt.Errorf("%w: invalid sender address %q", ErrInvalidParams, m.From)
	}
	for _, addr := range m.Recipients() {
		if !IsValidAddress(addr) {
			return fmt.Errorf("%w: invalid recipient address %q", ErrInvalidParams, addr)
		}
	}
	return nil
}

// emailRegex is a simple regex for validating email addresses.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress checks if the provided string is a valid email address.
func IsValidAddress(addr string) bool {
	return emailRegex.MatchString(addr)
}
