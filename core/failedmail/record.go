package failedmail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrymomot/notifykit/core/email"
)

// AddressList is a list of addresses that decodes from either a single JSON
// string or an array of strings. It always encodes as an array.
type AddressList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *AddressList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if single == "" {
			*l = nil
			return nil
		}
		*l = AddressList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("address list must be a string or an array of strings: %w", err)
	}
	*l = many
	return nil
}

// AttachmentRecord describes one persisted attachment file.
type AttachmentRecord struct {
	// Filename is the sanitized basename used on disk.
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	ContentType string `json:"contentType,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
}

// Record is one stored failed delivery.
type Record struct {
	ID          string             `json:"id"`
	From        string             `json:"from"`
	To          AddressList        `json:"to"`
	Cc          AddressList        `json:"cc,omitempty"`
	Bcc         AddressList        `json:"bcc,omitempty"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []AttachmentRecord `json:"attachments"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Draft is a record before it is stored. ID is optional: when empty the store
// generates one. Callers that persist attachments first reserve an ID with
// Store.NewID so the attachment directory and the record share it.
type Draft struct {
	ID          string
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	HTML        string
	Attachments []AttachmentRecord
}

// DraftFromMessage copies the message envelope and body into a draft.
// Attachments are not copied; they must be persisted by an AttachmentStore.
func DraftFromMessage(id string, msg email.Message) Draft {
	return Draft{
		ID:      id,
		From:    msg.From,
		To:      slices.Clone(msg.To),
		Cc:      slices.Clone(msg.Cc),
		Bcc:     slices.Clone(msg.Bcc),
		Subject: msg.Subject,
		HTML:    msg.BodyHTML,
	}
}

// Message rebuilds an outbound message from the record.
// Attachments are read from their persisted paths.
func (r Record) Message() email.Message {
	msg := email.Message{
		From:     r.From,
		To:       slices.Clone([]string(r.To)),
		Cc:       slices.Clone([]string(r.Cc)),
		Bcc:      slices.Clone([]string(r.Bcc)),
		Subject:  r.Subject,
		BodyHTML: r.HTML,
	}
	for _, a := range r.Attachments {
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Source:      email.PathSource{Path: a.Path},
		})
	}
	return msg
}

func (r Record) clone() Record {
	r.To = slices.Clone(r.To)
	r.Cc = slices.Clone(r.Cc)
	r.Bcc = slices.Clone(r.Bcc)
	r.Attachments = slices.Clone(r.Attachments)
	return r
}

func (d Draft) validate() error {
	if len(d.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidRecord)
	}
	return nil
}

// document is the on-disk shape of the store file.
type document struct {
	FailedEmails []Record `json:"failedEmails"`
}
