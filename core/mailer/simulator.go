package mailer

import (
	"strings"

	"github.com/dmitrymomot/notifykit/core/email"
)

// FailureSimulator injects failures so the fallback path can be exercised
// without a broken transport or filesystem.
type FailureSimulator interface {
	// SendFailure returns a non-nil error to fail the send before the transport is called.
	SendFailure(msg email.Message) error
	// PersistFailure returns a non-nil error to fail persistence before anything is written.
	PersistFailure(msg email.Message) error
}

type noSimulation struct{}

func (noSimulation) SendFailure(email.Message) error    { return nil }
func (noSimulation) PersistFailure(email.Message) error { return nil }

// NoSimulation never injects failures. It is the Mailer default.
var NoSimulation FailureSimulator = noSimulation{}

// SentinelSimulator fails messages addressed to designated recipients.
// A message to SendErrorAddress fails to send. A message to SaveErrorAddress fails
// to send and then fails to persist. Matching is case-insensitive over To, Cc and Bcc.
type SentinelSimulator struct {
	SendErrorAddress string
	SaveErrorAddress string
}

// DefaultSentinels returns the simulator with the conventional test addresses.
func DefaultSentinels() SentinelSimulator {
	return SentinelSimulator{
		SendErrorAddress: "smtp-sending-error@test.com",
		SaveErrorAddress: "smtp-save-failed-error@test.com",
	}
}

// SendFailure implements FailureSimulator.
func (s SentinelSimulator) SendFailure(msg email.Message) error {
	if addressedTo(msg, s.SendErrorAddress) || addressedTo(msg, s.SaveErrorAddress) {
		return ErrSimulatedSend
	}
	return nil
}

// PersistFailure implements FailureSimulator.
func (s SentinelSimulator) PersistFailure(msg email.Message) error {
	if addressedTo(msg, s.SaveErrorAddress) {
		return ErrSimulatedPersist
	}
	return nil
}

func addressedTo(msg email.Message, addr string) bool {
	if addr == "" {
		return false
	}
	for _, r := range msg.Recipients() {
		if strings.EqualFold(strings.TrimSpace(r), addr) {
			return true
		}
	}
	return false
}
