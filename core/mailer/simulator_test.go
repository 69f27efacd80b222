package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/core/mailer"
)

func TestSentinelSimulator(t *testing.T) {
	t.Parallel()

	sim := mailer.DefaultSentinels()

	plain := email.Message{To: []string{"user@example.com"}}
	assert.NoError(t, sim.SendFailure(plain))
	assert.NoError(t, sim.PersistFailure(plain))

	sendErr := email.Message{To: []string{"user@example.com"}, Cc: []string{"SMTP-SENDING-ERROR@test.com"}}
	assert.ErrorIs(t, sim.SendFailure(sendErr), mailer.ErrSimulatedSend)
	assert.NoError(t, sim.PersistFailure(sendErr))

	saveErr := email.Message{To: []string{" smtp-save-failed-error@test.com "}}
	assert.ErrorIs(t, sim.SendFailure(saveErr), mailer.ErrSimulatedSend)
	assert.ErrorIs(t, sim.PersistFailure(saveErr), mailer.ErrSimulatedPersist)

	var empty mailer.SentinelSimulator
	assert.NoError(t, empty.SendFailure(email.Message{To: []string{""}}))
}

func TestNoSimulation(t *testing.T) {
	t.Parallel()

	msg := email.Message{To: []string{"smtp-save-failed-error@test.com"}}
	assert.NoError(t, mailer.NoSimulation.SendFailure(msg))
	assert.NoError(t, mailer.NoSimulation.PersistFailure(msg))
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sending", mailer.Sending.String())
	assert.Equal(t, "delivered", mailer.Delivered.String())
	assert.Equal(t, "failed", mailer.Failed.String())
	assert.Equal(t, "persisting", mailer.Persisting.String())
	assert.Equal(t, "saved", mailer.Saved.String())
	assert.Equal(t, "persist_failed", mailer.PersistFailed.String())
	assert.Equal(t, "unknown", mailer.State(42).String())
	assert.False(t, mailer.Result{State: mailer.Saved}.Delivered())
}
