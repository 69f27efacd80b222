package mailer

// State is a step of a single delivery attempt.
//
//	Sending -> Delivered
//	Sending -> Failed [-> Persisting -> Saved | PersistFailed]
type State int

const (
	Sending State = iota
	Delivered
	Failed
	Persisting
	Saved
	PersistFailed
)

func (s State) String() string {
	switch s {
	case Sending:
		return "sending"
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	case Persisting:
		return "persisting"
	case Saved:
		return "saved"
	case PersistFailed:
		return "persist_failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of Mailer.Send.
// Err is the delivery error. PersistErr is set only in the PersistFailed state.
// RecordID is set only in the Saved state.
type Result struct {
	State      State
	RecordID   string
	Err        error
	PersistErr error
}

// Delivered reports whether the message reached the transport.
// Saving a failed message does not count as delivery.
func (r Result) Delivered() bool {
	return r.State == Delivered
}
