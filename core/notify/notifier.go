package notify

import (
	"context"
)

// Notifier forwards formatted text to an operator channel.
// Implementations are best-effort: they never return errors and log their own failures.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, text string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, text string) {
	f(ctx, text)
}

// Nop discards every notification.
var Nop Notifier = NotifierFunc(func(context.Context, string) {})

type multi []Notifier

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(ctx context.Context, text string) {
	for _, n := range m {
		n.Notify(ctx, text)
	}
}
