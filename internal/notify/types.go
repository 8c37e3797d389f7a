// Package notify delivers reminder notifications to the registered senders.
package notify

import (
	"context"
	"time"
)

// Notification is one message handed to senders.
type Notification struct {
	Title string
	Body  string
	// Tag groups notifications of the same kind, e.g. "lovejourney".
	Tag       string
	Timestamp time.Time
}

// Sender delivers a notification to one channel.
type Sender interface {
	// Send delivers n. Errors are logged by the dispatcher, never returned to
	// the caller of Notify.
	Send(ctx context.Context, n *Notification) error

	// Name returns the sender's name for logging purposes.
	Name() string
}

// Notifier is what reminder evaluation depends on.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// DefaultTag is attached to every notification the dispatcher builds.
const DefaultTag = "lovejourney"
