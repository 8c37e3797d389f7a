package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rcliao/lovejourney/internal/clock"
)

// DefaultSendTimeout bounds a single sender call.
const DefaultSendTimeout = 30 * time.Second

// Dispatcher routes notifications to registered senders.
type Dispatcher struct {
	senders []Sender
	mu      sync.RWMutex
	async   bool
	timeout time.Duration
	log     *slog.Logger
	clock   clock.Clock
	wg      sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a new notification dispatcher.
// If async is true, notifications are sent in goroutines. clk stamps each
// notification; nil means the system clock.
func NewDispatcher(async bool, clk clock.Clock, log *slog.Logger) *Dispatcher {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		senders: make([]Sender, 0),
		async:   async,
		timeout: DefaultSendTimeout,
		log:     log.With("component", "notify"),
		clock:   clk,
	}
}

// SetTimeout changes the per-send timeout.
func (d *Dispatcher) SetTimeout(t time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = t
}

// Register adds a sender to the dispatcher.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
}

// Notify builds a notification and dispatches it. It never fails.
func (d *Dispatcher) Notify(ctx context.Context, title, body string) {
	d.Dispatch(ctx, &Notification{
		Title:     title,
		Body:      body,
		Tag:       DefaultTag,
		Timestamp: d.clock.Now(),
	})
}

// Dispatch sends n to all registered senders.
func (d *Dispatcher) Dispatch(ctx context.Context, n *Notification) {
	d.mu.RLock()
	senders := make([]Sender, len(d.senders))
	copy(senders, d.senders)
	timeout := d.timeout
	d.mu.RUnlock()

	if len(senders) == 0 {
		d.log.Debug("no senders registered", "title", n.Title)
		return
	}

	for _, sender := range senders {
		if d.async {
			d.wg.Add(1)
			go func(s Sender) {
				defer d.wg.Done()
				d.sendWithRecover(ctx, s, n, timeout)
			}(sender)
		} else {
			d.sendWithRecover(ctx, sender, n, timeout)
		}
	}
}

// Wait blocks until every async send started so far has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) sendWithRecover(ctx context.Context, sender Sender, n *Notification, timeout time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic in sender", "sender", sender.Name(), "panic", r)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sender.Send(sendCtx, n); err != nil {
		d.log.Warn("send failed", "sender", sender.Name(), "title", n.Title, "err", err)
	}
}

// HasSenders returns true if any senders are registered.
func (d *Dispatcher) HasSenders() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.senders) > 0
}

// Senders returns a copy of the registered senders.
func (d *Dispatcher) Senders() []Sender {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Sender, len(d.senders))
	copy(result, d.senders)
	return result
}
