package notification

import (
	"context"
	"log/slog"
	"sync"

	"accounts/internal/domain/service"

	"github.com/pkg/errors"
)

var (
	// ErrQueueFull is returned when the background queue cannot take another notification.
	ErrQueueFull = errors.New("notification queue is full")

	// ErrQueueClosed is returned after the queue has been shut down.
	ErrQueueClosed = errors.New("notification queue is closed")
)

type queuedNotification struct {
	ctx          context.Context
	notification *service.Notification
}

// AsyncNotifier hands notifications to a single background worker through a buffered channel.
type AsyncNotifier struct {
	next   service.Notifier
	queue  chan queuedNotification
	done   chan struct{}
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier starts the worker draining into next.
func NewAsyncNotifier(next service.Notifier, size int, logger *slog.Logger) *AsyncNotifier {
	n := &AsyncNotifier{
		next:   next,
		queue:  make(chan queuedNotification, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go n.run()

	return n
}

// Notify enqueues without blocking. The request context's values survive, its cancellation does not.
func (n *AsyncNotifier) Notify(ctx context.Context, notification *service.Notification) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return ErrQueueClosed
	}

	select {
	case n.queue <- queuedNotification{ctx: context.WithoutCancel(ctx), notification: notification}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for the queue to drain or ctx to end.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "notification queue not drained")
	}
}

func (n *AsyncNotifier) run() {
	defer close(n.done)

	for item := range n.queue {
		if err := n.next.Notify(item.ctx, item.notification); err != nil {
			n.logger.Error("Background notification failed",
				slog.String("template", string(item.notification.Template)),
				slog.Any("error", err),
			)
		}
	}
}
