package ports

import (
	"context"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

// NotificationPublisher delivers one notification to its destination.
// A non-nil error lets the dispatcher apply its retry policy.
type NotificationPublisher interface {
	Publish(ctx context.Context, event domain.Notification) error
}

// NotificationOutbox queues notifications for asynchronous delivery.
type NotificationOutbox interface {
	Enqueue(ctx context.Context, event domain.Notification) error
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxNotification, error)
	MarkDispatched(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, attempts int, nextAttemptAt string, errMsg string) error
	MarkDead(ctx context.Context, id int64, attempts int, errMsg string) error
}
