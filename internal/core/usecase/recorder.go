package usecase

import (
	"context"
	"log"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

// recorder fans lifecycle side effects out to the audit trail and the
// notification outbox. Both are best-effort: failures are logged and never
// surfaced to the request that produced them.
type recorder struct {
	audit  ports.AuditRepository
	outbox ports.NotificationOutbox
}

func (r recorder) record(ctx context.Context, event domain.AuditEvent) {
	if r.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := r.audit.Append(ctx, event); err != nil {
		log.Printf("append audit event action=%s: %v", event.Action, err)
	}
}

func (r recorder) notify(ctx context.Context, kind, message string) {
	if r.outbox == nil {
		return
	}
	event := domain.Notification{
		Kind:       kind,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.outbox.Enqueue(ctx, event); err != nil {
		log.Printf("enqueue notification kind=%s: %v", kind, err)
	}
}
