package domain

import "time"

// Notification is an outbound event destined for the configured webhook.
// Delivery is best-effort and never blocks the request that produced it.
type Notification struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OutboxNotification is a Notification queued for dispatch, with delivery
// bookkeeping.
type OutboxNotification struct {
	ID            int64
	Notification  Notification
	Status        string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DispatchedAt  *time.Time
}

type AuditEvent struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	ProductKey string    `json:"product_key"`
	Actor      string    `json:"actor"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AuditFilter struct {
	Action  string
	AfterID int64
	Limit   int
}
