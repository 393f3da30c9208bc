package events

import (
	"context"
	"log"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

// LogPublisher consumes notifications when no webhook is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.Notification) error {
	log.Printf("notify event_id=%s kind=%s message=%q", event.EventID, event.Kind, event.Message)
	return nil
}
