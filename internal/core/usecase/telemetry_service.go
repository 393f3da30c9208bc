package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

var ErrTelemetryMismatch = errors.New("telemetry id mismatch")

// TelemetryService accepts client pings. When a telemetry id is configured,
// mismatched pings are rejected; with no id configured everything passes.
type TelemetryService struct {
	telemetryID string
	recorder    recorder
}

func NewTelemetryService(telemetryID string, outbox ports.NotificationOutbox) *TelemetryService {
	return &TelemetryService{
		telemetryID: telemetryID,
		recorder:    recorder{outbox: outbox},
	}
}

func (s *TelemetryService) Record(ctx context.Context, telemetryID, machoKey, ip string) error {
	if s.telemetryID != "" && telemetryID != s.telemetryID {
		return ErrTelemetryMismatch
	}
	if ip == "" {
		ip = "unknown"
	}
	s.recorder.notify(ctx, "telemetry.ping", fmt.Sprintf("telemetry ping macho_key=%s ip=%s", machoKey, ip))
	return nil
}
