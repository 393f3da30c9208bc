package ports

import (
	"context"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

type AuditRepository interface {
	Append(ctx context.Context, event domain.AuditEvent) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error)
}
