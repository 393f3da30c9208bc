package ports

import (
	"context"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

// KeyStore is the sole source of truth for key records. Load returns the
// full store contents; Save overwrites them entirely (no merge).
type KeyStore interface {
	Load(ctx context.Context) (domain.KeySet, error)
	Save(ctx context.Context, keys domain.KeySet) error
}
