package usecase

import (
	"context"
	"log"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

// FailOpenStore wraps a KeyStore with the fail-open availability policy: an
// unreadable store is treated as empty and a failed write is logged without
// failing the caller. Callers must not assume a prior write succeeded.
type FailOpenStore struct {
	inner ports.KeyStore
}

func NewFailOpenStore(inner ports.KeyStore) *FailOpenStore {
	return &FailOpenStore{inner: inner}
}

func (s *FailOpenStore) Load(ctx context.Context) (domain.KeySet, error) {
	keys, err := s.inner.Load(ctx)
	if err != nil {
		log.Printf("load key store: %v (continuing with empty set)", err)
		return domain.KeySet{}, nil
	}
	if keys == nil {
		keys = domain.KeySet{}
	}
	return keys, nil
}

func (s *FailOpenStore) Save(ctx context.Context, keys domain.KeySet) error {
	if err := s.inner.Save(ctx, keys); err != nil {
		log.Printf("save key store: %v (result not persisted)", err)
	}
	return nil
}
