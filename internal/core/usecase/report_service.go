package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

type HealthCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// ReportService provides read-only aggregate views over the store. It never
// mutates and therefore never takes the writer mutex.
type ReportService struct {
	store ports.KeyStore
	now   func() time.Time
}

func NewReportService(store ports.KeyStore) *ReportService {
	return &ReportService{store: store, now: time.Now}
}

// RawWhitelist returns the auth keys of all active, unexpired records,
// newline-joined in sorted order.
func (s *ReportService) RawWhitelist(ctx context.Context) (string, error) {
	keys, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load keys: %w", err)
	}

	now := s.now()
	authKeys := make([]string, 0, len(keys))
	for _, rec := range keys {
		if rec.Status == domain.KeyStatusActive && !domain.IsExpired(rec, now) {
			authKeys = append(authKeys, rec.AuthKey)
		}
	}
	sort.Strings(authKeys)
	return strings.Join(authKeys, "\n"), nil
}

func (s *ReportService) Health(ctx context.Context) (HealthCounts, error) {
	keys, err := s.store.Load(ctx)
	if err != nil {
		return HealthCounts{}, fmt.Errorf("load keys: %w", err)
	}

	now := s.now()
	counts := HealthCounts{Total: len(keys)}
	for _, rec := range keys {
		if rec.Status == domain.KeyStatusActive && !domain.IsExpired(rec, now) {
			counts.Active++
		}
	}
	return counts, nil
}
