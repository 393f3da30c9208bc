package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

const expiresAtDisplayFormat = "2006-01-02T15:04:05.000Z"

// LifetimeDisplay is returned in place of a timestamp for lifetime keys.
const LifetimeDisplay = "lifetime"

type AuthResult struct {
	ExpiresAt    string
	DurationDays int64
	Discord      *string
}

type HeartbeatResult struct {
	ExtendedByHours int
}

// LifecycleService governs the key state machine: activation lookup on the
// authenticate path (where expiry is lazily detected and made sticky) and
// heartbeat extension. All mutations serialize through the shared mutex so
// concurrent requests cannot lose each other's full-store writes.
type LifecycleService struct {
	store    ports.KeyStore
	mu       *sync.Mutex
	window   time.Duration
	now      func() time.Time
	recorder recorder
}

func NewLifecycleService(store ports.KeyStore, mu *sync.Mutex, window time.Duration, audit ports.AuditRepository, outbox ports.NotificationOutbox) *LifecycleService {
	if window <= 0 {
		window = 12 * time.Hour
	}
	return &LifecycleService{
		store:    store,
		mu:       mu,
		window:   window,
		now:      time.Now,
		recorder: recorder{audit: audit, outbox: outbox},
	}
}

// Authenticate resolves presentedKey against the store. A record already past
// its expiry is flipped to expired, persisted, and reported as ErrKeyExpired;
// the flip never reverts. No match (or a non-active match) is ErrKeyNotFound.
func (s *LifecycleService) Authenticate(ctx context.Context, presentedKey string) (AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.store.Load(ctx)
	if err != nil {
		return AuthResult{}, fmt.Errorf("load keys: %w", err)
	}

	id, rec, ok := findActive(keys, presentedKey)
	if !ok {
		return AuthResult{}, domain.ErrKeyNotFound
	}

	now := s.now()
	if domain.IsExpired(rec, now) {
		rec.Status = domain.KeyStatusExpired
		keys[id] = rec
		if err := s.store.Save(ctx, keys); err != nil {
			return AuthResult{}, fmt.Errorf("save keys: %w", err)
		}
		s.recorder.record(ctx, domain.AuditEvent{Action: "key.expired", ProductKey: id, Actor: "auth"})
		s.recorder.notify(ctx, "key.expired", fmt.Sprintf("key %s expired", id))
		return AuthResult{}, domain.ErrKeyExpired
	}

	return AuthResult{
		ExpiresAt:    expiryDisplay(rec),
		DurationDays: rec.DurationDays,
		Discord:      rec.Discord,
	}, nil
}

// Heartbeat extends a non-lifetime record by the configured window, always
// pushing strictly forward from now and never backward from a future expiry.
// Expiry is deliberately not checked here; only the authenticate path
// transitions status.
func (s *LifecycleService) Heartbeat(ctx context.Context, presentedKey, ip string) (HeartbeatResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.store.Load(ctx)
	if err != nil {
		return HeartbeatResult{}, fmt.Errorf("load keys: %w", err)
	}

	id, rec, ok := findActive(keys, presentedKey)
	if !ok {
		return HeartbeatResult{}, domain.ErrKeyNotFound
	}

	result := HeartbeatResult{ExtendedByHours: int(s.window.Hours())}
	if rec.Lifetime() {
		return result, nil
	}

	nowMs := s.now().UnixMilli()
	base := rec.ExpiresAt
	if base < nowMs {
		base = nowMs
	}
	rec.ExpiresAt = base + s.window.Milliseconds()
	rec.LastSeen = nowMs
	if ip == "" {
		ip = "unknown"
	}
	rec.LastIP = ip
	keys[id] = rec

	if err := s.store.Save(ctx, keys); err != nil {
		return HeartbeatResult{}, fmt.Errorf("save keys: %w", err)
	}
	s.recorder.record(ctx, domain.AuditEvent{Action: "key.heartbeat", ProductKey: id, Actor: ip})
	return result, nil
}

// findActive scans for a record whose auth key matches exactly and whose
// status is active. First match wins; order is undefined across duplicates.
func findActive(keys domain.KeySet, presentedKey string) (string, domain.KeyRecord, bool) {
	for id, rec := range keys {
		if rec.AuthKey == presentedKey && rec.Status == domain.KeyStatusActive {
			return id, rec, true
		}
	}
	return "", domain.KeyRecord{}, false
}

func expiryDisplay(rec domain.KeyRecord) string {
	if rec.Lifetime() {
		return LifetimeDisplay
	}
	return time.UnixMilli(rec.ExpiresAt).UTC().Format(expiresAtDisplayFormat)
}
