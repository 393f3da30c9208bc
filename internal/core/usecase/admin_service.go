package usecase

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

// keySetSchema guards admin replace payloads: an object keyed by product key,
// each value a KeyRecord shape with authKey and status at minimum.
const keySetSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["authKey", "status"],
		"properties": {
			"authKey": {"type": "string", "minLength": 1},
			"status": {"enum": ["active", "expired"]},
			"activatedAt": {"type": ["integer", "null"]},
			"durationDays": {"type": "integer"},
			"expiresAt": {"type": "integer"},
			"lastSeen": {"type": "integer"},
			"lastIp": {"type": "string"},
			"discord": {"type": ["string", "null"]}
		}
	}
}`

// AdminService is the authority-gated bulk read/replace path. It bypasses the
// lifecycle engine and operates on raw store contents.
type AdminService struct {
	store    ports.KeyStore
	secret   string
	mu       *sync.Mutex
	schema   *santhosh.Schema
	recorder recorder
}

func NewAdminService(store ports.KeyStore, secret string, mu *sync.Mutex, audit ports.AuditRepository, outbox ports.NotificationOutbox) (*AdminService, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("keyset.json", bytes.NewReader([]byte(keySetSchema))); err != nil {
		return nil, fmt.Errorf("add keyset schema: %w", err)
	}
	schema, err := compiler.Compile("keyset.json")
	if err != nil {
		return nil, fmt.Errorf("compile keyset schema: %w", err)
	}
	return &AdminService{
		store:    store,
		secret:   secret,
		mu:       mu,
		schema:   schema,
		recorder: recorder{audit: audit, outbox: outbox},
	}, nil
}

// Replace overwrites the entire store with payload. No merge: entries absent
// from payload are gone after a successful replace. Returns the number of
// entries now present.
func (s *AdminService) Replace(ctx context.Context, secret string, payload json.RawMessage) (int, error) {
	if err := s.authorize(secret); err != nil {
		return 0, err
	}
	keys, err := s.decode(payload)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, keys); err != nil {
		return 0, fmt.Errorf("save keys: %w", err)
	}
	s.recorder.record(ctx, domain.AuditEvent{Action: "store.replaced", Actor: "admin", Detail: fmt.Sprintf("%d entries", len(keys))})
	s.recorder.notify(ctx, "store.replaced", fmt.Sprintf("key store replaced with %d entries", len(keys)))
	return len(keys), nil
}

// Fetch returns the full current store.
func (s *AdminService) Fetch(ctx context.Context, secret string) (domain.KeySet, error) {
	if err := s.authorize(secret); err != nil {
		return nil, err
	}
	keys, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	return keys, nil
}

// AuditLog returns recent audit events, newest first.
func (s *AdminService) AuditLog(ctx context.Context, secret string, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	if err := s.authorize(secret); err != nil {
		return nil, err
	}
	if s.recorder.audit == nil {
		return []domain.AuditEvent{}, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.recorder.audit.List(ctx, filter)
}

// authorize compares in constant time. An unset configured secret refuses
// everything rather than letting the empty string through.
func (s *AdminService) authorize(secret string) error {
	if s.secret == "" {
		return domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *AdminService) decode(payload json.RawMessage) (domain.KeySet, error) {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: not valid json", domain.ErrBadPayload)
	}
	if err := s.schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadPayload, err)
	}
	var keys domain.KeySet
	if err := json.Unmarshal(payload, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadPayload, err)
	}
	if keys == nil {
		keys = domain.KeySet{}
	}
	return keys, nil
}
