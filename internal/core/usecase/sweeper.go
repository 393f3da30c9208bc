package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
)

// ExpirySweeper is an optional maintenance loop that proactively flips
// records past their expiry to expired. The lifecycle contract does not
// depend on it; lazy detection on the authenticate path remains the default
// and the sweeper stays disabled unless given a positive interval.
type ExpirySweeper struct {
	store    ports.KeyStore
	mu       *sync.Mutex
	interval time.Duration
	now      func() time.Time
	recorder recorder

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExpirySweeper(store ports.KeyStore, mu *sync.Mutex, interval time.Duration, audit ports.AuditRepository) *ExpirySweeper {
	return &ExpirySweeper{
		store:    store,
		mu:       mu,
		interval: interval,
		now:      time.Now,
		recorder: recorder{audit: audit},
	}
}

func (s *ExpirySweeper) Start(parent context.Context) {
	if s.interval <= 0 {
		return
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *ExpirySweeper) Close() error {
	s.runMu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.runMu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *ExpirySweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if swept, err := s.Sweep(ctx); err != nil {
			log.Printf("expiry sweep error: %v", err)
		} else if swept > 0 {
			log.Printf("expiry sweep flipped %d keys", swept)
		}
	}
}

// Sweep flips every active record past its expiry and persists once. Returns
// the number of records flipped.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load keys: %w", err)
	}

	now := s.now()
	swept := 0
	for id, rec := range keys {
		if rec.Status != domain.KeyStatusActive || !domain.IsExpired(rec, now) {
			continue
		}
		rec.Status = domain.KeyStatusExpired
		keys[id] = rec
		s.recorder.record(ctx, domain.AuditEvent{Action: "key.expired", ProductKey: id, Actor: "sweep"})
		swept++
	}
	if swept == 0 {
		return 0, nil
	}

	if err := s.store.Save(ctx, keys); err != nil {
		return 0, fmt.Errorf("save keys: %w", err)
	}
	return swept, nil
}
