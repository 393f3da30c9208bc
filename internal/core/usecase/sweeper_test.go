package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

func TestSweepFlipsOnlyExpiredActiveRecords(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	activated := now.Add(-48 * time.Hour).UnixMilli()
	store := &memStore{keys: domain.KeySet{
		"past":     {AuthKey: "P", Status: domain.KeyStatusActive, ActivatedAt: &activated, ExpiresAt: now.Add(-time.Hour).UnixMilli()},
		"future":   {AuthKey: "F", Status: domain.KeyStatusActive, ActivatedAt: &activated, ExpiresAt: now.Add(time.Hour).UnixMilli()},
		"lifetime": {AuthKey: "L", Status: domain.KeyStatusActive, ActivatedAt: &activated, DurationDays: domain.LifetimeDurationDays, ExpiresAt: 1},
		"dormant":  {AuthKey: "D", Status: domain.KeyStatusActive, ExpiresAt: 1},
	}}
	sweeper := NewExpirySweeper(store, &sync.Mutex{}, time.Minute, nil)
	sweeper.now = func() time.Time { return now }

	swept, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
	if store.keys["past"].Status != domain.KeyStatusExpired {
		t.Fatalf("past record not flipped: %q", store.keys["past"].Status)
	}
	for _, id := range []string{"future", "lifetime", "dormant"} {
		if store.keys[id].Status != domain.KeyStatusActive {
			t.Fatalf("%s flipped unexpectedly", id)
		}
	}
}

func TestSweepNoChangesSkipsSave(t *testing.T) {
	now := time.Now().UTC()
	activated := now.UnixMilli()
	store := &memStore{keys: domain.KeySet{
		"future": {AuthKey: "F", Status: domain.KeyStatusActive, ActivatedAt: &activated, ExpiresAt: now.Add(time.Hour).UnixMilli()},
	}}
	sweeper := NewExpirySweeper(store, &sync.Mutex{}, time.Minute, nil)

	swept, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 0 {
		t.Fatalf("swept = %d, want 0", swept)
	}
	if store.saves != 0 {
		t.Fatalf("no-op sweep must not persist, saves=%d", store.saves)
	}
}

func TestSweeperDisabledIntervalNeverStarts(t *testing.T) {
	sweeper := NewExpirySweeper(&memStore{}, &sync.Mutex{}, 0, nil)
	sweeper.Start(context.Background())
	if err := sweeper.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
