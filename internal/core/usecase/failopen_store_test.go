package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

func TestFailOpenLoadErrorYieldsEmptySet(t *testing.T) {
	inner := &memStore{loadErr: errors.New("disk gone")}
	store := NewFailOpenStore(inner)

	keys, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("fail-open load must not error: %v", err)
	}
	if keys == nil || len(keys) != 0 {
		t.Fatalf("expected empty set, got %v", keys)
	}
}

func TestFailOpenSaveErrorIsSwallowed(t *testing.T) {
	inner := &memStore{saveErr: errors.New("disk full")}
	store := NewFailOpenStore(inner)

	if err := store.Save(context.Background(), domain.KeySet{}); err != nil {
		t.Fatalf("fail-open save must not error: %v", err)
	}
}

func TestFailOpenPassesThroughOnSuccess(t *testing.T) {
	inner := &memStore{keys: domain.KeySet{"p": {AuthKey: "A", Status: domain.KeyStatusActive}}}
	store := NewFailOpenStore(inner)

	keys, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if keys["p"].AuthKey != "A" {
		t.Fatalf("unexpected load result: %v", keys)
	}

	if err := store.Save(context.Background(), domain.KeySet{"q": {AuthKey: "B", Status: domain.KeyStatusActive}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if inner.keys["q"].AuthKey != "B" {
		t.Fatalf("save did not reach inner store: %v", inner.keys)
	}
}
