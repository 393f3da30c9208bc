package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

func TestLoadMissingFileReturnsEmptySet(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "keys.json"))

	keys, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if keys == nil || len(keys) != 0 {
		t.Fatalf("expected empty set, got %v", keys)
	}
}

func TestLoadCorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	store := NewStore(path)

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected decode error for corrupt file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keys.json")
	store := NewStore(path)

	activated := int64(1700000000000)
	discord := "user#1"
	want := domain.KeySet{
		"prod-1": {
			AuthKey:      "AUTH-1",
			Status:       domain.KeyStatusActive,
			ActivatedAt:  &activated,
			DurationDays: 30,
			ExpiresAt:    1700100000000,
			LastSeen:     1700050000000,
			LastIP:       "10.0.0.1",
			Discord:      &discord,
		},
		"prod-2": {
			AuthKey: "AUTH-2",
			Status:  domain.KeyStatusExpired,
		},
	}

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	rec := got["prod-1"]
	if rec.AuthKey != "AUTH-1" || rec.ExpiresAt != 1700100000000 || rec.LastIP != "10.0.0.1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.ActivatedAt == nil || *rec.ActivatedAt != activated {
		t.Fatalf("activatedAt lost: %v", rec.ActivatedAt)
	}
	if rec.Discord == nil || *rec.Discord != discord {
		t.Fatalf("discord lost: %v", rec.Discord)
	}
	if got["prod-2"].ActivatedAt != nil {
		t.Fatalf("never-activated record grew an activation: %v", got["prod-2"].ActivatedAt)
	}
}

func TestSaveOverwritesFully(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "keys.json"))

	if err := store.Save(ctx, domain.KeySet{"a": {AuthKey: "A", Status: domain.KeyStatusActive}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(ctx, domain.KeySet{"b": {AuthKey: "B", Status: domain.KeyStatusActive}}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	keys, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 record after overwrite, got %d", len(keys))
	}
	if _, ok := keys["a"]; ok {
		t.Fatal("prior entry survived a full overwrite")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "keys.json"))

	if err := store.Save(context.Background(), domain.KeySet{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "keys.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}
