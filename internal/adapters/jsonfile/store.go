package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

// Store persists the key set as a single JSON object keyed by product key.
// A missing file materializes as an empty set on first load. Writes go
// through a temp file in the same directory followed by a rename, so readers
// never observe a partially written store.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(_ context.Context) (domain.KeySet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.KeySet{}, nil
		}
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var keys domain.KeySet
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decode key file: %w", err)
	}
	if keys == nil {
		keys = domain.KeySet{}
	}
	return keys, nil
}

func (s *Store) Save(_ context.Context, keys domain.KeySet) error {
	if keys == nil {
		keys = domain.KeySet{}
	}
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp key file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp key file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace key file: %w", err)
	}
	return nil
}
