package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sandevgo/rolecast/internal/core"
)

// FileStore keeps one JSON file per conversation id under dir. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// half-updated record.
type FileStore struct {
	dir     string
	persona string
}

func NewFileStore(dir, persona string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	return &FileStore{dir: dir, persona: persona}, nil
}

// path hashes the id so arbitrary conversation keys cannot escape the dir
// or collide with filesystem limits.
func (s *FileStore) path(id string) string {
	sum := sha256.Sum256([]byte(id))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (core.MemoryRecord, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		rec := NewRecord(s.persona)
		if err := s.write(id, rec); err != nil {
			return core.MemoryRecord{}, err
		}
		return rec, nil
	}
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("read record: %w", err)
	}

	var rec core.MemoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return core.MemoryRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func (s *FileStore) Update(ctx context.Context, id string, rec core.MemoryRecord) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.write(id, merge(existing, rec))
}

func (s *FileStore) write(id string, rec core.MemoryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	path := s.path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
