package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/appengine-ltd/bunker/internal/game"
)

// JSONStore keeps one JSON file per slot under Dir.
type JSONStore struct {
	Dir string
}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{Dir: dir}
}

func (s *JSONStore) path(slot string) string {
	return filepath.Join(s.Dir, slot+".json")
}

func (s *JSONStore) Load(ctx context.Context, slot string) (game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return game.Snapshot{}, err
	}
	if err := ValidateSlot(slot); err != nil {
		return game.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return game.Snapshot{}, ErrNoSave
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load save: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("parse save %s: %w", slot, err)
	}
	return snap, nil
}

// Save replaces the slot through a temp file and a rename.
func (s *JSONStore) Save(ctx context.Context, slot string, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(slot)); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}

	cleanup = false
	return nil
}

func (s *JSONStore) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	err := os.Remove(s.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoSave
	}
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

var _ Store = &JSONStore{}
