// Package save persists game snapshots into named slots.
package save

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/appengine-ltd/bunker/internal/game"
)

const DefaultSlot = "autosave"

// ErrNoSave is returned when a slot holds no snapshot.
var ErrNoSave = errors.New("no save in slot")

type Store interface {
	Load(ctx context.Context, slot string) (game.Snapshot, error)
	Save(ctx context.Context, slot string, snap game.Snapshot) error
	Delete(ctx context.Context, slot string) error
}

var slotPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// ValidateSlot keeps slot names safe to use as file names.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("invalid save slot %q", slot)
	}
	return nil
}
