package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/appengine-ltd/bunker/internal/game"
	"github.com/appengine-ltd/bunker/internal/save"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bunker.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func sampleSnapshot() game.Snapshot {
	return game.Snapshot{
		Day:      9,
		Phase:    string(game.PhaseCityExploration),
		GameOver: true,
		Characters: []game.CharacterSnapshot{
			{Name: "Son", Hunger: 20, Thirst: 35, Sanity: 15, Health: 0},
			{Name: "Daughter", Hunger: 45, Thirst: 50, Sanity: 60, Health: 70, Injured: true},
		},
		Inventory:         []game.Slot{{ItemID: "batteries", Quantity: 1}, {ItemID: "medkit", Quantity: 2}},
		AngelMood:         string(game.MoodHostile),
		AngelProcessing:   42.5,
		AngelInteractions: 2,
		DilemmaDecided:    true,
		Quests: []game.QuestSnapshot{
			{ID: "water_filter", Description: "Find a filter", State: "failed"},
			{ID: "radio", Description: "Fix the radio", State: "active"},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()
	want := sampleSnapshot()
	if err := store.Save(ctx, save.DefaultSlot, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, save.DefaultSlot)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}
}

func TestSaveOverwritesSlot(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "slot1", sampleSnapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	next := sampleSnapshot()
	next.Day = 10
	next.Characters = next.Characters[:1]
	next.Inventory = []game.Slot{{ItemID: "water", Quantity: 1}}
	if err := store.Save(ctx, "slot1", next); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Load(ctx, "slot1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Day != 10 || len(got.Characters) != 1 || len(got.Inventory) != 1 || got.Inventory[0].ItemID != "water" {
		t.Fatalf("expected the second snapshot only, got %+v", got)
	}
}

func TestLoadAndDeleteMissingSlot(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()
	if _, err := store.Load(ctx, "nothing"); !errors.Is(err, save.ErrNoSave) {
		t.Fatalf("load err = %v, want ErrNoSave", err)
	}
	if err := store.Delete(ctx, "nothing"); !errors.Is(err, save.ErrNoSave) {
		t.Fatalf("delete err = %v, want ErrNoSave", err)
	}
}

func TestDeleteRemovesSlot(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "slot3", sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "slot3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "slot3"); !errors.Is(err, save.ErrNoSave) {
		t.Fatalf("load err = %v, want ErrNoSave", err)
	}
	var count int
	if err := store.sqlDB.QueryRow(`SELECT COUNT(*) FROM save_characters WHERE slot = ?`, "slot3").Scan(&count); err != nil {
		t.Fatalf("count characters: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected character rows removed, got %d", count)
	}
}

func TestReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	t.Parallel()

	store, path := openTempStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, "keep", sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Load(ctx, "keep"); err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	var applied int
	if err := reopened.sqlDB.QueryRow(`SELECT COUNT(*) FROM ` + migrationTable).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 3 {
		t.Fatalf("applied migrations = %d, want 3", applied)
	}
}

func TestExtractUp(t *testing.T) {
	t.Parallel()

	got := extractUp("-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n")
	if got != "\nCREATE TABLE a (id INT);\n" {
		t.Fatalf("extractUp = %q", got)
	}
	if extractUp("SELECT 1;") != "SELECT 1;" {
		t.Fatal("expected content without markers to pass through")
	}
}
