// Package sqlite provides a SQLite-backed save store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/appengine-ltd/bunker/internal/game"
	"github.com/appengine-ltd/bunker/internal/save"
	"github.com/appengine-ltd/bunker/internal/save/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store keeps every slot as one row in saves plus child rows for the
// roster, stock and quests.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite save store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Save(ctx context.Context, slot string, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := save.ValidateSlot(slot); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearSlot(ctx, tx, slot); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO saves (slot, day, phase, game_over, angel_mood, angel_processing, angel_interactions, dilemma_decided, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		slot, snap.Day, snap.Phase, boolToInt(snap.GameOver), snap.AngelMood, snap.AngelProcessing,
		snap.AngelInteractions, boolToInt(snap.DilemmaDecided), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert save: %w", err)
	}

	for i, c := range snap.Characters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO save_characters (slot, position, name, hunger, thirst, sanity, health, injured)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			slot, i, c.Name, c.Hunger, c.Thirst, c.Sanity, c.Health, boolToInt(c.Injured),
		); err != nil {
			return fmt.Errorf("insert character %s: %w", c.Name, err)
		}
	}
	for _, item := range snap.Inventory {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO save_inventory (slot, item_id, quantity) VALUES (?, ?, ?)`,
			slot, item.ItemID, item.Quantity,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ItemID, err)
		}
	}
	for i, q := range snap.Quests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO save_quests (slot, position, quest_id, description, state) VALUES (?, ?, ?, ?, ?)`,
			slot, i, q.ID, q.Description, q.State,
		); err != nil {
			return fmt.Errorf("insert quest %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, slot string) (game.Snapshot, error) {
	var snap game.Snapshot
	if err := ctx.Err(); err != nil {
		return snap, err
	}
	if err := save.ValidateSlot(slot); err != nil {
		return snap, err
	}

	var gameOver, decided int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT day, phase, game_over, angel_mood, angel_processing, angel_interactions, dilemma_decided
		 FROM saves WHERE slot = ?`, slot,
	).Scan(&snap.Day, &snap.Phase, &gameOver, &snap.AngelMood, &snap.AngelProcessing, &snap.AngelInteractions, &decided)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, save.ErrNoSave
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load save: %w", err)
	}
	snap.GameOver = gameOver != 0
	snap.DilemmaDecided = decided != 0

	if snap.Characters, err = s.loadCharacters(ctx, slot); err != nil {
		return game.Snapshot{}, err
	}
	if snap.Inventory, err = s.loadInventory(ctx, slot); err != nil {
		return game.Snapshot{}, err
	}
	if snap.Quests, err = s.loadQuests(ctx, slot); err != nil {
		return game.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) loadCharacters(ctx context.Context, slot string) ([]game.CharacterSnapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, hunger, thirst, sanity, health, injured FROM save_characters WHERE slot = ? ORDER BY position`, slot)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer rows.Close()

	var out []game.CharacterSnapshot
	for rows.Next() {
		var (
			c       game.CharacterSnapshot
			injured int
		)
		if err := rows.Scan(&c.Name, &c.Hunger, &c.Thirst, &c.Sanity, &c.Health, &injured); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		c.Injured = injured != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return out, nil
}

func (s *Store) loadInventory(ctx context.Context, slot string) ([]game.Slot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT item_id, quantity FROM save_inventory WHERE slot = ? ORDER BY item_id`, slot)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var out []game.Slot
	for rows.Next() {
		var item game.Slot
		if err := rows.Scan(&item.ItemID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return out, nil
}

func (s *Store) loadQuests(ctx context.Context, slot string) ([]game.QuestSnapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT quest_id, description, state FROM save_quests WHERE slot = ? ORDER BY position`, slot)
	if err != nil {
		return nil, fmt.Errorf("query quests: %w", err)
	}
	defer rows.Close()

	var out []game.QuestSnapshot
	for rows.Next() {
		var q game.QuestSnapshot
		if err := rows.Scan(&q.ID, &q.Description, &q.State); err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quests: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := save.ValidateSlot(slot); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var found int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM saves WHERE slot = ?`, slot).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return save.ErrNoSave
	}
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if err := clearSlot(ctx, tx, slot); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// clearSlot removes child rows before the parent; it does not rely on the
// foreign_keys pragma being honoured.
func clearSlot(ctx context.Context, tx *sql.Tx, slot string) error {
	for _, table := range []string{"save_quests", "save_inventory", "save_characters", "saves"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE slot = ?`, slot); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ save.Store = &Store{}
