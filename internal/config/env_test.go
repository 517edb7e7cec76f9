package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Days != 30 || cfg.Seed != 0 {
		t.Fatalf("expected 30 days and seed 0, got %d and %d", cfg.Days, cfg.Seed)
	}
	if cfg.Save.Backend != BackendJSON || cfg.Save.Slot != "autosave" {
		t.Fatalf("expected json backend and autosave slot, got %+v", cfg.Save)
	}
	if cfg.AI.Timeout != 20*time.Second {
		t.Fatalf("expected 20s ai timeout, got %s", cfg.AI.Timeout)
	}
	if cfg.AI.Enabled() {
		t.Fatalf("expected ai disabled without credentials")
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Fatalf("expected warn level, got %s", cfg.SlogLevel())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BUNKER_SEED", "42")
	t.Setenv("BUNKER_DAYS", "7")
	t.Setenv("BUNKER_LOG_LEVEL", "debug")
	t.Setenv("BUNKER_AI_API_KEY", "key")
	t.Setenv("BUNKER_AI_TIMEOUT", "5s")
	t.Setenv("BUNKER_SAVE_BACKEND", "sqlite")
	t.Setenv("BUNKER_SAVE_PATH", "/tmp/bunker.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 42 || cfg.Days != 7 {
		t.Fatalf("expected seed 42 and 7 days, got %d and %d", cfg.Seed, cfg.Days)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %s", cfg.SlogLevel())
	}
	if !cfg.AI.Enabled() || cfg.AI.Timeout != 5*time.Second {
		t.Fatalf("expected ai enabled with 5s timeout, got %+v", cfg.AI)
	}
	loc, err := cfg.SaveLocation()
	if err != nil || loc != "/tmp/bunker.db" {
		t.Fatalf("expected configured sqlite path, got %q (%v)", loc, err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "Not An Int", key: "BUNKER_DAYS", value: "many", want: "parse env:"},
		{name: "Zero Days", key: "BUNKER_DAYS", value: "0", want: "BUNKER_DAYS"},
		{name: "Bad Backend", key: "BUNKER_SAVE_BACKEND", value: "redis", want: "BUNKER_SAVE_BACKEND"},
		{name: "Bad Level", key: "BUNKER_LOG_LEVEL", value: "loud", want: "BUNKER_LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveLocationDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	dir, err := cfg.SaveLocation()
	if err != nil {
		t.Fatalf("save location: %v", err)
	}
	if filepath.Base(dir) != "saves" || filepath.Base(filepath.Dir(dir)) != "bunker" {
		t.Fatalf("expected .../bunker/saves, got %q", dir)
	}

	cfg.Save.Backend = BackendSQLite
	db, err := cfg.SaveLocation()
	if err != nil {
		t.Fatalf("save location: %v", err)
	}
	if filepath.Base(db) != "bunker.db" {
		t.Fatalf("expected bunker.db, got %q", db)
	}
}
