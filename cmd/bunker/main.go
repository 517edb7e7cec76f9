package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/appengine-ltd/bunker/internal/ai"
	"github.com/appengine-ltd/bunker/internal/audio"
	"github.com/appengine-ltd/bunker/internal/config"
	"github.com/appengine-ltd/bunker/internal/console"
	"github.com/appengine-ltd/bunker/internal/game"
	"github.com/appengine-ltd/bunker/internal/save"
	"github.com/appengine-ltd/bunker/internal/save/sqlite"
	"github.com/appengine-ltd/bunker/internal/tables"
)

// version, commit, date are injected at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		showVersion bool
		seed        int64
		fresh       bool
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Int64Var(&seed, "seed", 0, "simulation seed (overrides BUNKER_SEED, 0 picks one)")
	flag.BoolVar(&fresh, "new", false, "ignore the autosave and start a new run")
	flag.Parse()

	if showVersion {
		fmt.Printf("Bunker %s (%s) %s\n", version, commit, date)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		config.Exitf("%v", err)
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, fresh); err != nil {
		config.Exitf("bunker: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, fresh bool) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	catalog, err := tables.Load(cfg.TablesPath)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	player, err := audio.Open(cfg.SoundDir, log)
	if err != nil {
		log.Warn("audio unavailable, running silent", "err", err)
		player = audio.Silent{Log: log}
	}
	defer player.Close()

	mailbox := game.NewMailbox(8)
	var port game.AIPort
	if cfg.AI.Enabled() {
		gemini, err := ai.NewGemini(ctx, ai.GeminiConfig{
			APIKey:   cfg.AI.APIKey,
			Project:  cfg.AI.Project,
			Location: cfg.AI.Location,
			Model:    cfg.AI.Model,
		})
		if err != nil {
			return err
		}
		p, err := ai.NewPort(gemini, mailbox, cfg.AI.Timeout, log)
		if err != nil {
			return err
		}
		defer p.Close()
		port = p
		log.Info("ai enabled", "model", gemini.Model())
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rules := game.DefaultRules()
	rules.Seed = cfg.Seed
	rules.TotalDays = cfg.Days

	g, err := game.NewDayCycle(game.Setup{
		Rules:  rules,
		Family: catalog.Family(),
		Stock:  catalog.Stock(),
		Quests: catalog.Quests(),
		Tables: game.Tables{
			Responses:  catalog,
			Loot:       catalog,
			Narratives: catalog,
			Dilemmas:   catalog,
			Locations:  catalog,
		},
		AI:      port,
		Sound:   player,
		Glitch:  &console.Glitch{Out: os.Stdout},
		Mailbox: mailbox,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}

	if !fresh {
		resume(ctx, g, store, cfg.Save.Slot, log)
	}

	app, err := console.New(console.Config{
		In:     os.Stdin,
		Out:    os.Stdout,
		Game:   g,
		Store:  store,
		Slot:   cfg.Save.Slot,
		Items:  catalog,
		AIWait: cfg.AI.Timeout,
		Log:    log,
	})
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func openStore(cfg config.Config) (save.Store, func(), error) {
	loc, err := cfg.SaveLocation()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Save.Backend != config.BackendSQLite {
		return save.NewJSONStore(loc), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(loc), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create save dir: %w", err)
	}
	db, err := sqlite.Open(loc)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// resume restores the slot's run unless it is missing or already over.
func resume(ctx context.Context, g *game.DayCycle, store save.Store, slot string, log *slog.Logger) {
	snap, err := store.Load(ctx, slot)
	switch {
	case errors.Is(err, save.ErrNoSave):
		return
	case err != nil:
		log.Warn("autosave unreadable, starting fresh", "slot", slot, "err", err)
		return
	case snap.GameOver:
		log.Info("last run ended, starting fresh", "slot", slot)
		return
	}
	if err := g.Restore(snap); err != nil {
		log.Warn("autosave rejected, starting fresh", "slot", slot, "err", err)
		return
	}
	fmt.Fprintf(os.Stdout, "Resuming day %d, %s.\n", g.Day(), g.Phase().Title())
}
