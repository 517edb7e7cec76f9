// Package console is the line-oriented operator surface for a bunker run.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/appengine-ltd/bunker/internal/game"
	"github.com/appengine-ltd/bunker/internal/parser"
	"github.com/appengine-ltd/bunker/internal/save"
)

// ItemNamer turns item ids into display names.
type ItemNamer interface {
	ItemName(id string) string
}

type Config struct {
	In     io.Reader
	Out    io.Writer
	Game   *game.DayCycle
	Store  save.Store
	Slot   string
	Items  ItemNamer
	Parser *parser.Parser
	// AIWait caps how long ask waits for a reply before moving on.
	AIWait time.Duration
	Log    *slog.Logger
}

type App struct {
	in     io.Reader
	out    io.Writer
	game   *game.DayCycle
	store  save.Store
	slot   string
	items  ItemNamer
	parser *parser.Parser
	aiWait time.Duration
	log    *slog.Logger

	lastCharacter string
	clarify       *parser.ClarifyQuestion
	autosaveDue   bool
}

func New(cfg Config) (*App, error) {
	if cfg.Game == nil {
		return nil, errors.New("console needs a game")
	}
	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("console needs input and output")
	}
	if cfg.Slot == "" {
		cfg.Slot = save.DefaultSlot
	}
	if err := save.ValidateSlot(cfg.Slot); err != nil {
		return nil, err
	}
	if cfg.Parser == nil {
		cfg.Parser = parser.New()
	}
	if cfg.AIWait <= 0 {
		cfg.AIWait = 30 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	return &App{
		in:     cfg.In,
		out:    cfg.Out,
		game:   cfg.Game,
		store:  cfg.Store,
		slot:   cfg.Slot,
		items:  cfg.Items,
		parser: cfg.Parser,
		aiWait: cfg.AIWait,
		log:    cfg.Log.With("component", "console"),
	}, nil
}

// Run reads commands until quit, end of input or ctx ends. The run is
// autosaved on every new day and on the way out.
func (a *App) Run(ctx context.Context) error {
	unsubscribe := a.game.Bus().SubscribeAll(a.render)
	defer unsubscribe()

	a.printf("THE BUNKER. Type help for commands.\n")
	a.game.Start()
	a.prompt()

	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		quit := a.Execute(ctx, scanner.Text())
		a.game.Pump()
		if a.autosaveDue {
			a.autosaveDue = false
			a.autosave(ctx)
		}
		if quit {
			break
		}
		a.prompt()
	}
	a.settle(context.WithoutCancel(ctx))
	a.autosave(ctx)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (a *App) prompt() {
	if a.game.GameOver() {
		a.printf("[game over] > ")
		return
	}
	a.printf("[day %d %s] > ", a.game.Day(), a.game.Phase().Title())
}

// Execute runs one input line and reports whether the user asked to quit.
func (a *App) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if a.clarify != nil {
		pending := a.clarify
		a.clarify = nil
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(pending.Options) {
			line = parser.IntentToCommandString(pending.Options[n-1])
		}
	}

	intent := a.parser.Parse(a.parseContext(), line)
	if intent.Clarify != nil {
		a.showClarify(intent.Clarify)
		return false
	}
	return a.dispatch(ctx, intent)
}

func (a *App) parseContext() parser.ParseContext {
	ctx := parser.ParseContext{
		Characters:    a.game.Roster().Names(),
		LastCharacter: a.lastCharacter,
	}
	for _, loc := range a.game.Exploration.Locations() {
		ctx.Locations = append(ctx.Locations, loc.Name)
	}
	return ctx
}

func (a *App) showClarify(q *parser.ClarifyQuestion) {
	a.printf("%s\n", q.Prompt)
	if len(q.Options) == 0 {
		return
	}
	for i, opt := range q.Options {
		a.printf("  %d) %s\n", i+1, parser.IntentToCommandString(opt))
	}
	a.clarify = q
}

func (a *App) autosave(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(ctx, a.slot, a.game.Snapshot()); err != nil {
		a.log.Warn("autosave failed", "slot", a.slot, "err", err)
		a.printf("Autosave failed: %v\n", err)
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) itemName(id string) string {
	if a.items == nil {
		return id
	}
	return a.items.ItemName(id)
}
