package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/appengine-ltd/bunker/internal/game"
	"github.com/appengine-ltd/bunker/internal/parser"
	"github.com/appengine-ltd/bunker/internal/save"
)

func (a *App) dispatch(ctx context.Context, intent parser.Intent) bool {
	switch intent.Verb {
	case "quit":
		a.printf("The hatch seals behind you.\n")
		return true
	case "help":
		a.help(intent.Args)
	case "status":
		a.status()
	case "roster":
		a.roster()
	case "inventory":
		a.inventory()
	case "quests":
		a.quests()
	case "locations":
		a.locations()
	case "expeditions":
		a.expeditions()
	case "save":
		a.save(ctx, slotArg(intent.Args, a.slot))
	case "load":
		a.load(ctx, slotArg(intent.Args, a.slot))
	case "delete":
		a.delete(ctx, slotArg(intent.Args, a.slot))
	default:
		if a.game.GameOver() {
			a.printf("The run is over. %s\n", a.game.Outcome().Message)
			return false
		}
		a.play(ctx, intent)
	}
	return false
}

// play handles the commands that change the run.
func (a *App) play(ctx context.Context, intent parser.Intent) {
	switch intent.Verb {
	case "next":
		a.game.CompletePhase()
	case "ask":
		a.ask(ctx, intent.Text)
	case "send":
		a.send(intent.Args[0], intent.Args[1])
	case "resolve":
		a.resolve(intent.Args)
	case "dilemma":
		a.dilemma()
	case "choose":
		if !a.inPhase(game.PhaseDailyChoice) {
			return
		}
		if a.game.Dilemma.Decided() {
			a.printf("That has already been decided.\n")
			return
		}
		if n, ok := a.optionArg(intent.Args); ok && !a.game.Dilemma.MakeChoice(n) {
			a.printf("That choice is not open.\n")
		}
	case "vote":
		if !a.inPhase(game.PhaseDailyChoice) {
			return
		}
		if n, ok := a.optionArg(intent.Args); ok && !a.game.Dilemma.CastVote(n) {
			a.printf("No vote is running for that option.\n")
		}
	case "startvote":
		if !a.inPhase(game.PhaseDailyChoice) {
			return
		}
		if !a.game.Dilemma.StartVoting() {
			a.printf("There is nothing to vote on.\n")
		}
	case "tick":
		if !a.inPhase(game.PhaseDailyChoice) {
			return
		}
		a.tick(intent.Args)
	case "set":
		a.set(intent.Args)
	default:
		a.printf("Unknown command %q.\n", intent.Verb)
	}
}

func (a *App) inPhase(p game.Phase) bool {
	if a.game.Phase() == p {
		return true
	}
	a.printf("That can only be done during %s.\n", p.Title())
	return false
}

func (a *App) help(args []string) {
	cmds := a.parser.Commands()
	if len(args) > 0 {
		for _, c := range cmds {
			if c.Canonical == args[0] {
				a.printf("%s  %s\n", c.Usage, c.Summary)
				if len(c.Aliases) > 0 {
					a.printf("  aliases: %s\n", strings.Join(c.Aliases, ", "))
				}
				return
			}
		}
		a.printf("No command %q.\n", args[0])
		return
	}
	for _, c := range cmds {
		a.printf("  %-32s %s\n", c.Usage, c.Summary)
	}
}

func (a *App) status() {
	a.printf("Day %d of %d, %s\n", a.game.Day(), a.game.Rules().TotalDays, a.game.Phase().Title())
	angel := a.game.Angel
	a.printf("A.N.G.E.L.: %s, processing %.0f%%, %d of %d requests left\n",
		angel.Mood(), angel.Processing(), angel.InteractionsLeft(), angel.DailyCap())
	a.printf("Alive: %d of %d\n", a.game.Roster().AliveCount(), a.game.Roster().Len())
	if a.game.GameOver() {
		a.printf("Outcome: %s\n", a.game.Outcome().Message)
	}
}

func (a *App) roster() {
	for _, c := range a.game.Roster().All() {
		a.printf("  %-10s %s\n", c.Name, characterLine(c))
	}
}

func characterLine(c *game.Character) string {
	line := fmt.Sprintf("hunger %3.0f  thirst %3.0f  sanity %3.0f  health %3.0f",
		c.Hunger(), c.Thirst(), c.Sanity(), c.Health())
	var flags []string
	switch {
	case !c.IsAlive():
		flags = append(flags, "dead")
	case c.IsCritical():
		flags = append(flags, "critical")
	}
	if c.Injured {
		flags = append(flags, "injured")
	}
	if c.Exploring {
		flags = append(flags, "away")
	}
	if len(flags) > 0 {
		line += "  [" + strings.Join(flags, ", ") + "]"
	}
	return line
}

func (a *App) inventory() {
	slots := a.game.Inventory().Slots()
	if len(slots) == 0 {
		a.printf("The shelves are empty.\n")
		return
	}
	for _, s := range slots {
		a.printf("  %-20s x%d\n", a.itemName(s.ItemID), s.Quantity)
	}
}

func (a *App) quests() {
	quests := a.game.Quests().All()
	if len(quests) == 0 {
		a.printf("No quests.\n")
		return
	}
	for _, q := range quests {
		a.printf("  [%s] %s: %s\n", q.State, q.ID, q.Description)
	}
}

func (a *App) locations() {
	for _, loc := range a.game.Exploration.Locations() {
		closed := ""
		if !loc.Available {
			closed = " (closed)"
		}
		a.printf("  %-20s %-7s%s\n", loc.Name, loc.Risk, closed)
	}
}

func (a *App) expeditions() {
	exps := a.game.Exploration.Expeditions()
	if len(exps) == 0 {
		a.printf("Nobody has left the bunker today.\n")
		return
	}
	for _, exp := range exps {
		state := "out"
		if exp.Completed {
			state = "back"
		}
		a.printf("  %s  %-10s %-20s %s\n", exp.ShortID(), exp.Explorer, exp.Location.Name, state)
	}
}

func (a *App) resolve(args []string) {
	if !a.inPhase(game.PhaseCityExploration) {
		return
	}
	if len(args) == 0 {
		if len(a.game.Exploration.ResolveAll()) == 0 {
			a.printf("Nobody is out there.\n")
		}
		return
	}
	exp, ok := a.game.Exploration.Expedition(args[0])
	if !ok {
		a.printf("No expedition %s.\n", args[0])
		return
	}
	if _, ok := a.game.Exploration.ResolveOne(exp.ID); !ok {
		a.printf("%s is already back.\n", exp.Explorer)
	}
}

func (a *App) ask(ctx context.Context, text string) {
	if !a.inPhase(game.PhaseAngelInteraction) {
		return
	}
	if !a.game.Angel.RequestResources(ctx, text) {
		a.printf("A.N.G.E.L. is no longer listening today.\n")
		return
	}
	if !a.settle(ctx) {
		a.printf("A.N.G.E.L. is still thinking.\n")
	}
}

// settle runs AI continuations until none are pending or aiWait passes.
func (a *App) settle(ctx context.Context) bool {
	if a.game.Angel.Pending() == 0 {
		return true
	}
	waitCtx, cancel := context.WithTimeout(ctx, a.aiWait)
	defer cancel()
	for a.game.Angel.Pending() > 0 {
		if err := a.game.Await(waitCtx); err != nil {
			return false
		}
	}
	return true
}

func (a *App) send(who, where string) {
	if !a.inPhase(game.PhaseCityExploration) {
		return
	}
	c, ok := a.game.Roster().ByName(who)
	if !ok {
		a.printf("Nobody called %s lives here.\n", who)
		return
	}
	a.lastCharacter = c.Name
	loc, ok := a.game.Exploration.LocationByName(where)
	if !ok {
		a.printf("Nobody knows the way to %s.\n", where)
		return
	}
	if !a.game.Exploration.SendCharacter(c, loc) {
		a.printf("%s cannot go to %s.\n", c.Name, loc.Name)
	}
}

func (a *App) dilemma() {
	d := a.game.Dilemma.Current()
	if d == nil {
		a.printf("Nothing needs deciding right now.\n")
		return
	}
	a.printDilemma(d)
	if a.game.Dilemma.Voting() {
		a.printf("Voting closes in %s.\n", a.game.Dilemma.Remaining())
	}
}

// optionArg reads a 1-based option number.
func (a *App) optionArg(args []string) (int, bool) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		a.printf("Pick an option by number.\n")
		return 0, false
	}
	return n - 1, true
}

func (a *App) tick(args []string) {
	dt := time.Second
	if len(args) > 0 {
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil || secs <= 0 {
			a.printf("Give the time in seconds.\n")
			return
		}
		dt = time.Duration(secs * float64(time.Second))
	}
	if !a.game.Dilemma.Voting() {
		a.printf("Time passes.\n")
		return
	}
	a.game.Dilemma.Tick(dt)
}

func (a *App) set(args []string) {
	c, ok := a.game.Roster().ByName(args[0])
	if !ok {
		a.printf("Nobody called %s lives here.\n", args[0])
		return
	}
	stat, ok := game.ParseStat(args[1])
	if !ok {
		a.printf("Unknown stat %q.\n", args[1])
		return
	}
	v, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		a.printf("%q is not a number.\n", args[2])
		return
	}
	c.Set(stat, v)
	a.lastCharacter = c.Name
	a.printf("%s %s is now %.0f.\n", c.Name, stat, c.Get(stat))
}

func slotArg(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func (a *App) save(ctx context.Context, slot string) {
	if a.store == nil {
		a.printf("Saving is disabled.\n")
		return
	}
	if err := a.store.Save(ctx, slot, a.game.Snapshot()); err != nil {
		a.printf("Save failed: %v\n", err)
		return
	}
	a.printf("Saved to %s.\n", slot)
}

func (a *App) load(ctx context.Context, slot string) {
	if a.store == nil {
		a.printf("Saving is disabled.\n")
		return
	}
	snap, err := a.store.Load(ctx, slot)
	if errors.Is(err, save.ErrNoSave) {
		a.printf("Slot %s is empty.\n", slot)
		return
	}
	if err != nil {
		a.printf("Load failed: %v\n", err)
		return
	}
	if err := a.game.Restore(snap); err != nil {
		a.printf("Load failed: %v\n", err)
		return
	}
	a.lastCharacter = ""
	a.printf("Loaded %s: day %d, %s.\n", slot, a.game.Day(), a.game.Phase().Title())
}

func (a *App) delete(ctx context.Context, slot string) {
	if a.store == nil {
		a.printf("Saving is disabled.\n")
		return
	}
	err := a.store.Delete(ctx, slot)
	switch {
	case errors.Is(err, save.ErrNoSave):
		a.printf("Slot %s is empty.\n", slot)
	case err != nil:
		a.printf("Delete failed: %v\n", err)
	default:
		a.printf("Deleted %s.\n", slot)
	}
}
