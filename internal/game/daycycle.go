package game

import (
	"context"
	"fmt"
	"log/slog"
)

// Tables bundles every read-only data lookup the engines use. Any of them
// may be nil; the engines fall back to built-in defaults.
type Tables struct {
	Responses  ResponseTable
	Loot       LootTable
	Narratives NarrativeTable
	Dilemmas   DilemmaSource
	Locations  LocationSource
}

type Setup struct {
	Rules   Rules
	Family  []*Character
	Stock   []Slot
	Quests  []Quest
	Tables  Tables
	AI      AIPort
	Sound   SoundPlayer
	Glitch  GlitchEffects
	Mailbox *Mailbox
	Log     *slog.Logger
}

type RunStatus string

const (
	RunOngoing  RunStatus = "ongoing"
	RunSurvived RunStatus = "survived"
	RunPerished RunStatus = "perished"
)

type RunOutcome struct {
	Status  RunStatus
	Message string
}

// DayCycle owns the session: the roster, the stock, the five engines and
// the phase machine that sequences them.
type DayCycle struct {
	rules   Rules
	log     *slog.Logger
	bus     *Bus
	mailbox *Mailbox

	roster    *FamilyRoster
	inventory *Inventory
	quests    *QuestLog
	effects   *EffectExecutor
	machine   *PhaseMachine

	Status      *StatusReviewEngine
	Angel       *AngelEngine
	Exploration *ExplorationEngine
	Dilemma     *DilemmaEngine
	Night       *NightCycleEngine

	day     int
	outcome RunOutcome
}

func NewDayCycle(setup Setup) (*DayCycle, error) {
	if err := setup.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	log := loggerOrDiscard(setup.Log)
	bus := NewBus()
	seed := resolveSeed(setup.Rules.Seed)

	d := &DayCycle{
		rules:     setup.Rules,
		log:       log,
		bus:       bus,
		mailbox:   setup.Mailbox,
		roster:    NewFamilyRoster(),
		inventory: NewInventory(),
		quests:    NewQuestLog(bus),
		machine:   NewPhaseMachine(log),
		day:       1,
		outcome:   RunOutcome{Status: RunOngoing},
	}
	for _, c := range setup.Family {
		if !d.roster.Add(c) {
			return nil, fmt.Errorf("duplicate or unnamed family member %q", c.Name)
		}
	}
	d.inventory.Replace(setup.Stock)
	d.quests.Replace(setup.Quests)

	d.effects = &EffectExecutor{
		Roster:    d.roster,
		Inventory: d.inventory,
		Quests:    d.quests,
		Sound:     setup.Sound,
		Glitch:    setup.Glitch,
		Rules:     setup.Rules,
		Log:       log,
	}

	d.Status = NewStatusReviewEngine(d.roster, bus, log)
	d.Angel = NewAngelEngine(setup.Rules, AngelDeps{
		Inventory: d.inventory,
		Responses: setup.Tables.Responses,
		AI:        setup.AI,
		Effects:   d.effects,
		Sound:     setup.Sound,
		Glitch:    setup.Glitch,
		Bus:       bus,
		RNG:       streamRNG(seed, "angel"),
		Log:       log,
	})
	d.effects.Angel = d.Angel
	d.Exploration = NewExplorationEngine(setup.Rules, ExplorationDeps{
		Roster:    d.roster,
		Inventory: d.inventory,
		Loot:      setup.Tables.Loot,
		Locations: setup.Tables.Locations,
		Bus:       bus,
		RNG:       streamRNG(seed, "exploration"),
		Log:       log,
	})
	d.Dilemma = NewDilemmaEngine(setup.Rules, DilemmaDeps{
		Roster:  d.roster,
		Source:  setup.Tables.Dilemmas,
		Effects: d.effects,
		Bus:     bus,
		RNG:     streamRNG(seed, "dilemma"),
		Log:     log,
	})
	d.Night = NewNightCycleEngine(setup.Rules, NightDeps{
		Roster:     d.roster,
		Narratives: setup.Tables.Narratives,
		Bus:        bus,
		RNG:        streamRNG(seed, "night"),
		Log:        log,
	})

	d.registerPhases()
	return d, nil
}

func (d *DayCycle) registerPhases() {
	d.machine.Register(PhaseStatusReview, PhaseControllerFuncs{
		BeginFn: func(day int) { d.Status.Generate(day) },
	})
	d.machine.Register(PhaseAngelInteraction, PhaseControllerFuncs{
		BeginFn: d.Angel.BeginDay,
	})
	d.machine.Register(PhaseCityExploration, PhaseControllerFuncs{
		BeginFn: d.Exploration.BeginPhase,
		EndFn:   func(int) { d.Exploration.ResolveAll() },
	})
	d.machine.Register(PhaseDailyChoice, PhaseControllerFuncs{
		BeginFn: d.Dilemma.BeginPhase,
		EndFn:   func(int) { d.Dilemma.CompletePhase() },
	})
	d.machine.Register(PhaseNightCycle, PhaseControllerFuncs{
		BeginFn: func(day int) { d.Night.Run(day) },
		EndFn:   d.Night.CompleteNightCycle,
	})
}

func (d *DayCycle) Bus() *Bus                { return d.bus }
func (d *DayCycle) Roster() *FamilyRoster    { return d.roster }
func (d *DayCycle) Inventory() *Inventory    { return d.inventory }
func (d *DayCycle) Quests() *QuestLog        { return d.quests }
func (d *DayCycle) Effects() *EffectExecutor { return d.effects }
func (d *DayCycle) Rules() Rules             { return d.rules }
func (d *DayCycle) Day() int                 { return d.day }
func (d *DayCycle) Phase() Phase             { return d.machine.Current() }
func (d *DayCycle) GameOver() bool           { return d.outcome.Status != RunOngoing }
func (d *DayCycle) Outcome() RunOutcome      { return d.outcome }

// Start enters the first phase of the current day.
func (d *DayCycle) Start() {
	if d.GameOver() || d.machine.Started() {
		return
	}
	d.enter(d.machine.Current())
}

// CompletePhase is the only way time moves forward.
func (d *DayCycle) CompletePhase() Phase {
	if d.GameOver() {
		d.log.Warn("complete phase ignored: game over")
		return d.machine.Current()
	}
	if !d.machine.Started() {
		d.Start()
		return d.machine.Current()
	}

	finished := d.machine.Current()
	next, wrapped := d.machine.Complete(d.day)
	d.bus.Publish(Event{Kind: EventPhaseComplete, Day: d.day, Phase: finished})

	if wrapped {
		d.day++
		d.log.Info("day advanced", "day", d.day)
		d.bus.Publish(Event{Kind: EventDayAdvanced, Day: d.day})
		if out := d.Evaluate(); out.Status != RunOngoing {
			d.finish(out)
			return d.machine.Current()
		}
	}

	d.enter(next)
	return next
}

func (d *DayCycle) enter(p Phase) {
	d.bus.Publish(Event{Kind: EventPhaseChanged, Day: d.day, Phase: p, Text: p.Title()})
	d.machine.Enter(p, d.day)
}

// Evaluate reports whether the run has ended.
func (d *DayCycle) Evaluate() RunOutcome {
	if d.roster.Len() > 0 && d.roster.AliveCount() == 0 {
		return RunOutcome{Status: RunPerished, Message: fmt.Sprintf("The bunker fell silent on day %d.", d.day)}
	}
	if d.day > d.rules.TotalDays {
		return RunOutcome{Status: RunSurvived, Message: fmt.Sprintf("%d of %d survived %d days.", d.roster.AliveCount(), d.roster.Len(), d.rules.TotalDays)}
	}
	return RunOutcome{Status: RunOngoing}
}

func (d *DayCycle) finish(out RunOutcome) {
	d.outcome = out
	d.machine.Terminate()
	d.log.Info("game over", "status", out.Status, "day", d.day)
	d.bus.Publish(Event{Kind: EventGameOver, Day: d.day, Text: out.Message})
}

// Pump runs continuations that arrived from the AI port.
func (d *DayCycle) Pump() int {
	return d.mailbox.Drain()
}

// Await blocks until one continuation arrives and runs it.
func (d *DayCycle) Await(ctx context.Context) error {
	return d.mailbox.Await(ctx)
}

func (d *DayCycle) Snapshot() Snapshot {
	snap := Snapshot{
		Day:               d.day,
		Phase:             string(d.machine.Current()),
		GameOver:          d.GameOver(),
		Inventory:         d.inventory.Slots(),
		AngelMood:         string(d.Angel.Mood()),
		AngelProcessing:   d.Angel.Processing(),
		AngelInteractions: d.Angel.InteractionsUsed(),
		DilemmaDecided:    d.Dilemma.Decided(),
	}
	for _, c := range d.roster.All() {
		snap.Characters = append(snap.Characters, SnapshotCharacter(c))
	}
	for _, q := range d.quests.All() {
		snap.Quests = append(snap.Quests, QuestSnapshot{ID: q.ID, Description: q.Description, State: string(q.State)})
	}
	return snap
}

// Restore replaces the session state with snap. Transient state
// (expeditions, today's dilemma) is dropped and rebuilt for the restored
// phase; a dilemma already decided in the save is not offered again.
func (d *DayCycle) Restore(snap Snapshot) error {
	phase, ok := ParsePhase(snap.Phase)
	if !ok {
		return fmt.Errorf("unknown phase %q", snap.Phase)
	}
	if snap.Day < 1 {
		return fmt.Errorf("invalid day %d", snap.Day)
	}

	members := make([]*Character, 0, len(snap.Characters))
	for _, cs := range snap.Characters {
		members = append(members, cs.Character())
	}
	d.Exploration.reset()
	d.Dilemma.reset()
	d.roster.Replace(members)
	d.inventory.Replace(snap.Inventory)

	quests := make([]Quest, 0, len(snap.Quests))
	for _, qs := range snap.Quests {
		state, _ := ParseQuestState(qs.State)
		quests = append(quests, Quest{ID: qs.ID, Description: qs.Description, State: state})
	}
	d.quests.Replace(quests)

	mood, _ := ParseMood(snap.AngelMood)
	d.Angel.Restore(snap.Day, mood, snap.AngelProcessing, snap.AngelInteractions)

	d.day = snap.Day
	d.outcome = RunOutcome{Status: RunOngoing}
	d.machine.Resume(phase)
	if snap.GameOver {
		out := d.Evaluate()
		if out.Status == RunOngoing {
			out = RunOutcome{Status: RunPerished, Message: "The run had already ended."}
		}
		d.outcome = out
		d.machine.Terminate()
		return nil
	}

	switch phase {
	case PhaseStatusReview:
		d.Status.Generate(d.day)
	case PhaseCityExploration:
		d.Exploration.BeginPhase(d.day)
	case PhaseDailyChoice:
		if !snap.DilemmaDecided {
			d.Dilemma.BeginPhase(d.day)
		}
	}
	d.log.Info("session restored", "day", d.day, "phase", phase)
	return nil
}
