package game

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

type OutcomeKind string

const (
	OutcomePositive OutcomeKind = "Positive"
	OutcomeNegative OutcomeKind = "Negative"
	OutcomeMixed    OutcomeKind = "Mixed"
)

// StatEffect targets one named character, or the whole roster when Target
// is empty.
type StatEffect struct {
	Target string
	StatDelta
}

type DilemmaOption struct {
	Label       string
	Description string
	Outcome     OutcomeKind
	StatEffects []StatEffect
	Effects     []Effect
	Votes       int
}

type Dilemma struct {
	ID          string
	Title       string
	Description string
	Options     []DilemmaOption
}

// Clone deep-copies d so vote counts never leak back into a shared table.
func (d *Dilemma) Clone() *Dilemma {
	if d == nil {
		return nil
	}
	out := *d
	out.Options = make([]DilemmaOption, len(d.Options))
	for i, opt := range d.Options {
		opt.StatEffects = append([]StatEffect(nil), opt.StatEffects...)
		opt.Effects = append([]Effect(nil), opt.Effects...)
		out.Options[i] = opt
	}
	return &out
}

type ChoiceOutcome struct {
	Description string
	Kind        OutcomeKind
}

type DilemmaDeps struct {
	Roster  *FamilyRoster
	Source  DilemmaSource
	Effects EffectRunner
	Bus     *Bus
	RNG     *rand.Rand
	Log     *slog.Logger
}

type DilemmaEngine struct {
	deps DilemmaDeps
	log  *slog.Logger
	day  int

	current      *Dilemma
	chosen       int
	voteDuration time.Duration
	voting       bool
	remaining    time.Duration
}

func NewDilemmaEngine(rules Rules, deps DilemmaDeps) *DilemmaEngine {
	if deps.RNG == nil {
		deps.RNG = NewRNG(rules.Seed)
	}
	return &DilemmaEngine{
		deps:         deps,
		log:          loggerOrDiscard(deps.Log).With("engine", "dilemma"),
		chosen:       -1,
		voteDuration: rules.VoteDuration,
	}
}

func (e *DilemmaEngine) Current() *Dilemma        { return e.current }
func (e *DilemmaEngine) Chosen() int              { return e.chosen }
func (e *DilemmaEngine) Voting() bool             { return e.voting }
func (e *DilemmaEngine) Remaining() time.Duration { return e.remaining }
func (e *DilemmaEngine) Decided() bool            { return e.current != nil && e.chosen >= 0 }

// BeginPhase presents the day's dilemma from the configured source.
func (e *DilemmaEngine) BeginPhase(day int) {
	e.day = day
	if e.deps.Source == nil {
		e.log.Warn("no dilemma source configured", "day", day)
		return
	}
	d, ok := e.deps.Source.DilemmaForDay(e.deps.RNG, day)
	if !ok {
		e.log.Warn("no dilemma for day", "day", day)
		return
	}
	e.Present(d.Clone())
}

func (e *DilemmaEngine) Present(d *Dilemma) {
	if d == nil {
		e.log.Warn("present rejected: nil dilemma")
		return
	}
	e.current = d
	e.chosen = -1
	e.voting = false
	e.remaining = 0
	e.deps.Bus.Publish(Event{Kind: EventDilemmaPresented, Day: e.day, Text: d.Title, Dilemma: d})
}

// StartVoting clears all tallies and starts the countdown driven by Tick.
func (e *DilemmaEngine) StartVoting() bool {
	if e.current == nil {
		e.log.Warn("start voting rejected: no dilemma")
		return false
	}
	if e.chosen >= 0 {
		e.log.Warn("start voting rejected: already decided", "dilemma", e.current.Title)
		return false
	}
	for i := range e.current.Options {
		e.current.Options[i].Votes = 0
	}
	e.voting = true
	e.remaining = e.voteDuration
	e.deps.Bus.Publish(Event{Kind: EventVotingStarted, Day: e.day, Text: e.remaining.String(), Dilemma: e.current})
	return true
}

func (e *DilemmaEngine) CastVote(optionIndex int) bool {
	if !e.voting || e.current == nil {
		e.log.Warn("vote rejected: voting inactive")
		return false
	}
	if optionIndex < 0 || optionIndex >= len(e.current.Options) {
		e.log.Warn("vote rejected: option out of range", "index", optionIndex)
		return false
	}
	e.current.Options[optionIndex].Votes++

	total := 0
	for _, opt := range e.current.Options {
		total += opt.Votes
	}
	share := 0.0
	if total > 0 {
		share = float64(e.current.Options[optionIndex].Votes) / float64(total)
	}
	opt := e.current.Options[optionIndex]
	e.deps.Bus.Publish(Event{Kind: EventVoteCast, Day: e.day, Text: opt.Label, VoteShare: share, Option: &opt})
	return true
}

// Tick advances the vote countdown. When it runs out the leading option is
// chosen.
func (e *DilemmaEngine) Tick(dt time.Duration) {
	if !e.voting {
		return
	}
	e.remaining -= dt
	if e.remaining > 0 {
		return
	}
	e.remaining = 0
	e.voting = false
	e.MakeChoice(e.LeadingOption())
}

// LeadingOption returns the index with the most votes; the first one seen
// wins a tie.
func (e *DilemmaEngine) LeadingOption() int {
	if e.current == nil || len(e.current.Options) == 0 {
		return -1
	}
	best := 0
	for i, opt := range e.current.Options {
		if opt.Votes > e.current.Options[best].Votes {
			best = i
		}
	}
	return best
}

// MakeChoice applies the option's effects once per dilemma. Out-of-range
// indexes, a missing dilemma and a repeat choice are ignored.
func (e *DilemmaEngine) MakeChoice(optionIndex int) bool {
	if e.current == nil {
		e.log.Warn("choice rejected: no dilemma")
		return false
	}
	if e.chosen >= 0 {
		e.log.Warn("choice rejected: already decided", "dilemma", e.current.Title, "chosen", e.chosen)
		return false
	}
	if optionIndex < 0 || optionIndex >= len(e.current.Options) {
		e.log.Warn("choice rejected: option out of range", "index", optionIndex, "options", len(e.current.Options))
		return false
	}
	e.voting = false
	e.remaining = 0

	opt := e.current.Options[optionIndex]
	if e.deps.Roster == nil {
		e.log.Warn("no roster, stat effects dropped", "option", opt.Label)
	} else {
		for _, se := range opt.StatEffects {
			applyStatEffect(e.deps.Roster, se, e.log)
		}
	}
	for _, fx := range opt.Effects {
		if e.deps.Effects == nil {
			e.log.Warn("no effect runner, effect dropped", "kind", fx.Kind)
			continue
		}
		e.deps.Effects.Apply(fx)
	}

	e.chosen = optionIndex
	outcome := ChoiceOutcome{Description: opt.Description, Kind: opt.Outcome}
	e.log.Info("choice made", "dilemma", e.current.Title, "option", opt.Label, "outcome", opt.Outcome)
	e.deps.Bus.Publish(Event{Kind: EventChoiceMade, Day: e.day, Text: opt.Label, Dilemma: e.current, Option: &opt, Outcome: &outcome})
	return true
}

func (e *DilemmaEngine) CompletePhase() {
	e.reset()
	e.deps.Bus.Publish(Event{Kind: EventDilemmaComplete, Day: e.day, Phase: PhaseDailyChoice})
}

// reset drops the current dilemma without announcing it.
func (e *DilemmaEngine) reset() {
	e.current = nil
	e.chosen = -1
	e.voting = false
	e.remaining = 0
}

func applyStatEffect(roster *FamilyRoster, se StatEffect, log *slog.Logger) bool {
	if se.Target == "" {
		for _, c := range roster.All() {
			c.Apply(se.StatDelta)
		}
		return true
	}
	c, ok := roster.ByName(se.Target)
	if !ok {
		log.Warn("stat effect target not found", "target", se.Target)
		return false
	}
	c.Apply(se.StatDelta)
	return true
}
