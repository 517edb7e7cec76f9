package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// Built-in narratives for when no table is configured.
var (
	fallbackDreams = []string{
		"The family sleeps without dreaming.",
		"Someone hums in their sleep until morning.",
	}
	fallbackNightmares = []string{
		"Something scratches at the hatch all night.",
		"The vents whisper names nobody answers to.",
	}
)

type NightReport struct {
	Day         int
	Nightmare   bool
	Narrative   string
	StatChanges []string
	Deaths      []string
}

type NightDeps struct {
	Roster     *FamilyRoster
	Narratives NarrativeTable
	Bus        *Bus
	RNG        *rand.Rand
	Log        *slog.Logger
}

type NightCycleEngine struct {
	deps  NightDeps
	rules Rules
	log   *slog.Logger
	last  *NightReport
}

func NewNightCycleEngine(rules Rules, deps NightDeps) *NightCycleEngine {
	if deps.RNG == nil {
		deps.RNG = NewRNG(rules.Seed)
	}
	return &NightCycleEngine{
		deps:  deps,
		rules: rules,
		log:   loggerOrDiscard(deps.Log).With("engine", "night"),
	}
}

func (n *NightCycleEngine) LastReport() *NightReport { return n.last }

// Run applies the nightly decay pass and builds the report. Characters who
// were already dead are skipped, so Deaths only lists tonight's losses.
func (n *NightCycleEngine) Run(day int) *NightReport {
	report := &NightReport{Day: day}
	if n.deps.Roster == nil {
		n.log.Warn("no roster, night cycle skipped", "day", day)
		n.last = report
		return report
	}

	for _, c := range n.deps.Roster.All() {
		if !c.IsAlive() {
			continue
		}
		before := snapshotStats(c)
		wasInjured := c.Injured

		c.ModifyHunger(-n.rules.HungerDecay)
		c.ModifyThirst(-n.rules.ThirstDecay)
		c.ModifySanity(-n.rules.SanityDecay)
		if c.Hunger() <= 0 {
			c.ModifyHealth(-n.rules.StarvationDamage)
		}
		if c.Thirst() <= 0 {
			c.ModifyHealth(-n.rules.DehydrationDamage)
		}
		if !c.IsAlive() {
			report.Deaths = append(report.Deaths, c.Name)
			n.log.Info("character died", "character", c.Name, "day", day)
		}
		if wasInjured && c.Health() > n.rules.InjuryHealThreshold {
			c.Injured = false
		}

		report.StatChanges = append(report.StatChanges, statChangeLine(c, before, wasInjured))
	}

	avg := averageSanity(n.deps.Roster.Alive())
	report.Nightmare = avg < n.rules.NightmareThreshold
	report.Narrative = n.narrative(report.Nightmare)

	n.last = report
	n.deps.Bus.Publish(Event{Kind: EventNightReport, Day: day, Text: report.Narrative, Night: report})
	return report
}

func (n *NightCycleEngine) CompleteNightCycle(day int) {
	n.deps.Bus.Publish(Event{Kind: EventCycleComplete, Day: day, Phase: PhaseNightCycle})
}

func (n *NightCycleEngine) narrative(nightmare bool) string {
	if n.deps.Narratives != nil {
		var (
			text string
			ok   bool
		)
		if nightmare {
			text, ok = n.deps.Narratives.RandomNightmare(n.deps.RNG)
		} else {
			text, ok = n.deps.Narratives.RandomDream(n.deps.RNG)
		}
		if ok {
			return text
		}
	}
	pool := fallbackDreams
	if nightmare {
		pool = fallbackNightmares
	}
	text, _ := pickString(n.deps.RNG, pool)
	return text
}

func averageSanity(alive []*Character) float64 {
	if len(alive) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range alive {
		sum += c.Sanity()
	}
	return sum / float64(len(alive))
}

type statValues [4]float64

func snapshotStats(c *Character) statValues {
	return statValues{c.Hunger(), c.Thirst(), c.Sanity(), c.Health()}
}

func statChangeLine(c *Character, before statValues, wasInjured bool) string {
	after := snapshotStats(c)
	parts := make([]string, 0, 5)
	for i, stat := range AllStats() {
		if d := after[i] - before[i]; d != 0 {
			parts = append(parts, fmt.Sprintf("%s %+.0f", stat, d))
		}
	}
	if wasInjured && !c.Injured {
		parts = append(parts, "wounds healed")
	}
	if !c.IsAlive() {
		parts = append(parts, "died")
	}
	if len(parts) == 0 {
		return c.Name + ": no change"
	}
	return c.Name + ": " + strings.Join(parts, ", ")
}
