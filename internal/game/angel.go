package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

type Mood string

const (
	MoodCooperative Mood = "Cooperative"
	MoodNeutral     Mood = "Neutral"
	MoodMocking     Mood = "Mocking"
	MoodCold        Mood = "Cold"
	MoodHostile     Mood = "Hostile"
	MoodGlitching   Mood = "Glitching"
)

func AllMoods() []Mood {
	return []Mood{MoodCooperative, MoodNeutral, MoodMocking, MoodCold, MoodHostile, MoodGlitching}
}

func ParseMood(raw string) (Mood, bool) {
	for _, m := range AllMoods() {
		if strings.EqualFold(string(m), strings.TrimSpace(raw)) {
			return m, true
		}
	}
	return "", false
}

// MoodFor derives the antagonist's mood. A failing processing level wins
// over the day-based personality arc.
func MoodFor(processing float64, day int) Mood {
	switch {
	case processing <= 20:
		return MoodGlitching
	case processing <= 50:
		return MoodHostile
	}
	switch {
	case day <= 5:
		return MoodCooperative
	case day <= 10:
		return MoodNeutral
	case day <= 18:
		return MoodMocking
	case day <= 24:
		return MoodCold
	default:
		return MoodHostile
	}
}

type Grant struct {
	ItemID   string `yaml:"item" json:"item_id"`
	Quantity int    `yaml:"quantity" json:"quantity"`
}

type AngelResponse struct {
	Message string
	Grants  []Grant
	Effects []Effect
	Mood    Mood
	FromAI  bool
}

const fallbackAngelMessage = "..."

type AngelDeps struct {
	Inventory *Inventory
	Responses ResponseTable
	AI        AIPort
	Effects   EffectRunner
	Sound     SoundPlayer
	Glitch    GlitchEffects
	Bus       *Bus
	RNG       *rand.Rand
	Log       *slog.Logger
}

// AngelEngine is the bunker's A.N.G.E.L. unit: a mood driven by its
// processing level and a small daily budget of resource requests.
type AngelEngine struct {
	deps AngelDeps
	log  *slog.Logger

	day          int
	mood         Mood
	processing   float64
	used         int
	dailyCap     int
	lossPerDay   float64
	glitchSpan   time.Duration
	pending      int
	generation   int
	lastResponse *AngelResponse
}

func NewAngelEngine(rules Rules, deps AngelDeps) *AngelEngine {
	if deps.RNG == nil {
		deps.RNG = NewRNG(rules.Seed)
	}
	return &AngelEngine{
		deps:       deps,
		log:        loggerOrDiscard(deps.Log).With("engine", "angel"),
		day:        1,
		mood:       MoodCooperative,
		processing: StatMax,
		dailyCap:   rules.AngelDailyCap,
		lossPerDay: rules.ProcessingLossPerDay,
		glitchSpan: rules.GlitchBurstDuration,
	}
}

func (a *AngelEngine) Mood() Mood                   { return a.mood }
func (a *AngelEngine) Processing() float64          { return a.processing }
func (a *AngelEngine) InteractionsUsed() int        { return a.used }
func (a *AngelEngine) DailyCap() int                { return a.dailyCap }
func (a *AngelEngine) Pending() int                 { return a.pending }
func (a *AngelEngine) LastResponse() *AngelResponse { return a.lastResponse }

func (a *AngelEngine) InteractionsLeft() int {
	if left := a.dailyCap - a.used; left > 0 {
		return left
	}
	return 0
}

func (a *AngelEngine) SetEffects(r EffectRunner) {
	a.deps.Effects = r
}

// BeginDay resets the daily budget and recomputes processing and mood.
func (a *AngelEngine) BeginDay(day int) {
	a.day = day
	a.used = 0
	a.processing = clamp(StatMax-float64(day)*a.lossPerDay, StatMin, StatMax)
	a.setMood(MoodFor(a.processing, day))
}

// DegradeProcessing lowers processing and re-derives mood for the current day.
func (a *AngelEngine) DegradeProcessing(amount float64) {
	a.processing = clamp(a.processing-amount, StatMin, StatMax)
	a.setMood(MoodFor(a.processing, a.day))
}

// Restore reinstates a saved state, including how much of the day's budget
// was spent. Replies still in flight from before the restore are dropped
// when they land.
func (a *AngelEngine) Restore(day int, mood Mood, processing float64, used int) {
	a.day = day
	a.used = min(max(used, 0), a.dailyCap)
	a.generation++
	a.lastResponse = nil
	a.processing = clamp(processing, StatMin, StatMax)
	if mood == "" {
		mood = MoodFor(a.processing, day)
	}
	a.mood = mood
}

// BuildContext renders the prompt handed to the AI port.
func (a *AngelEngine) BuildContext(msg string) string {
	return fmt.Sprintf("[ANGEL_CONTEXT] Day: %d, Mood: %s, Processing: %.0f%%\n[PLAYER_REQUEST] %s", a.day, a.mood, a.processing, msg)
}

// RequestResources spends one interaction. It reports false when today's
// budget is gone. With an AI port the reply arrives later through the
// port's continuations; without one it is applied before returning.
func (a *AngelEngine) RequestResources(ctx context.Context, msg string) bool {
	if a.used >= a.dailyCap {
		a.log.Warn("interaction budget exhausted", "day", a.day, "used", a.used, "cap", a.dailyCap)
		return false
	}
	a.used++
	prompt := a.BuildContext(msg)
	mood := a.mood
	gen := a.generation

	if a.deps.AI == nil {
		a.apply(a.tableResponse(mood))
		return true
	}

	a.pending++
	a.deps.AI.SendMessage(ctx, prompt,
		func(text string) {
			a.pending--
			if a.stale(gen) {
				return
			}
			a.apply(a.aiResponse(mood, text))
		},
		func(err error) {
			a.pending--
			if a.stale(gen) {
				return
			}
			a.log.Warn("ai request failed, using response table", "err", err)
			a.apply(a.tableResponse(mood))
		},
	)
	return true
}

func (a *AngelEngine) stale(gen int) bool {
	if gen == a.generation {
		return false
	}
	a.log.Warn("ai reply from before a restore dropped", "day", a.day)
	return true
}

func (a *AngelEngine) tableResponse(mood Mood) AngelResponse {
	if a.deps.Responses != nil {
		if resp, ok := a.deps.Responses.RandomResponse(a.deps.RNG, mood); ok {
			resp.Mood = mood
			if strings.TrimSpace(resp.Message) == "" {
				resp.Message = fallbackAngelMessage
			}
			return resp
		}
	}
	return AngelResponse{Message: fallbackAngelMessage, Mood: mood}
}

func (a *AngelEngine) aiResponse(mood Mood, text string) AngelResponse {
	clean, effects := ParseDirectives(text)
	resp := AngelResponse{Message: clean, Mood: mood, FromAI: true}

	var grants []Grant
	for _, e := range effects {
		if e.Kind == EffectGrant {
			grants = append(grants, Grant{ItemID: e.Item, Quantity: e.Quantity})
			continue
		}
		resp.Effects = append(resp.Effects, e)
	}
	if len(grants) == 0 {
		grants = a.tableResponse(mood).Grants
	}
	resp.Grants = grants
	if strings.TrimSpace(resp.Message) == "" {
		resp.Message = fallbackAngelMessage
	}
	return resp
}

func (a *AngelEngine) apply(resp AngelResponse) {
	if a.deps.Inventory == nil {
		a.log.Warn("no inventory, grants dropped", "grants", len(resp.Grants))
	} else {
		for _, g := range resp.Grants {
			if !a.deps.Inventory.AddItem(g.ItemID, g.Quantity) {
				a.log.Warn("invalid grant", "item", g.ItemID, "quantity", g.Quantity)
			}
		}
	}
	for _, e := range resp.Effects {
		if a.deps.Effects == nil {
			a.log.Warn("no effect runner, effect dropped", "kind", e.Kind)
			continue
		}
		a.deps.Effects.Apply(e)
	}

	if a.deps.Sound != nil {
		a.deps.Sound.Play("angel_" + strings.ToLower(string(resp.Mood)))
	}
	if resp.Mood == MoodGlitching && a.deps.Glitch != nil {
		a.deps.Glitch.Burst(1-a.processing/StatMax, a.glitchSpan)
	}

	a.lastResponse = &resp
	a.deps.Bus.Publish(Event{Kind: EventAngelResponse, Day: a.day, Mood: resp.Mood, Text: resp.Message, Angel: &resp})
}

func (a *AngelEngine) setMood(m Mood) {
	if m == a.mood {
		return
	}
	prev := a.mood
	a.mood = m
	a.log.Info("mood changed", "from", prev, "to", m, "processing", a.processing)
	a.deps.Bus.Publish(Event{Kind: EventMoodChanged, Day: a.day, Mood: m})
}
