package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

type RiskTier int

const (
	RiskLow RiskTier = iota
	RiskMedium
	RiskHigh
	RiskDeadly
)

func (t RiskTier) String() string {
	switch t {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskDeadly:
		return "Deadly"
	default:
		return "Unknown"
	}
}

func ParseRiskTier(raw string) (RiskTier, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	case "deadly":
		return RiskDeadly, true
	default:
		return 0, false
	}
}

// RiskFactor scales injury odds, sanity loss and loot count.
func (t RiskTier) RiskFactor() float64 {
	switch t {
	case RiskLow:
		return 0.3
	case RiskMedium:
		return 0.6
	case RiskHigh:
		return 0.85
	case RiskDeadly:
		return 1.0
	default:
		return 0.5
	}
}

const fallbackLootItem = "junk"

type Location struct {
	Name        string
	Description string
	Risk        RiskTier
	Available   bool
}

type ExpeditionResult struct {
	RiskFactor   float64
	FoundItems   []string
	HealthChange float64
	SanityChange float64
	Injured      bool
	Narrative    string
}

type Expedition struct {
	ID        string
	Explorer  string
	Location  Location
	Completed bool
	Result    ExpeditionResult
}

// ShortID is the first block of the id, enough to pick an expedition by hand.
func (x Expedition) ShortID() string {
	if i := strings.IndexByte(x.ID, '-'); i > 0 {
		return x.ID[:i]
	}
	return x.ID
}

type ExplorationDeps struct {
	Roster    *FamilyRoster
	Inventory *Inventory
	Loot      LootTable
	Locations LocationSource
	Bus       *Bus
	RNG       *rand.Rand
	Log       *slog.Logger
}

type ExplorationEngine struct {
	deps        ExplorationDeps
	log         *slog.Logger
	day         int
	expeditions []*Expedition
}

func NewExplorationEngine(rules Rules, deps ExplorationDeps) *ExplorationEngine {
	if deps.RNG == nil {
		deps.RNG = NewRNG(rules.Seed)
	}
	return &ExplorationEngine{
		deps: deps,
		log:  loggerOrDiscard(deps.Log).With("engine", "exploration"),
	}
}

// BeginPhase drops yesterday's expeditions.
func (e *ExplorationEngine) BeginPhase(day int) {
	e.day = day
	e.reset()
}

// reset forgets every expedition and sends anyone still out back home
// without rolling a result.
func (e *ExplorationEngine) reset() {
	for _, exp := range e.expeditions {
		if exp.Completed || e.deps.Roster == nil {
			continue
		}
		if c, ok := e.deps.Roster.ByName(exp.Explorer); ok {
			c.Exploring = false
		}
	}
	e.expeditions = nil
}

func (e *ExplorationEngine) Locations() []Location {
	if e.deps.Locations == nil {
		return nil
	}
	return e.deps.Locations.Locations()
}

func (e *ExplorationEngine) LocationByName(name string) (*Location, bool) {
	for _, loc := range e.Locations() {
		if strings.EqualFold(loc.Name, strings.TrimSpace(name)) {
			l := loc
			return &l, true
		}
	}
	return nil, false
}

func (e *ExplorationEngine) Expeditions() []Expedition {
	out := make([]Expedition, 0, len(e.expeditions))
	for _, exp := range e.expeditions {
		out = append(out, *exp)
	}
	return out
}

// Expedition finds an expedition by id or by an unambiguous id prefix.
func (e *ExplorationEngine) Expedition(id string) (Expedition, bool) {
	exp, ok := e.find(id)
	if !ok {
		return Expedition{}, false
	}
	return *exp, true
}

func (e *ExplorationEngine) find(id string) (*Expedition, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, false
	}
	var match *Expedition
	for _, exp := range e.expeditions {
		if exp.ID == id {
			return exp, true
		}
		if strings.HasPrefix(exp.ID, id) {
			if match != nil {
				return nil, false
			}
			match = exp
		}
	}
	return match, match != nil
}

func (e *ExplorationEngine) Active() int {
	n := 0
	for _, exp := range e.expeditions {
		if !exp.Completed {
			n++
		}
	}
	return n
}

// SendCharacter starts an expedition. Dead, injured and already-exploring
// characters stay home, as does anyone sent to a closed location.
func (e *ExplorationEngine) SendCharacter(c *Character, loc *Location) bool {
	if c == nil || loc == nil {
		e.log.Warn("send rejected: missing character or location")
		return false
	}
	if !c.IsAvailable() {
		e.log.Warn("send rejected: character unavailable", "character", c.Name, "alive", c.IsAlive(), "injured", c.Injured, "exploring", c.Exploring)
		return false
	}
	if !loc.Available {
		e.log.Warn("send rejected: location unavailable", "location", loc.Name)
		return false
	}

	c.Exploring = true
	exp := &Expedition{
		ID:       uuid.NewString(),
		Explorer: c.Name,
		Location: *loc,
	}
	e.expeditions = append(e.expeditions, exp)
	e.log.Info("character sent", "expedition", exp.ID, "character", c.Name, "location", loc.Name, "risk", loc.Risk)
	copied := *exp
	e.deps.Bus.Publish(Event{Kind: EventCharacterSent, Day: e.day, Character: c.Name, Text: loc.Name, Expedition: &copied})
	return true
}

// ResolveExpedition rolls the outcome of one trip without touching any state.
func ResolveExpedition(rng *rand.Rand, exp *Expedition, loot LootTable) ExpeditionResult {
	rf := exp.Location.Risk.RiskFactor()
	res := ExpeditionResult{RiskFactor: rf}

	res.Injured = rng.Float64() < rf*0.5
	if res.Injured {
		res.HealthChange = -uniform(rng, 10, 30)
	}
	res.SanityChange = -uniform(rng, 5, 15) * rf

	count := int(math.Floor(uniform(rng, 0, 3)*rf + 1))
	for i := 0; i < count; i++ {
		item := fallbackLootItem
		if loot != nil {
			if id, ok := loot.RandomLoot(rng, exp.Location.Risk); ok {
				item = id
			}
		}
		res.FoundItems = append(res.FoundItems, item)
	}

	res.Narrative = expeditionNarrative(exp, res)
	return res
}

func expeditionNarrative(exp *Expedition, res ExpeditionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s returned from %s", exp.Explorer, exp.Location.Name)
	if res.Injured {
		b.WriteString(" wounded")
	} else {
		b.WriteString(" unharmed")
	}
	switch len(res.FoundItems) {
	case 0:
		b.WriteString(" and empty-handed.")
	case 1:
		b.WriteString(" carrying 1 item.")
	default:
		fmt.Fprintf(&b, " carrying %d items.", len(res.FoundItems))
	}
	return b.String()
}

// ResolveAll settles every pending expedition and applies the results.
// Completed expeditions are skipped, so calling it twice is harmless.
func (e *ExplorationEngine) ResolveAll() []ExpeditionResult {
	var results []ExpeditionResult
	for _, exp := range e.expeditions {
		if exp.Completed {
			continue
		}
		results = append(results, e.settle(exp))
	}
	return results
}

// ResolveOne settles a single expedition picked by id or id prefix.
func (e *ExplorationEngine) ResolveOne(id string) (ExpeditionResult, bool) {
	exp, ok := e.find(id)
	if !ok {
		e.log.Warn("resolve rejected: unknown expedition", "expedition", id)
		return ExpeditionResult{}, false
	}
	if exp.Completed {
		e.log.Warn("resolve rejected: expedition already back", "expedition", exp.ID)
		return ExpeditionResult{}, false
	}
	return e.settle(exp), true
}

func (e *ExplorationEngine) settle(exp *Expedition) ExpeditionResult {
	exp.Result = ResolveExpedition(e.deps.RNG, exp, e.deps.Loot)
	exp.Completed = true
	e.applyResult(exp)

	copied := *exp
	e.deps.Bus.Publish(Event{Kind: EventExplorationComplete, Day: e.day, Character: exp.Explorer, Text: exp.Result.Narrative, Expedition: &copied})
	return exp.Result
}

func (e *ExplorationEngine) applyResult(exp *Expedition) {
	res := exp.Result
	e.log.Info("expedition resolved", "expedition", exp.ID, "character", exp.Explorer, "location", exp.Location.Name,
		"injured", res.Injured, "health", res.HealthChange, "sanity", res.SanityChange, "items", len(res.FoundItems))

	c, ok := e.deps.Roster.ByName(exp.Explorer)
	if !ok {
		e.log.Warn("explorer missing from roster", "expedition", exp.ID, "character", exp.Explorer)
	} else {
		c.Exploring = false
		c.ModifyHealth(res.HealthChange)
		c.ModifySanity(res.SanityChange)
		if res.Injured {
			c.Injured = true
		}
	}

	if e.deps.Inventory == nil {
		e.log.Warn("no inventory, loot dropped", "expedition", exp.ID, "items", len(res.FoundItems))
		return
	}
	for _, item := range res.FoundItems {
		e.deps.Inventory.AddItem(item, 1)
	}
}
