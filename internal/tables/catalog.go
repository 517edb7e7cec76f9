package tables

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"github.com/appengine-ltd/bunker/internal/game"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

type FamilyMember struct {
	Name   string  `yaml:"name"`
	Hunger float64 `yaml:"hunger"`
	Thirst float64 `yaml:"thirst"`
	Sanity float64 `yaml:"sanity"`
	Health float64 `yaml:"health"`
}

type StockEntry struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

type LocationDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Risk        string `yaml:"risk"`
	Available   *bool  `yaml:"available"`
}

type LootEntry struct {
	Item   string `yaml:"item"`
	Weight int    `yaml:"weight"`
}

type ResponseDef struct {
	Message string        `yaml:"message"`
	Grants  []game.Grant  `yaml:"grants"`
	Effects []game.Effect `yaml:"effects"`
}

type StatEffectDef struct {
	Target         string `yaml:"target"`
	game.StatDelta `yaml:",inline"`
}

type OptionDef struct {
	Label       string          `yaml:"label"`
	Description string          `yaml:"description"`
	Outcome     string          `yaml:"outcome"`
	Stats       []StatEffectDef `yaml:"stats"`
	Effects     []game.Effect   `yaml:"effects"`
}

// DilemmaDef is one daily choice. Day 0 means it can appear on any day
// without a dilemma of its own.
type DilemmaDef struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Day         int         `yaml:"day"`
	Options     []OptionDef `yaml:"options"`
}

type QuestDef struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// document is the shape shared by every data file and by override files.
// Each file fills only its own sections.
type document struct {
	Family     []FamilyMember           `yaml:"family"`
	Stock      []StockEntry             `yaml:"stock"`
	Items      []Item                   `yaml:"items"`
	Locations  []LocationDef            `yaml:"locations"`
	Loot       map[string][]LootEntry   `yaml:"loot"`
	Responses  map[string][]ResponseDef `yaml:"responses"`
	Dilemmas   []DilemmaDef             `yaml:"dilemmas"`
	Dreams     []string                 `yaml:"dreams"`
	Nightmares []string                 `yaml:"nightmares"`
	Quests     []QuestDef               `yaml:"quests"`
}

// merge replaces every section of d that over sets.
func (d *document) merge(over document) {
	if len(over.Family) > 0 {
		d.Family = over.Family
	}
	if len(over.Stock) > 0 {
		d.Stock = over.Stock
	}
	if len(over.Items) > 0 {
		d.Items = over.Items
	}
	if len(over.Locations) > 0 {
		d.Locations = over.Locations
	}
	if len(over.Loot) > 0 {
		d.Loot = over.Loot
	}
	if len(over.Responses) > 0 {
		d.Responses = over.Responses
	}
	if len(over.Dilemmas) > 0 {
		d.Dilemmas = over.Dilemmas
	}
	if len(over.Dreams) > 0 {
		d.Dreams = over.Dreams
	}
	if len(over.Nightmares) > 0 {
		d.Nightmares = over.Nightmares
	}
	if len(over.Quests) > 0 {
		d.Quests = over.Quests
	}
}

// Catalog is the read-only game data. It satisfies every table port the
// engines consume, and every lookup hands back fresh copies.
type Catalog struct {
	doc       document
	items     map[string]Item
	responses map[game.Mood][]ResponseDef
	loot      map[game.RiskTier][]LootEntry
	locations []game.Location
}

// Load reads the embedded tables and, when overridePath is set, replaces
// whole sections with the ones found in that file.
func Load(overridePath string) (*Catalog, error) {
	doc, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(overridePath) != "" {
		raw, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read tables override: %w", err)
		}
		var over document
		if err := yaml.Unmarshal(raw, &over); err != nil {
			return nil, fmt.Errorf("parse tables override %s: %w", overridePath, err)
		}
		doc.merge(over)
	}
	return build(doc)
}

// Parse builds a catalog from a single YAML document with no embedded
// defaults behind it.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}
	return build(doc)
}

func loadEmbedded() (document, error) {
	var doc document
	names, err := fs.Glob(embedded, "data/*.yaml")
	if err != nil {
		return doc, fmt.Errorf("list embedded tables: %w", err)
	}
	for _, name := range names {
		raw, err := embedded.ReadFile(name)
		if err != nil {
			return doc, fmt.Errorf("read embedded %s: %w", name, err)
		}
		var part document
		if err := yaml.Unmarshal(raw, &part); err != nil {
			return doc, fmt.Errorf("failed to unmarshal embedded %s: %w", name, err)
		}
		doc.merge(part)
	}
	return doc, nil
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		doc:       doc,
		items:     make(map[string]Item, len(doc.Items)),
		responses: make(map[game.Mood][]ResponseDef, len(doc.Responses)),
		loot:      make(map[game.RiskTier][]LootEntry, len(doc.Loot)),
	}

	for _, it := range doc.Items {
		if strings.TrimSpace(it.ID) == "" {
			return nil, fmt.Errorf("item without id")
		}
		c.items[it.ID] = it
	}

	seen := make(map[string]bool, len(doc.Family))
	for _, m := range doc.Family {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("family member without name")
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate family member %q", m.Name)
		}
		seen[m.Name] = true
	}

	for raw, pool := range doc.Responses {
		mood, ok := game.ParseMood(raw)
		if !ok {
			return nil, fmt.Errorf("unknown mood %q in responses", raw)
		}
		c.responses[mood] = pool
	}

	for raw, pool := range doc.Loot {
		risk, ok := game.ParseRiskTier(raw)
		if !ok {
			return nil, fmt.Errorf("unknown risk %q in loot", raw)
		}
		for _, e := range pool {
			if e.Weight < 0 {
				return nil, fmt.Errorf("negative loot weight for %q", e.Item)
			}
		}
		c.loot[risk] = pool
	}

	for _, def := range doc.Locations {
		risk, ok := game.ParseRiskTier(def.Risk)
		if !ok {
			return nil, fmt.Errorf("location %q: unknown risk %q", def.Name, def.Risk)
		}
		available := true
		if def.Available != nil {
			available = *def.Available
		}
		c.locations = append(c.locations, game.Location{
			Name:        def.Name,
			Description: def.Description,
			Risk:        risk,
			Available:   available,
		})
	}

	for _, d := range doc.Dilemmas {
		if len(d.Options) == 0 {
			return nil, fmt.Errorf("dilemma %q has no options", d.ID)
		}
		for _, opt := range d.Options {
			if _, ok := parseOutcome(opt.Outcome); !ok {
				return nil, fmt.Errorf("dilemma %q option %q: unknown outcome %q", d.ID, opt.Label, opt.Outcome)
			}
		}
	}

	return c, nil
}

func parseOutcome(raw string) (game.OutcomeKind, bool) {
	for _, k := range []game.OutcomeKind{game.OutcomePositive, game.OutcomeNegative, game.OutcomeMixed} {
		if strings.EqualFold(string(k), strings.TrimSpace(raw)) {
			return k, true
		}
	}
	return "", false
}

func (c *Catalog) Family() []*game.Character {
	out := make([]*game.Character, 0, len(c.doc.Family))
	for _, m := range c.doc.Family {
		out = append(out, game.NewCharacter(m.Name, m.Hunger, m.Thirst, m.Sanity, m.Health))
	}
	return out
}

func (c *Catalog) Stock() []game.Slot {
	out := make([]game.Slot, 0, len(c.doc.Stock))
	for _, s := range c.doc.Stock {
		out = append(out, game.Slot{ItemID: s.Item, Quantity: s.Quantity})
	}
	return out
}

func (c *Catalog) Quests() []game.Quest {
	out := make([]game.Quest, 0, len(c.doc.Quests))
	for _, q := range c.doc.Quests {
		out = append(out, game.Quest{ID: q.ID, Description: q.Description, State: game.QuestInactive})
	}
	return out
}

func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// ItemName falls back to the id for items the catalog does not know.
func (c *Catalog) ItemName(id string) string {
	if it, ok := c.items[id]; ok && it.Name != "" {
		return it.Name
	}
	return id
}

// Items lists every item sorted by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) LootPool(risk game.RiskTier) []LootEntry {
	return append([]LootEntry(nil), c.loot[risk]...)
}

func (c *Catalog) ResponseCount(mood game.Mood) int {
	return len(c.responses[mood])
}

// Dilemmas returns every authored dilemma in file order.
func (c *Catalog) Dilemmas() []*game.Dilemma {
	out := make([]*game.Dilemma, 0, len(c.doc.Dilemmas))
	for _, d := range c.doc.Dilemmas {
		out = append(out, toDilemma(d))
	}
	return out
}

// DilemmaDay is the day a dilemma is pinned to, 0 when it can appear on any.
func (c *Catalog) DilemmaDay(id string) int {
	for _, d := range c.doc.Dilemmas {
		if d.ID == id {
			return d.Day
		}
	}
	return 0
}

func (c *Catalog) Locations() []game.Location {
	return append([]game.Location(nil), c.locations...)
}

func (c *Catalog) RandomResponse(rng *rand.Rand, mood game.Mood) (game.AngelResponse, bool) {
	pool := c.responses[mood]
	if len(pool) == 0 {
		return game.AngelResponse{}, false
	}
	def := pool[rng.IntN(len(pool))]
	return game.AngelResponse{
		Message: def.Message,
		Grants:  append([]game.Grant(nil), def.Grants...),
		Effects: append([]game.Effect(nil), def.Effects...),
		Mood:    mood,
	}, true
}

// RandomLoot draws one item id weighted by each entry's weight.
func (c *Catalog) RandomLoot(rng *rand.Rand, risk game.RiskTier) (string, bool) {
	pool := c.loot[risk]
	total := 0
	for _, e := range pool {
		total += e.Weight
	}
	if total <= 0 {
		return "", false
	}
	roll := rng.IntN(total)
	for _, e := range pool {
		if roll < e.Weight {
			return e.Item, true
		}
		roll -= e.Weight
	}
	return "", false
}

func (c *Catalog) RandomDream(rng *rand.Rand) (string, bool) {
	return pick(rng, c.doc.Dreams)
}

func (c *Catalog) RandomNightmare(rng *rand.Rand) (string, bool) {
	return pick(rng, c.doc.Nightmares)
}

// DilemmaForDay prefers a dilemma pinned to day and otherwise picks one of
// the unpinned ones.
func (c *Catalog) DilemmaForDay(rng *rand.Rand, day int) (*game.Dilemma, bool) {
	var pinned, open []DilemmaDef
	for _, d := range c.doc.Dilemmas {
		switch d.Day {
		case day:
			pinned = append(pinned, d)
		case 0:
			open = append(open, d)
		}
	}
	pool := pinned
	if len(pool) == 0 {
		pool = open
	}
	if len(pool) == 0 {
		return nil, false
	}
	return toDilemma(pool[rng.IntN(len(pool))]), true
}

func toDilemma(def DilemmaDef) *game.Dilemma {
	d := &game.Dilemma{ID: def.ID, Title: def.Title, Description: def.Description}
	for _, opt := range def.Options {
		outcome, _ := parseOutcome(opt.Outcome)
		o := game.DilemmaOption{
			Label:       opt.Label,
			Description: opt.Description,
			Outcome:     outcome,
			Effects:     append([]game.Effect(nil), opt.Effects...),
		}
		for _, se := range opt.Stats {
			o.StatEffects = append(o.StatEffects, game.StatEffect{Target: se.Target, StatDelta: se.StatDelta})
		}
		d.Options = append(d.Options, o)
	}
	return d
}

func pick(rng *rand.Rand, pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	return pool[rng.IntN(len(pool))], true
}
