package tables

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/appengine-ltd/bunker/internal/game"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Family()) != 4 {
		t.Fatalf("expected 4 family members, got %d", len(c.Family()))
	}
	if len(c.Locations()) == 0 || len(c.Quests()) == 0 || len(c.Stock()) == 0 {
		t.Fatalf("expected locations, quests and stock to be populated")
	}
	for _, mood := range game.AllMoods() {
		if _, ok := c.RandomResponse(testRNG(), mood); !ok {
			t.Fatalf("expected a response for %s", mood)
		}
	}
	for _, risk := range []game.RiskTier{game.RiskLow, game.RiskMedium, game.RiskHigh, game.RiskDeadly} {
		id, ok := c.RandomLoot(testRNG(), risk)
		if !ok {
			t.Fatalf("expected loot for %s", risk)
		}
		if _, known := c.Item(id); !known {
			t.Fatalf("expected loot %q to be a known item", id)
		}
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first := c.Family()
	first[0].ModifyHealth(-100)
	if again := c.Family(); !again[0].IsAlive() {
		t.Fatalf("expected a fresh character on every call")
	}

	locs := c.Locations()
	locs[0].Name = "Changed"
	if c.Locations()[0].Name == "Changed" {
		t.Fatalf("expected locations to be copied")
	}

	d, _ := c.DilemmaForDay(testRNG(), 2)
	d.Options[0].Votes = 5
	d2, _ := c.DilemmaForDay(testRNG(), 2)
	if d2.Options[0].Votes != 0 {
		t.Fatalf("expected a fresh dilemma on every call")
	}
}

func TestDilemmaForDayPrefersPinned(t *testing.T) {
	c, err := Parse([]byte(`
dilemmas:
  - id: any
    title: Any Day
    options:
      - label: Ok
        outcome: positive
  - id: ten
    title: Day Ten
    day: 10
    options:
      - label: Ok
        outcome: Negative
        stats:
          - target: Mother
            hunger: 10
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	d, ok := c.DilemmaForDay(testRNG(), 10)
	if !ok || d.ID != "ten" {
		t.Fatalf("expected pinned dilemma, got %+v", d)
	}
	se := d.Options[0].StatEffects[0]
	if se.Target != "Mother" || se.Hunger != 10 {
		t.Fatalf("expected Mother hunger +10, got %+v", se)
	}
	if d.Options[0].Outcome != game.OutcomeNegative {
		t.Fatalf("expected Negative outcome, got %s", d.Options[0].Outcome)
	}

	d, _ = c.DilemmaForDay(testRNG(), 3)
	if d.ID != "any" {
		t.Fatalf("expected unpinned dilemma on day 3, got %s", d.ID)
	}
}

func TestEmptyTablesReportMissing(t *testing.T) {
	c, err := Parse([]byte(`items: []`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rng := testRNG()
	if _, ok := c.RandomResponse(rng, game.MoodCold); ok {
		t.Fatalf("expected no response")
	}
	if _, ok := c.RandomLoot(rng, game.RiskHigh); ok {
		t.Fatalf("expected no loot")
	}
	if _, ok := c.RandomDream(rng); ok {
		t.Fatalf("expected no dream")
	}
	if _, ok := c.DilemmaForDay(rng, 1); ok {
		t.Fatalf("expected no dilemma")
	}
	if c.ItemName("mystery") != "mystery" {
		t.Fatalf("expected unknown item name to fall back to id")
	}
}

func TestParseRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Unknown Mood", raw: "responses:\n  Giddy:\n    - message: hi\n"},
		{name: "Unknown Risk", raw: "locations:\n  - name: Mall\n    risk: extreme\n"},
		{name: "Duplicate Family", raw: "family:\n  - name: A\n  - name: A\n"},
		{name: "No Options", raw: "dilemmas:\n  - id: empty\n"},
		{name: "Bad Outcome", raw: "dilemmas:\n  - id: x\n    options:\n      - label: y\n        outcome: great\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

func TestLoadOverrideReplacesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	raw := "family:\n  - name: Grandma\n    hunger: 50\n    thirst: 50\n    sanity: 50\n    health: 50\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	family := c.Family()
	if len(family) != 1 || family[0].Name != "Grandma" {
		t.Fatalf("expected overridden family, got %v", family)
	}
	if len(c.Locations()) == 0 {
		t.Fatalf("expected untouched sections to keep embedded data")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing override to fail")
	}
}

func TestClosedLocationStaysClosed(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, loc := range c.Locations() {
		if loc.Name == "Military Checkpoint" && loc.Available {
			t.Fatalf("expected checkpoint to be unavailable")
		}
	}
}

func TestCatalogListings(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items := c.Items()
	for i := 1; i < len(items); i++ {
		if items[i-1].ID > items[i].ID {
			t.Fatalf("expected items sorted by id, %s before %s", items[i-1].ID, items[i].ID)
		}
	}
	if len(c.LootPool(game.RiskDeadly)) == 0 {
		t.Fatalf("expected a deadly loot pool")
	}
	if c.ResponseCount(game.MoodHostile) == 0 {
		t.Fatalf("expected hostile responses")
	}

	var core *game.Dilemma
	for _, d := range c.Dilemmas() {
		if d.ID == "angel_core" {
			core = d
		}
	}
	if core == nil || c.DilemmaDay(core.ID) != 15 {
		t.Fatalf("expected angel_core pinned to day 15")
	}
	if c.DilemmaDay("missing") != 0 {
		t.Fatalf("expected unknown dilemma to report day 0")
	}
}
