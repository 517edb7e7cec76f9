package game

import "testing"

func newTestExploration(roster *FamilyRoster, inv *Inventory) *ExplorationEngine {
	return NewExplorationEngine(testRules(), ExplorationDeps{
		Roster:    roster,
		Inventory: inv,
		Loot:      fixedLoot("bandages"),
		Locations: staticLocations{
			{Name: "Pharmacy", Risk: RiskMedium, Available: true},
			{Name: "Subway", Risk: RiskDeadly, Available: true},
			{Name: "Hospital", Risk: RiskHigh, Available: false},
		},
		RNG: seededRNG(7),
	})
}

func TestSendCharacterRejections(t *testing.T) {
	father := NewCharacter("Father", 100, 100, 100, 100)
	injured := NewCharacter("Mother", 100, 100, 100, 100)
	injured.Injured = true
	exploring := NewCharacter("Son", 100, 100, 100, 100)
	exploring.Exploring = true
	dead := NewCharacter("Daughter", 100, 100, 100, 0)
	roster := NewFamilyRoster(father, injured, exploring, dead)

	e := newTestExploration(roster, NewInventory())
	e.BeginPhase(1)
	pharmacy, _ := e.LocationByName("pharmacy")
	closed, _ := e.LocationByName("Hospital")

	tests := []struct {
		name string
		c    *Character
		loc  *Location
	}{
		{name: "Nil Character", c: nil, loc: pharmacy},
		{name: "Nil Location", c: father, loc: nil},
		{name: "Already Exploring", c: exploring, loc: pharmacy},
		{name: "Injured", c: injured, loc: pharmacy},
		{name: "Dead", c: dead, loc: pharmacy},
		{name: "Closed Location", c: father, loc: closed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e.SendCharacter(tt.c, tt.loc) {
				t.Fatalf("expected send to be rejected")
			}
			if len(e.Expeditions()) != 0 {
				t.Fatalf("expected no expeditions, got %d", len(e.Expeditions()))
			}
		})
	}
	if father.Exploring {
		t.Fatalf("expected rejected sends to leave the character home")
	}
}

func TestSendCharacterMarksExploring(t *testing.T) {
	father := NewCharacter("Father", 100, 100, 100, 100)
	e := newTestExploration(NewFamilyRoster(father), NewInventory())
	loc, ok := e.LocationByName("Pharmacy")
	if !ok {
		t.Fatalf("expected pharmacy to exist")
	}
	if !e.SendCharacter(father, loc) {
		t.Fatalf("expected send to succeed")
	}
	if !father.Exploring || e.Active() != 1 {
		t.Fatalf("expected one active expedition")
	}
	if e.SendCharacter(father, loc) {
		t.Fatalf("expected a second send of the same character to fail")
	}
	if e.Expeditions()[0].ID == "" {
		t.Fatalf("expected expedition to carry an id")
	}
}

func TestResolveExpeditionDeadlyRisk(t *testing.T) {
	rng := seededRNG(99)
	exp := &Expedition{Explorer: "Father", Location: Location{Name: "Subway", Risk: RiskDeadly, Available: true}}
	for i := 0; i < 200; i++ {
		res := ResolveExpedition(rng, exp, nil)
		if res.RiskFactor != 1.0 {
			t.Fatalf("expected risk factor 1.0, got %.2f", res.RiskFactor)
		}
		if res.SanityChange > -5 || res.SanityChange < -15 {
			t.Fatalf("expected sanity change in [-15,-5], got %.2f", res.SanityChange)
		}
		if len(res.FoundItems) < 1 || len(res.FoundItems) > 3 {
			t.Fatalf("expected 1 to 3 items, got %d", len(res.FoundItems))
		}
		if res.Injured && (res.HealthChange > -10 || res.HealthChange < -30) {
			t.Fatalf("expected injury damage in [-30,-10], got %.2f", res.HealthChange)
		}
		if !res.Injured && res.HealthChange != 0 {
			t.Fatalf("expected no damage without injury, got %.2f", res.HealthChange)
		}
		if res.FoundItems[0] != fallbackLootItem {
			t.Fatalf("expected fallback loot without a table, got %q", res.FoundItems[0])
		}
	}
}

func TestResolveAllAppliesOnce(t *testing.T) {
	father := NewCharacter("Father", 100, 100, 100, 100)
	inv := NewInventory()
	e := newTestExploration(NewFamilyRoster(father), inv)
	e.BeginPhase(3)
	loc, _ := e.LocationByName("Subway")
	e.SendCharacter(father, loc)

	results := e.ResolveAll()
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if father.Exploring {
		t.Fatalf("expected explorer to be home after resolution")
	}
	if father.Sanity() >= 100 {
		t.Fatalf("expected sanity loss, got %.2f", father.Sanity())
	}
	found := inv.Quantity("bandages")
	if found != len(results[0].FoundItems) {
		t.Fatalf("expected %d bandages in stock, got %d", len(results[0].FoundItems), found)
	}

	sanity := father.Sanity()
	if again := e.ResolveAll(); len(again) != 0 {
		t.Fatalf("expected second resolve to do nothing, got %d results", len(again))
	}
	if father.Sanity() != sanity || inv.Quantity("bandages") != found {
		t.Fatalf("expected second resolve to leave state unchanged")
	}
}

func TestRiskFactorTable(t *testing.T) {
	want := map[RiskTier]float64{RiskLow: 0.3, RiskMedium: 0.6, RiskHigh: 0.85, RiskDeadly: 1.0, RiskTier(9): 0.5}
	for tier, rf := range want {
		if got := tier.RiskFactor(); got != rf {
			t.Fatalf("expected %s risk factor %.2f, got %.2f", tier, rf, got)
		}
	}
}

func TestExpeditionLookupAndResolveOne(t *testing.T) {
	father := NewCharacter("Father", 100, 100, 100, 100)
	son := NewCharacter("Son", 100, 100, 100, 100)
	inv := NewInventory()
	bus := NewBus()
	var sentIDs, doneIDs []string
	bus.Subscribe(EventCharacterSent, func(ev Event) { sentIDs = append(sentIDs, ev.Expedition.ID) })
	bus.Subscribe(EventExplorationComplete, func(ev Event) { doneIDs = append(doneIDs, ev.Expedition.ID) })

	e := NewExplorationEngine(testRules(), ExplorationDeps{
		Roster:    NewFamilyRoster(father, son),
		Inventory: inv,
		Loot:      fixedLoot("bandages"),
		Locations: staticLocations{{Name: "Pharmacy", Risk: RiskLow, Available: true}},
		Bus:       bus,
		RNG:       seededRNG(11),
	})
	e.BeginPhase(1)
	loc, _ := e.LocationByName("Pharmacy")
	e.SendCharacter(father, loc)
	e.SendCharacter(son, loc)

	exps := e.Expeditions()
	if len(sentIDs) != 2 || sentIDs[0] != exps[0].ID || sentIDs[1] != exps[1].ID {
		t.Fatalf("expected sent events to carry expedition ids, got %v", sentIDs)
	}
	if exps[0].ID == exps[1].ID {
		t.Fatalf("expected distinct expedition ids")
	}

	found, ok := e.Expedition(exps[1].ShortID())
	if !ok || found.Explorer != "Son" {
		t.Fatalf("expected short id to find Son's expedition, got %+v", found)
	}
	if _, ok := e.Expedition(""); ok {
		t.Fatalf("expected empty id to match nothing")
	}
	if _, ok := e.Expedition("not-an-id"); ok {
		t.Fatalf("expected unknown id to match nothing")
	}

	if _, ok := e.ResolveOne(exps[1].ID); !ok {
		t.Fatalf("expected Son's expedition to resolve")
	}
	if son.Exploring || !father.Exploring {
		t.Fatalf("expected only Son home, son=%v father=%v", son.Exploring, father.Exploring)
	}
	if len(doneIDs) != 1 || doneIDs[0] != exps[1].ID {
		t.Fatalf("expected completion event for Son's expedition, got %v", doneIDs)
	}
	if _, ok := e.ResolveOne(exps[1].ID); ok {
		t.Fatalf("expected a finished expedition not to resolve twice")
	}

	if got := e.ResolveAll(); len(got) != 1 || father.Exploring {
		t.Fatalf("expected ResolveAll to bring Father home, got %d results", len(got))
	}
	if e.Active() != 0 {
		t.Fatalf("expected no active expeditions")
	}
}
