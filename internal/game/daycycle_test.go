package game

import (
	"context"
	"testing"
	"time"
)

func newTestDayCycle(t *testing.T, rules Rules, family []*Character) *DayCycle {
	t.Helper()
	d, err := NewDayCycle(Setup{
		Rules:  rules,
		Family: family,
		Stock:  []Slot{{ItemID: "water", Quantity: 4}},
		Quests: []Quest{{ID: "radio", Description: "Fix the radio"}},
		Tables: Tables{
			Responses: fixedResponses{grants: []Grant{{ItemID: "water", Quantity: 1}}},
			Loot:      fixedLoot("scrap"),
			Dilemmas:  fixedDilemmas{dilemma: *rationDilemma()},
			Locations: staticLocations{{Name: "Pharmacy", Risk: RiskLow, Available: true}},
		},
	})
	if err != nil {
		t.Fatalf("new day cycle: %v", err)
	}
	return d
}

func TestDayCyclePhaseOrder(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	var phases []Phase
	d.Bus().Subscribe(EventPhaseChanged, func(e Event) { phases = append(phases, e.Phase) })

	d.Start()
	for i := 0; i < 5; i++ {
		d.CompletePhase()
	}

	want := append(AllPhases(), PhaseStatusReview)
	if len(phases) != len(want) {
		t.Fatalf("expected phases %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, phases[i])
		}
	}
	if d.Day() != 2 {
		t.Fatalf("expected day 2 after a full cycle, got %d", d.Day())
	}
}

func TestDayCycleCompleteBeforeStartStarts(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	if got := d.CompletePhase(); got != PhaseStatusReview {
		t.Fatalf("expected first call to enter StatusReview, got %s", got)
	}
	if d.Status.LastReport() == nil {
		t.Fatalf("expected status report generated on entry")
	}
}

func TestDayCycleRunsEnginesPerPhase(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	d.Start()
	d.CompletePhase()

	if d.Phase() != PhaseAngelInteraction || d.Angel.InteractionsLeft() != 3 {
		t.Fatalf("expected a fresh angel budget, got %d", d.Angel.InteractionsLeft())
	}
	d.Angel.RequestResources(context.Background(), "water")
	if d.Inventory().Quantity("water") != 5 {
		t.Fatalf("expected granted water, got %d", d.Inventory().Quantity("water"))
	}

	d.CompletePhase()
	father, _ := d.Roster().ByName("Father")
	loc, _ := d.Exploration.LocationByName("Pharmacy")
	d.Exploration.SendCharacter(father, loc)
	d.CompletePhase()
	if father.Exploring || d.Inventory().Quantity("scrap") == 0 {
		t.Fatalf("expected expedition resolved when leaving exploration")
	}

	if d.Phase() != PhaseDailyChoice || d.Dilemma.Current() == nil {
		t.Fatalf("expected a dilemma presented")
	}
	d.Dilemma.MakeChoice(2)
	d.CompletePhase()
	if d.Dilemma.Current() != nil {
		t.Fatalf("expected dilemma cleared after daily choice")
	}
	if d.Night.LastReport() == nil || d.Night.LastReport().Day != 1 {
		t.Fatalf("expected night report for day 1")
	}
}

func TestDayCycleSurvivesAllDays(t *testing.T) {
	rules := testRules()
	rules.TotalDays = 2
	d := newTestDayCycle(t, rules, testFamily())
	overs := 0
	d.Bus().Subscribe(EventGameOver, func(Event) { overs++ })

	d.Start()
	for i := 0; i < 10; i++ {
		d.CompletePhase()
	}
	if !d.GameOver() || d.Outcome().Status != RunSurvived {
		t.Fatalf("expected survived outcome, got %+v", d.Outcome())
	}
	if overs != 1 {
		t.Fatalf("expected one game over event, got %d", overs)
	}

	day := d.Day()
	d.CompletePhase()
	if d.Day() != day {
		t.Fatalf("expected time to stop after game over")
	}
}

func TestDayCyclePerishes(t *testing.T) {
	family := []*Character{NewCharacter("Father", 0, 0, 50, 10)}
	d := newTestDayCycle(t, testRules(), family)
	d.Start()
	for i := 0; i < 5; i++ {
		d.CompletePhase()
	}
	if d.Outcome().Status != RunPerished {
		t.Fatalf("expected perished outcome, got %+v", d.Outcome())
	}
}

func TestNewDayCycleRejectsBadSetup(t *testing.T) {
	if _, err := NewDayCycle(Setup{Rules: Rules{}}); err == nil {
		t.Fatalf("expected invalid rules to fail")
	}
	dup := []*Character{NewCharacter("Father", 1, 1, 1, 1), NewCharacter("Father", 1, 1, 1, 1)}
	if _, err := NewDayCycle(Setup{Rules: testRules(), Family: dup}); err == nil {
		t.Fatalf("expected duplicate family member to fail")
	}
}

func TestDayCycleSnapshotRestore(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	d.Start()
	for i := 0; i < 7; i++ {
		d.CompletePhase()
	}
	d.Quests().Start("radio")
	d.Angel.DegradeProcessing(10)
	snap := d.Snapshot()

	if snap.Day != 2 || snap.Phase != string(PhaseCityExploration) {
		t.Fatalf("expected day 2 exploration, got day %d %s", snap.Day, snap.Phase)
	}

	restored := newTestDayCycle(t, testRules(), nil)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Day() != 2 || restored.Phase() != PhaseCityExploration {
		t.Fatalf("expected restored day 2 exploration, got %d %s", restored.Day(), restored.Phase())
	}
	if restored.Roster().Len() != 2 {
		t.Fatalf("expected 2 family members, got %d", restored.Roster().Len())
	}
	father, _ := restored.Roster().ByName("Father")
	orig, _ := d.Roster().ByName("Father")
	if SnapshotCharacter(father) != SnapshotCharacter(orig) {
		t.Fatalf("expected Father restored as %+v, got %+v", SnapshotCharacter(orig), SnapshotCharacter(father))
	}
	if restored.Inventory().Quantity("water") != d.Inventory().Quantity("water") {
		t.Fatalf("expected inventory restored")
	}
	if q, ok := restored.Quests().Get("radio"); !ok || q.State != QuestActive {
		t.Fatalf("expected active radio quest")
	}
	if restored.Angel.Processing() != d.Angel.Processing() || restored.Angel.Mood() != d.Angel.Mood() {
		t.Fatalf("expected angel state restored")
	}

	restored.CompletePhase()
	if restored.Phase() != PhaseDailyChoice {
		t.Fatalf("expected play to continue from the restored phase, got %s", restored.Phase())
	}
}

func TestDayCycleRestoreRejectsBadSnapshot(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	if err := d.Restore(Snapshot{Day: 1, Phase: "Lunch"}); err == nil {
		t.Fatalf("expected unknown phase to fail")
	}
	if err := d.Restore(Snapshot{Day: 0, Phase: string(PhaseStatusReview)}); err == nil {
		t.Fatalf("expected day 0 to fail")
	}
}

type mailboxAI struct {
	mb *Mailbox
}

func (m mailboxAI) SendMessage(ctx context.Context, _ string, onSuccess func(string), _ func(error)) {
	go m.mb.Post(ctx, func() { onSuccess("Granted. [GRANT:medkit]") })
}

func TestDayCycleAIContinuationsRunOnAwait(t *testing.T) {
	mb := NewMailbox(4)
	d, err := NewDayCycle(Setup{Rules: testRules(), Family: testFamily(), AI: mailboxAI{mb: mb}, Mailbox: mb})
	if err != nil {
		t.Fatalf("new day cycle: %v", err)
	}
	d.Start()
	d.CompletePhase()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d.Angel.RequestResources(ctx, "medicine")
	if d.Inventory().Quantity("medkit") != 0 {
		t.Fatalf("expected grant to wait for the continuation")
	}
	if err := d.Await(ctx); err != nil {
		t.Fatalf("await: %v", err)
	}
	if d.Inventory().Quantity("medkit") != 1 || d.Angel.Pending() != 0 {
		t.Fatalf("expected medkit granted after await, got %d", d.Inventory().Quantity("medkit"))
	}
}

func TestRestoreDropsTransientPhaseState(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	d.Start()
	atReview := d.Snapshot()

	d.CompletePhase()
	d.CompletePhase()
	father, _ := d.Roster().ByName("Father")
	loc, _ := d.Exploration.LocationByName("Pharmacy")
	if !d.Exploration.SendCharacter(father, loc) {
		t.Fatalf("expected Father to head out")
	}
	if err := d.Restore(atReview); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(d.Exploration.Expeditions()) != 0 {
		t.Fatalf("expected expeditions dropped on restore")
	}
	if f, _ := d.Roster().ByName("Father"); f.Exploring {
		t.Fatalf("expected Father home after restore")
	}

	for d.Phase() != PhaseDailyChoice {
		d.CompletePhase()
	}
	if d.Dilemma.Current() == nil {
		t.Fatalf("expected a dilemma in DailyChoice")
	}
	if err := d.Restore(atReview); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if d.Phase() != PhaseStatusReview || d.Dilemma.Current() != nil {
		t.Fatalf("expected no dilemma after restoring StatusReview, phase=%s", d.Phase())
	}
	if d.Dilemma.MakeChoice(2) {
		t.Fatalf("expected the old dilemma to be unresolvable")
	}
	if got := d.Inventory().Quantity("canned_food"); got != 0 {
		t.Fatalf("expected no hoarded food, got %d", got)
	}
}

func TestRestoreKeepsDecidedDilemmaClosed(t *testing.T) {
	d := newTestDayCycle(t, testRules(), testFamily())
	d.Start()
	for d.Phase() != PhaseDailyChoice {
		d.CompletePhase()
	}
	d.Angel.RequestResources(context.Background(), "water")
	d.Dilemma.MakeChoice(2)
	snap := d.Snapshot()
	if !snap.DilemmaDecided || snap.AngelInteractions != 1 {
		t.Fatalf("expected decided dilemma and one interaction saved, got %+v", snap)
	}

	restored := newTestDayCycle(t, testRules(), nil)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Dilemma.Current() != nil || restored.Dilemma.MakeChoice(2) {
		t.Fatalf("expected the decided dilemma to stay closed")
	}
	if got := restored.Inventory().Quantity("canned_food"); got != 2 {
		t.Fatalf("expected the saved hoard of 2, got %d", got)
	}
	if restored.Angel.InteractionsUsed() != 1 {
		t.Fatalf("expected spent budget restored, got %d", restored.Angel.InteractionsUsed())
	}
}
