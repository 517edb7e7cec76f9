package game

import "testing"

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		name  string
		input string
		clean string
		want  []Effect
	}{
		{
			name:  "Grant With Quantity",
			input: "Here. [GRANT:Water:3]",
			clean: "Here.",
			want:  []Effect{{Kind: EffectGrant, Item: "water", Quantity: 3}},
		},
		{
			name:  "Default Quantity",
			input: "[GIVE:medkit] Use it well.",
			clean: "Use it well.",
			want:  []Effect{{Kind: EffectGrant, Item: "medkit", Quantity: 1}},
		},
		{
			name:  "Mixed Tags",
			input: "No. [TAKE:canned_food:2] [SOUND:static] [QUEST:radio]",
			clean: "No.",
			want: []Effect{
				{Kind: EffectConsume, Item: "canned_food", Quantity: 2},
				{Kind: EffectSound, Sound: "static"},
				{Kind: EffectStartQuest, Quest: "radio"},
			},
		},
		{
			name:  "Unknown And Malformed Dropped",
			input: "I [DANCE] [DEGRADE:abc] [GRANT] refuse.",
			clean: "I refuse.",
			want:  nil,
		},
		{
			name:  "Glitch Without Amount",
			input: "[GLITCH] e-e-error",
			clean: "e-e-error",
			want:  []Effect{{Kind: EffectGlitch}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, effects := ParseDirectives(tt.input)
			if clean != tt.clean {
				t.Fatalf("expected clean text %q, got %q", tt.clean, clean)
			}
			if len(effects) != len(tt.want) {
				t.Fatalf("expected %d effects, got %+v", len(tt.want), effects)
			}
			for i := range tt.want {
				if effects[i] != tt.want[i] {
					t.Fatalf("expected effect %+v at %d, got %+v", tt.want[i], i, effects[i])
				}
			}
		})
	}
}

func TestEffectExecutorDispatch(t *testing.T) {
	roster := hungryFamily()
	inv := NewInventory()
	inv.AddItem("water", 2)
	quests := NewQuestLog(nil)
	quests.Add("radio", "Fix the radio")
	angel := NewAngelEngine(testRules(), AngelDeps{})
	sound := &recordingSound{}
	glitch := &recordingGlitch{}

	x := &EffectExecutor{Roster: roster, Inventory: inv, Quests: quests, Angel: angel, Sound: sound, Glitch: glitch, Rules: testRules()}

	if !x.Apply(Effect{Kind: EffectGrant, Item: "medkit", Quantity: 1}) || inv.Quantity("medkit") != 1 {
		t.Fatalf("expected grant to add stock")
	}
	if x.Apply(Effect{Kind: EffectConsume, Item: "water", Quantity: 5}) {
		t.Fatalf("expected short consume to fail")
	}
	if !x.Apply(Effect{Kind: EffectConsume, Item: "water", Quantity: 2}) || inv.Has("water", 1) {
		t.Fatalf("expected consume to take stock")
	}
	if !x.Apply(Effect{Kind: EffectStats, Target: "Father", Stats: StatDelta{Sanity: -30}}) {
		t.Fatalf("expected stats effect to apply")
	}
	if father, _ := roster.ByName("Father"); father.Sanity() != 70 {
		t.Fatalf("expected Father sanity 70, got %.0f", father.Sanity())
	}
	if x.Apply(Effect{Kind: EffectStats, Target: "Uncle", Stats: StatDelta{Sanity: -30}}) {
		t.Fatalf("expected unknown target to fail")
	}
	if x.Apply(Effect{Kind: EffectCompleteQuest, Quest: "radio"}) {
		t.Fatalf("expected completing an inactive quest to fail")
	}
	if !x.Apply(Effect{Kind: EffectStartQuest, Quest: "radio"}) || !x.Apply(Effect{Kind: EffectCompleteQuest, Quest: "radio"}) {
		t.Fatalf("expected quest to start and complete")
	}
	if !x.Apply(Effect{Kind: EffectDegrade, Amount: 30}) || angel.Processing() != 70 {
		t.Fatalf("expected degrade to lower processing to 70, got %.0f", angel.Processing())
	}
	x.Apply(Effect{Kind: EffectSound, Sound: "door_slam"})
	x.Apply(Effect{Kind: EffectGlitch, Amount: 3})
	if len(sound.played) != 1 || sound.played[0] != "door_slam" {
		t.Fatalf("expected door_slam cue, got %v", sound.played)
	}
	if len(glitch.bursts) != 1 || glitch.bursts[0] != 1 {
		t.Fatalf("expected clamped burst of 1, got %v", glitch.bursts)
	}
	if x.Apply(Effect{Kind: "teleport"}) {
		t.Fatalf("expected unknown kind to be rejected")
	}
}

func TestEffectExecutorMissingCollaborators(t *testing.T) {
	x := &EffectExecutor{}
	for _, e := range []Effect{
		{Kind: EffectGrant, Item: "water", Quantity: 1},
		{Kind: EffectStats, Stats: StatDelta{Hunger: 5}},
		{Kind: EffectStartQuest, Quest: "radio"},
		{Kind: EffectDegrade, Amount: 5},
		{Kind: EffectSound, Sound: "beep"},
		{Kind: EffectGlitch},
	} {
		if x.Apply(e) {
			t.Fatalf("expected %s to be skipped without collaborators", e.Kind)
		}
	}
}

func TestQuestTransitions(t *testing.T) {
	bus := NewBus()
	var changes []QuestState
	bus.Subscribe(EventQuestChanged, func(e Event) { changes = append(changes, e.Quest.State) })

	q := NewQuestLog(bus)
	if !q.Add("water_filter", "Find a filter") || q.Add("water_filter", "dup") {
		t.Fatalf("expected unique quest ids")
	}
	if q.Fail("water_filter") {
		t.Fatalf("expected failing an inactive quest to be rejected")
	}
	q.Start("water_filter")
	q.Fail("water_filter")
	if q.Start("water_filter") || q.Complete("water_filter") {
		t.Fatalf("expected a failed quest to stay failed")
	}
	if len(changes) != 2 || changes[0] != QuestActive || changes[1] != QuestFailed {
		t.Fatalf("expected active then failed, got %v", changes)
	}
}
