package game

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

type EffectKind string

const (
	EffectGrant         EffectKind = "grant"
	EffectConsume       EffectKind = "consume"
	EffectStats         EffectKind = "stats"
	EffectStartQuest    EffectKind = "quest_start"
	EffectCompleteQuest EffectKind = "quest_complete"
	EffectFailQuest     EffectKind = "quest_fail"
	EffectDegrade       EffectKind = "degrade"
	EffectSound         EffectKind = "sound"
	EffectGlitch        EffectKind = "glitch"
)

// Effect is a tagged variant; Kind selects which fields are read.
//
//	grant, consume          Item, Quantity
//	stats                   Target (empty = everyone), Stats
//	quest_*                 Quest
//	degrade, glitch         Amount
//	sound                   Sound
type Effect struct {
	Kind     EffectKind `yaml:"kind" json:"kind"`
	Item     string     `yaml:"item,omitempty" json:"item,omitempty"`
	Quantity int        `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	Target   string     `yaml:"target,omitempty" json:"target,omitempty"`
	Stats    StatDelta  `yaml:"stats,omitempty" json:"stats,omitempty"`
	Quest    string     `yaml:"quest,omitempty" json:"quest,omitempty"`
	Amount   float64    `yaml:"amount,omitempty" json:"amount,omitempty"`
	Sound    string     `yaml:"sound,omitempty" json:"sound,omitempty"`
}

// EffectExecutor is the single dispatch point for scripted effects. Any
// collaborator may be nil; effects that need it are then skipped.
type EffectExecutor struct {
	Roster    *FamilyRoster
	Inventory *Inventory
	Quests    *QuestLog
	Angel     *AngelEngine
	Sound     SoundPlayer
	Glitch    GlitchEffects
	Rules     Rules
	Log       *slog.Logger
}

func (x *EffectExecutor) Apply(e Effect) bool {
	log := loggerOrDiscard(x.Log)
	switch e.Kind {
	case EffectGrant:
		if x.Inventory == nil {
			log.Warn("effect skipped: no inventory", "kind", e.Kind)
			return false
		}
		return x.Inventory.AddItem(e.Item, e.Quantity)
	case EffectConsume:
		if x.Inventory == nil {
			log.Warn("effect skipped: no inventory", "kind", e.Kind)
			return false
		}
		if !x.Inventory.RemoveItem(e.Item, e.Quantity) {
			log.Warn("not enough stock to consume", "item", e.Item, "quantity", e.Quantity)
			return false
		}
		return true
	case EffectStats:
		if x.Roster == nil {
			log.Warn("effect skipped: no roster", "kind", e.Kind)
			return false
		}
		return applyStatEffect(x.Roster, StatEffect{Target: e.Target, StatDelta: e.Stats}, log)
	case EffectStartQuest:
		return x.quest(log, e, x.Quests.Start)
	case EffectCompleteQuest:
		return x.quest(log, e, x.Quests.Complete)
	case EffectFailQuest:
		return x.quest(log, e, x.Quests.Fail)
	case EffectDegrade:
		if x.Angel == nil {
			log.Warn("effect skipped: no angel", "kind", e.Kind)
			return false
		}
		x.Angel.DegradeProcessing(e.Amount)
		return true
	case EffectSound:
		if x.Sound == nil || strings.TrimSpace(e.Sound) == "" {
			return false
		}
		x.Sound.Play(e.Sound)
		return true
	case EffectGlitch:
		if x.Glitch == nil {
			return false
		}
		intensity := e.Amount
		if intensity <= 0 {
			intensity = 0.5
		}
		x.Glitch.Burst(clamp(intensity, 0, 1), x.Rules.GlitchBurstDuration)
		return true
	default:
		log.Warn("unknown effect kind", "kind", e.Kind)
		return false
	}
}

func (x *EffectExecutor) quest(log *slog.Logger, e Effect, fn func(string) bool) bool {
	if x.Quests == nil {
		log.Warn("effect skipped: no quest log", "kind", e.Kind)
		return false
	}
	if !fn(e.Quest) {
		log.Warn("quest transition rejected", "kind", e.Kind, "quest", e.Quest)
		return false
	}
	return true
}

var directiveRE = regexp.MustCompile(`\[([A-Za-z_]+)(?::([^\]]*))?\]`)

// ParseDirectives strips bracketed tags such as [GRANT:water:2] out of text
// and returns them as effects. Unknown or malformed tags are dropped.
//
//	[GRANT:item:n] [TAKE:item:n] [DEGRADE:n] [SOUND:name]
//	[GLITCH] [GLITCH:0.8] [QUEST:id] [QUEST_DONE:id] [QUEST_FAIL:id]
func ParseDirectives(text string) (string, []Effect) {
	var effects []Effect
	clean := directiveRE.ReplaceAllStringFunc(text, func(tag string) string {
		m := directiveRE.FindStringSubmatch(tag)
		args := []string{}
		if m[2] != "" {
			args = strings.Split(m[2], ":")
		}
		if e, ok := directiveEffect(strings.ToUpper(m[1]), args); ok {
			effects = append(effects, e)
		}
		return ""
	})
	return strings.Join(strings.Fields(clean), " "), effects
}

func directiveEffect(name string, args []string) (Effect, bool) {
	arg := func(i int) string {
		if i < len(args) {
			return strings.TrimSpace(args[i])
		}
		return ""
	}
	qty := func(i int) int {
		n, err := strconv.Atoi(arg(i))
		if err != nil || n <= 0 {
			return 1
		}
		return n
	}

	switch name {
	case "GRANT", "GIVE":
		if arg(0) == "" {
			return Effect{}, false
		}
		return Effect{Kind: EffectGrant, Item: strings.ToLower(arg(0)), Quantity: qty(1)}, true
	case "TAKE", "CONSUME":
		if arg(0) == "" {
			return Effect{}, false
		}
		return Effect{Kind: EffectConsume, Item: strings.ToLower(arg(0)), Quantity: qty(1)}, true
	case "DEGRADE":
		amount, err := strconv.ParseFloat(arg(0), 64)
		if err != nil || amount <= 0 {
			return Effect{}, false
		}
		return Effect{Kind: EffectDegrade, Amount: amount}, true
	case "SOUND":
		if arg(0) == "" {
			return Effect{}, false
		}
		return Effect{Kind: EffectSound, Sound: arg(0)}, true
	case "GLITCH":
		amount, _ := strconv.ParseFloat(arg(0), 64)
		return Effect{Kind: EffectGlitch, Amount: amount}, true
	case "QUEST":
		if arg(0) == "" {
			return Effect{}, false
		}
		return Effect{Kind: EffectStartQuest, Quest: arg(0)}, true
	case "QUEST_DONE":
		if arg(0) == "" {
			return Effect{}, false
		}
		return Effect{Kind: EffectCompleteQuest, Quest: arg(0)}, true
	case "QUEST_FAIL":
		if arg(0) == "" {
			return Effect{}, false
		}
		return Effect{Kind: EffectFailQuest, Quest: arg(0)}, true
	default:
		return Effect{}, false
	}
}
