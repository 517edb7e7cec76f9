package game

import (
	"context"
	"math/rand/v2"
	"time"
)

// AIPort sends one prompt and answers through exactly one of the two
// continuations. Implementations must not block the caller.
type AIPort interface {
	SendMessage(ctx context.Context, prompt string, onSuccess func(string), onFailure func(error))
}

type SoundPlayer interface {
	Play(name string)
}

type GlitchEffects interface {
	Burst(intensity float64, duration time.Duration)
}

// ResponseTable maps a mood to canned antagonist replies.
type ResponseTable interface {
	RandomResponse(rng *rand.Rand, mood Mood) (AngelResponse, bool)
}

type LootTable interface {
	RandomLoot(rng *rand.Rand, risk RiskTier) (string, bool)
}

type NarrativeTable interface {
	RandomDream(rng *rand.Rand) (string, bool)
	RandomNightmare(rng *rand.Rand) (string, bool)
}

type DilemmaSource interface {
	DilemmaForDay(rng *rand.Rand, day int) (*Dilemma, bool)
}

type LocationSource interface {
	Locations() []Location
}

// EffectRunner applies scripted effects. *EffectExecutor is the only
// implementation; engines take the interface so tests can stub it.
type EffectRunner interface {
	Apply(e Effect) bool
}
