package game

import (
	"context"
	"math/rand/v2"
	"time"
)

type pendingCall struct {
	prompt    string
	onSuccess func(string)
	onFailure func(error)
}

// stubAI holds every request until the test answers it.
type stubAI struct {
	calls []pendingCall
}

func (s *stubAI) SendMessage(_ context.Context, prompt string, onSuccess func(string), onFailure func(error)) {
	s.calls = append(s.calls, pendingCall{prompt: prompt, onSuccess: onSuccess, onFailure: onFailure})
}

type recordingSound struct {
	played []string
}

func (r *recordingSound) Play(name string) { r.played = append(r.played, name) }

type recordingGlitch struct {
	bursts []float64
}

func (r *recordingGlitch) Burst(intensity float64, _ time.Duration) {
	r.bursts = append(r.bursts, intensity)
}

type fixedResponses struct {
	grants []Grant
}

func (f fixedResponses) RandomResponse(_ *rand.Rand, mood Mood) (AngelResponse, bool) {
	return AngelResponse{Message: "Take it.", Grants: append([]Grant(nil), f.grants...), Mood: mood}, true
}

type fixedLoot string

func (f fixedLoot) RandomLoot(*rand.Rand, RiskTier) (string, bool) { return string(f), true }

type fixedDilemmas struct {
	dilemma Dilemma
}

func (f fixedDilemmas) DilemmaForDay(*rand.Rand, int) (*Dilemma, bool) {
	return f.dilemma.Clone(), true
}

type staticLocations []Location

func (s staticLocations) Locations() []Location { return append([]Location(nil), s...) }

type fixedNarratives struct {
	dream, nightmare string
}

func (f fixedNarratives) RandomDream(*rand.Rand) (string, bool) { return f.dream, f.dream != "" }
func (f fixedNarratives) RandomNightmare(*rand.Rand) (string, bool) {
	return f.nightmare, f.nightmare != ""
}

func testRules() Rules {
	r := DefaultRules()
	r.Seed = 42
	return r
}

func testFamily() []*Character {
	return []*Character{
		NewCharacter("Father", 100, 100, 100, 100),
		NewCharacter("Mother", 100, 100, 100, 100),
	}
}
