package game

import (
	"fmt"
	"time"
)

// Rules holds the tunable constants of a run.
type Rules struct {
	TotalDays int
	Seed      int64

	AngelDailyCap        int
	ProcessingLossPerDay float64
	HungerDecay          float64
	ThirstDecay          float64
	SanityDecay          float64
	StarvationDamage     float64
	DehydrationDamage    float64
	NightmareThreshold   float64
	InjuryHealThreshold  float64
	VoteDuration         time.Duration
	GlitchBurstDuration  time.Duration
}

func DefaultRules() Rules {
	return Rules{
		TotalDays:            30,
		AngelDailyCap:        3,
		ProcessingLossPerDay: 3,
		HungerDecay:          15,
		ThirstDecay:          20,
		SanityDecay:          5,
		StarvationDamage:     10,
		DehydrationDamage:    15,
		NightmareThreshold:   40,
		InjuryHealThreshold:  50,
		VoteDuration:         30 * time.Second,
		GlitchBurstDuration:  600 * time.Millisecond,
	}
}

func (r Rules) Validate() error {
	if r.TotalDays < 1 {
		return fmt.Errorf("total days must be at least 1, got %d", r.TotalDays)
	}
	if r.AngelDailyCap < 0 {
		return fmt.Errorf("angel daily cap must not be negative, got %d", r.AngelDailyCap)
	}
	for name, v := range map[string]float64{
		"processing loss":    r.ProcessingLossPerDay,
		"hunger decay":       r.HungerDecay,
		"thirst decay":       r.ThirstDecay,
		"sanity decay":       r.SanityDecay,
		"starvation damage":  r.StarvationDamage,
		"dehydration damage": r.DehydrationDamage,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %.2f", name, v)
		}
	}
	if r.NightmareThreshold < StatMin || r.NightmareThreshold > StatMax {
		return fmt.Errorf("nightmare threshold must be between 0 and 100, got %.2f", r.NightmareThreshold)
	}
	if r.InjuryHealThreshold < StatMin || r.InjuryHealThreshold > StatMax {
		return fmt.Errorf("injury heal threshold must be between 0 and 100, got %.2f", r.InjuryHealThreshold)
	}
	if r.VoteDuration <= 0 {
		return fmt.Errorf("vote duration must be positive, got %s", r.VoteDuration)
	}
	return nil
}
