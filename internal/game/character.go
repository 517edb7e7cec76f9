package game

import "fmt"

const (
	StatMin = 0.0
	StatMax = 100.0

	CriticalThreshold    = 15.0
	InsanityThreshold    = 20.0
	DehydrationThreshold = 20.0
)

type Stat string

const (
	StatHunger Stat = "hunger"
	StatThirst Stat = "thirst"
	StatSanity Stat = "sanity"
	StatHealth Stat = "health"
)

func AllStats() []Stat {
	return []Stat{StatHunger, StatThirst, StatSanity, StatHealth}
}

func ParseStat(raw string) (Stat, bool) {
	switch Stat(raw) {
	case StatHunger, StatThirst, StatSanity, StatHealth:
		return Stat(raw), true
	case "food":
		return StatHunger, true
	case "water":
		return StatThirst, true
	case "mind":
		return StatSanity, true
	case "hp":
		return StatHealth, true
	default:
		return "", false
	}
}

// StatDelta is a set of additive changes, one per survival stat.
type StatDelta struct {
	Hunger float64 `yaml:"hunger,omitempty" json:"hunger,omitempty"`
	Thirst float64 `yaml:"thirst,omitempty" json:"thirst,omitempty"`
	Sanity float64 `yaml:"sanity,omitempty" json:"sanity,omitempty"`
	Health float64 `yaml:"health,omitempty" json:"health,omitempty"`
}

func (d StatDelta) IsZero() bool {
	return d == StatDelta{}
}

// Character is one family member. Stats are satiation-style meters: 100 is
// best, 0 is worst, and every write goes through clampStat.
type Character struct {
	Name string

	hunger float64
	thirst float64
	sanity float64
	health float64

	Injured   bool
	Exploring bool
}

func NewCharacter(name string, hunger, thirst, sanity, health float64) *Character {
	return &Character{
		Name:   name,
		hunger: clampStat(hunger),
		thirst: clampStat(thirst),
		sanity: clampStat(sanity),
		health: clampStat(health),
	}
}

func (c *Character) Hunger() float64 { return c.hunger }
func (c *Character) Thirst() float64 { return c.thirst }
func (c *Character) Sanity() float64 { return c.sanity }
func (c *Character) Health() float64 { return c.health }

func (c *Character) ModifyHunger(delta float64) { c.hunger = clampStat(c.hunger + delta) }
func (c *Character) ModifyThirst(delta float64) { c.thirst = clampStat(c.thirst + delta) }
func (c *Character) ModifySanity(delta float64) { c.sanity = clampStat(c.sanity + delta) }
func (c *Character) ModifyHealth(delta float64) { c.health = clampStat(c.health + delta) }

func (c *Character) Get(stat Stat) float64 {
	switch stat {
	case StatHunger:
		return c.hunger
	case StatThirst:
		return c.thirst
	case StatSanity:
		return c.sanity
	case StatHealth:
		return c.health
	default:
		return 0
	}
}

func (c *Character) Modify(stat Stat, delta float64) {
	switch stat {
	case StatHunger:
		c.ModifyHunger(delta)
	case StatThirst:
		c.ModifyThirst(delta)
	case StatSanity:
		c.ModifySanity(delta)
	case StatHealth:
		c.ModifyHealth(delta)
	}
}

// Set writes an absolute value through the same clamp as Modify.
func (c *Character) Set(stat Stat, value float64) {
	c.Modify(stat, value-c.Get(stat))
}

func (c *Character) Apply(d StatDelta) {
	c.ModifyHunger(d.Hunger)
	c.ModifyThirst(d.Thirst)
	c.ModifySanity(d.Sanity)
	c.ModifyHealth(d.Health)
}

func (c *Character) IsAlive() bool {
	return c.health > 0
}

func (c *Character) IsCritical() bool {
	if !c.IsAlive() {
		return false
	}
	return c.hunger <= CriticalThreshold ||
		c.thirst <= CriticalThreshold ||
		c.sanity <= CriticalThreshold ||
		c.health <= CriticalThreshold
}

func (c *Character) IsInsane() bool {
	return c.sanity <= InsanityThreshold
}

func (c *Character) IsDehydrated() bool {
	return c.thirst <= DehydrationThreshold
}

// IsAvailable reports whether the character can be sent out of the bunker.
func (c *Character) IsAvailable() bool {
	return c.IsAlive() && !c.Injured && !c.Exploring
}

func (c *Character) String() string {
	return fmt.Sprintf("%s (hunger %.0f, thirst %.0f, sanity %.0f, health %.0f)", c.Name, c.hunger, c.thirst, c.sanity, c.health)
}

func clampStat(v float64) float64 {
	return clamp(v, StatMin, StatMax)
}

func clamp(number, min, max float64) float64 {
	if number < min {
		return min
	}

	if number > max {
		return max
	}

	return number
}
