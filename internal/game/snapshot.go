package game

// Snapshot is the flat record the persistence port stores.
type Snapshot struct {
	Day               int                 `json:"day"`
	Phase             string              `json:"phase"`
	GameOver          bool                `json:"game_over"`
	Characters        []CharacterSnapshot `json:"characters"`
	Inventory         []Slot              `json:"inventory"`
	AngelMood         string              `json:"angel_mood"`
	AngelProcessing   float64             `json:"angel_processing"`
	AngelInteractions int                 `json:"angel_interactions"`
	DilemmaDecided    bool                `json:"dilemma_decided"`
	Quests            []QuestSnapshot     `json:"quests"`
}

type CharacterSnapshot struct {
	Name    string  `json:"name"`
	Hunger  float64 `json:"hunger"`
	Thirst  float64 `json:"thirst"`
	Sanity  float64 `json:"sanity"`
	Health  float64 `json:"health"`
	Injured bool    `json:"injured"`
}

type QuestSnapshot struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	State       string `json:"state"`
}

func SnapshotCharacter(c *Character) CharacterSnapshot {
	return CharacterSnapshot{
		Name:    c.Name,
		Hunger:  c.Hunger(),
		Thirst:  c.Thirst(),
		Sanity:  c.Sanity(),
		Health:  c.Health(),
		Injured: c.Injured,
	}
}

func (s CharacterSnapshot) Character() *Character {
	c := NewCharacter(s.Name, s.Hunger, s.Thirst, s.Sanity, s.Health)
	c.Injured = s.Injured
	return c
}
