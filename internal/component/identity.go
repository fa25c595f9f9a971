package component

// Identity names an entity for messages.
type Identity struct {
	Name   string
	Player bool
	Traits []string
}

// Position is the scene an entity is in; location triggers compare against it.
type Position struct {
	Scene string
}

// NPC carries the per-NPC data rolled at spawn.
type NPC struct {
	TemplateID  string
	Personality string
	Power       int

	TrainChance     float64
	AdventureChance float64
	InteractChance  float64
}
