package data

// CharacterTemplate is the starting point of a player entity.
type CharacterTemplate struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	Realm              string         `yaml:"realm"`
	Scene              string         `yaml:"scene"`
	BaseAttributes     BaseAttributes `yaml:"base_attributes"`
	InitialStats       InitialStats   `yaml:"initial_stats"`
	StartingItems      map[string]int `yaml:"starting_items"`
	StartingAbilities  []string       `yaml:"starting_abilities"`
	StartingTechniques []string       `yaml:"starting_techniques"`
	InventoryCapacity  int            `yaml:"inventory_capacity"`
}

// BaseAttributes are the six core stats plus spiritual root grade.
// Zero means "use the default".
type BaseAttributes struct {
	Constitution  int `yaml:"constitution"`
	Comprehension int `yaml:"comprehension"`
	Charm         int `yaml:"charm"`
	Luck          int `yaml:"luck"`
	Determination int `yaml:"determination"`
	BoneRoot      int `yaml:"bone_root"`
	SpiritualRoot int `yaml:"spiritual_root"`
}

type InitialStats struct {
	Health         int `yaml:"health"`
	Mana           int `yaml:"mana"`
	Lifespan       int `yaml:"lifespan"`
	Age            int `yaml:"age"`
	PhysicalAttack int `yaml:"physical_attack"`
	SpellAttack    int `yaml:"spell_attack"`
	Defense        int `yaml:"defense"`
}

// Ability is a castable spell/skill.
type Ability struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Element string         `yaml:"element"`
	Cost    Cost           `yaml:"cost"`
	Effects AbilityEffects `yaml:"effects"`
}

type Cost struct {
	Mana int `yaml:"mana"`
}

type AbilityEffects struct {
	Damage         int     `yaml:"damage"`
	HealAmount     int     `yaml:"heal_amount"`
	FreezeDuration float64 `yaml:"freeze_duration"`
	// StateID/StateDuration apply an arbitrary debuff to the target.
	StateID       string  `yaml:"state_id"`
	StateDuration float64 `yaml:"state_duration"`
}

// Technique is a cultivation method; learning it is recorded on Skills.
// Requirements and Effects are keyed by attribute content name; effects are
// permanent additions applied once when the technique is learned.
type Technique struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Type         string         `yaml:"type"`
	Level        int            `yaml:"level"`
	Description  string         `yaml:"description"`
	Requirements map[string]int `yaml:"requirements"`
	Prerequisite string         `yaml:"prerequisite"`
	Effects      map[string]int `yaml:"effects"`
}

type Item struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"` // consumable, weapon, armor, accessory, material
	Slot    string         `yaml:"slot"` // equipment slot for wearables
	Effects ItemEffects    `yaml:"effects"`
	Bonuses map[string]int `yaml:"bonuses"` // physical_attack, spell_attack, defense while equipped
}

type ItemEffects struct {
	HealthRestore int `yaml:"health_restore"`
	ManaRestore   int `yaml:"mana_restore"`
}

// Realm is a cultivation tier.
type Realm struct {
	ID                       string               `yaml:"id"`
	Name                     string               `yaml:"name"`
	NextRealm                string               `yaml:"next_realm"`
	BreakthroughRequirements Requirements         `yaml:"breakthrough_requirements"`
	AttributeMultipliers     AttributeMultipliers `yaml:"attribute_multipliers"`
	LifespanBonus            int                  `yaml:"lifespan_bonus"`
}

type Requirements struct {
	Comprehension int `yaml:"comprehension"`
	Level         int `yaml:"level"`
}

type AttributeMultipliers struct {
	Health float64 `yaml:"health"`
	Mana   float64 `yaml:"mana"`
}

// Encounter is a random event with a list of choices.
type Encounter struct {
	ID                string            `yaml:"id"`
	Name              string            `yaml:"name"`
	Description       string            `yaml:"description"`
	TriggerConditions TriggerConditions `yaml:"trigger_conditions"`
	Choices           []Choice          `yaml:"choices"`
}

type TriggerConditions struct {
	// Probability is the per-check acceptance chance; nil uses the default.
	Probability *float64 `yaml:"probability"`
	Realm       string   `yaml:"realm"`
	MinLevel    int      `yaml:"min_level"`
}

type Choice struct {
	Text     string    `yaml:"text"`
	Outcomes []Outcome `yaml:"outcomes"`
}

// Outcome is one weighted result of a choice.
type Outcome struct {
	Result      string      `yaml:"result"`
	Probability float64     `yaml:"probability"`
	Message     string      `yaml:"message"`
	Rewards     Rewards     `yaml:"rewards"`
	Combat      *CombatSpec `yaml:"combat"`
}

type Rewards struct {
	Items      []ItemGrant `yaml:"items"`
	Experience int         `yaml:"experience"`
	Technique  string      `yaml:"technique"`
	Ability    string      `yaml:"ability"`
	Heal       int         `yaml:"heal"`
	Mana       int         `yaml:"mana"`
}

type ItemGrant struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// CombatSpec describes an enemy synthesized for an encounter fight.
type CombatSpec struct {
	Enemy string `yaml:"enemy"`
	Level int    `yaml:"level"`
}

// Sect is a school to join. Bonus is applied once on joining, keyed like
// Technique.Effects.
type Sect struct {
	ID               string         `yaml:"id"`
	Name             string         `yaml:"name"`
	Description      string         `yaml:"description"`
	Skills           []string       `yaml:"skills"`
	EntryRequirement map[string]int `yaml:"entry_requirement"`
	Bonus            map[string]int `yaml:"bonus"`
}

type SectSkill struct {
	ID               string         `yaml:"id"`
	Name             string         `yaml:"name"`
	Sect             string         `yaml:"sect"`
	PowerRequirement int            `yaml:"power_requirement"`
	Effects          AbilityEffects `yaml:"effects"`
}

// IntRange is an inclusive [min, max] pair written as a two element list.
type IntRange [2]int

// NPCTemplate drives random NPC generation.
type NPCTemplate struct {
	ID             string              `yaml:"id"`
	NamePool       []string            `yaml:"name_pool"`
	Personality    string              `yaml:"personality"`
	BaseAttributes map[string]IntRange `yaml:"base_attributes"`
	InitialStats   NPCStats            `yaml:"initial_stats"`
	Behavior       NPCBehavior         `yaml:"behavior"`
}

type NPCStats struct {
	Health     int      `yaml:"health"`
	Mana       int      `yaml:"mana"`
	Lifespan   int      `yaml:"lifespan"`
	AgeRange   IntRange `yaml:"age_range"`
	PowerRange IntRange `yaml:"power_range"`
}

type NPCBehavior struct {
	TrainProbability     float64 `yaml:"train_probability"`
	AdventureProbability float64 `yaml:"adventure_probability"`
	InteractProbability  float64 `yaml:"interact_probability"`
}
