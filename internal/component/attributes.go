package component

// Attributes stores the numeric stats of a character or NPC.
// Pure data — mutations happen in systems and resolvers.
type Attributes struct {
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int

	Constitution  int
	Comprehension int
	Charm         int
	Luck          int
	Determination int
	BoneRoot      int
	SpiritualRoot int // grade

	PhysicalAttack int
	SpellAttack    int
	Defense        int

	Age      int
	Lifespan int

	Level      int
	Experience int

	// Dead is set when the death notification has been emitted.
	Dead bool
}

// DefaultAttributes mirrors the baseline stat block used when a template
// leaves a field out.
func DefaultAttributes() Attributes {
	return Attributes{
		Health: 100, MaxHealth: 100,
		Mana: 50, MaxMana: 50,
		Constitution: 5, Comprehension: 5, Charm: 5, Luck: 5,
		Determination: 5, BoneRoot: 5, SpiritualRoot: 3,
		PhysicalAttack: 10, Defense: 5,
		Age: 16, Lifespan: 80,
		Level: 1,
	}
}

// Clamp restores 0 <= Health <= MaxHealth and 0 <= Mana <= MaxMana.
func (a *Attributes) Clamp() {
	if a.MaxHealth < 0 {
		a.MaxHealth = 0
	}
	if a.MaxMana < 0 {
		a.MaxMana = 0
	}
	a.Health = clamp(a.Health, 0, a.MaxHealth)
	a.Mana = clamp(a.Mana, 0, a.MaxMana)
}

// HealthRatio returns Health/MaxHealth, 0 when MaxHealth is 0.
func (a *Attributes) HealthRatio() float64 {
	if a.MaxHealth <= 0 {
		return 0
	}
	return float64(a.Health) / float64(a.MaxHealth)
}

// Value looks a stat up by its content name ("health", "luck", "bone_root"...).
func (a *Attributes) Value(name string) (int, bool) {
	switch name {
	case "health":
		return a.Health, true
	case "max_health":
		return a.MaxHealth, true
	case "mana":
		return a.Mana, true
	case "max_mana":
		return a.MaxMana, true
	case "constitution":
		return a.Constitution, true
	case "comprehension":
		return a.Comprehension, true
	case "charm":
		return a.Charm, true
	case "luck":
		return a.Luck, true
	case "determination":
		return a.Determination, true
	case "bone_root":
		return a.BoneRoot, true
	case "spiritual_root":
		return a.SpiritualRoot, true
	case "physical_attack":
		return a.PhysicalAttack, true
	case "spell_attack":
		return a.SpellAttack, true
	case "defense":
		return a.Defense, true
	case "age":
		return a.Age, true
	case "lifespan":
		return a.Lifespan, true
	case "level":
		return a.Level, true
	case "experience":
		return a.Experience, true
	case "power":
		return a.Power(), true
	}
	return 0, false
}

// Power is the combined attack used by sect and technique requirements.
func (a *Attributes) Power() int {
	return a.PhysicalAttack + a.SpellAttack
}

// SetBase overwrites one of the creation-time stats by content name. Derived
// values (health, mana, age...) are not settable this way.
func (a *Attributes) SetBase(name string, v int) bool {
	switch name {
	case "constitution":
		a.Constitution = v
	case "comprehension":
		a.Comprehension = v
	case "charm":
		a.Charm = v
	case "luck":
		a.Luck = v
	case "determination":
		a.Determination = v
	case "bone_root":
		a.BoneRoot = v
	case "spiritual_root":
		a.SpiritualRoot = v
	default:
		return false
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
