package combat

import "github.com/l1jgo/cultivation/internal/component"

// Damage formula constants.
const (
	DefenseFactor   = 0.5   // share of defense subtracted from physical damage
	LuckCritFactor  = 0.01  // physical crit chance per point of luck
	CompCritFactor  = 0.005 // spell crit chance per point of comprehension
	PhysicalCritMul = 2.0
	SpellCritMul    = 1.5
)

// PhysicalDamage computes a physical hit. roll is a uniform draw in [0, 1)
// compared against the attacker's crit chance.
//
//	raw = base + attacker.PhysicalAttack
//	dmg = max(1, raw - defender.Defense*0.5), doubled on crit, truncated
func PhysicalDamage(att, def *component.Attributes, base int, roll float64) (int, bool) {
	raw := float64(base + att.PhysicalAttack)
	dmg := max(1, raw-float64(def.Defense)*DefenseFactor)
	if roll < float64(att.Luck)*LuckCritFactor {
		return int(dmg * PhysicalCritMul), true
	}
	return int(dmg), false
}

// SpellDamage computes an ability hit. resistance is the target's element
// resistance in [0, 1].
//
//	raw = base + caster.SpellAttack
//	dmg = max(1, raw * (1 - resistance)), x1.5 on crit, truncated
func SpellDamage(caster *component.Attributes, base int, resistance, roll float64) (int, bool) {
	resistance = min(max(resistance, 0), 1)
	raw := float64(base + caster.SpellAttack)
	dmg := max(1, raw*(1-resistance))
	if roll < float64(caster.Comprehension)*CompCritFactor {
		return int(dmg * SpellCritMul), true
	}
	return int(dmg), false
}
