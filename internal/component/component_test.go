package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryCountsNeverNegative(t *testing.T) {
	inv := NewInventory(2)
	assert.True(t, inv.Add("pill", 3))
	assert.False(t, inv.Add("pill", 0))
	assert.False(t, inv.Remove("pill", 4))
	assert.Equal(t, 3, inv.Count("pill"))
	assert.True(t, inv.Remove("pill", 3))
	_, present := inv.Items["pill"]
	assert.False(t, present)
	assert.False(t, inv.Remove("pill", 1))
}

func TestInventoryCapacity(t *testing.T) {
	inv := NewInventory(1)
	assert.True(t, inv.Add("a", 1))
	assert.False(t, inv.Add("b", 1))
	assert.True(t, inv.Add("a", 5), "stacking onto an existing entry ignores capacity")
	assert.Equal(t, []string{"a"}, inv.IDs())
}

func TestAttributesClamp(t *testing.T) {
	a := Attributes{Health: 130, MaxHealth: 100, Mana: -4, MaxMana: 50}
	a.Clamp()
	assert.Equal(t, 100, a.Health)
	assert.Equal(t, 0, a.Mana)
	assert.InDelta(t, 1.0, a.HealthRatio(), 1e-9)

	var zero Attributes
	assert.Zero(t, zero.HealthRatio())
}

func TestAttributesValue(t *testing.T) {
	a := DefaultAttributes()
	v, ok := a.Value("luck")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	_, ok = a.Value("charisma")
	assert.False(t, ok)

	assert.True(t, a.SetBase("bone_root", 9))
	assert.Equal(t, 9, a.BoneRoot)
	assert.False(t, a.SetBase("health", 1))
	assert.Equal(t, 100, a.Health)
}

func TestSkillsMembershipUnique(t *testing.T) {
	s := NewSkills()
	assert.True(t, s.LearnAbility("fireball"))
	assert.False(t, s.LearnAbility("fireball"))
	s.LearnAbility("ice_shard")
	assert.Equal(t, []string{"fireball", "ice_shard"}, s.AbilityIDs())
	assert.True(t, s.LearnTechnique("iron_body"))
	assert.True(t, s.KnowsTechnique("iron_body"))
}

func TestStateResistance(t *testing.T) {
	s := NewState("")
	assert.Equal(t, "mortal", s.Realm)
	s.Buffs["ward"] = &Effect{Remaining: 5, Payload: map[string]float64{"resist_fire": 0.3, "resist_all": 0.1}}
	assert.InDelta(t, 0.4, s.Resistance("fire"), 1e-9)
	assert.InDelta(t, 0.1, s.Resistance("ice"), 1e-9)
	s.Buffs["aegis"] = &Effect{Remaining: 5, Payload: map[string]float64{"resist_all": 2}}
	assert.InDelta(t, 1.0, s.Resistance("ice"), 1e-9)
}

func TestEquipment(t *testing.T) {
	e := NewEquipment()
	assert.Equal(t, "", e.Equip(SlotWeapon, "sword"))
	assert.Equal(t, "sword", e.Equip(SlotWeapon, "saber"))
	assert.Equal(t, "saber", e.Unequip(SlotWeapon))
	_, ok := e.Get(SlotWeapon)
	assert.False(t, ok)
	assert.False(t, ValidSlot("boots"))
}
