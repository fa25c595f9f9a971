package component

import "github.com/l1jgo/cultivation/internal/core/ecs"

// Component kinds, one table per kind in world.World.
const (
	KindAttributes ecs.Kind = iota
	KindSkills
	KindState
	KindInventory
	KindEquipment
	KindIdentity
	KindPosition
	KindNPC
)

var kindNames = [...]string{
	KindAttributes: "attributes",
	KindSkills:     "skills",
	KindState:      "state",
	KindInventory:  "inventory",
	KindEquipment:  "equipment",
	KindIdentity:   "identity",
	KindPosition:   "position",
	KindNPC:        "npc",
}

// AllKinds lists every kind in declaration order.
func AllKinds() []ecs.Kind {
	return []ecs.Kind{KindAttributes, KindSkills, KindState, KindInventory, KindEquipment, KindIdentity, KindPosition, KindNPC}
}

// KindName returns a short name for logs.
func KindName(k ecs.Kind) string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
