package world

import (
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
)

// World is the concrete entity store: the generic ECS container plus one
// typed table per component kind. Accessed only from the game loop
// goroutine, no locks needed.
type World struct {
	*ecs.World

	Attributes *ecs.PtrComponentStore[component.Attributes]
	Skills     *ecs.PtrComponentStore[component.Skills]
	State      *ecs.PtrComponentStore[component.State]
	Inventory  *ecs.PtrComponentStore[component.Inventory]
	Equipment  *ecs.PtrComponentStore[component.Equipment]
	Identity   *ecs.PtrComponentStore[component.Identity]
	Position   *ecs.PtrComponentStore[component.Position]
	NPC        *ecs.PtrComponentStore[component.NPC]

	player ecs.EntityID
}

func New() *World {
	w := &World{
		World:      ecs.NewWorld(),
		Attributes: ecs.NewPtrComponentStore[component.Attributes](component.KindAttributes),
		Skills:     ecs.NewPtrComponentStore[component.Skills](component.KindSkills),
		State:      ecs.NewPtrComponentStore[component.State](component.KindState),
		Inventory:  ecs.NewPtrComponentStore[component.Inventory](component.KindInventory),
		Equipment:  ecs.NewPtrComponentStore[component.Equipment](component.KindEquipment),
		Identity:   ecs.NewPtrComponentStore[component.Identity](component.KindIdentity),
		Position:   ecs.NewPtrComponentStore[component.Position](component.KindPosition),
		NPC:        ecs.NewPtrComponentStore[component.NPC](component.KindNPC),
	}
	reg := w.Registry()
	reg.Register(w.Attributes)
	reg.Register(w.Skills)
	reg.Register(w.State)
	reg.Register(w.Inventory)
	reg.Register(w.Equipment)
	reg.Register(w.Identity)
	reg.Register(w.Position)
	reg.Register(w.NPC)
	return w
}

// Player returns the player entity if one has been created and is still alive.
func (w *World) Player() (ecs.EntityID, bool) {
	if w.player.IsZero() || !w.Alive(w.player) {
		return 0, false
	}
	return w.player, true
}

// IsPlayer reports whether id is the current player entity.
func (w *World) IsPlayer(id ecs.EntityID) bool {
	return !id.IsZero() && id == w.player && w.Alive(id)
}

// Name returns the display name of id, or a placeholder.
func (w *World) Name(id ecs.EntityID) string {
	if ident, ok := w.Identity.Get(id); ok && ident.Name != "" {
		return ident.Name
	}
	return "无名氏"
}

// NPCs returns the live NPC entities sorted by id.
func (w *World) NPCs() []ecs.EntityID {
	return w.Snapshot(component.KindNPC)
}

// MarkDead flags id as dead and reports whether this call did it. Callers
// emit entity-death only on true so the notification fires once.
func (w *World) MarkDead(id ecs.EntityID) bool {
	attr, ok := w.Attributes.Get(id)
	if !ok || attr.Dead {
		return false
	}
	attr.Dead = true
	return true
}
