package system

import (
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/world"
)

// ItemSystem handles request-use-item and request-equip.
type ItemSystem struct {
	world *world.World
	bus   *event.Bus
	data  *data.Provider
}

func NewItemSystem(w *world.World, bus *event.Bus, p *data.Provider) *ItemSystem {
	return &ItemSystem{world: w, bus: bus, data: p}
}

// Subscribe hooks the system into the bus.
func (s *ItemSystem) Subscribe() {
	event.On(s.bus, event.TopicRequestUseItem, s.onUse)
	event.On(s.bus, event.TopicRequestEquip, s.onEquip)
}

// ==================== 使用物品 ====================

func (s *ItemSystem) onUse(ev event.RequestUseItem) error {
	attr, ok := s.world.Attributes.Get(ev.Entity)
	if !ok || attr.Dead {
		return nil
	}
	inv, ok := s.world.Inventory.Get(ev.Entity)
	if !ok {
		return nil
	}
	item, ok := s.data.Item(ev.ItemID)
	if !ok {
		return s.bus.Message("未知物品: %s", ev.ItemID)
	}
	fx := item.Effects
	if item.Type != "consumable" && fx.HealthRestore == 0 && fx.ManaRestore == 0 {
		return s.bus.Message("%s 无法直接使用", item.Name)
	}
	if !inv.Remove(ev.ItemID, 1) {
		return s.bus.Message("没有 %s", item.Name)
	}

	before := attr.Health
	attr.Health += fx.HealthRestore
	attr.Mana += fx.ManaRestore
	attr.Clamp()

	if healed := attr.Health - before; healed > 0 {
		if err := s.bus.Emit(event.TopicHealingDone, event.HealingDone{Target: ev.Entity, Amount: healed}); err != nil {
			return err
		}
	}
	if err := s.bus.Emit(event.TopicItemUsed, event.ItemUsed{Entity: ev.Entity, ItemID: ev.ItemID}); err != nil {
		return err
	}
	if err := s.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: ev.Entity}); err != nil {
		return err
	}
	return s.bus.Message("使用了 %s", item.Name)
}

// ==================== 裝備 ====================

func (s *ItemSystem) onEquip(ev event.RequestEquip) error {
	if !component.ValidSlot(ev.Slot) {
		return s.bus.Message("无效的装备栏位: %s", ev.Slot)
	}
	equip, ok := s.world.Equipment.Get(ev.Entity)
	if !ok {
		return nil
	}
	inv, ok := s.world.Inventory.Get(ev.Entity)
	if !ok {
		return nil
	}
	attr, ok := s.world.Attributes.Get(ev.Entity)
	if !ok {
		return nil
	}

	if ev.ItemID == "" {
		prev := equip.Unequip(ev.Slot)
		if prev == "" {
			return nil
		}
		if !inv.Add(prev, 1) {
			equip.Equip(ev.Slot, prev)
			return s.bus.Message("背包已满，无法卸下装备")
		}
		s.applyBonuses(attr, prev, -1)
		return s.updated(ev.Entity, "卸下了 %s", s.itemName(prev))
	}

	item, ok := s.data.Item(ev.ItemID)
	if !ok {
		return s.bus.Message("未知物品: %s", ev.ItemID)
	}
	if item.Slot != ev.Slot {
		return s.bus.Message("%s 不能装备在 %s 栏位", item.Name, ev.Slot)
	}
	if !inv.Remove(ev.ItemID, 1) {
		return s.bus.Message("没有 %s", item.Name)
	}
	prev := equip.Equip(ev.Slot, ev.ItemID)
	if prev != "" {
		s.applyBonuses(attr, prev, -1)
		// A full bag keeps the old piece equipped.
		if !inv.Add(prev, 1) {
			equip.Equip(ev.Slot, prev)
			s.applyBonuses(attr, prev, 1)
			inv.Add(ev.ItemID, 1)
			return s.bus.Message("背包已满，无法更换装备")
		}
	}
	s.applyBonuses(attr, ev.ItemID, 1)
	return s.updated(ev.Entity, "装备了 %s", item.Name)
}

func (s *ItemSystem) applyBonuses(attr *component.Attributes, itemID string, sign int) {
	item, ok := s.data.Item(itemID)
	if !ok {
		return
	}
	attr.PhysicalAttack += sign * item.Bonuses["physical_attack"]
	attr.SpellAttack += sign * item.Bonuses["spell_attack"]
	attr.Defense += sign * item.Bonuses["defense"]
}

func (s *ItemSystem) itemName(id string) string {
	if item, ok := s.data.Item(id); ok {
		return item.Name
	}
	return id
}

func (s *ItemSystem) updated(id ecs.EntityID, format string, args ...any) error {
	if err := s.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: id}); err != nil {
		return err
	}
	return s.bus.Message(format, args...)
}
