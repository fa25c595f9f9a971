package component

// Equipment slot names.
const (
	SlotWeapon    = "weapon"
	SlotArmor     = "armor"
	SlotAccessory = "accessory"
)

// Equipment maps slot names to the equipped item id. A missing key is an
// empty slot.
type Equipment struct {
	Slots map[string]string
}

func NewEquipment() *Equipment {
	return &Equipment{Slots: make(map[string]string, 3)}
}

// ValidSlot reports whether slot is one of the known slot names.
func ValidSlot(slot string) bool {
	switch slot {
	case SlotWeapon, SlotArmor, SlotAccessory:
		return true
	}
	return false
}

// Equip puts itemID in slot and returns the previously equipped item.
func (e *Equipment) Equip(slot, itemID string) (prev string) {
	prev = e.Slots[slot]
	e.Slots[slot] = itemID
	return prev
}

// Unequip empties slot and returns what was there.
func (e *Equipment) Unequip(slot string) string {
	prev := e.Slots[slot]
	delete(e.Slots, slot)
	return prev
}

func (e *Equipment) Get(slot string) (string, bool) {
	id, ok := e.Slots[slot]
	return id, ok
}
