package component

import "sort"

const DefaultInventoryCapacity = 100

// Inventory maps item ids to stack counts. Counts are always > 0; an entry
// reaching 0 is removed. Capacity bounds the number of distinct stacks.
type Inventory struct {
	Items    map[string]int
	Capacity int
}

func NewInventory(capacity int) *Inventory {
	if capacity <= 0 {
		capacity = DefaultInventoryCapacity
	}
	return &Inventory{Items: make(map[string]int), Capacity: capacity}
}

// Add stacks count onto itemID. It fails without change when count is not
// positive or a new stack would exceed Capacity.
func (inv *Inventory) Add(itemID string, count int) bool {
	if count <= 0 {
		return false
	}
	if _, ok := inv.Items[itemID]; !ok && len(inv.Items) >= inv.Capacity {
		return false
	}
	inv.Items[itemID] += count
	return true
}

// Remove takes count of itemID. It is all or nothing.
func (inv *Inventory) Remove(itemID string, count int) bool {
	have, ok := inv.Items[itemID]
	if !ok || count <= 0 || have < count {
		return false
	}
	if have == count {
		delete(inv.Items, itemID)
	} else {
		inv.Items[itemID] = have - count
	}
	return true
}

func (inv *Inventory) Count(itemID string) int {
	return inv.Items[itemID]
}

// IDs returns the held item ids sorted.
func (inv *Inventory) IDs() []string {
	out := make([]string, 0, len(inv.Items))
	for id := range inv.Items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
