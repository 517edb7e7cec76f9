package game

import (
	"sort"
	"strings"
)

type Slot struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Inventory is the bunker's shared stock. A slot never holds a quantity
// below one; dropping to zero removes it.
type Inventory struct {
	items map[string]int
}

func NewInventory() *Inventory {
	return &Inventory{items: make(map[string]int)}
}

func (inv *Inventory) AddItem(itemID string, qty int) bool {
	itemID = strings.TrimSpace(itemID)
	if inv == nil || itemID == "" || qty <= 0 {
		return false
	}
	if inv.items == nil {
		inv.items = make(map[string]int)
	}
	inv.items[itemID] += qty
	return true
}

// RemoveItem takes qty of itemID, or nothing at all when the stock is short.
func (inv *Inventory) RemoveItem(itemID string, qty int) bool {
	itemID = strings.TrimSpace(itemID)
	if inv == nil || itemID == "" || qty <= 0 {
		return false
	}
	have := inv.items[itemID]
	if have < qty {
		return false
	}
	if have == qty {
		delete(inv.items, itemID)
		return true
	}
	inv.items[itemID] = have - qty
	return true
}

func (inv *Inventory) Quantity(itemID string) int {
	if inv == nil {
		return 0
	}
	return inv.items[strings.TrimSpace(itemID)]
}

func (inv *Inventory) Has(itemID string, qty int) bool {
	return inv.Quantity(itemID) >= qty
}

func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.items)
}

// Slots returns the stock sorted by item id.
func (inv *Inventory) Slots() []Slot {
	if inv == nil {
		return nil
	}
	out := make([]Slot, 0, len(inv.items))
	for id, qty := range inv.items {
		out = append(out, Slot{ItemID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Replace loads slots wholesale; invalid slots are dropped.
func (inv *Inventory) Replace(slots []Slot) {
	inv.items = make(map[string]int, len(slots))
	for _, s := range slots {
		inv.AddItem(s.ItemID, s.Quantity)
	}
}
