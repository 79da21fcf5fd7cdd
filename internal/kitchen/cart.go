package kitchen

import (
	"anggaran/internal/core"
)

type CartItem struct {
	Item core.MenuItem `json:"item"`
	Qty  int64         `json:"qty"`
}

// Cart simulates one day of shopping against the daily limit. The zero value
// is an empty cart with no limit.
type Cart struct {
	Limit int64
	items []CartItem
}

func NewCart(limit int64) *Cart {
	return &Cart{Limit: limit}
}

// Add puts one more of item in the cart.
func (c *Cart) Add(item core.MenuItem) {
	for i := range c.items {
		if c.items[i].Item.ID == item.ID {
			c.items[i].Qty++
			return
		}
	}
	c.items = append(c.items, CartItem{Item: item, Qty: 1})
}

// Decrease takes one of id out of the cart, dropping the line at quantity 1.
func (c *Cart) Decrease(id string) {
	for i := range c.items {
		if c.items[i].Item.ID != id {
			continue
		}
		if c.items[i].Qty > 1 {
			c.items[i].Qty--
			return
		}
		c.Remove(id)
		return
	}
}

func (c *Cart) Remove(id string) {
	out := c.items[:0]
	for _, it := range c.items {
		if it.Item.ID != id {
			out = append(out, it)
		}
	}
	c.items = out
}

func (c *Cart) Reset() {
	c.items = nil
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Item.Price * it.Qty
	}
	return total
}

// RemainingDaily is negative when the cart is over budget.
func (c *Cart) RemainingDaily() int64 {
	return c.Limit - c.Total()
}
