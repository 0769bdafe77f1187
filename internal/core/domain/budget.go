package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Item is a planned purchase inside a budget. Its total cost is the unit cost
// multiplied by the quantity.
type Item struct {
	ItemID   string          `json:"itemID"` // Primary Key (UUID), unique across all budgets
	Name     string          `json:"name"`
	Cost     decimal.Decimal `json:"cost"`     // Non-negative unit cost
	Quantity int64           `json:"quantity"` // Non-negative
}

// TotalCost returns cost multiplied by quantity.
func (i Item) TotalCost() decimal.Decimal {
	return i.Cost.Mul(decimal.NewFromInt(i.Quantity))
}

// Budget is a named spending plan owned by exactly one group. Items are keyed
// by name; adding an item under an existing name replaces the old entry.
// MaxSpend is advisory only: the total cost of items may exceed it without
// error.
type Budget struct {
	BudgetID string          `json:"budgetID"` // Primary Key (UUID), assigned by the store on first save
	GroupID  string          `json:"groupID"`  // Owning group
	Name     string          `json:"name"`
	MaxSpend decimal.Decimal `json:"maxSpend"` // Non-negative spending limit
	Items    map[string]Item `json:"items"`    // Keyed by item name
	AuditFields
}

// AddItem puts an item into the budget, replacing any item with the same name.
func (b *Budget) AddItem(item Item) {
	if b.Items == nil {
		b.Items = make(map[string]Item)
	}
	b.Items[item.Name] = item
}

// Item returns the item with the given name.
func (b *Budget) Item(name string) (Item, bool) {
	item, ok := b.Items[name]
	return item, ok
}

// ItemByID returns the item with the given ItemID.
func (b *Budget) ItemByID(itemID string) (Item, bool) {
	for _, item := range b.Items {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// RemoveItem deletes the item with the given name. It reports whether the
// item was present.
func (b *Budget) RemoveItem(name string) bool {
	if _, ok := b.Items[name]; !ok {
		return false
	}
	delete(b.Items, name)
	return true
}

// ItemNames returns the item names in lexical order. The item map has no
// inherent order, so lexical order keeps listings and conversions stable.
func (b *Budget) ItemNames() []string {
	names := make([]string, 0, len(b.Items))
	for name := range b.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalCost sums the total cost of every item in the budget.
func (b *Budget) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.TotalCost())
	}
	return total
}

// Percentages maps each item name to its share of the budget's total cost,
// expressed as a percentage. Returns nil when the total cost is zero.
func (b *Budget) Percentages() map[string]decimal.Decimal {
	total := b.TotalCost()
	if total.IsZero() {
		return nil
	}
	hundred := decimal.NewFromInt(100)
	percentages := make(map[string]decimal.Decimal, len(b.Items))
	for name, item := range b.Items {
		percentages[name] = item.TotalCost().Div(total).Mul(hundred)
	}
	return percentages
}
