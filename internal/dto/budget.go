package dto

import (
	"github.com/shopspring/decimal"
	"github.com/splitstack/splitledger/internal/core/domain"
)

// CreateBudgetRequest carries the fields for creating a budget in a group.
type CreateBudgetRequest struct {
	Name     string          `json:"name" binding:"required"`
	MaxSpend decimal.Decimal `json:"maxSpend"`
}

// AddItemRequest carries the fields for adding an item to a budget.
type AddItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Cost     decimal.Decimal `json:"cost"`
	Quantity int64           `json:"quantity" binding:"min=0"`
}

// ChangeQuantityRequest updates an item's quantity.
type ChangeQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"min=0"`
}

// SetMaxSpendRequest updates a budget's spending limit.
type SetMaxSpendRequest struct {
	MaxSpend decimal.Decimal `json:"maxSpend"`
}

// ItemResponse is the API representation of a budget item.
type ItemResponse struct {
	ItemID    string `json:"itemID"`
	Name      string `json:"name"`
	Cost      string `json:"cost"`
	Quantity  int64  `json:"quantity"`
	TotalCost string `json:"totalCost"`
}

// BudgetResponse is the API representation of a budget.
type BudgetResponse struct {
	BudgetID string         `json:"budgetID"`
	GroupID  string         `json:"groupID"`
	Name     string         `json:"name"`
	MaxSpend string         `json:"maxSpend"`
	Items    []ItemResponse `json:"items"`
}

// ToBudgetResponse converts a domain.Budget to its API representation with
// items in lexical name order.
func ToBudgetResponse(budget *domain.Budget) BudgetResponse {
	items := make([]ItemResponse, 0, len(budget.Items))
	for _, name := range budget.ItemNames() {
		item := budget.Items[name]
		items = append(items, ItemResponse{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Cost:      item.Cost.StringFixed(2),
			Quantity:  item.Quantity,
			TotalCost: item.TotalCost().StringFixed(2),
		})
	}
	return BudgetResponse{
		BudgetID: budget.BudgetID,
		GroupID:  budget.GroupID,
		Name:     budget.Name,
		MaxSpend: budget.MaxSpend.StringFixed(2),
		Items:    items,
	}
}
