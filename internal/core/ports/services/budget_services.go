package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/splitstack/splitledger/internal/core/domain"
	"github.com/splitstack/splitledger/internal/dto"
)

// BudgetReaderSvc defines read operations over budgets and their items.
type BudgetReaderSvc interface {
	// GetBudgetByID retrieves a budget by ID.
	GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// GetBudgetIDFromName resolves a budget name to its id by linear scan;
	// the first persisted match wins since names are not unique.
	GetBudgetIDFromName(ctx context.Context, name string) (string, error)

	// GetItemNames lists the item names in the budget, lexically ordered.
	GetItemNames(ctx context.Context, budgetID string) ([]string, error)

	// GetItemIDFromName resolves an item name to its id by linear scan over
	// all budgets; the first match wins.
	GetItemIDFromName(ctx context.Context, name string) (string, error)

	// GetMaxSpend returns the budget's spending limit.
	GetMaxSpend(ctx context.Context, budgetID string) (decimal.Decimal, error)

	// GetPercentages maps each item name to its share of the budget's total
	// cost, as a percentage. Nil when the total cost is zero.
	GetPercentages(ctx context.Context, budgetID string) (map[string]decimal.Decimal, error)

	// GetBudgetNames lists the names of the budgets owned by the group.
	GetBudgetNames(ctx context.Context, groupID string) ([]string, error)
}

// BudgetWriterSvc defines write operations over budgets and their items.
type BudgetWriterSvc interface {
	// CreateBudget creates a budget inside the group; the store assigns the
	// budget id on first save.
	CreateBudget(ctx context.Context, groupID string, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error)

	// AddItem adds an item to the budget, replacing any item with the same
	// name, and returns the new item's id.
	AddItem(ctx context.Context, budgetID string, req dto.AddItemRequest, actorUserID string) (string, error)

	// ChangeItemQuantity updates the quantity of the item with the given id,
	// searching every budget in the system.
	ChangeItemQuantity(ctx context.Context, itemID string, newQuantity int64, actorUserID string) error

	// RemoveItem deletes the item with the given id, searching every budget.
	RemoveItem(ctx context.Context, itemID string, actorUserID string) error

	// SetMaxSpend updates the budget's spending limit.
	SetMaxSpend(ctx context.Context, budgetID string, maxSpend decimal.Decimal, actorUserID string) error

	// RemoveBudget detaches the budget from the group and deletes it. A
	// second call for the same budget fails with ErrNotFound.
	RemoveBudget(ctx context.Context, groupID string, budgetID string, actorUserID string) error
}

// BudgetConverterSvc turns budget items into expenses.
type BudgetConverterSvc interface {
	// ToExpenses synthesizes one personal expense per item in the budget,
	// lent entirely by the acting user with no borrowers.
	ToExpenses(ctx context.Context, budgetID string, creatorUserID string) ([]domain.Expense, error)

	// AddExpensesToGroup converts the budget's items to expenses and appends
	// them all to the group's expense list.
	AddExpensesToGroup(ctx context.Context, groupID string, budgetID string, creatorUserID string) error
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
	BudgetConverterSvc
}
