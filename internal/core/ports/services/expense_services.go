package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/splitstack/splitledger/internal/core/domain"
	"github.com/splitstack/splitledger/internal/dto"
)

// ExpenseCreatorSvc defines the two expense creation paths.
type ExpenseCreatorSvc interface {
	// CreateExpense builds an expense from lender and borrower split maps,
	// validates that both sides sum to the total, and applies the balance
	// delta for every registered participant exactly once. Unregistered
	// participants become stand-ins recorded on the expense only.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error)

	// CreateExpenseFromItem converts a budget item into a personal expense:
	// amount = cost x quantity, the acting user is the sole lender, and there
	// are no borrowers, so no balance moves.
	CreateExpenseFromItem(ctx context.Context, item domain.Item, creatorUserID string) (*domain.Expense, error)
}

// ExpenseReaderSvc defines read operations for expenses.
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense by ID.
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)
}

// DebtSettlementSvc processes repayments against an expense.
type DebtSettlementSvc interface {
	// PayDebt reduces the outstanding amount the user carries on the expense
	// and moves their aggregate balance toward zero. wasBorrower selects the
	// direction: borrowers see their debt shrink, lenders see their credit
	// shrink.
	PayDebt(ctx context.Context, userID string, expenseID string, amount decimal.Decimal, wasBorrower bool) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseCreatorSvc
	ExpenseReaderSvc
	DebtSettlementSvc
}
