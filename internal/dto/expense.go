package dto

import (
	"github.com/shopspring/decimal"
	"github.com/splitstack/splitledger/internal/core/domain"
)

// ExpenseShare names one participant's portion of an expense. Name is only
// used when the email does not belong to a registered user, to label the
// stand-in recorded on the expense.
type ExpenseShare struct {
	Email  string          `json:"email" binding:"required,email"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreateExpenseRequest carries the split maps for a new expense. Lent lists
// the people who paid; Borrowed lists the people who owe. Both sides must sum
// to Amount. GroupID optionally attaches the expense to a group.
type CreateExpenseRequest struct {
	Title    string          `json:"title" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Lent     []ExpenseShare  `json:"lent" binding:"required,min=1,dive"`
	Borrowed []ExpenseShare  `json:"borrowed" binding:"omitempty,dive"`
	GroupID  string          `json:"groupID"`
}

// PayDebtRequest carries a repayment against an expense.
type PayDebtRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	WasBorrower bool            `json:"wasBorrower"`
}

// ExpenseResponse is the API representation of an expense.
type ExpenseResponse struct {
	ExpenseID   string            `json:"expenseID"`
	Title       string            `json:"title"`
	Amount      string            `json:"amount"`
	LentBy      map[string]string `json:"lentBy"`
	BorrowedBy  map[string]string `json:"borrowedBy"`
	Outstanding map[string]string `json:"outstanding"`
}

func amountsToStrings(amounts map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(amounts))
	for email, amount := range amounts {
		out[email] = amount.StringFixed(2)
	}
	return out
}

// ToExpenseResponse converts a domain.Expense to its API representation.
func ToExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:   expense.ExpenseID,
		Title:       expense.Title,
		Amount:      expense.Amount.StringFixed(2),
		LentBy:      amountsToStrings(expense.LentBy),
		BorrowedBy:  amountsToStrings(expense.BorrowedBy),
		Outstanding: amountsToStrings(expense.Outstanding),
	}
}

// ToListExpenseResponse converts a slice of domain.Expense to API representations.
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}
