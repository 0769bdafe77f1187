package events

import "context"

// Topics the ledger publishes on.
const (
	TopicExpenseCreated = "expense_created"
	TopicDebtSettled    = "debt_settled"
)

// Publisher emits ledger events to an external broker. Implementations must
// tolerate being called on the request path; failures are logged by callers,
// never surfaced to the user.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// ExpenseCreated is emitted after an expense is persisted.
type ExpenseCreated struct {
	ExpenseID string `json:"expenseID"`
	Title     string `json:"title"`
	Amount    string `json:"amount"`
	CreatedBy string `json:"createdBy"`
}

// DebtSettled is emitted after a repayment is applied.
type DebtSettled struct {
	ExpenseID   string `json:"expenseID"`
	UserID      string `json:"userID"`
	Amount      string `json:"amount"`
	WasBorrower bool   `json:"wasBorrower"`
}
