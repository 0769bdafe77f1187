package repositories

import (
	"context"

	"github.com/splitstack/splitledger/internal/core/domain"
)

// UserRepository is the user directory: the generic keyed store plus the
// email lookup that signup and expense creation depend on.
type UserRepository interface {
	Store[domain.User]

	// FindUserByEmail retrieves the user registered under the given email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// GroupRepository adds the member lookup used to list a user's groups.
type GroupRepository interface {
	Store[domain.Group]

	// FindGroupsByMember retrieves every group the given email belongs to.
	FindGroupsByMember(ctx context.Context, email string) ([]domain.Group, error)
}

// BudgetRepository persists budgets together with their item maps.
type BudgetRepository interface {
	Store[domain.Budget]
}

// ExpenseRepository persists expenses together with their split maps.
type ExpenseRepository interface {
	Store[domain.Expense]
}

// RepositoryProvider bundles the concrete repositories handed to the service
// container.
type RepositoryProvider struct {
	Users    UserRepository
	Groups   GroupRepository
	Budgets  BudgetRepository
	Expenses ExpenseRepository
}
