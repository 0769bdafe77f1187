package services

import (
	portsevents "github.com/splitstack/splitledger/internal/core/ports/events"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/pkg/config"
)

// NewServiceContainer wires the service layer over the given repositories.
// The expense service publishes domain events through the publisher; pass a
// no-op publisher when no broker is configured.
func NewServiceContainer(cfg *config.Config, repos *portsrepo.RepositoryProvider, publisher portsevents.Publisher) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.Users, repos.Groups, repos.Expenses)
	groupSvc := NewGroupService(repos.Groups, repos.Users)
	expenseSvc := NewExpenseService(repos.Expenses, repos.Users, groupSvc,
		WithEventPublisher(publisher),
	)
	budgetSvc := NewBudgetService(repos.Budgets, repos.Groups, expenseSvc)
	authSvc := NewAuthService(userSvc, cfg)

	return &portssvc.ServiceContainer{
		User:    userSvc,
		Group:   groupSvc,
		Budget:  budgetSvc,
		Expense: expenseSvc,
		Auth:    authSvc,
	}
}
