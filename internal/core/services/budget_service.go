package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
)

// budgetService provides budget and item operations for groups, including
// the conversion of budget items into personal expenses.
type budgetService struct {
	budgetRepo portsrepo.BudgetRepository
	groupRepo  portsrepo.GroupRepository
	expenseSvc portssvc.ExpenseCreatorSvc
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepository, groupRepo portsrepo.GroupRepository, expenseSvc portssvc.ExpenseCreatorSvc) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo: budgetRepo,
		groupRepo:  groupRepo,
		expenseSvc: expenseSvc,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// CreateBudget creates a budget owned by the group. The budget is saved with
// an empty id so the store assigns its identifier, then the reference is
// recorded on the group. The two saves are independent; see the concurrency
// notes in the repository contract.
func (s *budgetService) CreateBudget(ctx context.Context, groupID string, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.MaxSpend.IsNegative() {
		return nil, fmt.Errorf("%w: maxSpend must not be negative", apperrors.ErrValidation)
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		GroupID:  groupID,
		Name:     req.Name,
		MaxSpend: req.MaxSpend,
		Items:    make(map[string]domain.Item),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	budgetID, err := s.budgetRepo.Save(ctx, &budget)
	if err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	group.AddBudget(budgetID)
	if _, err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to attach budget to group: %w", err)
	}

	logger.Info("Budget created",
		slog.String("budget_id", budgetID),
		slog.String("group_id", groupID),
	)
	return &budget, nil
}

// GetBudgetByID retrieves a budget by ID.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget %s: %w", budgetID, err)
	}
	return budget, nil
}

// GetBudgetIDFromName resolves a budget name to its id. Names are not a
// unique key; the scan runs in persisted order and the first match wins.
func (s *budgetService) GetBudgetIDFromName(ctx context.Context, name string) (string, error) {
	budgets, err := s.budgetRepo.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list budgets: %w", err)
	}
	for _, budget := range budgets {
		if budget.Name == name {
			return budget.BudgetID, nil
		}
	}
	return "", fmt.Errorf("%w: no budget named %q", apperrors.ErrNotFound, name)
}

// GetItemNames lists the names of the budget's items in lexical order.
func (s *budgetService) GetItemNames(ctx context.Context, budgetID string) ([]string, error) {
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
	}
	return budget.ItemNames(), nil
}

// GetItemIDFromName resolves an item name to its id by scanning every budget
// in persisted order; the first match wins.
func (s *budgetService) GetItemIDFromName(ctx context.Context, name string) (string, error) {
	budgets, err := s.budgetRepo.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list budgets: %w", err)
	}
	for _, budget := range budgets {
		if item, ok := budget.Item(name); ok {
			return item.ItemID, nil
		}
	}
	return "", fmt.Errorf("%w: no item named %q", apperrors.ErrNotFound, name)
}

// AddItem adds an item to the budget, replacing any existing item with the
// same name (map semantics, not an error), and returns the new item's id.
// Items persist with their owning budget, so the id is assigned here.
func (s *budgetService) AddItem(ctx context.Context, budgetID string, req dto.AddItemRequest, actorUserID string) (string, error) {
	if req.Cost.IsNegative() {
		return "", fmt.Errorf("%w: item cost must not be negative", apperrors.ErrValidation)
	}
	if req.Quantity < 0 {
		return "", fmt.Errorf("%w: item quantity must not be negative", apperrors.ErrValidation)
	}

	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
	}

	item := domain.Item{
		ItemID:   uuid.NewString(),
		Name:     req.Name,
		Cost:     req.Cost,
		Quantity: req.Quantity,
	}
	budget.AddItem(item)
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = actorUserID

	if _, err := s.budgetRepo.Save(ctx, budget); err != nil {
		return "", fmt.Errorf("failed to save budget: %w", err)
	}
	return item.ItemID, nil
}

// findBudgetWithItem scans every budget for the item with the given id. Item
// ids are globally unique even though items nest under budgets, so the full
// scan replaces the original design's first-budget-only traversal.
func (s *budgetService) findBudgetWithItem(ctx context.Context, itemID string) (*domain.Budget, domain.Item, error) {
	budgets, err := s.budgetRepo.FindAll(ctx)
	if err != nil {
		return nil, domain.Item{}, fmt.Errorf("failed to list budgets: %w", err)
	}
	for i := range budgets {
		if item, ok := budgets[i].ItemByID(itemID); ok {
			return &budgets[i], item, nil
		}
	}
	return nil, domain.Item{}, fmt.Errorf("%w: no item with id %s", apperrors.ErrNotFound, itemID)
}

// ChangeItemQuantity updates the quantity of the item with the given id,
// wherever it lives.
func (s *budgetService) ChangeItemQuantity(ctx context.Context, itemID string, newQuantity int64, actorUserID string) error {
	if newQuantity < 0 {
		return fmt.Errorf("%w: item quantity must not be negative", apperrors.ErrValidation)
	}

	budget, item, err := s.findBudgetWithItem(ctx, itemID)
	if err != nil {
		return err
	}

	item.Quantity = newQuantity
	budget.AddItem(item)
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = actorUserID

	if _, err := s.budgetRepo.Save(ctx, budget); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// RemoveItem deletes the item with the given id, wherever it lives.
func (s *budgetService) RemoveItem(ctx context.Context, itemID string, actorUserID string) error {
	budget, item, err := s.findBudgetWithItem(ctx, itemID)
	if err != nil {
		return err
	}

	budget.RemoveItem(item.Name)
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = actorUserID

	if _, err := s.budgetRepo.Save(ctx, budget); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// GetMaxSpend returns the budget's spending limit.
func (s *budgetService) GetMaxSpend(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
	}
	return budget.MaxSpend, nil
}

// SetMaxSpend updates the budget's spending limit. The limit is advisory:
// item costs are never checked against it.
func (s *budgetService) SetMaxSpend(ctx context.Context, budgetID string, maxSpend decimal.Decimal, actorUserID string) error {
	if maxSpend.IsNegative() {
		return fmt.Errorf("%w: maxSpend must not be negative", apperrors.ErrValidation)
	}

	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
	}

	budget.MaxSpend = maxSpend
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = actorUserID

	if _, err := s.budgetRepo.Save(ctx, budget); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// GetPercentages maps each item name to its share of the budget's total
// cost, as a percentage. Nil when the total cost is zero.
func (s *budgetService) GetPercentages(ctx context.Context, budgetID string) (map[string]decimal.Decimal, error) {
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
	}
	return budget.Percentages(), nil
}

// RemoveBudget detaches the budget from the group and deletes it. Removing a
// budget that is no longer referenced by the group fails with ErrNotFound, so
// a repeated removal reports failure instead of succeeding silently.
func (s *budgetService) RemoveBudget(ctx context.Context, groupID string, budgetID string, actorUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	if !group.RemoveBudget(budgetID) {
		return fmt.Errorf("%w: budget %s is not attached to group %s", apperrors.ErrNotFound, budgetID, groupID)
	}

	if err := s.budgetRepo.DeleteByID(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", budgetID, err)
	}
	group.LastUpdatedAt = time.Now().UTC()
	group.LastUpdatedBy = actorUserID
	if _, err := s.groupRepo.Save(ctx, group); err != nil {
		return fmt.Errorf("failed to save group after budget removal: %w", err)
	}

	logger.Info("Budget removed",
		slog.String("budget_id", budgetID),
		slog.String("group_id", groupID),
	)
	return nil
}

// ToExpenses synthesizes one personal expense per item in the budget, in
// lexical item-name order, each lent entirely by the acting user.
func (s *budgetService) ToExpenses(ctx context.Context, budgetID string, creatorUserID string) ([]domain.Expense, error) {
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
	}

	expenses := make([]domain.Expense, 0, len(budget.Items))
	for _, name := range budget.ItemNames() {
		item := budget.Items[name]
		expense, err := s.expenseSvc.CreateExpenseFromItem(ctx, item, creatorUserID)
		if err != nil {
			return nil, fmt.Errorf("failed to convert item %q: %w", name, err)
		}
		expenses = append(expenses, *expense)
	}
	return expenses, nil
}

// AddExpensesToGroup converts the budget's items to expenses and appends
// them all to the group's expense list.
func (s *budgetService) AddExpensesToGroup(ctx context.Context, groupID string, budgetID string, creatorUserID string) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	expenses, err := s.ToExpenses(ctx, budgetID, creatorUserID)
	if err != nil {
		return err
	}

	for i := range expenses {
		group.AddExpense(expenses[i].ExpenseID)
	}
	group.LastUpdatedAt = time.Now().UTC()
	group.LastUpdatedBy = creatorUserID
	if _, err := s.groupRepo.Save(ctx, group); err != nil {
		return fmt.Errorf("failed to save group with budget expenses: %w", err)
	}
	return nil
}

// GetBudgetNames lists the names of the budgets owned by the group, in the
// order the group references them.
func (s *budgetService) GetBudgetNames(ctx context.Context, groupID string) ([]string, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group %s: %w", groupID, err)
	}

	names := make([]string, 0, len(group.BudgetIDs))
	for _, budgetID := range group.BudgetIDs {
		budget, err := s.budgetRepo.FindByID(ctx, budgetID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve budget %s: %w", budgetID, err)
		}
		names = append(names, budget.Name)
	}
	return names, nil
}
