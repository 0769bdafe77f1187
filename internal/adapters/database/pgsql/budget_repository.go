package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
)

// BudgetRepository persists budgets in the budgets table. The item map rides
// along as JSONB; items have no table of their own.
type BudgetRepository struct {
	db *pgxpool.Pool
}

func NewBudgetRepository(db *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{db: db}
}

var _ portsrepo.BudgetRepository = (*BudgetRepository)(nil)

func (r *BudgetRepository) Save(ctx context.Context, budget *domain.Budget) (string, error) {
	if budget.BudgetID == "" {
		budget.BudgetID = uuid.NewString()
	}
	query := `
        INSERT INTO budgets (budget_id, group_id, name, max_spend, items, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (budget_id) DO UPDATE SET
            name = EXCLUDED.name,
            max_spend = EXCLUDED.max_spend,
            items = EXCLUDED.items,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.db.Exec(ctx, query,
		budget.BudgetID,
		budget.GroupID,
		budget.Name,
		budget.MaxSpend,
		budget.Items,
		budget.CreatedAt,
		budget.CreatedBy,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save budget: %w", err)
	}
	return budget.BudgetID, nil
}

const selectBudgetColumns = `
        SELECT budget_id, group_id, name, max_spend, items, created_at, created_by, last_updated_at, last_updated_by
        FROM budgets`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var budget domain.Budget
	err := row.Scan(
		&budget.BudgetID,
		&budget.GroupID,
		&budget.Name,
		&budget.MaxSpend,
		&budget.Items,
		&budget.CreatedAt,
		&budget.CreatedBy,
		&budget.LastUpdatedAt,
		&budget.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if budget.Items == nil {
		budget.Items = make(map[string]domain.Item)
	}
	return &budget, nil
}

func (r *BudgetRepository) FindByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budget, err := scanBudget(r.db.QueryRow(ctx, selectBudgetColumns+` WHERE budget_id = $1;`, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no budget with id %s", apperrors.ErrNotFound, budgetID)
		}
		return nil, fmt.Errorf("failed to find budget by id: %w", err)
	}
	return budget, nil
}

func (r *BudgetRepository) FindAll(ctx context.Context) ([]domain.Budget, error) {
	rows, err := r.db.Query(ctx, selectBudgetColumns+` ORDER BY created_at, budget_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", rows.Err())
	}
	return budgets, nil
}

func (r *BudgetRepository) DeleteByID(ctx context.Context, budgetID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no budget with id %s", apperrors.ErrNotFound, budgetID)
	}
	return nil
}
