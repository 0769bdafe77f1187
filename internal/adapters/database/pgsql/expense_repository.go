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

// ExpenseRepository persists expenses in the expenses table. The split maps,
// stand-in participants, and outstanding amounts ride along as JSONB; the
// split itself is immutable, only outstanding changes after creation.
type ExpenseRepository struct {
	db *pgxpool.Pool
}

func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var _ portsrepo.ExpenseRepository = (*ExpenseRepository)(nil)

func (r *ExpenseRepository) Save(ctx context.Context, expense *domain.Expense) (string, error) {
	if expense.ExpenseID == "" {
		expense.ExpenseID = uuid.NewString()
	}
	query := `
        INSERT INTO expenses (expense_id, title, amount, lent_by, borrowed_by, participants, outstanding, created_at, created_by, last_updated_at, last_updated_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (expense_id) DO UPDATE SET
            outstanding = EXCLUDED.outstanding,
            last_updated_at = EXCLUDED.last_updated_at,
            last_updated_by = EXCLUDED.last_updated_by;
    `
	_, err := r.db.Exec(ctx, query,
		expense.ExpenseID,
		expense.Title,
		expense.Amount,
		expense.LentBy,
		expense.BorrowedBy,
		expense.Participants,
		expense.Outstanding,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save expense: %w", err)
	}
	return expense.ExpenseID, nil
}

const selectExpenseColumns = `
        SELECT expense_id, title, amount, lent_by, borrowed_by, participants, outstanding, created_at, created_by, last_updated_at, last_updated_by
        FROM expenses`

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var expense domain.Expense
	err := row.Scan(
		&expense.ExpenseID,
		&expense.Title,
		&expense.Amount,
		&expense.LentBy,
		&expense.BorrowedBy,
		&expense.Participants,
		&expense.Outstanding,
		&expense.CreatedAt,
		&expense.CreatedBy,
		&expense.LastUpdatedAt,
		&expense.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := scanExpense(r.db.QueryRow(ctx, selectExpenseColumns+` WHERE expense_id = $1;`, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no expense with id %s", apperrors.ErrNotFound, expenseID)
		}
		return nil, fmt.Errorf("failed to find expense by id: %w", err)
	}
	return expense, nil
}

func (r *ExpenseRepository) FindAll(ctx context.Context) ([]domain.Expense, error) {
	rows, err := r.db.Query(ctx, selectExpenseColumns+` ORDER BY created_at, expense_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", rows.Err())
	}
	return expenses, nil
}

func (r *ExpenseRepository) DeleteByID(ctx context.Context, expenseID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no expense with id %s", apperrors.ErrNotFound, expenseID)
	}
	return nil
}

// NewRepositoryProvider bundles the pgsql repositories over one pool.
func NewRepositoryProvider(db *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		Users:    NewUserRepository(db),
		Groups:   NewGroupRepository(db),
		Budgets:  NewBudgetRepository(db),
		Expenses: NewExpenseRepository(db),
	}
}
